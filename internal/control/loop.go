package control

import (
	"fmt"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/track"
)

// Observation is what a Law sees on one tick.
type Observation struct {
	State *State
	Car   car.Car
	Tile  track.Tile
	Done  bool
}

// Law computes the two command signals of a Loop. Steering is positive
// to the right; a negative speed command means brake.
type Law interface {
	SteerControl(obs Observation) (float64, error)
	SpeedControl(obs Observation) (float64, error)
}

// Loop is the error-tracking control pipeline: sample the route, update
// State, query the Law (steer first, then speed), report, apply.
type Loop struct {
	Base
	state    *State
	law      Law
	maxSteer float64
}

func NewLoop(c car.Car, st *State, law Law) *Loop {
	return &Loop{
		Base:     NewBase(c),
		state:    st,
		law:      law,
		maxSteer: DefaultMaxSteer,
	}
}

func (l *Loop) State() *State { return l.state }
func (l *Loop) Law() Law      { return l.law }

func (l *Loop) SetMaxSteer(max float64) {
	if max > 0 {
		l.maxSteer = max
	}
}

func (l *Loop) Update(done bool) error {
	if l.layout == nil {
		return ErrTrackNotSet
	}

	l.car.ClearStatuses()
	if err := NewSampler(l.layout.Route()).Sample(l.car, l.state); err != nil {
		return err
	}

	obs := Observation{
		State: l.state,
		Car:   l.car,
		Tile:  l.layout.TileAt(l.car.Location()),
		Done:  done,
	}

	steer, err := l.law.SteerControl(obs)
	if err != nil {
		return fmt.Errorf("steer control: %w", err)
	}
	speed, err := l.law.SpeedControl(obs)
	if err != nil {
		return fmt.Errorf("speed control: %w", err)
	}

	if err := l.report(steer, speed, done); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	l.state.RecordControl(steer, speed)

	Actuate(l.car, steer, speed, l.maxSteer)
	return nil
}
