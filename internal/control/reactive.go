package control

import (
	"math"

	"github.com/san-kum/racepilot/internal/car"
)

// Reactive aims at the current target node with a PD term on the
// heading error only. Inside the deadband the wheel is held straight.
type Reactive struct {
	Base
	Kp         float64
	Kd         float64
	Deadband   float64
	MaxControl float64
	Policy     SpeedPolicy

	prevError float64
}

func NewReactive(c car.Car, g Gains, scale float64) *Reactive {
	return &Reactive{
		Base:       NewBase(c),
		Kp:         g.Kp,
		Kd:         g.Kd,
		Deadband:   g.Deadband,
		MaxControl: g.MaxReactive,
		Policy:     NewSpeedPolicy(scale),
	}
}

func (r *Reactive) Update(done bool) error {
	if r.layout == nil {
		return ErrTrackNotSet
	}
	route := r.layout.Route()
	if route.NumNodes() == 0 {
		return ErrNoRoute
	}

	r.car.ClearStatuses()

	node := route.Get(r.car.CurrentTargetNodeIndex())
	loc := r.car.Location()
	diff := HeadingErrorTo(loc, r.car.HeadingDegrees(), node.Location)

	control := clamp(diff*r.Kp+(diff-r.prevError)*r.Kd, -r.MaxControl, r.MaxControl)
	steer := 0.0
	if math.Abs(diff) > r.Deadband {
		steer = -control
	}
	r.prevError = diff

	speed := r.Policy.Command(r.car.Speed(), r.layout.TileAt(loc), done)

	if err := r.report(steer, speed, done); err != nil {
		return err
	}
	Actuate(r.car, steer, speed, r.MaxControl)
	return nil
}
