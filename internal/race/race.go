package race

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
)

// Vehicle is a car the runner can move.
type Vehicle interface {
	car.Car
	Step(dt float64)
	Advance(route track.Route, radius float64) bool
	Laps() int
	Distance() float64
}

type Entry struct {
	Name       string
	Controller control.Controller
	vehicle    Vehicle
}

type Config struct {
	Dt         float64
	MaxTicks   int
	Laps       int
	NodeRadius float64
}

type CarResult struct {
	Name       string
	Laps       int
	FinishTick int
	Distance   float64
}

type Result struct {
	Ticks    int
	Finished bool
	Cars     []CarResult
}

// Observer is called after every tick with the tick index.
type Observer interface {
	OnTick(tick int, entries []Entry)
}

// Runner drives a race: one controller update per car per tick, in
// entry order, followed by the car's motion step.
type Runner struct {
	layout    track.Layout
	entries   []Entry
	observers []Observer
	logger    *log.Logger
}

func New(layout track.Layout, logger *log.Logger) *Runner {
	return &Runner{layout: layout, logger: logger}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }
func (r *Runner) Entries() []Entry       { return r.entries }

// Add binds the controller to the race track. Its car must be a Vehicle.
func (r *Runner) Add(name string, ctrl control.Controller) error {
	v, ok := ctrl.Car().(Vehicle)
	if !ok {
		return fmt.Errorf("%w: %s has %T", ErrNotSteppable, name, ctrl.Car())
	}
	ctrl.SetTrack(r.layout)
	r.entries = append(r.entries, Entry{Name: name, Controller: ctrl, vehicle: v})
	return nil
}

func (e Entry) Vehicle() Vehicle { return e.vehicle }

// Close releases controllers that hold resources, such as a Lua state.
func (r *Runner) Close() error {
	var errs []error
	for _, e := range r.entries {
		if c, ok := e.Controller.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", e.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Run ticks until every car has been updated as completed once, or
// MaxTicks is reached. A controller error stops the race.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(r.entries) == 0 {
		return nil, ErrNoEntries
	}

	route := r.layout.Route()
	result := &Result{Cars: make([]CarResult, len(r.entries))}
	for i, e := range r.entries {
		result.Cars[i] = CarResult{Name: e.Name, FinishTick: -1}
	}

	r.logger.Info("race started", "cars", len(r.entries), "laps", cfg.Laps, "nodes", route.NumNodes())

	for tick := 0; tick < cfg.MaxTicks; tick++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		settled := true
		for i, e := range r.entries {
			v := e.vehicle
			done := v.Laps() >= cfg.Laps

			if err := e.Controller.Update(done); err != nil {
				return result, &TickError{Tick: tick, Car: i, Name: e.Name, Wrapped: err}
			}
			v.Step(cfg.Dt)
			v.Advance(route, cfg.NodeRadius)

			cr := &result.Cars[i]
			cr.Laps = v.Laps()
			cr.Distance = v.Distance()
			if cr.FinishTick < 0 && v.Laps() >= cfg.Laps {
				cr.FinishTick = tick
				r.logger.Info("car finished", "car", e.Name, "tick", tick)
			}
			if !done {
				settled = false
			}
		}
		result.Ticks = tick + 1

		for _, o := range r.observers {
			o.OnTick(tick, r.entries)
		}

		if settled {
			result.Finished = true
			break
		}
	}

	if !result.Finished {
		r.logger.Warn("race hit tick limit", "ticks", result.Ticks)
	}
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.MaxTicks <= 0 {
		return fmt.Errorf("max ticks must be positive, got %d", cfg.MaxTicks)
	}
	if cfg.Laps <= 0 {
		return fmt.Errorf("laps must be positive, got %d", cfg.Laps)
	}
	if cfg.NodeRadius <= 0 {
		return fmt.Errorf("node radius must be positive, got %f", cfg.NodeRadius)
	}
	return nil
}

// Slot is a starting position on the grid.
type Slot struct {
	Location geom.Vec2
	Heading  float64
	Target   int
}

// Grid lines n cars up behind node 0, facing node 1, spacing apart.
func Grid(route track.Route, n int, spacing float64) ([]Slot, error) {
	if route.NumNodes() < 2 {
		return nil, control.ErrNoRoute
	}
	start := route.Get(0).Location
	dir, ok := route.Get(1).Location.Sub(start).Normalized()
	if !ok {
		return nil, fmt.Errorf("race: first route leg has zero length")
	}
	heading := control.RadToDeg(math.Atan2(dir.Y, dir.X))

	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{
			Location: start.Sub(dir.Scale(float64(i) * spacing)),
			Heading:  heading,
			Target:   1,
		}
	}
	return slots, nil
}
