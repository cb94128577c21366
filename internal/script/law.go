package script

import (
	"io"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
)

// Law delegates steerControl and speedControl to a script object. Either
// may be omitted, in which case the PID law answers for it.
type Law struct {
	rt       *Runtime
	steer    bool
	speed    bool
	fallback *control.PIDLaw
}

func NewLaw(rt *Runtime, fallback *control.PIDLaw) (*Law, error) {
	steer, err := rt.Has("steerControl")
	if err != nil {
		return nil, err
	}
	speed, err := rt.Has("speedControl")
	if err != nil {
		return nil, err
	}
	return &Law{rt: rt, steer: steer, speed: speed, fallback: fallback}, nil
}

func (l *Law) SteerControl(obs control.Observation) (float64, error) {
	if !l.steer {
		return l.fallback.SteerControl(obs)
	}
	return l.rt.Call("steerControl", stateData(obs))
}

func (l *Law) SpeedControl(obs control.Observation) (float64, error) {
	if !l.speed {
		return l.fallback.SpeedControl(obs)
	}
	return l.rt.Call("speedControl", stateData(obs))
}

func stateData(obs control.Observation) map[string]any {
	s := obs.State.Snapshot()
	return map[string]any{
		"heading":      trackerData(s.Heading),
		"lateral":      trackerData(s.Lateral),
		"distance":     trackerData(s.Distance),
		"steerControl": s.SteerControl,
		"speedControl": s.SpeedControl,
		"speed":        obs.Car.Speed(),
		"done":         obs.Done,
	}
}

func trackerData(t control.ErrorTracker) map[string]any {
	return map[string]any{
		"error":       t.Error,
		"deltaError":  t.DeltaError,
		"deltaError2": t.DeltaError2,
	}
}

// Controller is a script-driven Loop. It owns its runtime; Close
// releases the Lua state.
type Controller struct {
	*control.Loop
	rt *Runtime
}

func (c *Controller) Runtime() *Runtime { return c.rt }
func (c *Controller) Close() error      { return c.rt.Close() }

// NewController builds a script-driven controller for c that takes
// ownership of rt.
func NewController(c car.Car, rt *Runtime, g control.Gains, scale float64) (*Controller, error) {
	law, err := NewLaw(rt, control.NewPIDLaw(g.K1, g.K2, scale))
	if err != nil {
		return nil, err
	}
	loop := control.NewLoop(c, control.NewState(nil), law)
	loop.SetMaxSteer(g.MaxSteer)
	return &Controller{Loop: loop, rt: rt}, nil
}

var (
	_ control.Law        = (*Law)(nil)
	_ control.Controller = (*Controller)(nil)
	_ io.Closer          = (*Controller)(nil)
)
