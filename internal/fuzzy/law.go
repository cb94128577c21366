package fuzzy

import (
	"fmt"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
)

// Law drives steering, and speed when the engine has a second output,
// from a fuzzy engine. Inputs are fed in order: heading error, its
// difference and car speed, up to the engine's input count.
type Law struct {
	engine   *Engine
	fallback *control.PIDLaw
}

func NewLaw(e *Engine, fallback *control.PIDLaw) (*Law, error) {
	if e.NumInputs() > 3 {
		return nil, fmt.Errorf("%w: %s has %d", ErrTooManyInputs, e.Name(), e.NumInputs())
	}
	return &Law{engine: e, fallback: fallback}, nil
}

func (l *Law) SteerControl(obs control.Observation) (float64, error) {
	h := obs.State.Heading
	in := []float64{h.Error, h.DeltaError, obs.Car.Speed()}
	for i := 0; i < l.engine.NumInputs(); i++ {
		l.engine.SetInput(i, in[i])
	}
	l.engine.Process()
	return l.engine.Output(0), nil
}

// SpeedControl reads the second output of the inference run by the
// preceding SteerControl call.
func (l *Law) SpeedControl(obs control.Observation) (float64, error) {
	if l.engine.NumOutputs() > 1 {
		return l.engine.Output(1), nil
	}
	return l.fallback.SpeedControl(obs)
}

// NewController builds a fuzzy-steered controller for c. The aim point
// is the node itself; fuzzy cars do not spread over the track.
func NewController(c car.Car, e *Engine, g control.Gains, scale float64) (*control.Loop, error) {
	law, err := NewLaw(e, control.NewPIDLaw(g.K1, g.K2, scale))
	if err != nil {
		return nil, err
	}
	loop := control.NewLoop(c, control.NewState(nil), law)
	loop.SetMaxSteer(g.MaxSteer)
	return loop, nil
}

var _ control.Law = (*Law)(nil)
