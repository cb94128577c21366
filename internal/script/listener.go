package script

import (
	"fmt"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/track"
)

// Listener forwards every report to the script object's report method.
type Listener struct {
	rt *Runtime
}

func NewListener(rt *Runtime) (*Listener, error) {
	ok, err := rt.Has("report")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: report", ErrNotCallable)
	}
	return &Listener{rt: rt}, nil
}

func (l *Listener) Report(c car.Car, layout track.Layout, steer, speed float64, done bool) error {
	loc := c.Location()
	return l.rt.Invoke("report", map[string]any{
		"x":       loc.X,
		"y":       loc.Y,
		"heading": c.HeadingDegrees(),
		"speed":   c.Speed(),
		"target":  c.CurrentTargetNodeIndex(),
		"steer":   steer,
		"command": speed,
		"done":    done,
	})
}

var _ control.Listener = (*Listener)(nil)
