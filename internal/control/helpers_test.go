package control

import (
	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
)

type fixedLayout struct {
	route track.Nodes
	tile  track.Tile
}

func (f *fixedLayout) Route() track.Route            { return f.route }
func (f *fixedLayout) TileAt(p geom.Vec2) track.Tile { return f.tile }

func straightLayout() *fixedLayout {
	return &fixedLayout{
		route: track.Nodes{geom.V(-100, 0), geom.V(100, 0), geom.V(100, 100)},
		tile:  track.Tile{Type: track.TileStraight},
	}
}

type recordingListener struct {
	steers []float64
	speeds []float64
	dones  []bool
	err    error
}

func (r *recordingListener) Report(c car.Car, layout track.Layout, steer, speed float64, done bool) error {
	r.steers = append(r.steers, steer)
	r.speeds = append(r.speeds, speed)
	r.dones = append(r.dones, done)
	return r.err
}
