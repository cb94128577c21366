package control

import (
	"testing"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactive_Deadband(t *testing.T) {
	layout := &fixedLayout{
		route: track.Nodes{geom.V(0, 0), geom.V(100, 2)},
		tile:  track.Tile{Type: track.TileStraight},
	}
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewReactive(k, DefaultGains(), DefaultScale)
	ctrl.SetTrack(layout)

	require.NoError(t, ctrl.Update(false))
	assert.Equal(t, car.SteerNeutral, k.Statuses().Steer, "error inside deadband must hold the wheel straight")
	assert.True(t, k.Statuses().Accelerate)
}

func TestReactive_TurnsTowardTarget(t *testing.T) {
	tests := []struct {
		name     string
		target   geom.Vec2
		expected car.Steer
	}{
		{"left", geom.V(0, 100), car.SteerLeft},
		{"right", geom.V(0, -100), car.SteerRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := &fixedLayout{
				route: track.Nodes{geom.V(0, 0), tt.target},
				tile:  track.Tile{Type: track.TileStraight},
			}
			k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
			ctrl := NewReactive(k, DefaultGains(), DefaultScale)
			ctrl.SetTrack(layout)
			rec := &recordingListener{}
			ctrl.AddListener(rec)

			require.NoError(t, ctrl.Update(false))
			assert.Equal(t, tt.expected, k.Statuses().Steer)
			assert.LessOrEqual(t, k.Statuses().Magnitude, 1.0)
			require.Len(t, rec.steers, 1)
		})
	}
}

func TestReactive_DerivativeUsesPreviousError(t *testing.T) {
	layout := &fixedLayout{
		route: track.Nodes{geom.V(0, 0), geom.V(0, 100)},
		tile:  track.Tile{Type: track.TileStraight},
	}
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewReactive(k, DefaultGains(), DefaultScale)
	ctrl.SetTrack(layout)
	rec := &recordingListener{}
	ctrl.AddListener(rec)

	require.NoError(t, ctrl.Update(false))
	require.NoError(t, ctrl.Update(false))

	// 90 degrees: first tick 0.9 + 0.9 clamps to 1, second tick only 0.9.
	assert.InDelta(t, -1.0, rec.steers[0], 1e-9)
	assert.InDelta(t, -0.9, rec.steers[1], 1e-9)
}

func TestReactive_RequiresTrack(t *testing.T) {
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	assert.ErrorIs(t, NewReactive(k, DefaultGains(), DefaultScale).Update(false), ErrTrackNotSet)
}
