package control

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPID_RequiresTrack(t *testing.T) {
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewPID(k, nil, DefaultGains(), DefaultScale)
	assert.ErrorIs(t, ctrl.Update(false), ErrTrackNotSet)
}

func TestPID_AimedStandingStart(t *testing.T) {
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewPID(k, nil, DefaultGains(), DefaultScale)
	ctrl.SetTrack(straightLayout())
	rec := &recordingListener{}
	ctrl.AddListener(rec)

	require.NoError(t, ctrl.Update(false))

	st := ctrl.State()
	assert.Equal(t, 0.0, st.Heading.Error)
	assert.Equal(t, 0.0, st.Heading.DeltaError)
	require.Len(t, rec.steers, 1)
	assert.Equal(t, 0.0, rec.steers[0])
	assert.Equal(t, AccelerateStep, rec.speeds[0])

	s := k.Statuses()
	assert.True(t, s.Accelerate)
	assert.False(t, s.Brake)
	assert.Equal(t, car.SteerNeutral, s.Steer)
}

func TestPID_SteersTowardTarget(t *testing.T) {
	layout := &fixedLayout{
		route: track.Nodes{geom.V(0, 0), geom.V(0, 100)},
		tile:  track.Tile{Type: track.TileStraight},
	}
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewPID(k, nil, DefaultGains(), DefaultScale)
	ctrl.SetTrack(layout)

	require.NoError(t, ctrl.Update(false))

	assert.InDelta(t, 90, ctrl.State().Heading.Error, 1e-9)
	assert.InDelta(t, -(90*0.025 + 90*0.025), ctrl.State().SteerControl, 1e-9)

	s := k.Statuses()
	assert.Equal(t, car.SteerLeft, s.Steer)
	assert.InDelta(t, DefaultMaxSteer, s.Magnitude, 1e-9, "steer must be clamped")
}

func TestPID_ReportsUnclampedBeforeApplying(t *testing.T) {
	layout := &fixedLayout{
		route: track.Nodes{geom.V(0, 0), geom.V(0, -100)},
		tile:  track.Tile{Type: track.TileStraight},
	}
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewPID(k, nil, DefaultGains(), DefaultScale)
	ctrl.SetTrack(layout)
	rec := &recordingListener{}
	ctrl.AddListener(rec)

	require.NoError(t, ctrl.Update(true))

	require.Len(t, rec.steers, 1)
	assert.Greater(t, rec.steers[0], DefaultMaxSteer)
	assert.Equal(t, []bool{true}, rec.dones)
	assert.Equal(t, car.SteerRight, k.Statuses().Steer)
	assert.False(t, k.Statuses().Accelerate, "completed race must not accelerate")
}

func TestPID_ListenerErrorPropagates(t *testing.T) {
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewPID(k, nil, DefaultGains(), DefaultScale)
	ctrl.SetTrack(straightLayout())
	boom := errors.New("boom")
	ctrl.AddListener(&recordingListener{err: boom})

	assert.ErrorIs(t, ctrl.Update(false), boom)
}

func TestPID_RandomizedIsSeeded(t *testing.T) {
	run := func() float64 {
		k := car.NewKinematic(car.DefaultParams(), geom.V(-100, 0), 0, 1)
		ctrl := NewPID(k, rand.New(rand.NewSource(11)), DefaultGains(), DefaultScale)
		ctrl.SetTrack(straightLayout())
		require.NoError(t, ctrl.Update(false))
		return ctrl.State().Heading.Error
	}
	assert.Equal(t, run(), run())
}

func TestPIDLaw_Params(t *testing.T) {
	law := NewPIDLaw(0.025, 0.025, DefaultScale)

	require.NoError(t, law.SetParam("k1", 0.5))
	require.NoError(t, law.SetParam("scale", 8.1))
	assert.Error(t, law.SetParam("scale", 0))
	assert.Error(t, law.SetParam("nope", 1))

	params := law.GetParams()
	assert.Equal(t, 0.5, params["k1"])
	assert.Equal(t, 8.1, params["scale"])
}

func TestPID_ClosedLoopReachesNode(t *testing.T) {
	layout := &fixedLayout{
		route: track.Nodes{geom.V(0, 0), geom.V(1000, 400)},
		tile:  track.Tile{Type: track.TileStraight},
	}
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
	ctrl := NewPID(k, nil, DefaultGains(), DefaultScale)
	ctrl.SetTrack(layout)

	reached := false
	for i := 0; i < 1200 && !reached; i++ {
		require.NoError(t, ctrl.Update(false))
		k.Step(1.0 / 60)
		reached = k.Advance(layout.route, 64)
	}
	assert.True(t, reached, "car never reached the target node, ended at %v", k.Location())
}
