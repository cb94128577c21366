package control

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingErrorTo(t *testing.T) {
	tests := []struct {
		name     string
		heading  float64
		target   geom.Vec2
		expected float64
	}{
		{"aimed", 0, geom.V(100, 0), 0},
		{"counter-clockwise", 0, geom.V(0, 1), 90},
		{"clockwise", 0, geom.V(0, -1), -90},
		{"behind", 0, geom.V(-1, 0), 180},
		{"wrapped heading", 350, geom.V(1, 0.0), 10},
		{"large heading", 720 + 45, geom.V(1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeadingErrorTo(geom.V(0, 0), tt.heading, tt.target)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestLateralErrorTo(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur geom.Vec2
		car       geom.Vec2
		expected  float64
	}{
		{"on line", geom.V(0, 0), geom.V(10, 0), geom.V(5, 0), 0},
		{"left of line", geom.V(0, 0), geom.V(10, 0), geom.V(5, 3), 3},
		{"right of line", geom.V(0, 0), geom.V(10, 0), geom.V(5, -3), 3},
		{"beyond segment", geom.V(0, 0), geom.V(10, 0), geom.V(50, 2), 2},
		{"diagonal", geom.V(0, 0), geom.V(10, 10), geom.V(0, 2), math.Sqrt2},
		{"degenerate", geom.V(1, 1), geom.V(1, 1), geom.V(4, 5), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LateralErrorTo(tt.prev, tt.cur, tt.car)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestSampler_Sample(t *testing.T) {
	route := track.Nodes{geom.V(0, 0), geom.V(100, 0), geom.V(100, 100)}
	k := car.NewKinematic(car.DefaultParams(), geom.V(50, 10), 0, 1)
	st := NewState(nil)

	require.NoError(t, NewSampler(route).Sample(k, st))

	assert.InDelta(t, HeadingErrorTo(geom.V(50, 10), 0, geom.V(100, 0)), st.Heading.Error, 1e-9)
	assert.InDelta(t, 10, st.Lateral.Error, 1e-9)
	assert.InDelta(t, math.Hypot(50, 10), st.Distance.Error, 1e-9)
}

func TestSampler_EmptyRoute(t *testing.T) {
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 0)
	err := NewSampler(track.Nodes{}).Sample(k, NewState(nil))
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestSampler_ToleranceFollowsTargetNode(t *testing.T) {
	route := track.Nodes{geom.V(0, 0), geom.V(100, 0), geom.V(100, 100)}
	k := car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 0)
	st := NewState(rand.New(rand.NewSource(1)))
	s := NewSampler(route)

	require.NoError(t, s.Sample(k, st))
	first, _ := st.AimTolerance()
	require.NoError(t, s.Sample(k, st))
	again, _ := st.AimTolerance()
	assert.Equal(t, first, again, "tolerance changed without a node transition")

	k.Advance(route, 1)
	require.Equal(t, 1, k.CurrentTargetNodeIndex())
	require.NoError(t, s.Sample(k, st))
	next, prev := st.AimTolerance()
	assert.NotEqual(t, first, next, "tolerance not regenerated on node transition")
	assert.Equal(t, first, prev, "previous node should keep its tolerance")
}
