package control

import (
	"math"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
)

// HeadingErrorTo is the signed angle in degrees from the car heading to
// the target, normalized to (-180, 180]. Positive means the target is
// counter-clockwise (to the left in a y-up frame).
func HeadingErrorTo(carLocation geom.Vec2, carHeading float64, target geom.Vec2) float64 {
	d := target.Sub(carLocation)
	angle := RadToDeg(math.Atan2(d.Y, d.X))
	return NormalizeAngle(angle - carHeading)
}

// LateralErrorTo is the distance from the car to the infinite line
// through prev and cur. A degenerate segment yields the distance to prev.
func LateralErrorTo(prev, cur, carLocation geom.Vec2) float64 {
	w := carLocation.Sub(prev)
	u, ok := cur.Sub(prev).Normalized()
	if !ok {
		return w.Length()
	}
	return math.Abs(u.Cross(w))
}

// Sampler measures route-following errors for one car.
type Sampler struct {
	Route track.Route
}

func NewSampler(route track.Route) Sampler {
	return Sampler{Route: route}
}

// Sample syncs the aim tolerance with the car's target node and then
// updates the heading, lateral and distance trackers of st.
func (s Sampler) Sample(c car.Car, st *State) error {
	if s.Route == nil || s.Route.NumNodes() == 0 {
		return ErrNoRoute
	}

	index := c.CurrentTargetNodeIndex()
	st.Sync(index)
	tolCur, tolPrev := st.AimTolerance()

	cur := s.Route.Get(index).Location.Sub(tolCur)
	prev := s.Route.Get(index - 1).Location.Sub(tolPrev)
	loc := c.Location()

	st.Heading.Update(HeadingErrorTo(loc, c.HeadingDegrees(), cur))
	st.Lateral.Update(LateralErrorTo(prev, cur, loc))
	st.Distance.Update(cur.Sub(loc).Length())
	return nil
}
