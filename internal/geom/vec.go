package geom

import (
	"math"
	"math/rand"
)

// Vec2 is a point or direction in track coordinates (y up).
type Vec2 struct {
	X float64
	Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Normalized returns the unit vector and false when v has zero length.
func (v Vec2) Normalized() (Vec2, bool) {
	l := v.Length()
	if l == 0 {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// Heading builds a unit vector from an angle in degrees.
func Heading(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	return Vec2{math.Cos(rad), math.Sin(rad)}
}

// RandomVector returns a vector with both components uniform in [-1, 1).
func RandomVector(rng *rand.Rand) Vec2 {
	return Vec2{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
}
