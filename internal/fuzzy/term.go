package fuzzy

import (
	"fmt"
	"math"
)

const (
	ShapeTriangle  = "triangle"
	ShapeTrapezoid = "trapezoid"
	ShapeGaussian  = "gaussian"
)

// Term is a named membership function of a linguistic variable.
//
// Points are a,b,c for triangles, a,b,c,d for trapezoids and mean,sigma
// for gaussians.
type Term struct {
	Name   string    `yaml:"name"`
	Shape  string    `yaml:"shape"`
	Points []float64 `yaml:"points"`
}

func (t Term) validate() error {
	p := t.Points
	switch t.Shape {
	case ShapeTriangle:
		if len(p) != 3 {
			return fmt.Errorf("term %q: triangle needs 3 points, got %d", t.Name, len(p))
		}
		if !(p[0] <= p[1] && p[1] <= p[2]) {
			return fmt.Errorf("term %q: triangle points must be ordered", t.Name)
		}
	case ShapeTrapezoid:
		if len(p) != 4 {
			return fmt.Errorf("term %q: trapezoid needs 4 points, got %d", t.Name, len(p))
		}
		if !(p[0] <= p[1] && p[1] <= p[2] && p[2] <= p[3]) {
			return fmt.Errorf("term %q: trapezoid points must be ordered", t.Name)
		}
	case ShapeGaussian:
		if len(p) != 2 {
			return fmt.Errorf("term %q: gaussian needs mean and sigma", t.Name)
		}
		if p[1] <= 0 {
			return fmt.Errorf("term %q: gaussian sigma must be positive", t.Name)
		}
	default:
		return fmt.Errorf("term %q: unknown shape %q", t.Name, t.Shape)
	}
	return nil
}

// Membership returns the degree of x in the term, in [0, 1].
func (t Term) Membership(x float64) float64 {
	p := t.Points
	switch t.Shape {
	case ShapeTriangle:
		return trapezoid(x, p[0], p[1], p[1], p[2])
	case ShapeTrapezoid:
		return trapezoid(x, p[0], p[1], p[2], p[3])
	case ShapeGaussian:
		d := x - p[0]
		return math.Exp(-d * d / (2 * p[1] * p[1]))
	}
	return 0
}

func trapezoid(x, a, b, c, d float64) float64 {
	switch {
	case x >= b && x <= c:
		return 1
	case x < a || x > d:
		return 0
	case x < b:
		return (x - a) / (b - a)
	default:
		return (d - x) / (d - c)
	}
}
