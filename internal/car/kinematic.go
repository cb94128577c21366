package car

import (
	"math"

	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
)

const (
	DefaultAcceleration  = 6.0
	DefaultBraking       = 14.0
	DefaultDrag          = 0.05
	DefaultMaxSpeed      = 30.0
	DefaultTurnRate      = 180.0
	DefaultUnitsPerSpeed = 20.0
)

type Params struct {
	Acceleration  float64 `yaml:"acceleration"`
	Braking       float64 `yaml:"braking"`
	Drag          float64 `yaml:"drag"`
	MaxSpeed      float64 `yaml:"max_speed"`
	TurnRate      float64 `yaml:"turn_rate"`
	UnitsPerSpeed float64 `yaml:"units_per_speed"`
}

func DefaultParams() Params {
	return Params{
		Acceleration:  DefaultAcceleration,
		Braking:       DefaultBraking,
		Drag:          DefaultDrag,
		MaxSpeed:      DefaultMaxSpeed,
		TurnRate:      DefaultTurnRate,
		UnitsPerSpeed: DefaultUnitsPerSpeed,
	}
}

// Kinematic is a point-mass car. It integrates only what closed-loop
// control needs: speed along the heading and a steer-driven yaw rate.
type Kinematic struct {
	params   Params
	pos      geom.Vec2
	heading  float64
	speed    float64
	target   int
	laps     int
	distance float64
	status   Statuses
}

func NewKinematic(p Params, pos geom.Vec2, heading float64, target int) *Kinematic {
	return &Kinematic{
		params:  p,
		pos:     pos,
		heading: heading,
		target:  target,
	}
}

func (k *Kinematic) Location() geom.Vec2         { return k.pos }
func (k *Kinematic) HeadingDegrees() float64     { return k.heading }
func (k *Kinematic) Speed() float64              { return k.speed }
func (k *Kinematic) CurrentTargetNodeIndex() int { return k.target }
func (k *Kinematic) Laps() int                   { return k.laps }
func (k *Kinematic) Distance() float64           { return k.distance }
func (k *Kinematic) Statuses() Statuses          { return k.status }

func (k *Kinematic) ApplySteer(magnitude float64) {
	switch {
	case magnitude > 0:
		k.status.Steer = SteerRight
	case magnitude < 0:
		k.status.Steer = SteerLeft
	default:
		k.status.Steer = SteerNeutral
	}
	k.status.Magnitude = math.Abs(magnitude)
}

func (k *Kinematic) ApplyAccelerate() { k.status.Accelerate = true }
func (k *Kinematic) ApplyBrake()      { k.status.Brake = true }

func (k *Kinematic) ClearStatuses() { k.status = Statuses{} }

// Step advances the car by dt seconds using the current statuses.
func (k *Kinematic) Step(dt float64) {
	p := k.params

	if k.status.Brake {
		k.speed -= p.Braking * dt
	} else if k.status.Accelerate {
		k.speed += p.Acceleration * dt
	}
	k.speed -= k.speed * p.Drag * dt
	k.speed = math.Max(0, math.Min(k.speed, p.MaxSpeed))

	turn := k.status.Magnitude * p.TurnRate * dt
	switch k.status.Steer {
	case SteerRight:
		k.heading -= turn
	case SteerLeft:
		k.heading += turn
	}
	k.heading = math.Mod(k.heading, 360)

	step := k.speed * p.UnitsPerSpeed * dt
	k.pos = k.pos.Add(geom.Heading(k.heading).Scale(step))
	k.distance += step
}

// Advance moves the target cursor when the car is within radius of the
// current node. Wrapping past the last node completes a lap. It reports
// whether the cursor moved.
func (k *Kinematic) Advance(route track.Route, radius float64) bool {
	n := route.NumNodes()
	if n == 0 {
		return false
	}
	node := route.Get(k.target)
	if node.Location.Sub(k.pos).Length() > radius {
		return false
	}
	next := (node.Index + 1) % n
	if next == 0 {
		k.laps++
	}
	k.target = next
	return true
}
