package car

import "github.com/san-kum/racepilot/internal/geom"

// Car is the kinematic state and actuator surface a controller drives.
//
// Positive steer magnitudes turn right (clockwise), negative turn left.
// Actuator statuses hold until ClearStatuses is called.
type Car interface {
	Location() geom.Vec2
	HeadingDegrees() float64
	Speed() float64
	CurrentTargetNodeIndex() int

	ApplySteer(magnitude float64)
	ApplyAccelerate()
	ApplyBrake()
	ClearStatuses()
}

type Steer int

const (
	SteerNeutral Steer = iota
	SteerLeft
	SteerRight
)

func (s Steer) String() string {
	switch s {
	case SteerLeft:
		return "left"
	case SteerRight:
		return "right"
	default:
		return "neutral"
	}
}

// Statuses are the actuator inputs for one tick.
type Statuses struct {
	Steer      Steer
	Magnitude  float64
	Accelerate bool
	Brake      bool
}
