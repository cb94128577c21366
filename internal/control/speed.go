package control

import (
	"math"

	"github.com/san-kum/racepilot/internal/track"
)

// DefaultScale converts the table limits into car speed units.
const DefaultScale = 0.9

// Speed limits of the decision table, before scaling. Found by
// experiment on the stock tracks.
const (
	BrakeSoftLimit = 14.0
	BrakeHardLimit = 9.5
	Corner90Limit  = 7.0
	Corner45Limit  = 8.3
	MinimumSpeed   = 3.6
	AccelerateStep = 1.0
)

type SpeedAction int

const (
	Hold SpeedAction = iota
	Accelerate
	Brake
)

func (a SpeedAction) String() string {
	switch a {
	case Accelerate:
		return "accelerate"
	case Brake:
		return "brake"
	default:
		return "hold"
	}
}

// Classify interprets a speed command against the current speed:
// negative brakes, above current speed accelerates, anything else holds.
func Classify(command, speed float64) SpeedAction {
	switch {
	case command < 0:
		return Brake
	case command > math.Abs(speed):
		return Accelerate
	default:
		return Hold
	}
}

// SpeedPolicy is the table-driven brake/accelerate decision.
type SpeedPolicy struct {
	Scale float64
}

func NewSpeedPolicy(scale float64) SpeedPolicy {
	if scale <= 0 {
		scale = DefaultScale
	}
	return SpeedPolicy{Scale: scale}
}

// Command returns the prescribed speed for the tile under the car.
// See Classify for how the value is read.
func (p SpeedPolicy) Command(speed float64, tile track.Tile, done bool) float64 {
	if done {
		return 0
	}

	abs := math.Abs(speed)
	s := p.Scale
	command := abs + AccelerateStep

	if tile.Hint == track.HintBrakeSoft && abs > BrakeSoftLimit*s {
		command = -1
	}
	if tile.Hint == track.HintBrakeHard && abs > BrakeHardLimit*s {
		command = -1
	}
	if tile.Type == track.TileCorner90 && abs > Corner90Limit*s {
		command = hold(command, abs)
	}
	if tile.Type.IsCorner45() && abs > Corner45Limit*s {
		command = hold(command, abs)
	}
	if abs < MinimumSpeed*s {
		command = abs + AccelerateStep
	}
	return command
}

func (p SpeedPolicy) Decide(speed float64, tile track.Tile, done bool) SpeedAction {
	return Classify(p.Command(speed, tile, done), speed)
}

// hold keeps a brake decision and otherwise stops accelerating.
func hold(command, speed float64) float64 {
	if command < 0 {
		return command
	}
	return speed
}
