package control

import (
	"math/rand"

	"github.com/san-kum/racepilot/internal/geom"
	"github.com/san-kum/racepilot/internal/track"
)

// ToleranceFraction of a tile width bounds the random aim offset.
const ToleranceFraction = 1.0 / 8

// State is the telemetry shared by all controller strategies.
type State struct {
	Heading  ErrorTracker
	Lateral  ErrorTracker
	Distance ErrorTracker

	// Last issued commands. Reported to listeners and scripts only, never
	// fed back into the control law.
	SteerControl float64
	SpeedControl float64

	rng       *rand.Rand
	spread    float64
	lastIndex int
	tolCur    geom.Vec2
	tolPrev   geom.Vec2
}

// NewState creates the control state. A nil rng disables the random aim
// tolerance, which gives deterministic, human-equivalent aiming.
func NewState(rng *rand.Rand) *State {
	s := &State{
		rng:    rng,
		spread: track.TileWidth * ToleranceFraction,
	}
	s.tolCur = s.generate()
	s.tolPrev = s.generate()
	return s
}

func (s *State) Randomized() bool { return s.rng != nil }

// AimTolerance returns the offsets applied to the current and previous
// target nodes.
func (s *State) AimTolerance() (cur, prev geom.Vec2) {
	return s.tolCur, s.tolPrev
}

// Sync tracks the car's target node index. Tolerances are regenerated
// only when the index changes, so they stay fixed along a route leg.
func (s *State) Sync(index int) bool {
	if index == s.lastIndex {
		return false
	}
	s.lastIndex = index
	s.tolPrev = s.tolCur
	s.tolCur = s.generate()
	return true
}

func (s *State) RecordControl(steer, speed float64) {
	s.SteerControl = steer
	s.SpeedControl = speed
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Heading:      s.Heading,
		Lateral:      s.Lateral,
		Distance:     s.Distance,
		SteerControl: s.SteerControl,
		SpeedControl: s.SpeedControl,
	}
}

func (s *State) generate() geom.Vec2 {
	if s.rng == nil {
		return geom.Vec2{}
	}
	return geom.RandomVector(s.rng).Scale(s.spread)
}

// Snapshot is the serializable part of State handed to external code.
type Snapshot struct {
	Heading      ErrorTracker `json:"heading" yaml:"heading"`
	Lateral      ErrorTracker `json:"lateral" yaml:"lateral"`
	Distance     ErrorTracker `json:"distance" yaml:"distance"`
	SteerControl float64      `json:"steerControl" yaml:"steerControl"`
	SpeedControl float64      `json:"speedControl" yaml:"speedControl"`
}
