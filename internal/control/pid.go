package control

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/racepilot/internal/car"
)

// Gains are the tuning constants of the built-in controllers.
type Gains struct {
	K1          float64 `yaml:"k1"`
	K2          float64 `yaml:"k2"`
	Kp          float64 `yaml:"kp"`
	Kd          float64 `yaml:"kd"`
	Deadband    float64 `yaml:"deadband"`
	MaxSteer    float64 `yaml:"max_steer"`
	MaxReactive float64 `yaml:"max_reactive"`
}

func DefaultGains() Gains {
	return Gains{
		K1:          0.025,
		K2:          0.025,
		Kp:          0.01,
		Kd:          0.01,
		Deadband:    3.0,
		MaxSteer:    DefaultMaxSteer,
		MaxReactive: 1.0,
	}
}

// PIDLaw steers against the heading error and its difference and takes
// speed from the SpeedPolicy table.
type PIDLaw struct {
	K1     float64
	K2     float64
	Policy SpeedPolicy
}

func NewPIDLaw(k1, k2, scale float64) *PIDLaw {
	return &PIDLaw{K1: k1, K2: k2, Policy: NewSpeedPolicy(scale)}
}

func (p *PIDLaw) SteerControl(obs Observation) (float64, error) {
	h := obs.State.Heading
	return -(h.Error*p.K1 + h.DeltaError*p.K2), nil
}

func (p *PIDLaw) SpeedControl(obs Observation) (float64, error) {
	return p.Policy.Command(obs.Car.Speed(), obs.Tile, obs.Done), nil
}

// GetParams returns tunable parameters for live adjustment
func (p *PIDLaw) GetParams() map[string]float64 {
	return map[string]float64{
		"k1":    p.K1,
		"k2":    p.K2,
		"scale": p.Policy.Scale,
	}
}

// SetParam adjusts a PID parameter
func (p *PIDLaw) SetParam(name string, value float64) error {
	switch name {
	case "k1":
		p.K1 = value
	case "k2":
		p.K2 = value
	case "scale":
		if value <= 0 {
			return fmt.Errorf("scale must be positive, got %f", value)
		}
		p.Policy.Scale = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// NewPID builds the PID-style controller. With a nil rng the aim
// tolerance is disabled.
func NewPID(c car.Car, rng *rand.Rand, g Gains, scale float64) *Loop {
	l := NewLoop(c, NewState(rng), NewPIDLaw(g.K1, g.K2, scale))
	l.SetMaxSteer(g.MaxSteer)
	return l
}
