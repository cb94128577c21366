package telemetry

import "math"

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// DefaultMetrics returns fresh steer_effort, brake_ratio and
// steer_saturation metrics.
func DefaultMetrics(maxSteer float64) []Metric {
	return []Metric{
		NewSteerEffort(),
		NewBrakeRatio(),
		NewSaturation(maxSteer),
	}
}

// SteerEffort is the mean absolute steering command.
type SteerEffort struct {
	name    string
	sum     float64
	samples int
}

func NewSteerEffort() *SteerEffort {
	return &SteerEffort{
		name: "steer_effort",
	}
}

func (m *SteerEffort) Name() string {
	return m.name
}

func (m *SteerEffort) Observe(s Sample) {
	m.sum += math.Abs(s.Steer)
	m.samples++
}

func (m *SteerEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *SteerEffort) Reset() {
	m.sum = 0
	m.samples = 0
}

// BrakeRatio is the share of racing ticks with a brake command.
type BrakeRatio struct {
	name    string
	brakes  int
	samples int
}

func NewBrakeRatio() *BrakeRatio {
	return &BrakeRatio{
		name: "brake_ratio",
	}
}

func (m *BrakeRatio) Name() string {
	return m.name
}

func (m *BrakeRatio) Observe(s Sample) {
	if s.Done {
		return
	}
	m.samples++
	if s.Command < 0 {
		m.brakes++
	}
}

func (m *BrakeRatio) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.brakes) / float64(m.samples)
}

func (m *BrakeRatio) Reset() {
	m.brakes = 0
	m.samples = 0
}

// Saturation is the share of ticks whose raw steer exceeded the clamp.
type Saturation struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewSaturation(threshold float64) *Saturation {
	return &Saturation{
		name:      "steer_saturation",
		threshold: threshold,
	}
}

func (m *Saturation) Name() string {
	return m.name
}

func (m *Saturation) Observe(s Sample) {
	m.samples++
	if math.Abs(s.Steer) > m.threshold {
		m.violations++
	}
}

func (m *Saturation) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.violations) / float64(m.samples)
}

func (m *Saturation) Reset() {
	m.violations = 0
	m.samples = 0
}
