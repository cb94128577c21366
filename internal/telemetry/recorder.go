package telemetry

import (
	"sync"

	"github.com/samber/lo"
	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/track"
)

// Sample is one reported tick of one car.
type Sample struct {
	Tick    int     `json:"tick"`
	Car     int     `json:"car"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
	Steer   float64 `json:"steer"`
	Command float64 `json:"command"`
	Done    bool    `json:"done"`
}

// Recorder is a listener that keeps every report of one car and feeds
// its metrics. The tick is the number of reports received before.
type Recorder struct {
	mu      sync.Mutex
	car     int
	samples []Sample
	metrics []Metric
}

func NewRecorder(carIndex int, metrics ...Metric) *Recorder {
	return &Recorder{car: carIndex, metrics: metrics}
}

func (r *Recorder) Report(c car.Car, layout track.Layout, steer, speed float64, done bool) error {
	loc := c.Location()
	s := Sample{
		Car:     r.car,
		X:       loc.X,
		Y:       loc.Y,
		Heading: c.HeadingDegrees(),
		Speed:   c.Speed(),
		Steer:   steer,
		Command: speed,
		Done:    done,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s.Tick = len(r.samples)
	r.samples = append(r.samples, s)
	for _, m := range r.metrics {
		m.Observe(s)
	}
	return nil
}

func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

// Racing returns the samples taken before the car completed the race.
func (r *Recorder) Racing() []Sample {
	return lo.Filter(r.Samples(), func(s Sample, _ int) bool { return !s.Done })
}

// Metrics returns the current metric values by name.
func (r *Recorder) Metrics() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
	for _, m := range r.metrics {
		m.Reset()
	}
}

var _ control.Listener = (*Recorder)(nil)
