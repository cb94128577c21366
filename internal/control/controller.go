package control

import (
	"math"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/track"
)

// DefaultMaxSteer bounds the steering command handed to the car.
const DefaultMaxSteer = 1.5

// Controller drives one car. Update is called once per simulation tick
// and is never called concurrently for the same car.
type Controller interface {
	Update(done bool) error
	SetTrack(layout track.Layout)
	Car() car.Car
}

// Listener receives the raw commands of every tick, after they are
// computed and before they are clamped and applied.
type Listener interface {
	Report(c car.Car, layout track.Layout, steer, speed float64, done bool) error
}

// Reporter is implemented by controllers that accept listeners.
type Reporter interface {
	AddListener(l Listener)
}

// Base holds what every controller shares: the car, the track and the
// registered listeners.
type Base struct {
	car       car.Car
	layout    track.Layout
	listeners []Listener
}

func NewBase(c car.Car) Base {
	return Base{car: c}
}

func (b *Base) SetTrack(layout track.Layout) { b.layout = layout }
func (b *Base) Car() car.Car                 { return b.car }

func (b *Base) AddListener(l Listener) {
	b.listeners = append(b.listeners, l)
}

func (b *Base) report(steer, speed float64, done bool) error {
	for _, l := range b.listeners {
		if err := l.Report(b.car, b.layout, steer, speed, done); err != nil {
			return err
		}
	}
	return nil
}

// Actuate applies a steer command clamped to maxSteer and interprets the
// speed command with Classify.
func Actuate(c car.Car, steer, speed, maxSteer float64) {
	c.ApplySteer(clamp(steer, -maxSteer, maxSteer))

	switch Classify(speed, c.Speed()) {
	case Brake:
		c.ApplyBrake()
	case Accelerate:
		c.ApplyAccelerate()
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(v, hi))
}
