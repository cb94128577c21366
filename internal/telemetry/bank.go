package telemetry

import (
	"fmt"
	"sync"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/track"
)

// Bank holds a listener set per car. Sets may change between ticks; the
// forwarder returned by For reads the current set on every report.
type Bank struct {
	mu   sync.RWMutex
	sets [][]control.Listener
}

func NewBank(cars int) *Bank {
	b := &Bank{}
	b.Resize(cars)
	return b
}

// Resize sets the number of cars. Sets of removed cars are dropped.
func (b *Bank) Resize(cars int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cars < 0 {
		cars = 0
	}
	sets := make([][]control.Listener, cars)
	copy(sets, b.sets)
	b.sets = sets
}

func (b *Bank) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sets)
}

func (b *Bank) Add(carIndex int, l control.Listener) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(carIndex); err != nil {
		return err
	}
	b.sets[carIndex] = append(b.sets[carIndex], l)
	return nil
}

// Remove drops every registration of l for the car.
func (b *Bank) Remove(carIndex int, l control.Listener) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(carIndex); err != nil {
		return err
	}
	kept := b.sets[carIndex][:0]
	for _, x := range b.sets[carIndex] {
		if x != l {
			kept = append(kept, x)
		}
	}
	b.sets[carIndex] = kept
	return nil
}

func (b *Bank) Clear(carIndex int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(carIndex); err != nil {
		return err
	}
	b.sets[carIndex] = nil
	return nil
}

func (b *Bank) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.sets {
		b.sets[i] = nil
	}
}

// Listeners returns a copy of the car's listener set.
func (b *Bank) Listeners(carIndex int) ([]control.Listener, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.check(carIndex); err != nil {
		return nil, err
	}
	return append([]control.Listener(nil), b.sets[carIndex]...), nil
}

// For returns a listener that fans reports out to the car's current set.
func (b *Bank) For(carIndex int) control.Listener {
	return forwarder{bank: b, car: carIndex}
}

func (b *Bank) check(carIndex int) error {
	if carIndex < 0 || carIndex >= len(b.sets) {
		return fmt.Errorf("%w: %d of %d", ErrNoSuchCar, carIndex, len(b.sets))
	}
	return nil
}

type forwarder struct {
	bank *Bank
	car  int
}

func (f forwarder) Report(c car.Car, layout track.Layout, steer, speed float64, done bool) error {
	ls, err := f.bank.Listeners(f.car)
	if err != nil {
		return err
	}
	for _, l := range ls {
		if err := l.Report(c, layout, steer, speed, done); err != nil {
			return err
		}
	}
	return nil
}
