package race

import (
	"errors"
	"fmt"
)

var (
	ErrNoEntries    = errors.New("race: no entries")
	ErrNotSteppable = errors.New("race: controller car cannot be simulated")
)

// TickError reports which car failed on which tick.
type TickError struct {
	Tick    int
	Car     int
	Name    string
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d, car %d (%s): %v", e.Tick, e.Car, e.Name, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
