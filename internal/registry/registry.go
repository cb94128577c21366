package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
)

var (
	ErrNotFound  = errors.New("unknown controller")
	ErrBadPlugin = errors.New("invalid controller plugin")
	ErrNoPath    = errors.New("controller path not set")
)

// Constructor builds a controller bound to one car.
type Constructor func(c car.Car) (control.Controller, error)

// Factory maps controller names to constructors. Registering an existing
// name replaces it.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

func (f *Factory) Register(name string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[name] = ctor
}

func (f *Factory) Create(name string, c car.Car) (control.Controller, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	ctrl, err := ctor(c)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return ctrl, nil
}

func (f *Factory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[name]
	return ok
}

func (f *Factory) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors = make(map[string]Constructor)
}

// Names returns the registered names in sorted order.
func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := lo.Keys(f.ctors)
	sort.Strings(names)
	return names
}
