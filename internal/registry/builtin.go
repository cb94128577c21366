package registry

import (
	"math/rand"
	"sync"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/fuzzy"
	"github.com/san-kum/racepilot/internal/script"
)

// Options configures the built-in controllers.
type Options struct {
	Input control.InputSource
	Gains control.Gains
	Scale float64

	// Random enables aim tolerances for pid cars, drawn from Seed.
	Random bool
	Seed   int64

	// Path is the definition file of fuzzy controllers or the Lua file of
	// script controllers; Method names the script's creation function.
	Path   string
	Method string
}

// Builtins registers user, user1, user2, userpid, pid, reactive, fuzzy
// and script. Fuzzy and script controllers load opts.Path on creation.
func Builtins(f *Factory, opts Options) {
	if opts.Input == nil {
		opts.Input = control.NewKeyState()
	}
	rngs := newRandSource(opts.Seed)

	user := func(player int) Constructor {
		return func(c car.Car) (control.Controller, error) {
			return control.NewUser(c, opts.Input, player), nil
		}
	}
	f.Register("user", user(1))
	f.Register("user1", user(1))
	f.Register("user2", user(2))

	f.Register("userpid", func(c car.Car) (control.Controller, error) {
		return control.NewPID(c, nil, opts.Gains, opts.Scale), nil
	})
	f.Register("pid", func(c car.Car) (control.Controller, error) {
		var rng *rand.Rand
		if opts.Random {
			rng = rngs.next()
		}
		return control.NewPID(c, rng, opts.Gains, opts.Scale), nil
	})
	f.Register("reactive", func(c car.Car) (control.Controller, error) {
		return control.NewReactive(c, opts.Gains, opts.Scale), nil
	})

	f.Register("fuzzy", func(c car.Car) (control.Controller, error) {
		if opts.Path == "" {
			return nil, ErrNoPath
		}
		e, err := fuzzy.Load(opts.Path)
		if err != nil {
			return nil, err
		}
		return fuzzy.NewController(c, e, opts.Gains, opts.Scale)
	})
	f.Register("script", func(c car.Car) (control.Controller, error) {
		if opts.Path == "" {
			return nil, ErrNoPath
		}
		rt, err := script.Load(opts.Path, opts.Method)
		if err != nil {
			return nil, err
		}
		ctrl, err := script.NewController(c, rt, opts.Gains, opts.Scale)
		if err != nil {
			rt.Close()
			return nil, err
		}
		return ctrl, nil
	})
}

// randSource hands out independent generators derived from one seed so
// cars do not share aim tolerances.
type randSource struct {
	mu   sync.Mutex
	root *rand.Rand
}

func newRandSource(seed int64) *randSource {
	return &randSource{root: rand.New(rand.NewSource(seed))}
}

func (s *randSource) next() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.root.Int63()))
}
