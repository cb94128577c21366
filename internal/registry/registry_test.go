package registry

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"plugin"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/geom"
)

func newCar() *car.Kinematic {
	return car.NewKinematic(car.DefaultParams(), geom.V(0, 0), 0, 1)
}

var _ = Describe("Factory", func() {
	var f *Factory

	BeforeEach(func() {
		f = NewFactory()
	})

	It("creates registered controllers bound to the car", func() {
		f.Register("user", func(c car.Car) (control.Controller, error) {
			return control.NewUser(c, control.NewKeyState(), 1), nil
		})
		k := newCar()

		ctrl, err := f.Create("user", k)
		Expect(err).NotTo(HaveOccurred())
		Expect(ctrl.Car()).To(BeIdenticalTo(k))
	})

	It("reports unknown names", func() {
		_, err := f.Create("nope", newCar())
		Expect(err).To(MatchError(ErrNotFound))
		Expect(err.Error()).To(ContainSubstring("nope"))
	})

	It("lets the last registration win", func() {
		boom := errors.New("boom")
		f.Register("x", func(c car.Car) (control.Controller, error) { return nil, boom })
		f.Register("x", func(c car.Car) (control.Controller, error) {
			return control.NewReactive(c, control.DefaultGains(), control.DefaultScale), nil
		})

		ctrl, err := f.Create("x", newCar())
		Expect(err).NotTo(HaveOccurred())
		Expect(ctrl).To(BeAssignableToTypeOf(&control.Reactive{}))
	})

	It("wraps constructor failures", func() {
		boom := errors.New("boom")
		f.Register("x", func(c car.Car) (control.Controller, error) { return nil, boom })

		_, err := f.Create("x", newCar())
		Expect(err).To(MatchError(boom))
	})

	It("lists and clears names", func() {
		Builtins(f, Options{Gains: control.DefaultGains(), Scale: control.DefaultScale})
		Expect(f.Names()).To(Equal([]string{"fuzzy", "pid", "reactive", "script", "user", "user1", "user2", "userpid"}))

		f.Clear()
		Expect(f.Names()).To(BeEmpty())
		Expect(f.Has("pid")).To(BeFalse())
	})
})

var _ = Describe("Builtins", func() {
	var f *Factory

	BeforeEach(func() {
		f = NewFactory()
	})

	It("gives userpid a deterministic aim and pid a random one", func() {
		Builtins(f, Options{Gains: control.DefaultGains(), Scale: control.DefaultScale, Random: true, Seed: 7})

		ctrl, err := f.Create("userpid", newCar())
		Expect(err).NotTo(HaveOccurred())
		Expect(ctrl.(*control.Loop).State().Randomized()).To(BeFalse())

		ctrl, err = f.Create("pid", newCar())
		Expect(err).NotTo(HaveOccurred())
		Expect(ctrl.(*control.Loop).State().Randomized()).To(BeTrue())
	})

	It("routes user2 to the second player's keys", func() {
		keys := control.NewKeyState()
		keys.Set(2, control.KeyUp, true)
		Builtins(f, Options{Input: keys})

		k1, k2 := newCar(), newCar()
		c1, err := f.Create("user1", k1)
		Expect(err).NotTo(HaveOccurred())
		c2, err := f.Create("user2", k2)
		Expect(err).NotTo(HaveOccurred())

		Expect(c1.Update(false)).To(Succeed())
		Expect(c2.Update(false)).To(Succeed())
		Expect(k1.Statuses().Accelerate).To(BeFalse())
		Expect(k2.Statuses().Accelerate).To(BeTrue())
	})

	It("needs a path for fuzzy and script", func() {
		Builtins(f, Options{})

		_, err := f.Create("fuzzy", newCar())
		Expect(err).To(MatchError(ErrNoPath))
		_, err = f.Create("script", newCar())
		Expect(err).To(MatchError(ErrNoPath))
	})

	It("loads the script on creation", func() {
		dir := GinkgoT().TempDir()
		lua := filepath.Join(dir, "c.lua")
		Expect(os.WriteFile(lua, []byte("function Make() return {} end\n"), 0o644)).To(Succeed())

		Builtins(f, Options{
			Gains:  control.DefaultGains(),
			Scale:  control.DefaultScale,
			Path:   lua,
			Method: "Make",
		})

		ctrl, err := f.Create("script", newCar())
		Expect(err).NotTo(HaveOccurred())
		closer, ok := ctrl.(io.Closer)
		Expect(ok).To(BeTrue())
		Expect(closer.Close()).To(Succeed())

		_, err = f.Create("fuzzy", newCar())
		Expect(err).To(HaveOccurred())
	})
})

type fakePlugin map[string]plugin.Symbol

func (p fakePlugin) Lookup(name string) (plugin.Symbol, error) {
	sym, ok := p[name]
	if !ok {
		return nil, errors.New("symbol not found")
	}
	return sym, nil
}

var _ = Describe("Plugins", func() {
	var (
		f      *Factory
		logger *log.Logger
	)

	BeforeEach(func() {
		f = NewFactory()
		logger = log.New(io.Discard)
	})

	It("calls Register with the plugin arguments", func() {
		var got []string
		register := func(f *Factory, args []string) error {
			got = args
			f.Register("plugged", func(c car.Car) (control.Controller, error) {
				return control.NewPID(c, nil, control.DefaultGains(), control.DefaultScale), nil
			})
			return nil
		}

		Expect(registerPlugin(fakePlugin{PluginSymbol: register}, f, []string{"a", "b"})).To(Succeed())
		Expect(got).To(Equal([]string{"a", "b"}))
		Expect(f.Has("plugged")).To(BeTrue())
	})

	It("accepts a pointer to the register function", func() {
		var register RegisterFunc = func(f *Factory, args []string) error { return nil }
		Expect(registerPlugin(fakePlugin{PluginSymbol: &register}, f, nil)).To(Succeed())
	})

	It("rejects plugins without a usable symbol", func() {
		Expect(registerPlugin(fakePlugin{}, f, nil)).To(MatchError(ErrBadPlugin))
		Expect(registerPlugin(fakePlugin{PluginSymbol: 42}, f, nil)).To(MatchError(ErrBadPlugin))
	})

	It("propagates Register failures", func() {
		boom := errors.New("boom")
		register := func(f *Factory, args []string) error { return boom }
		Expect(registerPlugin(fakePlugin{PluginSymbol: register}, f, nil)).To(MatchError(boom))
	})

	It("skips files that are not plugins", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "junk.so"), []byte("not elf"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)).To(Succeed())

		n, err := LoadPlugins(dir, f, nil, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))
	})

	It("fails on a missing directory", func() {
		_, err := LoadPlugins(filepath.Join(GinkgoT().TempDir(), "none"), f, nil, logger)
		Expect(err).To(HaveOccurred())
	})
})
