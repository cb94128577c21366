package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/config"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/race"
	"github.com/san-kum/racepilot/internal/registry"
	"github.com/san-kum/racepilot/internal/script"
	"github.com/san-kum/racepilot/internal/storage"
	"github.com/san-kum/racepilot/internal/telemetry"
	"github.com/san-kum/racepilot/internal/track"
	"github.com/spf13/cobra"
)

// gridSpacing separates cars on the starting grid.
const gridSpacing = track.TileWidth / 4

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	// config file overrides preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// flags override config
	flags := cmd.Flags()
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("controller-path") {
		cfg.ControllerPath = controllerPath
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("listener") {
		cfg.Listener = listener
	}
	if flags.Changed("listener-method") {
		cfg.ListenerMethod = listenerMethod
	}
	if flags.Changed("plugin-dir") {
		cfg.PluginDir = pluginDir
	}
	if flags.Changed("cars") {
		cfg.Cars = cars
	}
	if flags.Changed("laps") {
		cfg.Laps = laps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("max-ticks") {
		cfg.MaxTicks = maxTicks
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("scale") {
		cfg.Speed.Scale = scale
	}
	if flags.Changed("can") {
		cfg.CAN.Iface = canIface
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFactory(cfg *config.Config, args []string, logger *log.Logger) (*registry.Factory, error) {
	f := registry.NewFactory()
	registry.Builtins(f, registry.Options{
		Gains:  cfg.Gains,
		Scale:  cfg.Speed.Scale,
		Random: cfg.Random,
		Seed:   cfg.Seed,
		Path:   cfg.ControllerPath,
		Method: cfg.Method,
	})

	if cfg.PluginDir != "" {
		pluginArgs := append(append([]string{}, cfg.PluginArgs...), args...)
		n, err := registry.LoadPlugins(cfg.PluginDir, f, pluginArgs, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("plugins loaded", "count", n, "dir", cfg.PluginDir)
	}
	return f, nil
}

type carRun struct {
	name     string
	recorder *telemetry.Recorder
}

func runRace(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	layout, err := cfg.Track.Build()
	if err != nil {
		return err
	}

	factory, err := newFactory(cfg, args, logger)
	if err != nil {
		return err
	}

	slots, err := race.Grid(layout.Route(), cfg.Cars, gridSpacing)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := race.New(layout, logger)
	defer func() {
		if err := runner.Close(); err != nil {
			logger.Warn("failed to release controllers", "err", err)
		}
	}()
	bank := telemetry.NewBank(cfg.Cars)
	runs := make([]carRun, cfg.Cars)

	for i, slot := range slots {
		name := fmt.Sprintf("car%d", i)
		k := car.NewKinematic(cfg.Car, slot.Location, slot.Heading, slot.Target)

		ctrl, err := factory.Create(cfg.Controller, k)
		if err != nil {
			return err
		}
		if err := runner.Add(name, ctrl); err != nil {
			return err
		}
		if rep, ok := ctrl.(control.Reporter); ok {
			rep.AddListener(bank.For(i))
		} else {
			logger.Warn("controller takes no listeners, telemetry disabled", "car", name, "controller", cfg.Controller)
		}

		rec := telemetry.NewRecorder(i, telemetry.DefaultMetrics(cfg.Gains.MaxSteer)...)
		if err := bank.Add(i, rec); err != nil {
			return err
		}
		runs[i] = carRun{name: name, recorder: rec}
	}

	if cfg.Listener != "" {
		rt, err := script.Load(cfg.Listener, cfg.ListenerMethod)
		if err != nil {
			return fmt.Errorf("listener: %w", err)
		}
		defer rt.Close()
		l, err := script.NewListener(rt)
		if err != nil {
			return fmt.Errorf("listener: %w", err)
		}
		if err := bank.Add(0, l); err != nil {
			return err
		}
	}

	if cfg.CAN.Iface != "" {
		w, err := telemetry.DialSocketCAN(ctx, cfg.CAN.Iface)
		if err != nil {
			return err
		}
		defer w.Close()
		for i := range runs {
			if err := bank.Add(i, telemetry.NewCANListener(ctx, w, i)); err != nil {
				return err
			}
		}
		logger.Info("publishing command frames", "iface", cfg.CAN.Iface)
	}

	start := time.Now()
	result, runErr := runner.Run(ctx, race.Config{
		Dt:         cfg.Dt,
		MaxTicks:   cfg.MaxTicks,
		Laps:       cfg.Laps,
		NodeRadius: cfg.NodeRadius,
	})
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	metrics := make([]map[string]float64, len(runs))
	for i, r := range runs {
		metrics[i] = r.recorder.Metrics()
	}
	printSummary(cfg, result, metrics, elapsed)

	if !noSave {
		id, err := saveRun(cfg, result, runs)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}

	return runErr
}

func saveRun(cfg *config.Config, result *race.Result, runs []carRun) (string, error) {
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	meta := storage.RunMetadata{
		Track:      cfg.Track.Name,
		Controller: cfg.Controller,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Laps:       cfg.Laps,
		Ticks:      result.Ticks,
	}
	for i, cr := range result.Cars {
		meta.Cars = append(meta.Cars, storage.CarSummary{
			Name:       cr.Name,
			Controller: cfg.Controller,
			Laps:       cr.Laps,
			FinishTick: cr.FinishTick,
			Distance:   cr.Distance,
			Metrics:    runs[i].recorder.Metrics(),
		})
	}

	samples := lo.FlatMap(runs, func(r carRun, _ int) []telemetry.Sample {
		return r.recorder.Samples()
	})
	return st.Save(meta, samples)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	layout, err := cfg.Track.Build()
	if err != nil {
		return err
	}
	factory, err := newFactory(cfg, nil, newLogger())
	if err != nil {
		return err
	}

	slots, err := race.Grid(layout.Route(), 1, gridSpacing)
	if err != nil {
		return err
	}
	k := car.NewKinematic(cfg.Car, slots[0].Location, slots[0].Heading, slots[0].Target)
	ctrl, err := factory.Create(cfg.Controller, k)
	if err != nil {
		return err
	}
	if c, ok := ctrl.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}

	fmt.Println(okStyle.Render("ok") + fmt.Sprintf(" %s: track %s, controller %s, %d cars", args[0], cfg.Track.Name, cfg.Controller, cfg.Cars))
	return nil
}
