package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/racepilot/internal/config"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/registry"
	"github.com/san-kum/racepilot/internal/storage"
	"github.com/san-kum/racepilot/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	configFile     string
	preset         string
	controller     string
	controllerPath string
	method         string
	listener       string
	listenerMethod string
	pluginDir      string
	cars           int
	laps           int
	dt             float64
	maxTicks       int
	seed           int64
	scale          float64
	canIface       string
	noSave         bool

	plotCar int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "racepilot",
		Short:         "autonomous car controllers for a tile-based racing track",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [plugin args...]",
		Short: "run a race",
		Args:  cobra.ArbitraryArgs,
		RunE:  runRace,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a track preset")
	runCmd.Flags().StringVarP(&controller, "controller", "c", config.DefaultController, "controller name")
	runCmd.Flags().StringVarP(&controllerPath, "controller-path", "p", "", "fuzzy definition or lua controller file")
	runCmd.Flags().StringVarP(&method, "method", "m", "", "lua function creating the controller")
	runCmd.Flags().StringVarP(&listener, "listener", "l", "", "lua listener file attached to car 0")
	runCmd.Flags().StringVar(&listenerMethod, "listener-method", "", "lua function creating the listener")
	runCmd.Flags().StringVar(&pluginDir, "plugin-dir", "", "directory of controller plugins (*.so)")
	runCmd.Flags().IntVar(&cars, "cars", config.DefaultCars, "number of cars")
	runCmd.Flags().IntVar(&laps, "laps", config.DefaultLaps, "laps to complete")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", config.DefaultMaxTicks, "tick limit")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	runCmd.Flags().Float64Var(&scale, "scale", control.DefaultScale, "speed table scale")
	runCmd.Flags().StringVar(&canIface, "can", "", "socketcan interface for command frames")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot steering and speed of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotCar, "car", 0, "car index")

	controllersCmd := &cobra.Command{
		Use:   "controllers",
		Short: "list controller names",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := registry.NewFactory()
			registry.Builtins(f, registry.Options{})
			if pluginDir != "" {
				if _, err := registry.LoadPlugins(pluginDir, f, args, newLogger()); err != nil {
					return err
				}
			}
			for _, name := range f.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
	controllersCmd.Flags().StringVar(&pluginDir, "plugin-dir", "", "directory of controller plugins (*.so)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list track presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				spec := config.Tracks[name]
				fmt.Printf("  %-10s %d nodes\n", name, len(spec.Route))
			}
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "check a config file and its controller",
		Args:  cobra.ExactArgs(1),
		RunE:  validateConfig,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search pid gains by time trial",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tuneCmd.Flags().StringVar(&preset, "preset", "", "start from a track preset")
	tuneCmd.Flags().IntVar(&laps, "laps", config.DefaultLaps, "laps to complete")
	tuneCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	tuneCmd.Flags().IntVar(&maxTicks, "max-ticks", config.DefaultMaxTicks, "tick limit per trial")
	tuneCmd.Flags().Float64SliceVar(&tuneK1, "k1", nil, "k1 values to try")
	tuneCmd.Flags().Float64SliceVar(&tuneK2, "k2", nil, "k2 values to try")
	tuneCmd.Flags().Float64SliceVar(&tuneScale, "scales", nil, "speed scale values to try")
	tuneCmd.Flags().IntVar(&tuneSeeds, "seeds", 1, "seeded runs per trial")
	tuneCmd.Flags().Int64Var(&seed, "seed", 0, "first seed")

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [output]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.New(dataDir).ExportJSON(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("exported %s to %s\n", args[0], args[1])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, controllersCmd, presetsCmd, validateCmd, tuneCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "racepilot",
	})
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", logLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRACK\tTIME\tCTRL\tCARS\tLAPS\tTICKS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Track,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Controller,
			len(run.Cars),
			run.Laps,
			run.Ticks,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	var mine []telemetry.Sample
	for _, s := range samples {
		if s.Car == plotCar {
			mine = append(mine, s)
		}
	}
	if len(mine) == 0 {
		return fmt.Errorf("no data to plot for car %d", plotCar)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("track: %s\n", meta.Track)
	fmt.Printf("samples: %d\n\n", len(mine))

	series := []struct {
		caption string
		value   func(s telemetry.Sample) float64
	}{
		{"steer command", func(s telemetry.Sample) float64 { return s.Steer }},
		{"speed command", func(s telemetry.Sample) float64 { return s.Command }},
		{"car speed", func(s telemetry.Sample) float64 { return s.Speed }},
	}

	for _, sr := range series {
		data := make([]float64, len(mine))
		for i, s := range mine {
			data[i] = sr.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}
