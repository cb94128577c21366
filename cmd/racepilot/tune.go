package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/config"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/optim"
	"github.com/san-kum/racepilot/internal/race"
	"github.com/san-kum/racepilot/internal/track"
	"github.com/spf13/cobra"
)

var (
	tuneK1    []float64
	tuneK2    []float64
	tuneScale []float64
	tuneSeeds int
)

// timeTrial races a single pid car once per seed and scores the mean
// finish tick. Runs that do not finish score past the tick limit by
// their remaining laps.
func timeTrial(cfg *config.Config, layout track.Layout, seeds int, logger *log.Logger) optim.Trial {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		slots, err := race.Grid(layout.Route(), 1, gridSpacing)
		if err != nil {
			return 0, err
		}

		build := func(seed int64) (*race.Runner, error) {
			law := control.NewPIDLaw(cfg.Gains.K1, cfg.Gains.K2, cfg.Speed.Scale)
			for name, v := range params {
				if err := law.SetParam(name, v); err != nil {
					return nil, err
				}
			}

			var rng *rand.Rand
			if cfg.Random {
				rng = rand.New(rand.NewSource(seed))
			}
			k := car.NewKinematic(cfg.Car, slots[0].Location, slots[0].Heading, slots[0].Target)
			loop := control.NewLoop(k, control.NewState(rng), law)
			loop.SetMaxSteer(cfg.Gains.MaxSteer)

			runner := race.New(layout, logger)
			if err := runner.Add("trial", loop); err != nil {
				return nil, err
			}
			return runner, nil
		}

		results, err := race.NewEnsemble(build, seeds, cfg.Seed).Run(ctx, race.Config{
			Dt:         cfg.Dt,
			MaxTicks:   cfg.MaxTicks,
			Laps:       cfg.Laps,
			NodeRadius: cfg.NodeRadius,
		})
		if err != nil {
			return 0, err
		}

		total := 0.0
		for _, res := range results {
			cr := res.Cars[0]
			if cr.FinishTick >= 0 {
				total += float64(cr.FinishTick)
			} else {
				total += float64(cfg.MaxTicks * (1 + cfg.Laps - cr.Laps))
			}
		}
		return total / float64(len(results)), nil
	}
}

func runTune(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	layout, err := cfg.Track.Build()
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, p := range []struct {
		name   string
		values []float64
	}{{"k1", tuneK1}, {"k2", tuneK2}, {"scale", tuneScale}} {
		if len(p.values) > 0 {
			names = append(names, p.name)
			ranges = append(ranges, p.values)
		}
	}
	if tuneSeeds < 1 {
		return fmt.Errorf("seeds must be at least 1, got %d", tuneSeeds)
	}
	if len(names) == 0 {
		return fmt.Errorf("nothing to tune: give at least one of --k1, --k2, --scales")
	}

	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	trialLogger := logger.WithPrefix("trial")
	if logger.GetLevel() < log.WarnLevel {
		trialLogger.SetLevel(log.WarnLevel)
	}

	logger.Info("tuning", "track", cfg.Track.Name, "trials", search.Size())
	best, score, err := search.Search(ctx, timeTrial(cfg, layout, tuneSeeds, trialLogger))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(titleStyle.Render("best gains"))
	for _, k := range keys {
		fmt.Printf("  %-6s %g\n", k, best[k])
	}
	if score <= float64(cfg.MaxTicks) {
		fmt.Println(okStyle.Render(fmt.Sprintf("  mean finish tick %.1f", score)))
	} else {
		fmt.Println(warnStyle.Render("  no trial finished"))
	}
	return nil
}
