package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/racepilot/internal/car"
	"github.com/san-kum/racepilot/internal/control"
	"github.com/san-kum/racepilot/internal/track"
	"gopkg.in/yaml.v3"
)

const (
	DefaultController = "pid"
	DefaultCars       = 1
	DefaultLaps       = 1
	DefaultDt         = 0.02
	DefaultMaxTicks   = 20000
	DefaultNodeRadius = track.TileWidth / 2
	DefaultDataDir    = "runs"
	DefaultTrack      = "oval"
)

type Config struct {
	Controller     string   `yaml:"controller"`
	ControllerPath string   `yaml:"controller_path,omitempty"`
	Method         string   `yaml:"method,omitempty"`
	Listener       string   `yaml:"listener,omitempty"`
	ListenerMethod string   `yaml:"listener_method,omitempty"`
	PluginDir      string   `yaml:"plugin_dir,omitempty"`
	PluginArgs     []string `yaml:"plugin_args,omitempty"`

	Cars       int     `yaml:"cars"`
	Laps       int     `yaml:"laps"`
	Dt         float64 `yaml:"dt"`
	MaxTicks   int     `yaml:"max_ticks"`
	NodeRadius float64 `yaml:"node_radius"`
	Seed       int64   `yaml:"seed"`
	Random     bool    `yaml:"random"`
	DataDir    string  `yaml:"data_dir"`

	Speed SpeedConfig   `yaml:"speed"`
	Gains control.Gains `yaml:"gains"`
	Car   car.Params    `yaml:"car"`
	Track track.Spec    `yaml:"track"`
	CAN   CANConfig     `yaml:"can"`
}

type SpeedConfig struct {
	Scale float64 `yaml:"scale"`
}

// CANConfig enables command frames on a SocketCAN interface when Iface
// is set.
type CANConfig struct {
	Iface string `yaml:"iface,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Controller: DefaultController,
		Cars:       DefaultCars,
		Laps:       DefaultLaps,
		Dt:         DefaultDt,
		MaxTicks:   DefaultMaxTicks,
		NodeRadius: DefaultNodeRadius,
		Random:     true,
		DataDir:    DefaultDataDir,
		Speed:      SpeedConfig{Scale: control.DefaultScale},
		Gains:      control.DefaultGains(),
		Car:        car.DefaultParams(),
		Track:      copySpec(Tracks[DefaultTrack]),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	// a track given in the file replaces the default one as a whole
	var peek struct {
		Track *yaml.Node `yaml:"track"`
	}
	if err := yaml.Unmarshal(data, &peek); err != nil {
		return nil, err
	}
	if peek.Track != nil {
		cfg.Track = track.Spec{}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid setting, including a track that does
// not build.
func (c *Config) Validate() error {
	var errs []error
	if c.Controller == "" {
		errs = append(errs, errors.New("controller is empty"))
	}
	if c.Cars < 1 {
		errs = append(errs, fmt.Errorf("cars must be at least 1, got %d", c.Cars))
	}
	if c.Laps < 1 {
		errs = append(errs, fmt.Errorf("laps must be at least 1, got %d", c.Laps))
	}
	if c.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", c.Dt))
	}
	if c.MaxTicks < 1 {
		errs = append(errs, fmt.Errorf("max_ticks must be at least 1, got %d", c.MaxTicks))
	}
	if c.NodeRadius <= 0 {
		errs = append(errs, fmt.Errorf("node_radius must be positive, got %g", c.NodeRadius))
	}
	if c.Speed.Scale <= 0 {
		errs = append(errs, fmt.Errorf("speed.scale must be positive, got %g", c.Speed.Scale))
	}
	if c.Gains.MaxSteer <= 0 {
		errs = append(errs, fmt.Errorf("gains.max_steer must be positive, got %g", c.Gains.MaxSteer))
	}
	if _, err := c.Track.Build(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
