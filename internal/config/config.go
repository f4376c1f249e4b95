package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine tunes the collision world.
type Engine struct {
	CellSize       float64 `yaml:"cell_size"`
	Softening      float64 `yaml:"softening"`       // share of the depth corrected between equal priorities
	PriorityFactor float64 `yaml:"priority_factor"` // multiplier applied when priorities differ
	Workers        int     `yaml:"workers"`         // 0 means GOMAXPROCS
	Capacity       int     `yaml:"capacity"`        // initial shape capacity
	Shards         int     `yaml:"shards"`          // lock shards for the grid and pair sets
	PairsPerShape  int     `yaml:"pairs_per_shape"` // pair-set capacity per live shape
}

// Demo configures the swarm simulation served by the binaries.
type Demo struct {
	Enemies     int     `yaml:"enemies"`
	SpawnExtent float64 `yaml:"spawn_extent"` // enemies spawn in [-extent, extent] on both axes
	EnemySpeed  float64 `yaml:"enemy_speed"`  // world units per second
	PlayerSpeed float64 `yaml:"player_speed"` // world units per second
	Crates      int     `yaml:"crates"`
	Sensors     int     `yaml:"sensors"`
	TickRate    int     `yaml:"tick_rate"` // ticks per second
	ViewWidth   float64 `yaml:"view_width"`
	ViewHeight  float64 `yaml:"view_height"`
}

// TickTime returns the duration of one simulation tick.
func (d Demo) TickTime() time.Duration {
	return time.Second / time.Duration(d.TickRate)
}

// Config is the root of the YAML configuration file.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Engine   Engine `yaml:"engine"`
	Demo     Demo   `yaml:"demo"`
}

// DefaultEngine returns the engine settings used when nothing is configured.
func DefaultEngine() Engine {
	return Engine{
		CellSize:       1.0,
		Softening:      0.3,
		PriorityFactor: 2.0,
		Workers:        runtime.GOMAXPROCS(0),
		Capacity:       1000,
		Shards:         64,
		PairsPerShape:  16,
	}
}

// Default returns a complete configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Engine:   DefaultEngine(),
		Demo: Demo{
			Enemies:     500,
			SpawnExtent: 30,
			EnemySpeed:  5,
			PlayerSpeed: 10,
			Crates:      12,
			Sensors:     4,
			TickRate:    60,
			ViewWidth:   60,
			ViewHeight:  40,
		},
	}
}

// Validate checks the engine settings.
func (e Engine) Validate() error {
	var errs []error
	if e.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size must be positive, got %v", e.CellSize))
	}
	if e.Softening <= 0 || e.Softening > 1 {
		errs = append(errs, fmt.Errorf("softening must be in (0, 1], got %v", e.Softening))
	}
	if e.PriorityFactor <= 0 {
		errs = append(errs, fmt.Errorf("priority_factor must be positive, got %v", e.PriorityFactor))
	}
	if e.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", e.Workers))
	}
	if e.Capacity < 0 || e.Shards < 0 || e.PairsPerShape < 0 {
		errs = append(errs, errors.New("capacity, shards and pairs_per_shape must not be negative"))
	}
	return errors.Join(errs...)
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	if c.Demo.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("demo: tick_rate must be positive, got %d", c.Demo.TickRate))
	}
	if c.Demo.Enemies < 0 || c.Demo.Crates < 0 || c.Demo.Sensors < 0 {
		errs = append(errs, errors.New("demo: counts must not be negative"))
	}
	if c.Demo.ViewWidth <= 0 || c.Demo.ViewHeight <= 0 {
		errs = append(errs, errors.New("demo: view size must be positive"))
	}
	return errors.Join(errs...)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = runtime.GOMAXPROCS(0)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// FromEnv loads the file named by SWARM_CONFIG (defaults when unset) and
// applies SWARM_LOG_LEVEL.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := GetEnv("SWARM_CONFIG", ""); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	cfg.LogLevel = GetEnv("SWARM_LOG_LEVEL", cfg.LogLevel)
	return cfg, nil
}
