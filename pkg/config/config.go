// Package config loads intersection run settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anggasct/junction"
)

// Config holds every tunable of a run
type Config struct {
	LaneCapacity     int           `yaml:"lane_capacity" validate:"min=1,max=1048576"`
	ArrivalInterval  time.Duration `yaml:"arrival_interval" validate:"gte=0"`
	CrossingDuration time.Duration `yaml:"crossing_duration" validate:"gte=0"`

	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`

	Metrics bool `yaml:"metrics"`
	Trace   bool `yaml:"trace"`
	Summary bool `yaml:"summary"`
}

// OutputConfig controls how crossing lines are written
type OutputConfig struct {
	Symbolic bool `yaml:"symbolic"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		LaneCapacity: junction.DefaultLaneCapacity,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges. Failures are reported as
// *junction.ConfigurationError naming the offending field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		issues := make([]string, len(verrs))
		for i, fe := range verrs {
			issues[i] = fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
		}
		return junction.NewConfigurationError(verrs[0].Field(), strings.Join(issues, "; "))
	}
	return junction.NewConfigurationError("config", err.Error())
}

// Options converts the configuration into intersection options
func (c Config) Options() []junction.Option {
	return []junction.Option{
		junction.WithLaneCapacity(c.LaneCapacity),
		junction.WithArrivalInterval(c.ArrivalInterval),
		junction.WithCrossingDuration(c.CrossingDuration),
	}
}

// SlogLevel maps the configured level name to a slog level
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
