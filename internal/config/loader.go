package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BOARDROOM_CONFIG is set
//  3. env (prefix BOARDROOM_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BOARDROOM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: BOARDROOM_OBSERVATION_LOG, BOARDROOM_MIN_SIGNALS, ...
	// Keys keep their underscores to match the koanf struct tags.
	envProvider := env.Provider("BOARDROOM_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "boardroom_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ObservationLog == "" {
		return fmt.Errorf("%w: observation_log must not be empty", ErrInvalidConfig)
	}
	if c.ReportDir == "" {
		return fmt.Errorf("%w: report_dir must not be empty", ErrInvalidConfig)
	}
	if c.Star4Min <= 0 || c.Star5Min <= c.Star4Min {
		return fmt.Errorf("%w: star thresholds must satisfy 0 < star4_min < star5_min", ErrInvalidConfig)
	}
	if c.MinSignals < 1 {
		return fmt.Errorf("%w: min_signals must be at least 1", ErrInvalidConfig)
	}
	if c.LookbackHours <= 0 || c.HalfLifeHours <= 0 {
		return fmt.Errorf("%w: lookback_hours and half_life_hours must be positive", ErrInvalidConfig)
	}
	return nil
}
