// Package config holds the application configuration, layered from
// defaults, an optional YAML file and environment variables.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration.
type Config struct {
	Addr   string `koanf:"addr"`
	DBPath string `koanf:"db_path"`

	// Upload limits.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
	MaxBatchFiles  int   `koanf:"max_batch_files"`

	// Largest fraction of unusable trackpoints tolerated per file.
	MaxDroppedFraction float64 `koanf:"max_dropped_fraction"`

	// Segment matching.
	MatchToleranceM  float64 `koanf:"match_tolerance_m"`
	MatchMinCoverage float64 `koanf:"match_min_coverage"`

	// Reverse geocoding. Disabled means activities still get a timezone
	// from the offline resolver but no place names.
	GeocodeEnabled   bool    `koanf:"geocode_enabled"`
	GeocodeURL       string  `koanf:"geocode_url"`
	GeocodeUserAgent string  `koanf:"geocode_user_agent"`
	GeocodeRPS       float64 `koanf:"geocode_rps"`
	GeocodeTimeoutS  int     `koanf:"geocode_timeout_s"`
	DefaultTimezone  string  `koanf:"default_timezone"`

	// HTTP rate limiting, per client IP.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
}

// New returns the production defaults.
func New() *Config {
	return &Config{
		Addr:               ":8080",
		DBPath:             "./data/openpace.db",
		MaxUploadBytes:     25 << 20,
		MaxBatchFiles:      25,
		MaxDroppedFraction: 0.05,
		MatchToleranceM:    50,
		MatchMinCoverage:   0.9,
		GeocodeEnabled:     true,
		GeocodeURL:         "https://nominatim.openstreetmap.org",
		GeocodeUserAgent:   "openpace-activity-backend/1.0",
		GeocodeRPS:         1,
		GeocodeTimeoutS:    5,
		DefaultTimezone:    "UTC",
		RateLimitPerMinute: 120,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PACE_CONFIG is set
//  3. env (prefix PACE_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PACE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: PACE_ADDR, PACE_DB_PATH, PACE_GEOCODE_RPS, ...
	envProvider := env.Provider("PACE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pace_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	if cfg.MaxDroppedFraction < 0 || cfg.MaxDroppedFraction >= 1 {
		return nil, errors.New("max_dropped_fraction must be in [0, 1)")
	}
	if cfg.MatchToleranceM <= 0 {
		return nil, errors.New("match_tolerance_m must be positive")
	}
	if cfg.MatchMinCoverage <= 0 || cfg.MatchMinCoverage > 1 {
		return nil, errors.New("match_min_coverage must be in (0, 1]")
	}
	if cfg.GeocodeEnabled && cfg.GeocodeRPS <= 0 {
		return nil, errors.New("geocode_rps must be positive when geocoding is enabled")
	}
	return &cfg, nil
}
