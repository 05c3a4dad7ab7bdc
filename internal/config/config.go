// Package config defines pipeline configuration structures and loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinel errors.
package config

import "path/filepath"

// Config contains process configuration for one pipeline run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DictionaryDir holds the per-league alias JSON files.
	DictionaryDir string `koanf:"dictionary_dir"`

	// ObservationLog is the persisted splits CSV, the pipeline's only
	// shared mutable file.
	ObservationLog string `koanf:"observation_log"`

	// TweetsCSV is a raw tweet export still needing grading.
	TweetsCSV string `koanf:"tweets_csv"`

	// SignalsCSV is the graded tweet-signal feed; the required base
	// input of a picks run.
	SignalsCSV string `koanf:"signals_csv"`

	// OCRTextDir holds OCR'd screenshot text files awaiting ingestion.
	OCRTextDir string `koanf:"ocr_text_dir"`

	// ReportDir receives all rendered artifacts.
	ReportDir string `koanf:"report_dir"`

	// FlaggedCSV receives rejected rows for human audit.
	FlaggedCSV string `koanf:"flagged_csv"`

	// LookbackHours bounds the scoring window.
	LookbackHours int `koanf:"lookback_hours"`

	// HalfLifeHours sets the exponential decay half-life.
	HalfLifeHours int `koanf:"half_life_hours"`

	// MinSignals gates promotion on signal count.
	MinSignals int `koanf:"min_signals"`

	// Star4Min and Star5Min are the star-rating score gates.
	Star4Min float64 `koanf:"star4_min"`
	Star5Min float64 `koanf:"star5_min"`

	// PromoteMinRows gates replacement of the observation log.
	PromoteMinRows int `koanf:"promote_min_rows"`

	// SampleTextLimit caps the per-entity sample text in the report.
	SampleTextLimit int `koanf:"sample_text_limit"`

	// PregameCutoffMinutes stops snapshot updates near a known start.
	PregameCutoffMinutes int `koanf:"pregame_cutoff_minutes"`

	// MetricsAddr exposes /metrics during the run when set, e.g.
	// ":9091". Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		DictionaryDir:        "dictionaries",
		ObservationLog:       "splits.csv",
		TweetsCSV:            filepath.Join("sources", "tweets.csv"),
		SignalsCSV:           filepath.Join("audit_out", "twitter_text_signals.csv"),
		OCRTextDir:           filepath.Join("sources", "ocr"),
		ReportDir:            "boardroom",
		FlaggedCSV:           filepath.Join("audit_out", "splits_flagged.csv"),
		LookbackHours:        72,
		HalfLifeHours:        24,
		MinSignals:           2,
		Star4Min:             3.5,
		Star5Min:             6.0,
		PromoteMinRows:       25,
		SampleTextLimit:      400,
		PregameCutoffMinutes: 15,
	}
}
