package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
	// Backups is how many rotated files are kept next to LOG_FILE. Zero truncates in place.
	Backups int `env:"LOG_BACKUPS" envDefault:"1"`
	// Terminal is stamped on every log line so several terminals can share one collector.
	Terminal string `env:"TERMINAL_NAME" envDefault:"cashier-terminal"`
}

// ZerologLevel maps Level onto zerolog; an empty level means info.
func (c LogConfig) ZerologLevel() (zerolog.Level, error) {
	v := strings.ToLower(strings.TrimSpace(c.Level))
	if v == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(v)
}

func LoadLog() (LogConfig, error) {
	cfg, err := env.ParseAs[LogConfig]()
	if err != nil {
		return LogConfig{}, err
	}
	if _, err := cfg.ZerologLevel(); err != nil {
		return LogConfig{}, fmt.Errorf("LOG_LEVEL %q: %w", cfg.Level, err)
	}
	if cfg.Backups < 0 {
		return LogConfig{}, fmt.Errorf("LOG_BACKUPS must not be negative, got %d", cfg.Backups)
	}
	return cfg, nil
}
