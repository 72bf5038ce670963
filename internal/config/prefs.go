package config

import "github.com/caarlos0/env/v11"

type PrefsConfig struct {
	// DSN selects the driver: postgres:// and postgresql:// use pgx, anything else is a sqlite path.
	DSN string `env:"PREFS_DSN" envDefault:"file:cashier-terminal.db?_busy_timeout=5000"`
}

func LoadPrefs() (PrefsConfig, error) {
	return env.ParseAs[PrefsConfig]()
}

// PrefsTestConfig points the prefs integration tests at a real postgres.
type PrefsTestConfig struct {
	PostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadPrefsTest() (PrefsTestConfig, error) {
	return env.ParseAs[PrefsTestConfig]()
}
