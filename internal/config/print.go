package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type PrintConfig struct {
	Enabled             bool          `env:"PRINT_ENABLED" envDefault:"true"`
	AgentURL            string        `env:"PRINTER_AGENT_URL" envDefault:"http://localhost:6060"`
	Workers             int           `env:"PRINT_WORKERS" envDefault:"2"`
	QueueSize           int           `env:"PRINT_QUEUE_SIZE" envDefault:"64"`
	RequestTimeout      time.Duration `env:"PRINT_REQUEST_TIMEOUT" envDefault:"5s"`
	RetryMax            int           `env:"PRINT_RETRY_MAX" envDefault:"3"`
	RetryBase           time.Duration `env:"PRINT_RETRY_BASE" envDefault:"500ms"`
	FailureThreshold    int           `env:"PRINT_FAILURE_THRESHOLD" envDefault:"3"`
	CircuitOpenDuration time.Duration `env:"PRINT_CIRCUIT_OPEN" envDefault:"30s"`
}

func LoadPrint() (PrintConfig, error) {
	var cfg PrintConfig
	if err := env.Parse(&cfg); err != nil {
		return PrintConfig{}, err
	}
	return cfg, nil
}
