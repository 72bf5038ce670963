package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type TerminalConfig struct {
	GameServerURL string `env:"GAME_SERVER_URL,required,notEmpty"`
	// SocketURL defaults to GameServerURL with the ws scheme and a /ws path.
	SocketURL string `env:"SOCKET_URL"`
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:"127.0.0.1:7070"`

	Username string `env:"CASHIER_USERNAME"`
	Password string `env:"CASHIER_PASSWORD"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	UIBufferSize   int           `env:"UI_EVENT_BUFFER" envDefault:"500"`
}

func LoadTerminal() (TerminalConfig, error) {
	var cfg TerminalConfig
	if err := env.Parse(&cfg); err != nil {
		return TerminalConfig{}, err
	}
	cfg.GameServerURL = strings.TrimRight(cfg.GameServerURL, "/")
	if cfg.SocketURL == "" {
		cfg.SocketURL = DeriveSocketURL(cfg.GameServerURL)
	}
	return cfg, nil
}

func DeriveSocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws"
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
	default:
		return base + "/ws"
	}
}
