package logging

import (
	"io"
	"os"
	"sync"

	"cashier-terminal/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stdout
	file   *sizeLimitedWriter
)

// Init replaces the global zerolog logger. It is safe to call again; a previous log file is closed.
func Init(cfg config.LogConfig) error {
	level, err := cfg.ZerologLevel()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	output = os.Stdout
	sink := console
	if cfg.File != "" {
		w, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB, cfg.Backups)
		if err != nil {
			return err
		}
		file = w
		output = io.MultiWriter(os.Stdout, w)
		sink = zerolog.MultiLevelWriter(console, w)
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(sink).With().Timestamp()
	if cfg.Terminal != "" {
		ctx = ctx.Str("terminal", cfg.Terminal)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer is the raw destination for non-zerolog handlers such as the HTTP request logger.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	output = os.Stdout
	return err
}
