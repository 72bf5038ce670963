package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"cashier-terminal/internal/app"
	"cashier-terminal/internal/auth"
	"cashier-terminal/internal/config"
	"cashier-terminal/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		if errors.Is(err, auth.ErrMissingIdentity) {
			log.Fatal().Err(err).Msg("cashier identity unavailable, cannot open terminal")
		}
		log.Fatal().Err(err).Msg("terminal init failed")
	}
	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("terminal exited with error")
		logging.Close()
		os.Exit(1)
	}
}
