package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/shawki-iuxit/appointment-booking-system/internal/config"
	"github.com/shawki-iuxit/appointment-booking-system/internal/db"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "migrate").Logger()
	logger.Info().Msg("migrate starting")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pool.Close()

	applied, err := db.NewMigrator(pool).Up(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	logger.Info().Int("applied", applied).Msg("migrations complete")
}
