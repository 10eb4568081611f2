// Package main is the entry point for the Word Clash bot.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"word-clash-bot/internal/bot"
	"word-clash-bot/internal/config"
	"word-clash-bot/internal/game"
	"word-clash-bot/internal/health"
	"word-clash-bot/internal/pkg/lock"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			log.Fatal().Msg("BOT_TOKEN not found in environment variables")
		}
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Configuration loaded successfully")

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:   cfg,
		Store:    game.NewStore(),
		Ledger:   game.NewLedger(),
		ChatLock: lock.NewChatLock(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return health.Serve(gctx, cfg.Health.Addr())
	})

	g.Go(func() error {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Received shutdown signal")
		telegramBot.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Shutdown with error")
		os.Exit(1)
	}
	log.Info().Msg("Bot stopped gracefully")
}
