package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/telarr-bot/telarr/core/bootstrap"
	"github.com/telarr-bot/telarr/core/buildinfo"
	coreconfig "github.com/telarr-bot/telarr/core/config"
	"github.com/telarr-bot/telarr/core/logger"
	"github.com/telarr-bot/telarr/core/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("telarr: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now()
	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.L.Warn("shutdown cleanup failed",
				slog.String("event", "shutdown"),
				slog.String("err", err.Error()),
			)
		}
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	logger.L.With("component", "app").Info("app ready",
		slog.String("event", "ready"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
	)

	return telegram.RunTelegram(ctx, res.TelegramRunOptions(cfg))
}
