package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/telarr-bot/telarr/core/buildinfo"
	coreconfig "github.com/telarr-bot/telarr/core/config"
)

var (
	initOnce sync.Once
	levelVar slog.LevelVar

	// L is the base logger used when no component logger applies.
	L *slog.Logger

	// TG logs Telegram transport events.
	TG *slog.Logger
	// DB logs database events.
	DB *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// SES logs session store events.
	SES *slog.Logger
	// ARR logs backend API client events.
	ARR *slog.Logger
	// AUTH logs authorization events.
	AUTH *slog.Logger
	// WIRE logs handler registration steps.
	WIRE *slog.Logger
)

func init() {
	// A usable default until InitLogger runs, so package-level loggers
	// are never nil in tests.
	wireComponents(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar})))
}

// InitLogger configures the global structured logger. It may be called only once.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))

		opts := &slog.HandlerOptions{Level: &levelVar}
		var handler slog.Handler
		if selectFormat(cfg) == "json" {
			handler = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(os.Stdout, opts)
		}

		logger := slog.New(handler)
		slog.SetDefault(logger)
		wireComponents(logger)
		logStartup(cfg)
	})
	return nil
}

func wireComponents(logger *slog.Logger) {
	L = logger
	TG = logger.With("component", "tg")
	DB = logger.With("component", "db")
	MIG = logger.With("component", "db.migrate")
	SES = logger.With("component", "session")
	ARR = logger.With("component", "arr")
	AUTH = logger.With("component", "auth")
	WIRE = logger.With("component", "wire")
}

func selectLevel(cfg *coreconfig.Config) slog.Level {
	level := ""
	if cfg != nil {
		level = cfg.Logging.Level
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func selectFormat(cfg *coreconfig.Config) string {
	format := ""
	if cfg != nil {
		format = cfg.Logging.Format
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "json" {
		return "json"
	}
	return "kv"
}

func logStartup(cfg *coreconfig.Config) {
	attrs := []slog.Attr{
		slog.String("event", "startup"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.String("level", levelVar.Level().String()),
	}
	if cfg != nil && cfg.Logging.Profile != "" {
		attrs = append(attrs, slog.String("profile", cfg.Logging.Profile))
	}
	L.With("component", "app").LogAttrs(context.Background(), slog.LevelInfo, "logger ready", attrs...)
}

// Shutdown flushes logging resources. Stock slog handlers write
// synchronously, so this only exists for lifecycle symmetry.
func Shutdown() error {
	return nil
}

// Debug logs an event with context-carried metadata at debug level.
func Debug(ctx context.Context, log *slog.Logger, event string, attrs ...slog.Attr) {
	LogEvent(ctx, log, slog.LevelDebug, event, attrs...)
}

// Warn logs an event with context-carried metadata at warn level.
func Warn(ctx context.Context, log *slog.Logger, event string, attrs ...slog.Attr) {
	LogEvent(ctx, log, slog.LevelWarn, event, attrs...)
}

// LogEvent emits a structured event enriched with rid and update metadata
// carried by the context.
func LogEvent(ctx context.Context, log *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if log == nil {
		log = L
	}
	all := make([]slog.Attr, 0, len(attrs)+4)
	all = append(all, slog.String("event", event))
	if rid := RIDFrom(ctx); rid != "" {
		all = append(all, slog.String("rid", rid))
	}
	if userID := UserIDFrom(ctx); userID != 0 {
		all = append(all, slog.Int64("user_id", userID))
	}
	if chatID := ChatIDFrom(ctx); chatID != 0 {
		all = append(all, slog.Int64("chat_id", chatID))
	}
	all = append(all, attrs...)
	log.LogAttrs(ctx, level, event, all...)
}
