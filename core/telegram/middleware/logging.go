package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/telarr-bot/telarr/core/logger"
	tghelpers "github.com/telarr-bot/telarr/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware builds the per-update request context (rid plus update
// metadata), attaches it for downstream handlers, and logs one receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()

		chatID, userID := int64(0), int64(0)
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		if user := c.Sender(); user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		ctx := logger.WithRID(context.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.TG)
		tghelpers.StoreContext(c, ctx)

		attrs := []slog.Attr{slog.Int("update_id", upd.ID)}
		switch {
		case upd.Callback != nil:
			attrs = append(attrs, slog.String("kind", "callback"),
				slog.String("payload", logger.SanitizeLimit(strings.TrimPrefix(upd.Callback.Data, "\f"), 128)))
		case upd.Message != nil:
			attrs = append(attrs, slog.String("kind", "message"),
				slog.String("payload", logger.SanitizeLimit(c.Text(), 128)))
		default:
			attrs = append(attrs, slog.String("kind", "other"))
		}
		logger.Debug(ctx, logger.TG, "update.received", attrs...)

		return next(c)
	}
}
