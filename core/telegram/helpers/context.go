// Package helpers carries per-update state between middleware and
// handlers without import cycles.
package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "telarr_ctx"

// StoreContext attaches a request context to a telebot context for
// downstream handlers.
func StoreContext(c tele.Context, ctx context.Context) {
	c.Set(contextKey, ctx)
}

// RequestContext returns the request context attached by the logging
// middleware, or a fresh background context.
func RequestContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(contextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}
