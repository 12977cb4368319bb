package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/telarr-bot/telarr/core/logger"
	"github.com/telarr-bot/telarr/core/session"
)

// The adapters below bind a typed dialogue state to a HandlerFunc. Handlers
// stay pure over (request, state); reading, storing and clearing the state
// lives here so every service gets identical lifecycle behavior.

// InitSession wraps a handler that starts a new dialogue. Whatever state was
// stored under the key before is overwritten by the returned state.
func InitSession[S any](store session.Store[S], fn func(ctx context.Context, req Request) (S, Response, error)) HandlerFunc {
	return func(ctx context.Context, req Request) (Response, error) {
		state, resp, err := fn(ctx, req)
		if err != nil {
			return Response{}, err
		}
		if err := store.Put(ctx, req.Key(), state); err != nil {
			return Response{}, fmt.Errorf("store session: %w", err)
		}
		return resp, nil
	}
}

// WithSession wraps a handler that continues an existing dialogue. A missing
// state means the action outlived its session and maps to ErrStaleSession.
// The returned state replaces the stored one only on success; a rejected
// argument leaves the stored state untouched.
func WithSession[S any](store session.Store[S], fn func(ctx context.Context, req Request, state S) (S, Response, error)) HandlerFunc {
	return func(ctx context.Context, req Request) (Response, error) {
		state, ok, err := store.Get(ctx, req.Key())
		if err != nil {
			return Response{}, fmt.Errorf("load session: %w", err)
		}
		if !ok {
			return Response{}, ErrStaleSession
		}
		next, resp, err := fn(ctx, req, state)
		if err != nil {
			return Response{}, err
		}
		if err := store.Put(ctx, req.Key(), next); err != nil {
			return Response{}, fmt.Errorf("store session: %w", err)
		}
		return resp, nil
	}
}

// EndSession wraps a terminal handler. The stored state is cleared after the
// handler runs, on success and on failure alike, so a backend error never
// leaves a dialogue the user can no longer advance.
func EndSession[S any](store session.Store[S], fn func(ctx context.Context, req Request, state S) (Response, error)) HandlerFunc {
	return func(ctx context.Context, req Request) (Response, error) {
		state, ok, err := store.Get(ctx, req.Key())
		if err != nil {
			return Response{}, fmt.Errorf("load session: %w", err)
		}
		if !ok {
			return Response{}, ErrStaleSession
		}
		resp, err := fn(ctx, req, state)
		if clearErr := store.Clear(ctx, req.Key()); clearErr != nil {
			logger.Warn(ctx, logger.SES, "session.clear_failed",
				slog.String("key", req.Key().String()),
				slog.String("err", clearErr.Error()),
			)
		}
		if err != nil {
			return Response{}, err
		}
		return resp, nil
	}
}

// Peek loads the current dialogue state without taking part in a dispatch.
// Services use it to implement Rerender.
func Peek[S any](ctx context.Context, store session.Store[S], req Request) (S, bool) {
	state, ok, err := store.Get(ctx, req.Key())
	if err != nil {
		var zero S
		return zero, false
	}
	return state, ok
}
