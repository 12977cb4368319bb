package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/telarr-bot/telarr/core/auth"
	"github.com/telarr-bot/telarr/core/logger"
	"github.com/telarr-bot/telarr/core/session"
)

// Router resolves decoded actions to registered handlers and applies the
// cross-cutting pipeline around each invocation: authorize, serialize per
// session key, invoke, convert failures to renderable responses.
type Router struct {
	gate     auth.Gate
	locks    *session.KeyedMutex
	services map[string]Service
	handlers map[string]map[string]Handler
	chat     map[string]chatBinding
}

type chatBinding struct {
	service string
	command string
}

// NewRouter builds an empty router around an authorization gate.
func NewRouter(gate auth.Gate) *Router {
	return &Router{
		gate:     gate,
		locks:    session.NewKeyedMutex(),
		services: make(map[string]Service),
		handlers: make(map[string]map[string]Handler),
		chat:     make(map[string]chatBinding),
	}
}

// Register adds a service and its declared handlers to the routing tables.
// Registration happens once at startup; the tables are read-only afterwards.
func (r *Router) Register(svc Service) error {
	name := strings.ToLower(svc.Name())
	if name == "" {
		return fmt.Errorf("dialog: service with empty name")
	}
	if _, dup := r.services[name]; dup {
		return fmt.Errorf("dialog: service %q already registered", name)
	}

	commands := make(map[string]Handler)
	for _, h := range svc.Handlers() {
		if h.Fn == nil {
			return fmt.Errorf("dialog: service %q declares a handler without Fn", name)
		}
		for _, cmd := range h.Commands {
			cmd = strings.ToLower(strings.TrimSpace(cmd))
			if cmd == "" {
				return fmt.Errorf("dialog: service %q declares an empty command", name)
			}
			if _, dup := commands[cmd]; dup {
				return fmt.Errorf("dialog: service %q declares command %q twice", name, cmd)
			}
			commands[cmd] = h
		}
	}
	for _, cc := range svc.ChatCommands() {
		ccName := strings.ToLower(strings.TrimSpace(cc.Name))
		if ccName == "" {
			continue
		}
		if owner, dup := r.chat[ccName]; dup {
			return fmt.Errorf("dialog: chat command %q claimed by %q and %q", ccName, owner.service, name)
		}
		if _, ok := commands[strings.ToLower(cc.Command)]; !ok {
			return fmt.Errorf("dialog: chat command %q targets unknown handler command %q", ccName, cc.Command)
		}
		r.chat[ccName] = chatBinding{service: name, command: strings.ToLower(cc.Command)}
	}

	r.services[name] = svc
	r.handlers[name] = commands

	logger.WIRE.Info("service registered",
		slog.String("event", "wire.service"),
		slog.String("service", name),
		slog.Int("commands", len(commands)),
		slog.Int("chat_commands", len(svc.ChatCommands())),
	)
	return nil
}

// Service returns a registered service by name.
func (r *Router) Service(name string) (Service, bool) {
	svc, ok := r.services[strings.ToLower(name)]
	return svc, ok
}

// Addons resolves the named services that implement the addon hook.
func (r *Router) Addons(names []string) []Addon {
	var out []Addon
	for _, name := range names {
		svc, ok := r.services[strings.ToLower(name)]
		if !ok {
			continue
		}
		if addon, ok := svc.(Addon); ok {
			out = append(out, addon)
		}
	}
	return out
}

// ChatBinding resolves a typed chat command into its service request shape.
func (r *Router) ChatBinding(name string) (service, command string, ok bool) {
	b, found := r.chat[strings.ToLower(strings.TrimPrefix(name, "/"))]
	if !found {
		return "", "", false
	}
	return b.service, b.command, true
}

// ChatCommands lists all typed commands registered across services.
func (r *Router) ChatCommands() []ChatCommand {
	var out []ChatCommand
	for _, svc := range r.services {
		out = append(out, svc.ChatCommands()...)
	}
	return out
}

// DispatchToken decodes a callback token and dispatches it.
func (r *Router) DispatchToken(ctx context.Context, token string, userID, chatID int64) Response {
	service, command, args, err := DecodeToken(token)
	if err != nil {
		logger.TG.Warn("unroutable action",
			slog.String("event", "dialog.unroutable"),
			slog.String("token", logger.SanitizeLimit(token, 128)),
			slog.Int64("user_id", userID),
		)
		return Response{Outcome: OutcomeUnroutable}
	}
	return r.Dispatch(ctx, Request{
		Service: service,
		Command: command,
		Args:    args,
		UserID:  userID,
		ChatID:  chatID,
	})
}

// Dispatch runs one decoded action through the pipeline and returns the
// renderable result. It never propagates handler errors; every failure mode
// maps to a response per the error taxonomy.
func (r *Router) Dispatch(ctx context.Context, req Request) Response {
	start := time.Now()
	req.Service = strings.ToLower(req.Service)
	req.Command = strings.ToLower(req.Command)

	handler, ok := r.lookup(req)
	if !ok {
		r.logHandled(ctx, req, OutcomeUnroutable, start, nil)
		return Response{Outcome: OutcomeUnroutable}
	}

	// Authorization is resolved fresh per action.
	req.Level = r.gate.LevelOf(ctx, req.UserID)
	if !req.Level.Allows(handler.MinLevel) {
		resp := r.rerender(ctx, req)
		resp.Outcome = OutcomeDenied
		r.logHandled(ctx, req, OutcomeDenied, start, nil)
		return resp
	}

	// At most one in-flight action per session key; the get -> compute ->
	// put sequence below must not interleave with itself.
	unlock := r.locks.Lock(req.Key())
	defer unlock()

	resp, err := handler.Fn(ctx, req)
	switch {
	case err == nil:
		if resp.Outcome == "" {
			resp.Outcome = OutcomeOK
		}
	case errors.Is(err, ErrStaleSession):
		resp = StaleResponse()
	case errors.Is(err, ErrInvalidArgument):
		resp = r.rerender(ctx, req)
		resp.Outcome = OutcomeInvalid
	default:
		resp = Response{Caption: "Seems like something went wrong...", Outcome: OutcomeFailed}
	}
	r.logHandled(ctx, req, resp.Outcome, start, err)
	return resp
}

func (r *Router) lookup(req Request) (Handler, bool) {
	commands, ok := r.handlers[req.Service]
	if !ok {
		return Handler{}, false
	}
	h, ok := commands[req.Command]
	return h, ok
}

// rerender replays the current state unchanged, falling back to the neutral
// stale response when the service has no dialogue for this requester.
func (r *Router) rerender(ctx context.Context, req Request) Response {
	svc, ok := r.services[req.Service]
	if !ok {
		return StaleResponse()
	}
	resp, ok := svc.Rerender(ctx, req)
	if !ok {
		return StaleResponse()
	}
	return resp
}

func (r *Router) logHandled(ctx context.Context, req Request, outcome Outcome, start time.Time, err error) {
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("service", req.Service),
		slog.String("command", req.Command),
		slog.String("outcome", string(outcome)),
		slog.String("level", req.Level.String()),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if err != nil && !errors.Is(err, ErrStaleSession) && !errors.Is(err, ErrInvalidArgument) {
		level = slog.LevelError
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.LogEvent(ctx, logger.TG, level, "action.handled", attrs...)
}
