package dialog

import (
	"context"
	"errors"

	"github.com/telarr-bot/telarr/core/auth"
)

// Sentinel errors surfaced by session adapters and transition code; the
// router converts them into renderable responses.
var (
	// ErrStaleSession marks a non-initiating action with no stored dialogue.
	ErrStaleSession = errors.New("dialog: no active session")
	// ErrInvalidArgument marks an out-of-range or malformed action argument.
	ErrInvalidArgument = errors.New("dialog: invalid argument")
)

// HandlerFunc executes one action against the current dialogue.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// Handler declares one dialogue transition entry point: the command names
// it answers to, the minimum permission level, and whether it may start a
// new dialogue instead of operating on a stored one.
type Handler struct {
	Commands   []string
	MinLevel   auth.Level
	Initiating bool
	Fn         HandlerFunc
}

// ChatCommand maps a typed chat command onto a service handler command.
type ChatCommand struct {
	// Name is the typed command without slash, e.g. "series".
	Name string
	// Command is the handler command the typed form maps to, e.g. "search".
	Command string
	// Description is shown in the transport's command menu.
	Description string
}

// Service is one dialogue-capable backend front-end.
type Service interface {
	Name() string
	Handlers() []Handler
	ChatCommands() []ChatCommand
	// Rerender renders the current stored state unchanged. It reports
	// false when the requester has no active dialogue.
	Rerender(ctx context.Context, req Request) (Response, bool)
}

// Host identifies an addon's parent service by value.
type Host struct {
	// Service is the host's session-key namespace.
	Service string
	// Variant is the host's backend type ("sonarr", "radarr").
	Variant string
}

// AddonItem is the host item an addon may contribute actions for.
type AddonItem struct {
	MediaID int64
	// EpisodeID is non-zero when an episode leaf is selected on the host.
	EpisodeID  int64
	Downloaded bool
}

// Addon is a service contributing extra selectable actions to another
// service's item rendering. Invoking a contributed action switches session
// keying to the addon's own namespace.
type Addon interface {
	Service
	AddonButtons(host Host, item AddonItem) []Button
}
