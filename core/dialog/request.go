// Package dialog routes decoded user actions to per-service dialogue
// handlers, gating each transition on the requester's permission level and
// serializing the session read-modify-write per key.
package dialog

import (
	"fmt"
	"strings"

	"github.com/telarr-bot/telarr/core/auth"
	"github.com/telarr-bot/telarr/core/session"
)

// Request is one decoded inbound action.
type Request struct {
	Service string
	Command string
	Args    []string
	UserID  int64
	ChatID  int64
	// Level is resolved by the router before the handler runs;
	// it is never cached in dialogue state.
	Level auth.Level
}

// Key returns the session key selecting the dialogue this action targets.
func (r Request) Key() session.Key {
	return session.Key{UserID: r.UserID, ChatID: r.ChatID, Service: r.Service}
}

// Arg returns the positional argument at i, or "" when absent.
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// EncodeToken builds the callback token for a service command.
func EncodeToken(service, command string, args ...string) string {
	parts := append([]string{service, command}, args...)
	return strings.Join(parts, ":")
}

// DecodeToken splits an action token of the form service:command:arg1:...
// Slash-delimited tokens are accepted as an alias encoding.
func DecodeToken(token string) (service, command string, args []string, err error) {
	token = strings.TrimSpace(token)
	sep := ":"
	if !strings.Contains(token, ":") && strings.Contains(token, "/") {
		sep = "/"
	}
	parts := strings.Split(token, sep)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", nil, fmt.Errorf("dialog: malformed action token %q", token)
	}
	return parts[0], parts[1], parts[2:], nil
}
