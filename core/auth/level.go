// Package auth maps requesters to discrete permission levels and gates
// dialogue transitions against a declared minimum.
package auth

import (
	"fmt"
	"strings"
)

// Level is an ordered permission level resolved per requester.
type Level int

const (
	// Guest is the level of unregistered requesters.
	Guest Level = iota
	// User may start and navigate dialogues.
	User
	// Mod may additionally mutate items already present in a backend library.
	Mod
	// Admin may do everything Mod can plus administrative commands.
	Admin
)

// Allows reports whether the level satisfies the declared minimum.
func (l Level) Allows(min Level) bool {
	return l >= min
}

func (l Level) String() string {
	switch l {
	case Guest:
		return "guest"
	case User:
		return "user"
	case Mod:
		return "mod"
	case Admin:
		return "admin"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel converts a stored level name back into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guest":
		return Guest, nil
	case "user":
		return User, nil
	case "mod":
		return Mod, nil
	case "admin":
		return Admin, nil
	}
	return Guest, fmt.Errorf("unknown auth level %q", s)
}
