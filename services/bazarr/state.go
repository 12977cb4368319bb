// Package bazarr implements the subtitle-manager dialogue. It is reached
// as an addon of a series or movie service: the host item carries over via
// the action token, and the dialogue runs under bazarr's own session key.
package bazarr

import (
	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/dialog"
)

// Menu is the active screen within a subtitle dialogue.
type Menu string

const (
	MenuNone Menu = ""
	MenuList Menu = "list"
)

// State is one requester's subtitle dialogue. Host identity is carried by
// value; it is never shared mutable state on the service.
type State struct {
	Items []arr.Subtitle `json:"items"`
	Index int            `json:"index"`
	Menu  Menu           `json:"menu"`

	// MediaID is the host library item the subtitles belong to.
	MediaID int64 `json:"mediaId"`
	// EpisodeID is set when the host selection is an episode leaf.
	EpisodeID int64 `json:"episodeId"`
	// Host is the originating service, for the back navigation target.
	Host dialog.Host `json:"host"`
}

// Current returns the selected subtitle, if any.
func (s State) Current() (arr.Subtitle, bool) {
	if len(s.Items) == 0 || s.Index < 0 || s.Index >= len(s.Items) {
		return arr.Subtitle{}, false
	}
	return s.Items[s.Index], true
}

// Goto moves the selection to idx and clears the menu.
func (s State) Goto(idx int) (State, error) {
	if idx < 0 || idx >= len(s.Items) {
		return s, dialog.ErrInvalidArgument
	}
	s.Index = idx
	s.Menu = MenuNone
	return s, nil
}

// Back clears the menu only.
func (s State) Back() State {
	s.Menu = MenuNone
	return s
}
