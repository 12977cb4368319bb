// Package radarr implements the movie-manager dialogue: search, browse,
// adjust quality/path/tags, and submit or remove a movie. Movies have no
// language profiles and no season drill-down.
package radarr

import (
	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/dialog"
)

// Menu is the active screen within a movie dialogue.
type Menu string

const (
	MenuNone    Menu = ""
	MenuAdd     Menu = "add"
	MenuPath    Menu = "path"
	MenuQuality Menu = "quality"
	MenuTags    Menu = "tags"
)

// State is one requester's movie dialogue.
type State struct {
	Items []arr.Media `json:"items"`
	Index int         `json:"index"`
	Menu  Menu        `json:"menu"`

	RootFolder     arr.RootFolder `json:"rootFolder"`
	QualityProfile arr.Profile    `json:"qualityProfile"`
	Tags           []int64        `json:"tags"`
}

// Current returns the selected item, if any.
func (s State) Current() (arr.Media, bool) {
	if len(s.Items) == 0 || s.Index < 0 || s.Index >= len(s.Items) {
		return arr.Media{}, false
	}
	return s.Items[s.Index], true
}

// Catalog holds the backend option listings for selection resolution.
type Catalog struct {
	RootFolders     []arr.RootFolder
	QualityProfiles []arr.Profile
}

func (c Catalog) rootFolderFor(item arr.Media) arr.RootFolder {
	for _, f := range c.RootFolders {
		if f.Path != "" && len(item.FolderName) >= len(f.Path) && item.FolderName[:len(f.Path)] == f.Path {
			return f
		}
	}
	if len(c.RootFolders) > 0 {
		return c.RootFolders[0]
	}
	return arr.RootFolder{}
}

func (c Catalog) qualityFor(item arr.Media) arr.Profile {
	for _, p := range c.QualityProfiles {
		if p.ID == item.QualityProfileID {
			return p
		}
	}
	if len(c.QualityProfiles) > 0 {
		return c.QualityProfiles[0]
	}
	return arr.Profile{}
}

// NewSearchState starts a dialogue over a fresh result set.
func NewSearchState(items []arr.Media, catalog Catalog) State {
	s := State{Items: items}
	if len(items) > 0 {
		s = s.withDerived(items[0], catalog)
	}
	return s
}

func (s State) withDerived(item arr.Media, catalog Catalog) State {
	s.RootFolder = catalog.rootFolderFor(item)
	s.QualityProfile = catalog.qualityFor(item)
	s.Tags = append([]int64(nil), item.Tags...)
	return s
}

// Goto moves the selection to idx and recomputes derived selections.
func (s State) Goto(idx int, catalog Catalog) (State, error) {
	if idx < 0 || idx >= len(s.Items) {
		return s, dialog.ErrInvalidArgument
	}
	s.Index = idx
	s.Menu = MenuNone
	return s.withDerived(s.Items[idx], catalog), nil
}

// Back clears the menu only.
func (s State) Back() State {
	s.Menu = MenuNone
	return s
}

// Enter switches to a named submenu.
func (s State) Enter(menu Menu) State {
	s.Menu = menu
	return s
}

// EnterTags opens the tag screen with an empty working set.
func (s State) EnterTags() State {
	s.Tags = nil
	s.Menu = MenuTags
	return s
}

// SelectRootFolder stores the chosen folder and returns to the edit screen.
func (s State) SelectRootFolder(f arr.RootFolder) State {
	s.RootFolder = f
	s.Menu = MenuAdd
	return s
}

// SelectQuality stores the chosen quality profile and returns to the edit screen.
func (s State) SelectQuality(p arr.Profile) State {
	s.QualityProfile = p
	s.Menu = MenuAdd
	return s
}

// AddTag adds id to the tag set. Membership is set-like.
func (s State) AddTag(id int64) State {
	for _, t := range s.Tags {
		if t == id {
			return s
		}
	}
	tags := make([]int64, 0, len(s.Tags)+1)
	tags = append(tags, s.Tags...)
	s.Tags = append(tags, id)
	return s
}

// RemoveTag removes id from the tag set.
func (s State) RemoveTag(id int64) State {
	tags := make([]int64, 0, len(s.Tags))
	for _, t := range s.Tags {
		if t != id {
			tags = append(tags, t)
		}
	}
	s.Tags = tags
	return s
}

// AddOptions assembles the terminal submit call from the carried selections.
func (s State) AddOptions(searchOnAdd bool) arr.AddOptions {
	return arr.AddOptions{
		QualityProfileID: s.QualityProfile.ID,
		RootFolderPath:   s.RootFolder.Path,
		Tags:             s.Tags,
		SearchOnAdd:      searchOnAdd,
	}
}
