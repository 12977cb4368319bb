// Package sonarr implements the series-manager dialogue: search, browse,
// adjust quality/path/language/tags, drill into seasons and episodes, and
// submit or remove a series.
package sonarr

import (
	"github.com/telarr-bot/telarr/core/arr"
)

// Menu is the active screen within a series dialogue.
type Menu string

const (
	MenuNone     Menu = ""
	MenuAdd      Menu = "add"
	MenuPath     Menu = "path"
	MenuQuality  Menu = "quality"
	MenuLanguage Menu = "language"
	MenuTags     Menu = "tags"
	MenuSeasons  Menu = "seasons"
	MenuEpisodes Menu = "episodes"
	MenuEpisode  Menu = "episode"
)

// drillMenus are the screens reachable as a named "goto" target from the
// season/episode back buttons.
var drillMenus = map[string]Menu{
	string(MenuSeasons):  MenuSeasons,
	string(MenuEpisodes): MenuEpisodes,
	string(MenuEpisode):  MenuEpisode,
}

// State is one requester's series dialogue. Every transition returns a new
// value; stored states are never mutated in place.
type State struct {
	Items []arr.Media `json:"items"`
	Index int         `json:"index"`
	Menu  Menu        `json:"menu"`

	// Selections carried on the dialogue, never written back onto Items.
	RootFolder      arr.RootFolder `json:"rootFolder"`
	QualityProfile  arr.Profile    `json:"qualityProfile"`
	LanguageProfile arr.Profile    `json:"languageProfile"`
	Tags            []int64        `json:"tags"`

	// Season/episode drill-down selection.
	SeasonNumber  int   `json:"seasonNumber"`
	EpisodeNumber int   `json:"episodeNumber"`
	EpisodeID     int64 `json:"episodeId"`
}

// Current returns the selected item, if any.
func (s State) Current() (arr.Media, bool) {
	if len(s.Items) == 0 || s.Index < 0 || s.Index >= len(s.Items) {
		return arr.Media{}, false
	}
	return s.Items[s.Index], true
}

// Catalog holds the backend option listings a transition resolves
// selections against. Handlers fetch it; transitions stay pure over it.
type Catalog struct {
	RootFolders      []arr.RootFolder
	QualityProfiles  []arr.Profile
	LanguageProfiles []arr.Profile
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

func (c Catalog) languageFor(item arr.Media) arr.Profile {
	for _, p := range c.LanguageProfiles {
		if p.ID == item.LanguageProfileID {
			return p
		}
	}
	if len(c.LanguageProfiles) > 0 {
		return c.LanguageProfiles[0]
	}
	return arr.Profile{}
}
