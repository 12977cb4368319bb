package sonarr

import (
	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/dialog"
)

// Pure transitions over State. Backend listings arrive as a Catalog value;
// nothing here performs I/O.

// NewSearchState starts a dialogue over a fresh result set. Derived
// selections come from the first item.
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
	s.LanguageProfile = catalog.languageFor(item)
	s.Tags = append([]int64(nil), item.Tags...)
	return s
}

// Goto moves the selection to idx, recomputes the derived selections from
// the newly selected item, and returns to the neutral screen.
func (s State) Goto(idx int, catalog Catalog) (State, error) {
	if idx < 0 || idx >= len(s.Items) {
		return s, dialog.ErrInvalidArgument
	}
	s.Index = idx
	s.Menu = MenuNone
	return s.withDerived(s.Items[idx], catalog), nil
}

// Back clears the menu and nothing else. Applying it twice is the same as
// applying it once.
func (s State) Back() State {
	s.Menu = MenuNone
	return s
}

// Enter switches to a named submenu without touching the selection.
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

// SelectLanguage stores the chosen language profile and returns to the edit screen.
func (s State) SelectLanguage(p arr.Profile) State {
	s.LanguageProfile = p
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

// SelectSeason drills into one season's episode listing.
func (s State) SelectSeason(seasonNumber int) State {
	s.SeasonNumber = seasonNumber
	s.Menu = MenuEpisodes
	return s
}

// SelectEpisode drills into the episode leaf screen.
func (s State) SelectEpisode(seasonNumber, episodeNumber int, episodeID int64) State {
	s.SeasonNumber = seasonNumber
	s.EpisodeNumber = episodeNumber
	s.EpisodeID = episodeID
	s.Menu = MenuEpisode
	return s
}

// AddOptions assembles the terminal submit call from the carried selections.
func (s State) AddOptions(searchOnAdd bool) arr.AddOptions {
	return arr.AddOptions{
		QualityProfileID:  s.QualityProfile.ID,
		LanguageProfileID: s.LanguageProfile.ID,
		RootFolderPath:    s.RootFolder.Path,
		Tags:              s.Tags,
		SearchOnAdd:       searchOnAdd,
	}
}
