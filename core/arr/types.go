// Package arr holds HTTP clients for the media automation backends
// (Sonarr, Radarr, Bazarr) consumed by the dialogue handlers.
package arr

// Media is one lookup/library record from a series or movie manager.
// Selection state (chosen season, episode, profiles) is never written back
// onto these records; it lives in the dialogue state.
type Media struct {
	ID                int64   `json:"id,omitempty"`
	Title             string  `json:"title"`
	TitleSlug         string  `json:"titleSlug,omitempty"`
	Year              int     `json:"year,omitempty"`
	Overview          string  `json:"overview,omitempty"`
	Monitored         bool    `json:"monitored"`
	HasFile           bool    `json:"hasFile,omitempty"`
	Path              string  `json:"path,omitempty"`
	FolderName        string  `json:"folderName,omitempty"`
	QualityProfileID  int64   `json:"qualityProfileId,omitempty"`
	LanguageProfileID int64   `json:"languageProfileId,omitempty"`
	Tags              []int64 `json:"tags,omitempty"`
	TVDBID            int64   `json:"tvdbId,omitempty"`
	TMDBID            int64   `json:"tmdbId,omitempty"`
	IMDBID            string  `json:"imdbId,omitempty"`
	RemotePoster      string  `json:"remotePoster,omitempty"`
}

// InLibrary reports whether the backend already persists this item.
func (m Media) InLibrary() bool {
	return m.ID != 0
}

// RootFolder is a storage location offered by a series or movie manager.
type RootFolder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// Profile is a quality or language profile.
type Profile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is a backend label attachable to media.
type Tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// SeasonStatistics summarizes episode availability within a season.
type SeasonStatistics struct {
	EpisodeFileCount  int `json:"episodeFileCount"`
	TotalEpisodeCount int `json:"totalEpisodeCount"`
}

// Season is one season entry of a series record.
type Season struct {
	SeasonNumber int              `json:"seasonNumber"`
	Monitored    bool             `json:"monitored"`
	Statistics   SeasonStatistics `json:"statistics"`
}

// Episode is one episode record of a series.
type Episode struct {
	ID            int64  `json:"id"`
	SeriesID      int64  `json:"seriesId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	Overview      string `json:"overview,omitempty"`
	HasFile       bool   `json:"hasFile"`
}

// Subtitle is one provider search result from the subtitle manager.
type Subtitle struct {
	Score           int      `json:"score"`
	Language        string   `json:"language"`
	Provider        string   `json:"provider"`
	Subtitle        string   `json:"subtitle"`
	ReleaseInfo     []string `json:"release_info"`
	HearingImpaired string   `json:"hearing_impaired"`
	Forced          string   `json:"forced"`
	OriginalFormat  string   `json:"original_format"`
}

// AddOptions carries the terminal add/submit call options. SearchOnAdd is
// forwarded verbatim into the backend's addOptions map.
type AddOptions struct {
	QualityProfileID  int64
	LanguageProfileID int64
	RootFolderPath    string
	Tags              []int64
	SearchOnAdd       bool
}
