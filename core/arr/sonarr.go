package arr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// SonarrClient talks to a Sonarr v3 API.
type SonarrClient struct {
	c *client
}

// NewSonarrClient builds a client for one configured Sonarr instance.
func NewSonarrClient(name, apiHost, apiKey string) *SonarrClient {
	return &SonarrClient{c: newClient(name, apiHost, "/api/v3", apiKey)}
}

// Detect performs the startup handshake and returns the backend version.
func (s *SonarrClient) Detect(ctx context.Context) (string, error) {
	var status struct {
		Version string `json:"version"`
	}
	if err := s.c.get(ctx, "system/status", nil, &status); err != nil {
		return "", fmt.Errorf("sonarr handshake: %w", err)
	}
	if status.Version == "" {
		return "", fmt.Errorf("sonarr handshake: no version in status response")
	}
	return status.Version, nil
}

// Lookup searches series by title.
func (s *SonarrClient) Lookup(ctx context.Context, query string) ([]Media, error) {
	params := url.Values{"term": {query}}
	var items []Media
	if err := s.c.get(ctx, "series/lookup", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RootFolders lists configured storage locations; empty on failure.
func (s *SonarrClient) RootFolders(ctx context.Context) []RootFolder {
	return getList[RootFolder](ctx, s.c, "rootfolder", nil)
}

// QualityProfiles lists quality profiles; empty on failure.
func (s *SonarrClient) QualityProfiles(ctx context.Context) []Profile {
	return getList[Profile](ctx, s.c, "qualityprofile", nil)
}

// LanguageProfiles lists language profiles; empty on failure.
func (s *SonarrClient) LanguageProfiles(ctx context.Context) []Profile {
	return getList[Profile](ctx, s.c, "languageprofile", nil)
}

// Tags lists the tag catalog; empty on failure.
func (s *SonarrClient) Tags(ctx context.Context) []Tag {
	return getList[Tag](ctx, s.c, "tag", nil)
}

// Seasons lists the seasons of a library series; empty on failure.
func (s *SonarrClient) Seasons(ctx context.Context, seriesID int64) []Season {
	var series struct {
		Seasons []Season `json:"seasons"`
	}
	if err := s.c.get(ctx, fmt.Sprintf("series/%d", seriesID), nil, &series); err != nil {
		return nil
	}
	return series.Seasons
}

// Episodes lists the episodes of one season; empty on failure.
func (s *SonarrClient) Episodes(ctx context.Context, seriesID int64, seasonNumber int) []Episode {
	params := url.Values{
		"seriesId":     {strconv.FormatInt(seriesID, 10)},
		"seasonNumber": {strconv.Itoa(seasonNumber)},
	}
	return getList[Episode](ctx, s.c, "episode", params)
}

// Episode fetches one episode record.
func (s *SonarrClient) Episode(ctx context.Context, episodeID int64) (Episode, error) {
	var ep Episode
	if err := s.c.get(ctx, fmt.Sprintf("episode/%d", episodeID), nil, &ep); err != nil {
		return Episode{}, err
	}
	return ep, nil
}

type sonarrAddPayload struct {
	Media
	RootFolderPath string         `json:"rootFolderPath,omitempty"`
	AddOptions     map[string]any `json:"addOptions,omitempty"`
}

// Add creates the series in the library, or updates it when it already has
// a persisted identifier.
func (s *SonarrClient) Add(ctx context.Context, item Media, opts AddOptions) error {
	payload := sonarrAddPayload{Media: item}
	payload.QualityProfileID = opts.QualityProfileID
	payload.LanguageProfileID = opts.LanguageProfileID
	payload.Tags = opts.Tags
	payload.RootFolderPath = opts.RootFolderPath
	payload.Monitored = true
	payload.AddOptions = map[string]any{
		"searchForMissingEpisodes": opts.SearchOnAdd,
		"monitor":                  "all",
	}

	if item.InLibrary() {
		return s.c.do(ctx, http.MethodPut, fmt.Sprintf("series/%d", item.ID), nil, payload, nil)
	}
	return s.c.do(ctx, http.MethodPost, "series", nil, payload, nil)
}

// Remove deletes a series from the library, keeping files on disk.
func (s *SonarrClient) Remove(ctx context.Context, id int64) error {
	params := url.Values{"deleteFiles": {"false"}}
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("series/%d", id), params, nil, nil)
}
