package arr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RadarrClient talks to a Radarr v3 API. Movies have no language profiles
// and no season drill-down, otherwise the surface mirrors Sonarr.
type RadarrClient struct {
	c *client
}

// NewRadarrClient builds a client for one configured Radarr instance.
func NewRadarrClient(name, apiHost, apiKey string) *RadarrClient {
	return &RadarrClient{c: newClient(name, apiHost, "/api/v3", apiKey)}
}

// Detect performs the startup handshake and returns the backend version.
func (r *RadarrClient) Detect(ctx context.Context) (string, error) {
	var status struct {
		Version string `json:"version"`
	}
	if err := r.c.get(ctx, "system/status", nil, &status); err != nil {
		return "", fmt.Errorf("radarr handshake: %w", err)
	}
	if status.Version == "" {
		return "", fmt.Errorf("radarr handshake: no version in status response")
	}
	return status.Version, nil
}

// Lookup searches movies by title.
func (r *RadarrClient) Lookup(ctx context.Context, query string) ([]Media, error) {
	params := url.Values{"term": {query}}
	var items []Media
	if err := r.c.get(ctx, "movie/lookup", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RootFolders lists configured storage locations; empty on failure.
func (r *RadarrClient) RootFolders(ctx context.Context) []RootFolder {
	return getList[RootFolder](ctx, r.c, "rootfolder", nil)
}

// QualityProfiles lists quality profiles; empty on failure.
func (r *RadarrClient) QualityProfiles(ctx context.Context) []Profile {
	return getList[Profile](ctx, r.c, "qualityprofile", nil)
}

// Tags lists the tag catalog; empty on failure.
func (r *RadarrClient) Tags(ctx context.Context) []Tag {
	return getList[Tag](ctx, r.c, "tag", nil)
}

type radarrAddPayload struct {
	Media
	RootFolderPath string         `json:"rootFolderPath,omitempty"`
	AddOptions     map[string]any `json:"addOptions,omitempty"`
}

// Add creates the movie in the library, or updates it when it already has
// a persisted identifier.
func (r *RadarrClient) Add(ctx context.Context, item Media, opts AddOptions) error {
	payload := radarrAddPayload{Media: item}
	payload.QualityProfileID = opts.QualityProfileID
	payload.Tags = opts.Tags
	payload.RootFolderPath = opts.RootFolderPath
	payload.Monitored = true
	payload.AddOptions = map[string]any{
		"searchForMovie": opts.SearchOnAdd,
	}

	if item.InLibrary() {
		return r.c.do(ctx, http.MethodPut, fmt.Sprintf("movie/%d", item.ID), nil, payload, nil)
	}
	return r.c.do(ctx, http.MethodPost, "movie", nil, payload, nil)
}

// Remove deletes a movie from the library, keeping files on disk.
func (r *RadarrClient) Remove(ctx context.Context, id int64) error {
	params := url.Values{"deleteFiles": {"false"}}
	return r.c.do(ctx, http.MethodDelete, fmt.Sprintf("movie/%d", id), params, nil, nil)
}
