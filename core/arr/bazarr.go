package arr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// BazarrClient talks to a Bazarr API.
type BazarrClient struct {
	c *client
}

// NewBazarrClient builds a client for one configured Bazarr instance.
func NewBazarrClient(name, apiHost, apiKey string) *BazarrClient {
	return &BazarrClient{c: newClient(name, apiHost, "/api", apiKey)}
}

// Detect performs the startup handshake and returns the backend version.
func (b *BazarrClient) Detect(ctx context.Context) (string, error) {
	var status struct {
		Data struct {
			BazarrVersion string `json:"bazarr_version"`
		} `json:"data"`
	}
	if err := b.c.get(ctx, "system/status", nil, &status); err != nil {
		return "", fmt.Errorf("bazarr handshake: %w", err)
	}
	if status.Data.BazarrVersion == "" {
		return "", fmt.Errorf("bazarr handshake: no version in status response")
	}
	return status.Data.BazarrVersion, nil
}

type subtitleListing struct {
	Data []Subtitle `json:"data"`
}

// MovieSubtitles lists provider results for a Radarr movie; empty on failure.
func (b *BazarrClient) MovieSubtitles(ctx context.Context, radarrID int64) []Subtitle {
	params := url.Values{"radarrid": {strconv.FormatInt(radarrID, 10)}}
	var listing subtitleListing
	if err := b.c.get(ctx, "providers/movies", params, &listing); err != nil {
		return nil
	}
	return listing.Data
}

// EpisodeSubtitles lists provider results for a Sonarr episode; empty on failure.
func (b *BazarrClient) EpisodeSubtitles(ctx context.Context, episodeID int64) []Subtitle {
	params := url.Values{"episodeid": {strconv.FormatInt(episodeID, 10)}}
	var listing subtitleListing
	if err := b.c.get(ctx, "providers/episodes", params, &listing); err != nil {
		return nil
	}
	return listing.Data
}

func subtitleParams(sub Subtitle) url.Values {
	return url.Values{
		"hi":              {sub.HearingImpaired},
		"forced":          {sub.Forced},
		"original_format": {sub.OriginalFormat},
		"provider":        {sub.Provider},
		"subtitle":        {sub.Subtitle},
	}
}

// AddMovieSubtitle asks Bazarr to download one provider result for a movie.
func (b *BazarrClient) AddMovieSubtitle(ctx context.Context, radarrID int64, sub Subtitle) error {
	params := subtitleParams(sub)
	params.Set("radarrid", strconv.FormatInt(radarrID, 10))
	return b.c.do(ctx, http.MethodPost, "providers/movies", params, nil, nil)
}

// AddEpisodeSubtitle asks Bazarr to download one provider result for an episode.
func (b *BazarrClient) AddEpisodeSubtitle(ctx context.Context, episodeID int64, sub Subtitle) error {
	params := subtitleParams(sub)
	params.Set("episodeid", strconv.FormatInt(episodeID, 10))
	return b.c.do(ctx, http.MethodPost, "providers/episodes", params, nil, nil)
}
