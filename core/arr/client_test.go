package arr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestSonarr(t *testing.T, handler http.HandlerFunc) *SonarrClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewSonarrClient("sonarr", srv.URL, "test-key")
	// The retry transport only slows failure tests down here.
	s.c.http = srv.Client()
	return s
}

func TestClientSendsAPIKey(t *testing.T) {
	var gotKey string
	s := newTestSonarr(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		_ = json.NewEncoder(w).Encode(map[string]string{"version": "3.0.0"})
	})

	version, err := s.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if version != "3.0.0" {
		t.Fatalf("version = %q", version)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header = %q", gotKey)
	}
}

func TestDetectFailsWithoutVersion(t *testing.T) {
	s := newTestSonarr(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})
	if _, err := s.Detect(context.Background()); err == nil {
		t.Fatal("expected handshake error for missing version")
	}
}

func TestListingDegradesToEmptyOnFailure(t *testing.T) {
	s := newTestSonarr(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if folders := s.RootFolders(context.Background()); len(folders) != 0 {
		t.Fatalf("expected empty root folders, got %d", len(folders))
	}
	if profiles := s.QualityProfiles(context.Background()); len(profiles) != 0 {
		t.Fatalf("expected empty profiles, got %d", len(profiles))
	}
	if seasons := s.Seasons(context.Background(), 42); len(seasons) != 0 {
		t.Fatalf("expected empty seasons, got %d", len(seasons))
	}
}

func TestLookupPropagatesError(t *testing.T) {
	s := newTestSonarr(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})
	_, err := s.Lookup(context.Background(), "breaking bad")
	if err == nil {
		t.Fatal("expected error")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddRoutesCreateVersusUpdate(t *testing.T) {
	var method, path string
	var payload sonarrAddPayload
	s := newTestSonarr(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusCreated)
	})

	opts := AddOptions{QualityProfileID: 4, RootFolderPath: "/tv", SearchOnAdd: true}
	if err := s.Add(context.Background(), Media{Title: "New Show"}, opts); err != nil {
		t.Fatalf("add: %v", err)
	}
	if method != http.MethodPost || path != "/api/v3/series" {
		t.Fatalf("create routed to %s %s", method, path)
	}
	if payload.AddOptions["searchForMissingEpisodes"] != true {
		t.Fatalf("search option not forwarded: %v", payload.AddOptions)
	}

	if err := s.Add(context.Background(), Media{ID: 9, Title: "Old Show"}, opts); err != nil {
		t.Fatalf("update: %v", err)
	}
	if method != http.MethodPut || path != "/api/v3/series/9" {
		t.Fatalf("update routed to %s %s", method, path)
	}
}

func TestRemoveKeepsFiles(t *testing.T) {
	var query url.Values
	s := newTestSonarr(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	})
	if err := s.Remove(context.Background(), 7); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if query.Get("deleteFiles") != "false" {
		t.Fatalf("deleteFiles = %q", query.Get("deleteFiles"))
	}
}

func TestBazarrSubtitleListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("radarrid") != "12" {
			http.Error(w, "missing radarrid", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(subtitleListing{Data: []Subtitle{
			{Score: 97, Provider: "opensubtitles", ReleaseInfo: []string{"Movie.2024.1080p"}},
		}})
	}))
	defer srv.Close()

	b := NewBazarrClient("bazarr", srv.URL, "k")
	b.c.http = srv.Client()

	subs := b.MovieSubtitles(context.Background(), 12)
	if len(subs) != 1 || subs[0].Score != 97 {
		t.Fatalf("unexpected subtitles: %+v", subs)
	}
	if subs := b.EpisodeSubtitles(context.Background(), 9); len(subs) != 0 {
		t.Fatalf("expected empty listing on backend rejection, got %d", len(subs))
	}
}
