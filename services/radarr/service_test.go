package radarr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/auth"
	"github.com/telarr-bot/telarr/core/dialog"
	"github.com/telarr-bot/telarr/core/session"
)

type stubGate struct {
	level auth.Level
}

func (g stubGate) LevelOf(context.Context, int64) auth.Level { return g.level }

func testCatalog() Catalog {
	return Catalog{
		RootFolders:     []arr.RootFolder{{ID: 1, Path: "/movies"}},
		QualityProfiles: []arr.Profile{{ID: 10, Name: "HD-1080p"}, {ID: 11, Name: "4K"}},
	}
}

func movieItems() []arr.Media {
	return []arr.Media{
		{Title: "A", FolderName: "/movies/a", QualityProfileID: 10},
		{Title: "B", FolderName: "/movies/b", QualityProfileID: 11},
	}
}

func TestGotoRecomputesAndClearsMenu(t *testing.T) {
	st := NewSearchState(movieItems(), testCatalog()).Enter(MenuAdd)
	next, err := st.Goto(1, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 1, next.Index)
	assert.Equal(t, MenuNone, next.Menu)
	assert.Equal(t, "4K", next.QualityProfile.Name)

	_, err = st.Goto(9, testCatalog())
	assert.ErrorIs(t, err, dialog.ErrInvalidArgument)
}

func TestTagToggle(t *testing.T) {
	st := State{Tags: []int64{1}}
	st = st.AddTag(2).AddTag(2).RemoveTag(1)
	assert.Equal(t, []int64{2}, st.Tags)
}

func TestSelectReturnsToEditScreen(t *testing.T) {
	st := NewSearchState(movieItems(), testCatalog()).Enter(MenuQuality)
	st = st.SelectQuality(arr.Profile{ID: 11, Name: "4K"})
	assert.Equal(t, MenuAdd, st.Menu)
}

func newFixture(t *testing.T, items []arr.Media, level auth.Level) (*dialog.Router, session.Store[State]) {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
	mux.HandleFunc("GET /api/v3/movie/lookup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, items)
	})
	mux.HandleFunc("GET /api/v3/rootfolder", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, testCatalog().RootFolders)
	})
	mux.HandleFunc("GET /api/v3/qualityprofile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, testCatalog().QualityProfiles)
	})
	mux.HandleFunc("POST /api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"id": 7})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore[State](0)
	svc := New("radarr", arr.NewRadarrClient("radarr", srv.URL, "key"), store, []string{"movie"})
	router := dialog.NewRouter(stubGate{level: level})
	require.NoError(t, router.Register(svc))
	return router, store
}

func TestSearchThenAddClearsSession(t *testing.T) {
	ctx := context.Background()
	router, store := newFixture(t, movieItems(), auth.User)
	key := session.Key{UserID: 7, ChatID: 7, Service: "radarr"}

	resp := router.Dispatch(ctx, dialog.Request{Service: "radarr", Command: "search", Args: []string{"a"}, UserID: 7, ChatID: 7})
	assert.Equal(t, dialog.OutcomeOK, resp.Outcome)
	_, ok, _ := store.Get(ctx, key)
	require.True(t, ok)

	resp = router.Dispatch(ctx, dialog.Request{Service: "radarr", Command: "add", Args: []string{"no-search"}, UserID: 7, ChatID: 7})
	assert.Equal(t, "Movie added!", resp.Caption)
	_, ok, _ = store.Get(ctx, key)
	assert.False(t, ok)
}

func TestStaleActionWithoutSession(t *testing.T) {
	ctx := context.Background()
	router, store := newFixture(t, movieItems(), auth.User)

	resp := router.Dispatch(ctx, dialog.Request{Service: "radarr", Command: "goto", UserID: 7, ChatID: 7})
	assert.Equal(t, dialog.OutcomeStale, resp.Outcome)
	_, ok, _ := store.Get(ctx, session.Key{UserID: 7, ChatID: 7, Service: "radarr"})
	assert.False(t, ok)
}
