package sonarr

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
	levels map[int64]auth.Level
}

func (g stubGate) LevelOf(_ context.Context, userID int64) auth.Level {
	return g.levels[userID]
}

type backend struct {
	removed []string
	added   int
}

func newBackend(t *testing.T, items []arr.Media) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
	mux.HandleFunc("GET /api/v3/series/lookup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, items)
	})
	mux.HandleFunc("GET /api/v3/rootfolder", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []arr.RootFolder{{ID: 1, Path: "/tv"}})
	})
	mux.HandleFunc("GET /api/v3/qualityprofile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []arr.Profile{{ID: 10, Name: "HD-1080p"}})
	})
	mux.HandleFunc("GET /api/v3/languageprofile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []arr.Profile{{ID: 20, Name: "English"}})
	})
	mux.HandleFunc("GET /api/v3/tag", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []arr.Tag{{ID: 3, Label: "kids"}})
	})
	mux.HandleFunc("POST /api/v3/series", func(w http.ResponseWriter, r *http.Request) {
		b.added++
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"id": 99})
	})
	mux.HandleFunc("DELETE /api/v3/series/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.removed = append(b.removed, r.PathValue("id"))
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func newFixture(t *testing.T, items []arr.Media, level auth.Level) (*dialog.Router, session.Store[State], *backend) {
	t.Helper()
	b, srv := newBackend(t, items)
	store := session.NewMemoryStore[State](0)
	svc := New("sonarr", arr.NewSonarrClient("sonarr", srv.URL, "key"), store, []string{"series"})

	router := dialog.NewRouter(stubGate{levels: map[int64]auth.Level{7: level}})
	require.NoError(t, router.Register(svc))
	return router, store, b
}

func req(command string, args ...string) dialog.Request {
	return dialog.Request{Service: "sonarr", Command: command, Args: args, UserID: 7, ChatID: 7}
}

func sessionKey() session.Key {
	return session.Key{UserID: 7, ChatID: 7, Service: "sonarr"}
}

func TestSearchStartsDialogue(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t, twoItems(), auth.User)

	resp := router.Dispatch(ctx, req("search", "some", "title"))
	assert.Equal(t, dialog.OutcomeOK, resp.Outcome)
	assert.Contains(t, resp.Caption, "A")
	assert.NotEmpty(t, resp.Rows)

	st, ok, err := store.Get(ctx, sessionKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, st.Items, 2)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, "/tv", st.RootFolder.Path)
}

func TestGotoAdvancesSelection(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t, twoItems(), auth.User)
	router.Dispatch(ctx, req("search", "title"))

	resp := router.Dispatch(ctx, req("goto", "1"))
	assert.Equal(t, dialog.OutcomeOK, resp.Outcome)
	assert.Contains(t, resp.Caption, "B")

	st, ok, err := store.Get(ctx, sessionKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, MenuNone, st.Menu)
}

func TestGotoOutOfRangeRerendersUnchanged(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t, twoItems(), auth.User)
	router.Dispatch(ctx, req("search", "title"))
	before, _, _ := store.Get(ctx, sessionKey())

	resp := router.Dispatch(ctx, req("goto", "5"))
	assert.Equal(t, dialog.OutcomeInvalid, resp.Outcome)

	after, ok, err := store.Get(ctx, sessionKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestStaleGotoCreatesNoSession(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t, twoItems(), auth.User)

	resp := router.Dispatch(ctx, req("goto"))
	assert.Equal(t, dialog.OutcomeStale, resp.Outcome)
	assert.Equal(t, "Nothing active here. Start a new search.", resp.Caption)

	_, ok, err := store.Get(ctx, sessionKey())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddWithoutItemsFailsAndClears(t *testing.T) {
	ctx := context.Background()
	router, store, b := newFixture(t, nil, auth.User)
	router.Dispatch(ctx, req("search", "nothing"))

	resp := router.Dispatch(ctx, req("add", "search"))
	assert.Equal(t, dialog.OutcomeFailed, resp.Outcome)
	assert.Equal(t, "Seems like something went wrong...", resp.Caption)
	assert.Zero(t, b.added)

	_, ok, err := store.Get(ctx, sessionKey())
	require.NoError(t, err)
	assert.False(t, ok, "terminal attempt must clear the session")
}

func TestAddSubmitsAndClears(t *testing.T) {
	ctx := context.Background()
	router, store, b := newFixture(t, twoItems(), auth.User)
	router.Dispatch(ctx, req("search", "title"))
	router.Dispatch(ctx, req("addmenu"))

	resp := router.Dispatch(ctx, req("add", "search"))
	assert.Equal(t, dialog.OutcomeOK, resp.Outcome)
	assert.Equal(t, "Series added!", resp.Caption)
	assert.Equal(t, 1, b.added)

	_, ok, _ := store.Get(ctx, sessionKey())
	assert.False(t, ok)
}

func TestRemoveInLibraryDeniedAtBaseline(t *testing.T) {
	ctx := context.Background()
	inLibrary := []arr.Media{{ID: 42, Title: "A", FolderName: "/tv/a", QualityProfileID: 10, LanguageProfileID: 20}}
	router, store, b := newFixture(t, inLibrary, auth.User)
	router.Dispatch(ctx, req("search", "a"))
	before, _, _ := store.Get(ctx, sessionKey())

	resp := router.Dispatch(ctx, req("remove"))
	assert.Equal(t, dialog.OutcomeDenied, resp.Outcome)
	assert.Empty(t, b.removed)

	after, ok, err := store.Get(ctx, sessionKey())
	require.NoError(t, err)
	require.True(t, ok, "denied terminal must not clear the session")
	assert.Equal(t, before, after)
}

func TestRemoveAllowedForMod(t *testing.T) {
	ctx := context.Background()
	inLibrary := []arr.Media{{ID: 42, Title: "A", FolderName: "/tv/a", QualityProfileID: 10, LanguageProfileID: 20}}
	router, store, b := newFixture(t, inLibrary, auth.Mod)
	router.Dispatch(ctx, req("search", "a"))

	resp := router.Dispatch(ctx, req("remove"))
	assert.Equal(t, dialog.OutcomeOK, resp.Outcome)
	assert.Equal(t, "Series removed!", resp.Caption)
	assert.Equal(t, []string{"42"}, b.removed)

	_, ok, _ := store.Get(ctx, sessionKey())
	assert.False(t, ok)
}

func TestMutationOnInLibraryItemDeniedAtBaseline(t *testing.T) {
	ctx := context.Background()
	inLibrary := []arr.Media{{ID: 42, Title: "A", FolderName: "/tv/a", QualityProfileID: 10, LanguageProfileID: 20}}
	router, store, _ := newFixture(t, inLibrary, auth.User)
	router.Dispatch(ctx, req("search", "a"))
	before, _, _ := store.Get(ctx, sessionKey())

	resp := router.Dispatch(ctx, req("selectquality", "10"))
	assert.Equal(t, dialog.OutcomeDenied, resp.Outcome)

	after, _, _ := store.Get(ctx, sessionKey())
	assert.Equal(t, before, after)
}

func TestCancelClearsWithCaption(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t, twoItems(), auth.User)
	router.Dispatch(ctx, req("search", "title"))

	resp := router.Dispatch(ctx, req("cancel"))
	assert.Equal(t, "Search canceled!", resp.Caption)

	_, ok, _ := store.Get(ctx, sessionKey())
	assert.False(t, ok)
}

func TestSelectQualityReturnsToEditMenu(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t, twoItems(), auth.User)
	router.Dispatch(ctx, req("search", "title"))
	router.Dispatch(ctx, req("quality"))

	resp := router.Dispatch(ctx, req("selectquality", "10"))
	assert.Equal(t, dialog.OutcomeOK, resp.Outcome)

	st, _, _ := store.Get(ctx, sessionKey())
	assert.Equal(t, MenuAdd, st.Menu)
	assert.Equal(t, "HD-1080p", st.QualityProfile.Name)
}
