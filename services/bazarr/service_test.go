package bazarr

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

type stubGate struct{}

func (stubGate) LevelOf(context.Context, int64) auth.Level { return auth.User }

func subtitles() []arr.Subtitle {
	return []arr.Subtitle{
		{Score: 98, Provider: "opensubtitles", Subtitle: "abc", ReleaseInfo: []string{"Group-1080p"}},
		{Score: 90, Provider: "subscene", Subtitle: "def", ReleaseInfo: []string{"Other-720p"}},
	}
}

func newFixture(t *testing.T) (*dialog.Router, session.Store[State], *[]string) {
	t.Helper()
	var posted []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/providers/movies", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posted = append(posted, r.URL.Query().Get("subtitle"))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": subtitles()}))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore[State](0)
	svc := New("bazarr", arr.NewBazarrClient("bazarr", srv.URL, "key"), store)
	svc.SetHosts([]dialog.Host{{Service: "radarr", Variant: "radarr"}})

	router := dialog.NewRouter(stubGate{})
	require.NoError(t, router.Register(svc))
	return router, store, &posted
}

func bazarrKey() session.Key {
	return session.Key{UserID: 7, ChatID: 7, Service: "bazarr"}
}

func TestListStartsDialogueUnderOwnKey(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t)

	resp := router.DispatchToken(ctx, "bazarr:list:42:radarr", 7, 7)
	assert.Equal(t, dialog.OutcomeOK, resp.Outcome)

	st, ok, err := store.Get(ctx, bazarrKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, st.Items, 2)
	assert.EqualValues(t, 42, st.MediaID)
	assert.Equal(t, "radarr", st.Host.Service)

	// Only bazarr's key is touched; the host's session is not part of this dialogue.
	_, ok, err = store.Get(ctx, session.Key{UserID: 7, ChatID: 7, Service: "radarr"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListRendersScoredRowsAndBack(t *testing.T) {
	ctx := context.Background()
	router, _, _ := newFixture(t)

	resp := router.DispatchToken(ctx, "bazarr:list:42:radarr", 7, 7)
	require.NotEmpty(t, resp.Rows)
	assert.Equal(t, "=== Subtitles ===", resp.Rows[0][0].Text)
	assert.Contains(t, resp.Rows[1][0].Text, "[Score: 98]")
	assert.Equal(t, "bazarr:addsub:0", resp.Rows[1][0].Token)

	last := resp.Rows[len(resp.Rows)-1]
	assert.Equal(t, "🔙 Back", last[0].Text)
	assert.Equal(t, "radarr:addmenu", last[0].Token)
}

func TestListUnknownHostIsInvalid(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t)

	resp := router.DispatchToken(ctx, "bazarr:list:42:unknown", 7, 7)
	assert.Equal(t, dialog.OutcomeInvalid, resp.Outcome)

	_, ok, _ := store.Get(ctx, bazarrKey())
	assert.False(t, ok)
}

func TestAddSubClearsSession(t *testing.T) {
	ctx := context.Background()
	router, store, posted := newFixture(t)
	router.DispatchToken(ctx, "bazarr:list:42:radarr", 7, 7)

	resp := router.DispatchToken(ctx, "bazarr:addsub:1", 7, 7)
	assert.Equal(t, "Subtitle added!", resp.Caption)
	assert.Equal(t, []string{"def"}, *posted)

	_, ok, _ := store.Get(ctx, bazarrKey())
	assert.False(t, ok)
}

func TestCancelClearsWithCaption(t *testing.T) {
	ctx := context.Background()
	router, store, _ := newFixture(t)
	router.DispatchToken(ctx, "bazarr:list:42:radarr", 7, 7)

	resp := router.DispatchToken(ctx, "bazarr:cancel", 7, 7)
	assert.Equal(t, "Subtitle Search canceled!", resp.Caption)

	_, ok, _ := store.Get(ctx, bazarrKey())
	assert.False(t, ok)
}

func TestAddonButtons(t *testing.T) {
	store := session.NewMemoryStore[State](0)
	svc := New("bazarr", arr.NewBazarrClient("bazarr", "http://localhost:6767", "key"), store)
	svc.SetHosts([]dialog.Host{
		{Service: "radarr", Variant: "radarr"},
		{Service: "sonarr", Variant: "sonarr"},
	})

	movies := dialog.Host{Service: "radarr", Variant: "radarr"}
	buttons := svc.AddonButtons(movies, dialog.AddonItem{MediaID: 42, Downloaded: true})
	require.Len(t, buttons, 1)
	assert.Equal(t, "Subtitles", buttons[0].Text)
	assert.Equal(t, "bazarr:list:42:radarr", buttons[0].Token)

	assert.Empty(t, svc.AddonButtons(movies, dialog.AddonItem{MediaID: 42, Downloaded: false}))
	assert.Empty(t, svc.AddonButtons(movies, dialog.AddonItem{Downloaded: true}))

	series := dialog.Host{Service: "sonarr", Variant: "sonarr"}
	buttons = svc.AddonButtons(series, dialog.AddonItem{MediaID: 9, EpisodeID: 321, Downloaded: true})
	require.Len(t, buttons, 1)
	assert.Equal(t, "bazarr:list:9:sonarr:321", buttons[0].Token)
	assert.Empty(t, svc.AddonButtons(series, dialog.AddonItem{MediaID: 9, Downloaded: true}),
		"series subtitles attach at the episode leaf only")

	unknown := dialog.Host{Service: "lidarr", Variant: "lidarr"}
	assert.Empty(t, svc.AddonButtons(unknown, dialog.AddonItem{MediaID: 1, Downloaded: true}))
}
