package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/telarr-bot/telarr/core/dialog"
)

func TestBuildPollerLongpollDefaults(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll"})
	lp, ok := p.(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)
}

func TestBuildPollerLongpollTimeout(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll", LongPollTimeoutSeconds: 25})
	lp, ok := p.(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 25*time.Second, lp.Timeout)
}

func TestBuildPollerWebhook(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: "Webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook"},
	})
	wh, ok := p.(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	require.NotNil(t, wh.Endpoint)
	assert.Equal(t, "https://bot.example.com/hook", wh.Endpoint.PublicURL)
}

func TestBuildMarkup(t *testing.T) {
	resp := dialog.Response{
		Rows: [][]dialog.Button{
			{{Text: "=== Adding Series ==="}},
			{{Text: "Add", Token: "sonarr:add"}, {Text: "IMDB", URL: "https://imdb.com/title/tt1"}},
			{},
		},
	}

	markup := buildMarkup(resp)
	require.Len(t, markup.InlineKeyboard, 2)

	label := markup.InlineKeyboard[0][0]
	assert.Equal(t, "noop", label.Data, "inert labels need a data payload telegram accepts")

	actions := markup.InlineKeyboard[1]
	require.Len(t, actions, 2)
	assert.Equal(t, "sonarr:add", actions[0].Data)
	assert.Empty(t, actions[0].URL)
	assert.Equal(t, "https://imdb.com/title/tt1", actions[1].URL)
	assert.Empty(t, actions[1].Data)
}

func TestNonEmptyCaption(t *testing.T) {
	assert.Equal(t, "...", nonEmpty(""))
	assert.Equal(t, "Series added!", nonEmpty("Series added!"))
}
