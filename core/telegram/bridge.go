package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/telarr-bot/telarr/core/auth"
	"github.com/telarr-bot/telarr/core/dialog"
	"github.com/telarr-bot/telarr/core/logger"
	tghelpers "github.com/telarr-bot/telarr/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Bridge binds the action router to telebot endpoints: typed chat commands
// arrive as messages, rendered buttons come back as callbacks. It owns the
// translation between dialog.Response and Telegram payloads.
type Bridge struct {
	router   *dialog.Router
	accounts *auth.Store
}

// NewBridge builds the transport bridge.
func NewBridge(router *dialog.Router, accounts *auth.Store) *Bridge {
	return &Bridge{router: router, accounts: accounts}
}

// Routes returns every endpoint the bridge handles.
func (b *Bridge) Routes() []Route {
	routes := []Route{
		{Endpoint: "/start", Handler: b.onStart},
		{Endpoint: "/auth", Handler: b.onAuth},
		{Endpoint: tele.OnCallback, Handler: b.onCallback},
	}
	for _, cc := range b.router.ChatCommands() {
		routes = append(routes, Route{Endpoint: "/" + cc.Name, Handler: b.onCommand})
	}
	return routes
}

// MenuCommands lists the typed commands for the Telegram command menu.
func (b *Bridge) MenuCommands() []tele.Command {
	list := []tele.Command{
		{Text: "start", Description: "Show usage"},
		{Text: "auth", Description: "Authorize with a password"},
	}
	for _, cc := range b.router.ChatCommands() {
		list = append(list, tele.Command{Text: cc.Name, Description: cc.Description})
	}
	return list
}

func (b *Bridge) onStart(c tele.Context) error {
	var sb strings.Builder
	sb.WriteString("Welcome! Available commands:\n")
	for _, cc := range b.router.ChatCommands() {
		fmt.Fprintf(&sb, "/%s <title> - %s\n", cc.Name, cc.Description)
	}
	sb.WriteString("/auth <password> - Authorize this account")
	return c.Send(sb.String())
}

// onAuth registers the sender at the level whose password matches. The
// message is deleted afterwards so the password does not stay in the chat.
func (b *Bridge) onAuth(c tele.Context) error {
	ctx := tghelpers.RequestContext(c)
	password := strings.TrimSpace(c.Message().Payload)
	defer func() { _ = c.Delete() }()

	if password == "" {
		return c.Send("Usage: /auth <password>")
	}

	level, err := b.accounts.Register(ctx, c.Sender().ID, c.Chat().ID, password)
	if err != nil {
		if errors.Is(err, auth.ErrBadPassword) {
			return c.Send("Wrong password.")
		}
		logger.Warn(ctx, logger.AUTH, "auth.register_failed", slog.String("err", err.Error()))
		return c.Send("Seems like something went wrong...")
	}
	return c.Send(fmt.Sprintf("Authorized as %s!", level))
}

func (b *Bridge) onCommand(c tele.Context) error {
	ctx := tghelpers.RequestContext(c)
	msg := c.Message()

	name := strings.TrimPrefix(strings.SplitN(c.Text(), " ", 2)[0], "/")
	// "/series@botname title" also arrives here.
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	service, command, ok := b.router.ChatBinding(name)
	if !ok {
		return nil
	}

	req := dialog.Request{
		Service: service,
		Command: command,
		Args:    strings.Fields(msg.Payload),
		UserID:  c.Sender().ID,
		ChatID:  c.Chat().ID,
	}
	resp := b.router.Dispatch(ctx, req)
	if resp.Outcome == dialog.OutcomeUnroutable {
		return nil
	}
	return b.send(c, resp)
}

func (b *Bridge) onCallback(c tele.Context) error {
	ctx := tghelpers.RequestContext(c)
	token := strings.TrimSpace(strings.TrimPrefix(c.Callback().Data, "\f"))
	if token == "" || token == "noop" {
		return c.Respond(&tele.CallbackResponse{})
	}

	resp := b.router.DispatchToken(ctx, token, c.Sender().ID, c.Chat().ID)
	if resp.Outcome == dialog.OutcomeUnroutable {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
	if err := c.Respond(&tele.CallbackResponse{}); err != nil {
		logger.Debug(ctx, logger.TG, "callback.ack_failed", slog.String("err", err.Error()))
	}
	return b.redraw(c, resp)
}

// send posts a fresh message for a typed command.
func (b *Bridge) send(c tele.Context, resp dialog.Response) error {
	markup := buildMarkup(resp)
	if resp.Photo != "" {
		photo := &tele.Photo{File: tele.FromURL(resp.Photo), Caption: resp.Caption}
		if err := c.Send(photo, markup); err == nil {
			return nil
		}
		// Unfetchable poster URLs fall back to a plain text reply.
	}
	return c.Send(nonEmpty(resp.Caption), markup)
}

// redraw updates the message a callback originated from. Selecting a new
// item replaces the message so the poster changes too; anything else edits
// in place.
func (b *Bridge) redraw(c tele.Context, resp dialog.Response) error {
	markup := buildMarkup(resp)
	if resp.Photo != "" {
		_ = c.Delete()
		photo := &tele.Photo{File: tele.FromURL(resp.Photo), Caption: resp.Caption}
		if err := c.Send(photo, markup); err != nil {
			return c.Send(nonEmpty(resp.Caption), markup)
		}
		return nil
	}
	if err := c.Edit(nonEmpty(resp.Caption), markup); err != nil {
		// Editing fails when the original message is a photo and the new
		// response is text-only, or when nothing changed.
		if errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		_ = c.Delete()
		return c.Send(nonEmpty(resp.Caption), markup)
	}
	return nil
}

func buildMarkup(resp dialog.Response) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	for _, row := range resp.Rows {
		if len(row) == 0 {
			continue
		}
		var out []tele.InlineButton
		for _, btn := range row {
			ib := tele.InlineButton{Text: btn.Text, URL: btn.URL}
			if btn.URL == "" {
				ib.Data = btn.Token
				if ib.Data == "" {
					ib.Data = "noop"
				}
			}
			out = append(out, ib)
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, out)
	}
	return markup
}

func nonEmpty(caption string) string {
	if caption == "" {
		return "..."
	}
	return caption
}
