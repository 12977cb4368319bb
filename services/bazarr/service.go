package bazarr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/auth"
	"github.com/telarr-bot/telarr/core/dialog"
	"github.com/telarr-bot/telarr/core/session"
)

// Service is one configured Bazarr instance. It has no typed chat command;
// every dialogue starts from an addon button on a host service.
type Service struct {
	name   string
	client *arr.BazarrClient
	store  session.Store[State]
	hosts  map[string]dialog.Host
}

// New builds the service.
func New(name string, client *arr.BazarrClient, store session.Store[State]) *Service {
	return &Service{
		name:   strings.ToLower(name),
		client: client,
		store:  store,
		hosts:  make(map[string]dialog.Host),
	}
}

// SetHosts declares the services this instance attaches to. Called once
// during wiring; the map is read-only afterwards.
func (s *Service) SetHosts(hosts []dialog.Host) {
	for _, h := range hosts {
		s.hosts[strings.ToLower(h.Service)] = h
	}
}

func (s *Service) Name() string { return s.name }

func (s *Service) ChatCommands() []dialog.ChatCommand { return nil }

func (s *Service) Handlers() []dialog.Handler {
	return []dialog.Handler{
		{
			Commands:   []string{"list"},
			MinLevel:   auth.User,
			Initiating: true,
			Fn:         dialog.InitSession(s.store, s.list),
		},
		{
			Commands: []string{"goto"},
			MinLevel: auth.User,
			Fn:       dialog.WithSession(s.store, s.update),
		},
		{
			Commands: []string{"addsub"},
			MinLevel: auth.User,
			Fn:       dialog.EndSession(s.store, s.addSubtitle),
		},
		{
			Commands: []string{"cancel"},
			MinLevel: auth.User,
			Fn: dialog.EndSession(s.store, func(context.Context, dialog.Request, State) (dialog.Response, error) {
				return dialog.TextResponse("Subtitle Search canceled!"), nil
			}),
		},
	}
}

func (s *Service) Rerender(ctx context.Context, req dialog.Request) (dialog.Response, bool) {
	st, ok := dialog.Peek(ctx, s.store, req)
	if !ok {
		return dialog.Response{}, false
	}
	return s.render(st), true
}

// list starts a subtitle dialogue for a host item. Token shape:
// bazarr:list:<mediaID>:<hostService>[:<episodeID>].
func (s *Service) list(ctx context.Context, req dialog.Request) (State, dialog.Response, error) {
	mediaID, err := strconv.ParseInt(req.Arg(0), 10, 64)
	if err != nil {
		return State{}, dialog.Response{}, dialog.ErrInvalidArgument
	}
	host, ok := s.hosts[strings.ToLower(req.Arg(1))]
	if !ok {
		return State{}, dialog.Response{}, dialog.ErrInvalidArgument
	}

	var episodeID int64
	if arg := req.Arg(2); arg != "" {
		if episodeID, err = strconv.ParseInt(arg, 10, 64); err != nil {
			return State{}, dialog.Response{}, dialog.ErrInvalidArgument
		}
	}

	var items []arr.Subtitle
	switch host.Variant {
	case "radarr":
		items = s.client.MovieSubtitles(ctx, mediaID)
	case "sonarr":
		if episodeID == 0 {
			return State{}, dialog.Response{}, dialog.ErrInvalidArgument
		}
		items = s.client.EpisodeSubtitles(ctx, episodeID)
	default:
		return State{}, dialog.Response{}, fmt.Errorf("bazarr: unsupported host variant %q", host.Variant)
	}

	st := State{
		Items:     items,
		Menu:      MenuList,
		MediaID:   mediaID,
		EpisodeID: episodeID,
		Host:      host,
	}
	return st, s.render(st), nil
}

func (s *Service) update(_ context.Context, req dialog.Request, st State) (State, dialog.Response, error) {
	arg := req.Arg(0)
	if arg == "" {
		st = st.Back()
		return st, s.render(st), nil
	}
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return st, dialog.Response{}, dialog.ErrInvalidArgument
	}
	next, err := st.Goto(idx)
	if err != nil {
		return st, dialog.Response{}, err
	}
	return next, s.render(next), nil
}

// addSubtitle is the terminal download. The session clears regardless of
// the backend outcome via the surrounding EndSession.
func (s *Service) addSubtitle(ctx context.Context, req dialog.Request, st State) (dialog.Response, error) {
	idx := st.Index
	if arg := req.Arg(0); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return dialog.Response{}, fmt.Errorf("bazarr: bad subtitle index %q", arg)
		}
		idx = n
	}
	if idx < 0 || idx >= len(st.Items) {
		return dialog.Response{}, fmt.Errorf("bazarr: no subtitle selected")
	}
	sub := st.Items[idx]

	var err error
	switch st.Host.Variant {
	case "sonarr":
		err = s.client.AddEpisodeSubtitle(ctx, st.EpisodeID, sub)
	default:
		err = s.client.AddMovieSubtitle(ctx, st.MediaID, sub)
	}
	if err != nil {
		return dialog.Response{}, err
	}
	return dialog.TextResponse("Subtitle added!"), nil
}

// AddonButtons contributes the "Subtitles" entry on a host's item screen.
// Only downloaded library items have subtitles to manage.
func (s *Service) AddonButtons(host dialog.Host, item dialog.AddonItem) []dialog.Button {
	if _, ok := s.hosts[strings.ToLower(host.Service)]; !ok {
		return nil
	}
	if !item.Downloaded || item.MediaID == 0 {
		return nil
	}
	args := []string{strconv.FormatInt(item.MediaID, 10), host.Service}
	if host.Variant == "sonarr" {
		if item.EpisodeID == 0 {
			return nil
		}
		args = append(args, strconv.FormatInt(item.EpisodeID, 10))
	}
	return []dialog.Button{{
		Text:  "Subtitles",
		Token: dialog.EncodeToken(s.name, "list", args...),
	}}
}
