package sonarr

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/auth"
	"github.com/telarr-bot/telarr/core/dialog"
	"github.com/telarr-bot/telarr/core/session"
)

// mutationCommands change pending library attributes and are read-only
// below Mod when the selected item is already in the library.
var mutationCommands = map[string]bool{
	"addtag":         true,
	"remtag":         true,
	"selectpath":     true,
	"selectquality":  true,
	"selectlanguage": true,
}

// Service is one configured Sonarr instance exposed as a dialogue service.
type Service struct {
	name   string
	client *arr.SonarrClient
	store  session.Store[State]
	chat   []dialog.ChatCommand
	addons []dialog.Addon
}

// New builds the service. commands are the typed chat command names bound
// to the search entry point, e.g. ["series"].
func New(name string, client *arr.SonarrClient, store session.Store[State], commands []string) *Service {
	s := &Service{name: strings.ToLower(name), client: client, store: store}
	for _, cmd := range commands {
		s.chat = append(s.chat, dialog.ChatCommand{
			Name:        cmd,
			Command:     "search",
			Description: "Search for a series",
		})
	}
	return s
}

// SetAddons attaches the addon services contributing buttons to item
// rendering. Called once during wiring, after all services exist.
func (s *Service) SetAddons(addons []dialog.Addon) {
	s.addons = addons
}

func (s *Service) Name() string { return s.name }

func (s *Service) ChatCommands() []dialog.ChatCommand { return s.chat }

func (s *Service) Handlers() []dialog.Handler {
	return []dialog.Handler{
		{
			Commands:   []string{"search"},
			MinLevel:   auth.User,
			Initiating: true,
			Fn:         dialog.InitSession(s.store, s.search),
		},
		{
			Commands: []string{
				"goto", "addmenu",
				"path", "selectpath",
				"quality", "selectquality",
				"language", "selectlanguage",
				"tags", "addtag", "remtag",
				"seasons", "episodes", "episode",
			},
			MinLevel: auth.User,
			Fn:       dialog.WithSession(s.store, s.update),
		},
		{Commands: []string{"add"}, MinLevel: auth.User, Fn: s.add},
		{Commands: []string{"remove"}, MinLevel: auth.User, Fn: s.remove},
		{
			Commands: []string{"cancel"},
			MinLevel: auth.User,
			Fn: dialog.EndSession(s.store, func(context.Context, dialog.Request, State) (dialog.Response, error) {
				return dialog.TextResponse("Search canceled!"), nil
			}),
		},
	}
}

// Rerender replays the stored state unchanged, for denied and
// invalid-argument outcomes.
func (s *Service) Rerender(ctx context.Context, req dialog.Request) (dialog.Response, bool) {
	st, ok := dialog.Peek(ctx, s.store, req)
	if !ok {
		return dialog.Response{}, false
	}
	return s.render(ctx, st, req.Level, false), true
}

func (s *Service) catalog(ctx context.Context) Catalog {
	return Catalog{
		RootFolders:      s.client.RootFolders(ctx),
		QualityProfiles:  s.client.QualityProfiles(ctx),
		LanguageProfiles: s.client.LanguageProfiles(ctx),
	}
}

func (s *Service) search(ctx context.Context, req dialog.Request) (State, dialog.Response, error) {
	args := req.Args
	if len(args) > 1 && args[0] == "search" {
		args = args[1:]
	}
	title := strings.TrimSpace(strings.Join(args, " "))

	// A failed lookup degrades to an empty result set, same as no match.
	items, err := s.client.Lookup(ctx, title)
	if err != nil {
		items = nil
	}
	st := NewSearchState(items, s.catalog(ctx))
	return st, s.render(ctx, st, req.Level, true), nil
}

func (s *Service) update(ctx context.Context, req dialog.Request, st State) (State, dialog.Response, error) {
	if item, ok := st.Current(); ok && mutationCommands[req.Command] && item.InLibrary() && !req.Level.Allows(auth.Mod) {
		resp := s.render(ctx, st, req.Level, false)
		resp.Outcome = dialog.OutcomeDenied
		return st, resp, nil
	}

	fullRedraw := false
	switch req.Command {
	case "goto":
		arg := req.Arg(0)
		switch {
		case arg == "":
			st = st.Back()
		case isInt(arg):
			idx, _ := strconv.Atoi(arg)
			next, err := st.Goto(idx, s.catalog(ctx))
			if err != nil {
				return st, dialog.Response{}, err
			}
			st = next
			fullRedraw = true
		default:
			menu, ok := drillMenus[arg]
			if !ok {
				return st, dialog.Response{}, dialog.ErrInvalidArgument
			}
			st = st.Enter(menu)
		}
	case "addmenu":
		st = st.Enter(MenuAdd)
	case "path":
		st = st.Enter(MenuPath)
	case "quality":
		st = st.Enter(MenuQuality)
	case "language":
		st = st.Enter(MenuLanguage)
	case "tags":
		st = st.EnterTags()
	case "selectpath":
		id, err := argID(req, 0)
		if err != nil {
			return st, dialog.Response{}, err
		}
		folder, ok := findRootFolder(s.client.RootFolders(ctx), id)
		if !ok {
			return st, dialog.Response{}, dialog.ErrInvalidArgument
		}
		st = st.SelectRootFolder(folder)
	case "selectquality":
		profile, err := s.resolveProfile(req, s.client.QualityProfiles(ctx))
		if err != nil {
			return st, dialog.Response{}, err
		}
		st = st.SelectQuality(profile)
	case "selectlanguage":
		profile, err := s.resolveProfile(req, s.client.LanguageProfiles(ctx))
		if err != nil {
			return st, dialog.Response{}, err
		}
		st = st.SelectLanguage(profile)
	case "addtag":
		id, err := argID(req, 0)
		if err != nil {
			return st, dialog.Response{}, err
		}
		st = st.AddTag(id)
	case "remtag":
		id, err := argID(req, 0)
		if err != nil {
			return st, dialog.Response{}, err
		}
		st = st.RemoveTag(id)
	case "seasons":
		st = st.Enter(MenuSeasons)
	case "episodes":
		season := st.SeasonNumber
		if arg := req.Arg(0); arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return st, dialog.Response{}, dialog.ErrInvalidArgument
			}
			season = n
		}
		st = st.SelectSeason(season)
	case "episode":
		season, episodeNumber, episodeID, err := episodeArgs(req, st)
		if err != nil {
			return st, dialog.Response{}, err
		}
		st = st.SelectEpisode(season, episodeNumber, episodeID)
	default:
		return st, dialog.Response{}, dialog.ErrInvalidArgument
	}

	return st, s.render(ctx, st, req.Level, fullRedraw), nil
}

// add is the terminal submit. The authorization for editing an in-library
// item is checked before anything is cleared; a denied submit leaves the
// dialogue in place.
func (s *Service) add(ctx context.Context, req dialog.Request) (dialog.Response, error) {
	st, ok, err := s.store.Get(ctx, req.Key())
	if err != nil {
		return dialog.Response{}, err
	}
	if !ok {
		return dialog.Response{}, dialog.ErrStaleSession
	}
	item, has := st.Current()
	if has && item.InLibrary() && !req.Level.Allows(auth.Mod) {
		resp := s.render(ctx, st, req.Level, false)
		resp.Outcome = dialog.OutcomeDenied
		return resp, nil
	}

	_ = s.store.Clear(ctx, req.Key())
	if !has {
		return dialog.Response{}, errors.New("submit without a selected item")
	}
	if err := s.client.Add(ctx, item, st.AddOptions(req.Arg(0) == "search")); err != nil {
		return dialog.Response{}, err
	}
	if item.InLibrary() {
		return dialog.TextResponse("Series updated!"), nil
	}
	return dialog.TextResponse("Series added!"), nil
}

func (s *Service) remove(ctx context.Context, req dialog.Request) (dialog.Response, error) {
	st, ok, err := s.store.Get(ctx, req.Key())
	if err != nil {
		return dialog.Response{}, err
	}
	if !ok {
		return dialog.Response{}, dialog.ErrStaleSession
	}
	item, has := st.Current()
	if has && item.InLibrary() && !req.Level.Allows(auth.Mod) {
		resp := s.render(ctx, st, req.Level, false)
		resp.Outcome = dialog.OutcomeDenied
		return resp, nil
	}

	_ = s.store.Clear(ctx, req.Key())
	if !has || !item.InLibrary() {
		return dialog.Response{}, errors.New("remove without a library item")
	}
	if err := s.client.Remove(ctx, item.ID); err != nil {
		return dialog.Response{}, err
	}
	return dialog.TextResponse("Series removed!"), nil
}

func (s *Service) resolveProfile(req dialog.Request, profiles []arr.Profile) (arr.Profile, error) {
	id, err := argID(req, 0)
	if err != nil {
		return arr.Profile{}, err
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return arr.Profile{}, dialog.ErrInvalidArgument
}

func episodeArgs(req dialog.Request, st State) (season, episodeNumber int, episodeID int64, err error) {
	season, episodeNumber, episodeID = st.SeasonNumber, st.EpisodeNumber, st.EpisodeID
	if arg := req.Arg(0); arg != "" {
		if season, err = strconv.Atoi(arg); err != nil {
			return 0, 0, 0, dialog.ErrInvalidArgument
		}
	}
	if arg := req.Arg(1); arg != "" {
		if episodeNumber, err = strconv.Atoi(arg); err != nil {
			return 0, 0, 0, dialog.ErrInvalidArgument
		}
	}
	if arg := req.Arg(2); arg != "" {
		if episodeID, err = strconv.ParseInt(arg, 10, 64); err != nil {
			return 0, 0, 0, dialog.ErrInvalidArgument
		}
	}
	return season, episodeNumber, episodeID, nil
}

func findRootFolder(folders []arr.RootFolder, id int64) (arr.RootFolder, bool) {
	for _, f := range folders {
		if f.ID == id {
			return f, true
		}
	}
	return arr.RootFolder{}, false
}

func argID(req dialog.Request, i int) (int64, error) {
	id, err := strconv.ParseInt(req.Arg(i), 10, 64)
	if err != nil {
		return 0, dialog.ErrInvalidArgument
	}
	return id, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
