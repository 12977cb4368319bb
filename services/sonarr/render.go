package sonarr

import (
	"context"
	"fmt"

	"github.com/telarr-bot/telarr/core/arr"
	"github.com/telarr-bot/telarr/core/auth"
	"github.com/telarr-bot/telarr/core/dialog"
)

const captionLimit = 1024

func (s *Service) token(command string, args ...string) string {
	return dialog.EncodeToken(s.name, command, args...)
}

func (s *Service) host() dialog.Host {
	return dialog.Host{Service: s.name, Variant: "sonarr"}
}

func (s *Service) render(ctx context.Context, st State, level auth.Level, fullRedraw bool) dialog.Response {
	item, ok := st.Current()
	if !ok {
		return dialog.Response{
			Caption: "No series found",
			Rows:    [][]dialog.Button{dialog.Row(dialog.Button{Text: "❌ Cancel", Token: s.token("cancel")})},
		}
	}

	allowEdit := level.Allows(auth.Mod)
	caption := mediaCaption(item)
	var rows [][]dialog.Button

	switch st.Menu {
	case MenuAdd:
		label := "=== Adding Series ==="
		if item.InLibrary() {
			label = "=== Editing Series ==="
		}
		rows = append(rows,
			dialog.Row(dialog.Button{Text: label}),
			dialog.Row(dialog.Button{
				Text:  fmt.Sprintf("Change Quality   (%s)", orDash(st.QualityProfile.Name)),
				Token: s.token("quality"),
			}),
			dialog.Row(dialog.Button{
				Text:  fmt.Sprintf("Change Path   (%s)", orDash(st.RootFolder.Path)),
				Token: s.token("path"),
			}),
			dialog.Row(dialog.Button{
				Text:  fmt.Sprintf("Change Language   (%s)", orDash(st.LanguageProfile.Name)),
				Token: s.token("language"),
			}),
			dialog.Row(dialog.Button{
				Text:  fmt.Sprintf("Change Tags   (Total: %d)", len(st.Tags)),
				Token: s.token("tags"),
			}),
			dialog.Row(dialog.Button{Text: "View Seasons", Token: s.token("seasons")}),
		)
		rows = append(rows, s.addonRows(dialog.AddonItem{MediaID: item.ID, Downloaded: item.HasFile})...)

	case MenuTags:
		rows = append(rows, dialog.Row(dialog.Button{Text: "=== Selecting Tags ==="}))
		for _, tag := range s.client.Tags(ctx) {
			text := fmt.Sprintf("Tag %s", orDash(tag.Label))
			token := s.token("addtag", formatID(tag.ID))
			if containsTag(st.Tags, tag.ID) {
				text = fmt.Sprintf("Remove %s", orDash(tag.Label))
				token = s.token("remtag", formatID(tag.ID))
			}
			rows = append(rows, dialog.Row(dialog.Button{Text: text, Token: token}))
		}
		rows = append(rows, dialog.Row(dialog.Button{Text: "Done", Token: s.token("addmenu")}))

	case MenuPath:
		rows = append(rows, dialog.Row(dialog.Button{Text: "=== Selecting Root Folder ==="}))
		for _, f := range s.client.RootFolders(ctx) {
			rows = append(rows, dialog.Row(dialog.Button{Text: orDash(f.Path), Token: s.token("selectpath", formatID(f.ID))}))
		}

	case MenuQuality:
		rows = append(rows, dialog.Row(dialog.Button{Text: "=== Selecting Quality Profile ==="}))
		for _, p := range s.client.QualityProfiles(ctx) {
			rows = append(rows, dialog.Row(dialog.Button{Text: orDash(p.Name), Token: s.token("selectquality", formatID(p.ID))}))
		}

	case MenuLanguage:
		rows = append(rows, dialog.Row(dialog.Button{Text: "=== Selecting Language Profile ==="}))
		for _, p := range s.client.LanguageProfiles(ctx) {
			rows = append(rows, dialog.Row(dialog.Button{Text: orDash(p.Name), Token: s.token("selectlanguage", formatID(p.ID))}))
		}

	case MenuSeasons:
		for _, season := range s.client.Seasons(ctx, item.ID) {
			rows = append(rows, dialog.Row(dialog.Button{
				Text: fmt.Sprintf("Season %d (%d / %d)",
					season.SeasonNumber, season.Statistics.EpisodeFileCount, season.Statistics.TotalEpisodeCount),
				Token: s.token("episodes", fmt.Sprintf("%d", season.SeasonNumber)),
			}))
		}

	case MenuEpisodes:
		caption = fmt.Sprintf("%s\n\nSeason %d", caption, st.SeasonNumber)
		for _, ep := range s.client.Episodes(ctx, item.ID, st.SeasonNumber) {
			rows = append(rows, dialog.Row(dialog.Button{
				Text:  fmt.Sprintf("Ep. %d - %s", ep.EpisodeNumber, orUntitled(ep.Title)),
				Token: s.token("episode", fmt.Sprintf("%d", st.SeasonNumber), fmt.Sprintf("%d", ep.EpisodeNumber), formatID(ep.ID)),
			}))
		}

	case MenuEpisode:
		downloaded := false
		if ep, err := s.client.Episode(ctx, st.EpisodeID); err == nil {
			caption = episodeCaption(item, ep)
			downloaded = ep.HasFile
		}
		rows = append(rows, s.addonRows(dialog.AddonItem{MediaID: item.ID, EpisodeID: st.EpisodeID, Downloaded: downloaded})...)

	default:
		if item.InLibrary() {
			monitored, missing := "Unmonitored", "Downloaded"
			if item.Monitored {
				monitored = "📺 Monitored"
			}
			if !item.HasFile {
				missing = "💾 Missing"
			}
			rows = append(rows, dialog.Row(dialog.Button{Text: monitored}, dialog.Button{Text: missing}))
		}
		rows = append(rows, s.navigationRow(st, item))
	}

	rows = append(rows, s.actionRows(st, item, allowEdit)...)

	resp := dialog.Response{Caption: truncate(caption, captionLimit), Rows: rows}
	if fullRedraw {
		resp.Photo = item.RemotePoster
	}
	return resp
}

func (s *Service) navigationRow(st State, item arr.Media) []dialog.Button {
	var prev, next dialog.Button
	if st.Index > 0 {
		prev = dialog.Button{Text: "⬅ Prev", Token: s.token("goto", fmt.Sprintf("%d", st.Index-1))}
	}
	if st.Index < len(st.Items)-1 {
		next = dialog.Button{Text: "Next ➡", Token: s.token("goto", fmt.Sprintf("%d", st.Index+1))}
	}
	var tvdb, imdb dialog.Button
	if item.TVDBID != 0 {
		tvdb = dialog.Button{Text: "TVDB", URL: fmt.Sprintf("https://thetvdb.com/?id=%d&tab=series", item.TVDBID)}
	}
	if item.IMDBID != "" {
		imdb = dialog.Button{Text: "IMDB", URL: fmt.Sprintf("https://imdb.com/title/%s", item.IMDBID)}
	}
	return dialog.Row(prev, tvdb, imdb, next)
}

func (s *Service) actionRows(st State, item arr.Media, allowEdit bool) [][]dialog.Button {
	var rows [][]dialog.Button

	if item.InLibrary() {
		if allowEdit {
			if st.Menu == MenuAdd {
				rows = append(rows,
					dialog.Row(
						dialog.Button{Text: "🗑 Remove", Token: s.token("remove")},
						dialog.Button{Text: "✅ Submit", Token: s.token("add", "no-search")},
					),
					dialog.Row(dialog.Button{Text: "✅ + 🔍 Submit & Search", Token: s.token("add", "search")}),
				)
			} else if st.Menu == MenuNone {
				rows = append(rows, dialog.Row(
					dialog.Button{Text: "🗑 Remove", Token: s.token("remove")},
					dialog.Button{Text: "✏️ Edit", Token: s.token("addmenu")},
				))
			}
		}
	} else {
		switch st.Menu {
		case MenuNone:
			rows = append(rows, dialog.Row(dialog.Button{Text: "➕ Add", Token: s.token("addmenu")}))
		case MenuAdd:
			rows = append(rows, dialog.Row(
				dialog.Button{Text: "✅ Submit", Token: s.token("add", "no-search")},
				dialog.Button{Text: "✅+🔍 Submit & Search", Token: s.token("add", "search")},
			))
		}
	}

	switch st.Menu {
	case MenuEpisodes:
		rows = append(rows, dialog.Row(dialog.Button{Text: "🔙 Back", Token: s.token("goto", string(MenuSeasons))}))
	case MenuEpisode:
		rows = append(rows, dialog.Row(dialog.Button{Text: "🔙 Back", Token: s.token("goto", string(MenuEpisodes))}))
	case MenuNone:
		rows = append(rows, dialog.Row(dialog.Button{Text: "❌ Cancel", Token: s.token("cancel")}))
	default:
		rows = append(rows, dialog.Row(dialog.Button{Text: "🔙 Back", Token: s.token("goto")}))
	}
	return rows
}

func (s *Service) addonRows(item dialog.AddonItem) [][]dialog.Button {
	var rows [][]dialog.Button
	for _, addon := range s.addons {
		if row := dialog.Row(addon.AddonButtons(s.host(), item)...); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func mediaCaption(item arr.Media) string {
	caption := item.Title
	if item.Year != 0 {
		caption = fmt.Sprintf("%s (%d)", item.Title, item.Year)
	}
	if item.Overview != "" {
		caption = caption + "\n\n" + item.Overview
	}
	return caption
}

func episodeCaption(item arr.Media, ep arr.Episode) string {
	caption := item.Title
	if item.Year != 0 {
		caption = fmt.Sprintf("%s (%d)", item.Title, item.Year)
	}
	caption += fmt.Sprintf("\nSeason %d, Ep. %d - %s", ep.SeasonNumber, ep.EpisodeNumber, orUntitled(ep.Title))
	if ep.Overview != "" {
		caption += "\n\n" + ep.Overview
	}
	return caption
}

func containsTag(tags []int64, id int64) bool {
	for _, t := range tags {
		if t == id {
			return true
		}
	}
	return false
}

func formatID(id int64) string {
	return fmt.Sprintf("%d", id)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orUntitled(s string) string {
	if s == "" {
		return "Untitled"
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
