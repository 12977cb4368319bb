package bazarr

import (
	"fmt"
	"strconv"

	"github.com/telarr-bot/telarr/core/dialog"
)

// At most this many provider results are offered per screen.
const maxListed = 5

const buttonTextLimit = 64

func (s *Service) token(command string, args ...string) string {
	return dialog.EncodeToken(s.name, command, args...)
}

func (s *Service) render(st State) dialog.Response {
	var rows [][]dialog.Button

	label := "=== No subtitles found ==="
	if len(st.Items) > 0 {
		label = "=== Subtitles ==="
	}
	rows = append(rows, dialog.Row(dialog.Button{Text: label}))

	for i, sub := range st.Items {
		if i >= maxListed {
			break
		}
		text := fmt.Sprintf("[Score: %d]", sub.Score)
		if len(sub.ReleaseInfo) > 0 {
			text += " " + sub.ReleaseInfo[0]
		}
		rows = append(rows, dialog.Row(dialog.Button{
			Text:  truncate(text, buttonTextLimit),
			Token: s.token("addsub", strconv.Itoa(i)),
		}))
	}

	rows = append(rows, s.backRow(st))
	return dialog.Response{Rows: rows}
}

// backRow points at the host's screen the dialogue was entered from,
// falling back to a plain cancel when no host is attached.
func (s *Service) backRow(st State) []dialog.Button {
	if st.Host.Service == "" {
		return dialog.Row(dialog.Button{Text: "❌ Cancel", Token: s.token("cancel")})
	}
	target := dialog.EncodeToken(st.Host.Service, "addmenu")
	if st.Host.Variant == "sonarr" {
		target = dialog.EncodeToken(st.Host.Service, "episode")
	}
	return dialog.Row(
		dialog.Button{Text: "🔙 Back", Token: target},
		dialog.Button{Text: "❌ Cancel", Token: s.token("cancel")},
	)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
