package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lumen-browser/lumen/internal/session"
)

// Markdown formats a saved window as a markdown document.
func Markdown(ls session.LastSession) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Lumen Tabs\n")
	fmt.Fprintf(&b, "> Exported %s, window saved %s\n",
		time.Now().Format("2006-01-02 15:04"), relativeTime(time.UnixMilli(ls.SavedAt)))

	for _, g := range ls.Groups {
		var lines []string
		for _, tab := range ls.Tabs {
			if tab.GroupID != g.ID || tab.URL == "" {
				continue
			}
			title := tab.Title
			if title == "" {
				title = tab.URL
			}
			lines = append(lines, fmt.Sprintf("- [%s](%s)\n", title, tab.URL))
		}
		if len(lines) == 0 {
			continue
		}

		noun := "tabs"
		if len(lines) == 1 {
			noun = "tab"
		}
		fmt.Fprintf(&b, "\n## %s (%d %s)\n\n", g.Name, len(lines), noun)
		for _, line := range lines {
			b.WriteString(line)
		}
	}

	return b.String()
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
