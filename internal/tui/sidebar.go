package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumen-browser/lumen/internal/shell"
)

type Panel int

const (
	PanelNone Panel = iota
	PanelHistory
	PanelSessions
	PanelClosed
	PanelGroups
)

// Sidebar is the right-hand list pane. The cursor only means something
// for panels whose rows can be acted on.
type Sidebar struct {
	Panel  Panel
	Cursor int
	Width  int
	Height int
}

func (s *Sidebar) Open(p Panel) {
	if s.Panel == p {
		s.Panel = PanelNone
		return
	}
	s.Panel = p
	s.Cursor = 0
}

func (s *Sidebar) Close() {
	s.Panel = PanelNone
}

func (s *Sidebar) MoveUp() {
	if s.Cursor > 0 {
		s.Cursor--
	}
}

func (s *Sidebar) MoveDown(items int) {
	if s.Cursor < items-1 {
		s.Cursor++
	}
}

// Items returns the number of rows in the current panel.
func (s Sidebar) Items(sh *shell.Shell) int {
	switch s.Panel {
	case PanelHistory:
		return len(sh.History().Entries())
	case PanelSessions:
		return len(sh.Sessions())
	case PanelClosed:
		return len(sh.Closed())
	case PanelGroups:
		return len(sh.Groups())
	}
	return 0
}

func (s Sidebar) View(sh *shell.Shell) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)

	var title, hint string
	var rows []string
	switch s.Panel {
	case PanelHistory:
		title = "History"
		hint = "enter open · x clear · esc close"
		for _, e := range sh.History().Entries() {
			rows = append(rows, fmt.Sprintf("%s (%d)", truncate(e.Title, s.Width-10), e.VisitCount))
		}
	case PanelSessions:
		title = "Sessions"
		hint = "enter restore · d delete · esc close"
		for _, snap := range sh.Sessions() {
			rows = append(rows, fmt.Sprintf("%s · %s", truncate(snap.Name, s.Width-14), snap.CreatedAt.Format("Jan 2 15:04")))
		}
	case PanelClosed:
		title = "Recently closed"
		hint = "T reopens the most recent · esc close"
		for _, tab := range sh.Closed() {
			label := tab.Title
			if label == "" {
				label = tab.URL
			}
			rows = append(rows, truncate(label, s.Width-6))
		}
	case PanelGroups:
		title = "Groups"
		hint = "esc close"
		for _, g := range sh.Groups() {
			count := 0
			for _, tab := range sh.Tabs() {
				if tab.GroupID == g.ID {
					count++
				}
			}
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("●")
			rows = append(rows, fmt.Sprintf("%s %s (%d)", swatch, truncate(g.Name, s.Width-12), count))
		}
	default:
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("empty") + "\n")
	}
	visible := s.Height - 4
	if visible < 1 {
		visible = 1
	}
	start := 0
	if s.Cursor >= visible {
		start = s.Cursor - visible + 1
	}
	for i := start; i < len(rows) && i < start+visible; i++ {
		if i == s.Cursor {
			b.WriteString(selectedStyle.Render(rows[i]) + "\n")
		} else {
			b.WriteString(normalStyle.Render(rows[i]) + "\n")
		}
	}

	b.WriteString(dimStyle.Render(hint))
	return b.String()
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
