package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumen-browser/lumen/internal/shell"
)

const tabLabelMax = 20

// renderTabStrip draws the open tabs in strip order, colored by group.
func renderTabStrip(sh *shell.Shell, width int) string {
	baseStyle := lipgloss.NewStyle().Padding(0, 1)

	var strip string
	for i, tab := range sh.Tabs() {
		label := tab.Title
		if label == "" {
			label = tab.URL
		}
		if len([]rune(label)) > tabLabelMax {
			label = string([]rune(label)[:tabLabelMax-1]) + "…"
		}
		label = fmt.Sprintf("%d:%s", i+1, label)
		if tab.Suspended {
			label = "⏾ " + label
		}

		style := baseStyle
		if g := sh.Group(tab.GroupID); g != nil && g.Color != "" {
			style = style.Foreground(lipgloss.Color(g.Color))
		}
		if tab.Active {
			style = style.Bold(true).Reverse(true)
		}

		cell := style.Render(label)
		if lipgloss.Width(strip)+lipgloss.Width(cell) > width-2 {
			strip += baseStyle.Render("…")
			break
		}
		strip += cell
	}
	return strip
}
