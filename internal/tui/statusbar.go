package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lumen-browser/lumen/internal/shell"
)

// securityIndicator reflects the scheme of the active destination.
func securityIndicator(url string) string {
	switch {
	case url == "":
		return ""
	case strings.HasPrefix(url, "https://"):
		return "\U0001f512 https"
	case strings.HasPrefix(url, "http://"):
		return "⚠ http"
	default:
		return ""
	}
}

// privacyBadge summarizes the simulated blocking counters. RecentHits
// drives highlight; it decays on a timer.
func privacyBadge(sh *shell.Shell) string {
	p := sh.Privacy()
	total := p.TrackersBlocked + p.AdsBlocked + p.FingerprintingBlocked
	if total == 0 {
		return ""
	}
	badge := fmt.Sprintf("\U0001f6e1 %d blocked", total)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if p.RecentHits > 0 {
		style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	}
	return style.Render(badge)
}

func renderStatusBar(sh *shell.Shell, engineLabel string, width int) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	parts := []string{engineLabel}
	profile := sh.Profile()
	if profile.Guest {
		parts = append(parts, "guest")
	} else {
		parts = append(parts, "profile: "+profile.ID)
	}
	if sec := securityIndicator(sh.Active().URL); sec != "" {
		parts = append(parts, sec)
	}
	if badge := privacyBadge(sh); badge != "" {
		parts = append(parts, badge)
	}
	if sh.Loading() {
		parts = append(parts, "loading…")
	}
	left := " " + strings.Join(parts, "  ·  ")

	var right string
	if notice, ok := sh.LastNotice(); ok {
		right = dimStyle.Render(notice.Text) + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
