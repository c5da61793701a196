package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Omnibox is the single-line text input used for navigation and for the
// session-name prompt.
type Omnibox struct {
	Prompt string
	Value  string
	Width  int
}

func (o *Omnibox) Reset(prompt, value string) {
	o.Prompt = prompt
	o.Value = value
}

func (o *Omnibox) Type(s string) {
	o.Value += s
}

func (o *Omnibox) Backspace() {
	if o.Value == "" {
		return
	}
	r := []rune(o.Value)
	o.Value = string(r[:len(r)-1])
}

func (o Omnibox) View() string {
	promptStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	line := promptStyle.Render(o.Prompt+" ") + o.Value + "█"
	if w := o.Width - 6; w > 0 && lipgloss.Width(line) > w {
		// Keep the tail visible while typing long input.
		r := []rune(o.Value)
		for len(r) > 0 && lipgloss.Width(promptStyle.Render(o.Prompt+" ")+string(r))+1 > w {
			r = r[1:]
		}
		line = promptStyle.Render(o.Prompt+" ") + "…" + string(r) + "█"
	}
	return boxStyle.Render(line)
}
