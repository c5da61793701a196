// Package tui is the terminal chrome: tab strip, omnibox, sidebar
// panels and status bar over the browser core.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lumen-browser/lumen/internal/engine"
	"github.com/lumen-browser/lumen/internal/shell"
)

const (
	autoSaveInterval = 5 * time.Minute
	decayInterval    = 4 * time.Second
)

// --- Messages ---

type engineEventMsg struct {
	idx int
	ev  engine.Event
}

type engineClosedMsg struct{ idx int }

type bridgeStoppedMsg struct{ err error }

type autoSaveMsg time.Time

type decayMsg time.Time

type inputMode int

const (
	modeNormal inputMode = iota
	modeNavigate
	modeSessionName
)

// --- Model ---

type Model struct {
	sh     *shell.Shell
	bridge *engine.Bridge

	mode    inputMode
	omnibox Omnibox
	sidebar Sidebar

	width  int
	height int
}

func NewModel(sh *shell.Shell, bridge *engine.Bridge) Model {
	return Model{sh: sh, bridge: bridge}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.Tick(autoSaveInterval, func(t time.Time) tea.Msg { return autoSaveMsg(t) }),
		tea.Tick(decayInterval, func(t time.Time) tea.Msg { return decayMsg(t) }),
	}
	for i, ch := range m.sh.EventChannels() {
		cmds = append(cmds, listenEngine(i, ch))
	}
	if m.bridge != nil {
		cmds = append(cmds, serveBridge(m.bridge))
	}
	return tea.Batch(cmds...)
}

func listenEngine(idx int, ch <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return engineClosedMsg{idx: idx}
		}
		return engineEventMsg{idx: idx, ev: ev}
	}
}

func serveBridge(b *engine.Bridge) tea.Cmd {
	return func() tea.Msg {
		err := b.ListenAndServe(context.Background())
		return bridgeStoppedMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.omnibox.Width = msg.Width
		m.sidebar.Width = msg.Width * 40 / 100
		m.sidebar.Height = msg.Height - 6
		return m, nil

	case autoSaveMsg:
		if m.sh.Settings().AutoSaveEnabled {
			m.sh.Apply(shell.PersistLastSession{})
		}
		return m, tea.Tick(autoSaveInterval, func(t time.Time) tea.Msg { return autoSaveMsg(t) })

	case decayMsg:
		m.sh.Apply(shell.PrivacyDecay{})
		return m, tea.Tick(decayInterval, func(t time.Time) tea.Msg { return decayMsg(t) })

	case engineEventMsg:
		m.sh.Apply(shell.EngineEvent{Event: msg.ev})
		return m, listenEngine(msg.idx, m.sh.EventChannels()[msg.idx])

	case engineClosedMsg:
		return m, nil

	case bridgeStoppedMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal {
		return m.handleInputKey(msg)
	}

	// Sidebar panel mode
	if m.sidebar.Panel != PanelNone {
		switch msg.String() {
		case "up", "k":
			m.sidebar.MoveUp()
			return m, nil
		case "down", "j":
			m.sidebar.MoveDown(m.sidebar.Items(m.sh))
			return m, nil
		case "enter":
			m.actOnSidebar()
			return m, nil
		case "d":
			if m.sidebar.Panel == PanelSessions {
				sessions := m.sh.Sessions()
				if m.sidebar.Cursor < len(sessions) {
					m.sh.Apply(shell.DeleteSession{ID: sessions[m.sidebar.Cursor].ID})
					m.sidebar.Cursor = 0
				}
			}
			return m, nil
		case "x":
			if m.sidebar.Panel == PanelHistory {
				m.sh.Apply(shell.ClearHistory{})
				m.sidebar.Cursor = 0
			}
			return m, nil
		case "esc":
			m.sidebar.Close()
			return m, nil
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.sh.Apply(shell.PersistLastSession{})
		return m, tea.Quit
	case "o", "/":
		m.mode = modeNavigate
		m.omnibox.Reset("\U0001f50d", "")
	case "t":
		m.sh.Apply(shell.NewTab{})
	case "w":
		m.sh.Apply(shell.CloseTab{ID: m.sh.Active().ID})
	case "T":
		m.sh.Apply(shell.ReopenClosed{})
	case "left", "h":
		m.switchRelative(-1)
	case "right", "l":
		m.switchRelative(1)
	case "H":
		m.sidebar.Open(PanelHistory)
	case "s":
		m.sidebar.Open(PanelSessions)
	case "c":
		m.sidebar.Open(PanelClosed)
	case "G":
		m.sidebar.Open(PanelGroups)
	case "S":
		m.mode = modeSessionName
		m.omnibox.Reset("save as:", "")
	case "u":
		m.sh.Apply(shell.SwitchProfile{Guest: true})
	case "p":
		m.sh.Apply(shell.SwitchProfile{})
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(msg.String()[0] - '1')
		tabs := m.sh.Tabs()
		if n < len(tabs) {
			m.sh.Apply(shell.SwitchTab{ID: tabs[n].ID})
		}
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyRunes:
		m.omnibox.Type(string(msg.Runes))
	case tea.KeySpace:
		m.omnibox.Type(" ")
	case tea.KeyBackspace:
		m.omnibox.Backspace()
	case tea.KeyEnter:
		value := m.omnibox.Value
		mode := m.mode
		m.mode = modeNormal
		switch mode {
		case modeNavigate:
			m.sh.Apply(shell.Navigate{Input: value})
		case modeSessionName:
			m.sh.Apply(shell.SaveSessionNamed{Name: value})
		}
	case tea.KeyEsc:
		m.mode = modeNormal
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) switchRelative(delta int) {
	tabs := m.sh.Tabs()
	for i, tab := range tabs {
		if tab.Active {
			next := (i + delta + len(tabs)) % len(tabs)
			m.sh.Apply(shell.SwitchTab{ID: tabs[next].ID})
			return
		}
	}
}

func (m *Model) actOnSidebar() {
	cursor := m.sidebar.Cursor
	switch m.sidebar.Panel {
	case PanelHistory:
		entries := m.sh.History().Entries()
		if cursor < len(entries) {
			m.sh.Apply(shell.Navigate{Input: entries[cursor].URL})
			m.sidebar.Close()
		}
	case PanelSessions:
		sessions := m.sh.Sessions()
		if cursor < len(sessions) {
			m.sh.Apply(shell.RestoreSession{ID: sessions[cursor].ID})
			m.sidebar.Close()
		}
	}
}

func (m Model) engineLabel() string {
	if m.bridge != nil && m.bridge.Available() {
		return fmt.Sprintf("engine ● :%d", m.bridge.Port())
	}
	if m.bridge != nil {
		return fmt.Sprintf("sim ○ :%d", m.bridge.Port())
	}
	return "sim ○"
}

func (m Model) View() string {
	if m.width == 0 {
		return "\n  starting…\n"
	}

	strip := renderTabStrip(m.sh, m.width)

	var inputLine string
	if m.mode == modeNormal {
		box := Omnibox{Prompt: "\U0001f310", Value: m.sh.Active().URL, Width: m.width}
		inputLine = box.View()
	} else {
		m.omnibox.Width = m.width
		inputLine = m.omnibox.View()
	}

	contentHeight := m.height - 6
	if contentHeight < 3 {
		contentHeight = 3
	}

	var content string
	if m.sidebar.Panel != PanelNone {
		pageWidth := m.width - m.sidebar.Width - 4
		page := lipgloss.NewStyle().
			Width(pageWidth).
			Height(contentHeight).
			Render(m.pageView(pageWidth))
		panel := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(m.sidebar.Width).
			Height(contentHeight - 2).
			Render(m.sidebar.View(m.sh))
		content = lipgloss.JoinHorizontal(lipgloss.Top, page, panel)
	} else {
		content = lipgloss.NewStyle().
			Width(m.width - 2).
			Height(contentHeight).
			Render(m.pageView(m.width - 2))
	}

	status := renderStatusBar(m.sh, m.engineLabel(), m.width)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	help := helpStyle.Render("o navigate · t new · w close · T reopen · h/l tabs · S save · s sessions · H history · c closed · G groups · u guest · q quit")

	return lipgloss.JoinVertical(lipgloss.Left, strip, inputLine, content, status, help)
}

// pageView stands in for the rendered page: the engine owns real
// rendering, the chrome shows what it knows about the active tab.
func (m Model) pageView(width int) string {
	tab := m.sh.Active()
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(1, 2, 0, 2)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 2)

	if tab.URL == "" {
		return titleStyle.Render("New Tab") + "\n" + dimStyle.Render("press o to navigate")
	}

	out := titleStyle.Render(truncate(tab.Title, width-6)) + "\n"
	out += dimStyle.Render(truncate(tab.URL, width-6)) + "\n"
	if g := m.sh.Group(tab.GroupID); g != nil {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("●")
		out += dimStyle.Render(fmt.Sprintf("group: %s %s", swatch, g.Name)) + "\n"
	}

	p := m.sh.Privacy()
	if p.TrackersBlocked+p.AdsBlocked+p.FingerprintingBlocked > 0 {
		out += "\n" + dimStyle.Render(fmt.Sprintf(
			"blocked: %d trackers · %d ads · %d fingerprinting",
			p.TrackersBlocked, p.AdsBlocked, p.FingerprintingBlocked))
	}
	return out
}
