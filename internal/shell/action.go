package shell

import (
	"github.com/lumen-browser/lumen/internal/engine"
	"github.com/lumen-browser/lumen/internal/registry"
	"github.com/lumen-browser/lumen/internal/types"
)

// Action is a request to mutate shell state. Actions are applied one at
// a time by the owner of the Apply loop; nothing else mutates the shell.
type Action interface {
	isAction()
}

// Navigate resolves omnibox input and loads it in the active tab.
type Navigate struct {
	Input string
}

// NewTab opens a tab, optionally with an initial destination.
type NewTab struct {
	URL   string
	Title string
}

// CloseTab closes the tab with the given id.
type CloseTab struct {
	ID int
}

// SwitchTab activates the tab with the given id.
type SwitchTab struct {
	ID int
}

// ReopenClosed restores the most recently closed tab.
type ReopenClosed struct{}

// UpdateActive patches the active tab directly.
type UpdateActive struct {
	Patch registry.Patch
}

// EngineEvent feeds an engine host event into the shell.
type EngineEvent struct {
	Event engine.Event
}

// SaveSessionNamed snapshots the open tabs under a name.
type SaveSessionNamed struct {
	Name string
}

// RestoreSession replaces the open tabs with a saved snapshot.
type RestoreSession struct {
	ID int64
}

// DeleteSession removes a saved snapshot.
type DeleteSession struct {
	ID int64
}

// PersistLastSession writes the auto-save record (window state, closed
// stack, history).
type PersistLastSession struct{}

// RestoreLastSession rehydrates the window from the auto-save record.
type RestoreLastSession struct{}

// SwitchProfile activates a profile (or a fresh guest profile) and
// repoints the engine at its partition.
type SwitchProfile struct {
	ProfileID string
	Guest     bool
}

// RecordSettings replaces the settings record and persists it.
type RecordSettings struct {
	Settings types.Settings
}

// ClearHistory empties the history log.
type ClearHistory struct{}

// PrivacyDecay ticks the privacy badge toward quiescence.
type PrivacyDecay struct{}

func (Navigate) isAction()           {}
func (NewTab) isAction()             {}
func (CloseTab) isAction()           {}
func (SwitchTab) isAction()          {}
func (ReopenClosed) isAction()       {}
func (UpdateActive) isAction()       {}
func (EngineEvent) isAction()        {}
func (SaveSessionNamed) isAction()   {}
func (RestoreSession) isAction()     {}
func (DeleteSession) isAction()      {}
func (PersistLastSession) isAction() {}
func (RestoreLastSession) isAction() {}
func (SwitchProfile) isAction()      {}
func (RecordSettings) isAction()     {}
func (ClearHistory) isAction()       {}
func (PrivacyDecay) isAction()       {}
