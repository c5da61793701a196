// Package shell is the core state machine. A single Shell owns the tab
// registry, group index, history log, session store, settings and
// privacy counters, and mutates them only through Apply.
package shell

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/lumen-browser/lumen/internal/applog"
	"github.com/lumen-browser/lumen/internal/engine"
	"github.com/lumen-browser/lumen/internal/groups"
	"github.com/lumen-browser/lumen/internal/history"
	"github.com/lumen-browser/lumen/internal/nav"
	"github.com/lumen-browser/lumen/internal/profiles"
	"github.com/lumen-browser/lumen/internal/registry"
	"github.com/lumen-browser/lumen/internal/session"
	"github.com/lumen-browser/lumen/internal/storage"
	"github.com/lumen-browser/lumen/internal/types"
)

// maxNotices bounds the retained notice backlog; the UI shows the tail.
const maxNotices = 5

// Notice is a user-visible informational message produced by Apply.
type Notice struct {
	Text string
	Time time.Time
}

// Config carries the optional collaborators of a Shell. A nil DB runs
// the shell purely in memory; a nil Bridge leaves only the simulated
// engine host.
type Config struct {
	DB     *sql.DB
	Bridge engine.Host
}

// Shell is the browser core. It is not safe for concurrent use: one
// goroutine (the UI event loop or a test) owns Apply.
type Shell struct {
	settings types.Settings
	groups   *groups.Index
	reg      *registry.Registry
	hist     *history.Log
	profiles *profiles.Manager
	privacy  types.PrivacyStats

	db    *sql.DB
	store *session.Store

	bridge engine.Host
	sim    engine.Host

	loading  bool
	notices  []Notice
	randn    func(n int) int
	onRender func()
}

// New builds a shell, rehydrating settings, history and the
// recently-closed stack from the database when one is given. Storage
// read failures degrade to empty in-memory state.
func New(cfg Config) *Shell {
	s := &Shell{
		settings: types.DefaultSettings(),
		groups:   groups.New(),
		hist:     history.New(),
		profiles: profiles.New(),
		db:       cfg.DB,
		bridge:   cfg.Bridge,
		sim:      engine.NewSim(),
		randn:    rand.Intn,
	}
	s.reg = registry.New(s.groups, func() bool { return s.settings.TabGrouping })

	if cfg.DB != nil {
		s.store = session.NewStore(cfg.DB)
		s.settings = storage.LoadSettings(cfg.DB)

		if entries, err := storage.LoadHistory(cfg.DB); err != nil {
			applog.Error("shell.load_history", err)
		} else {
			s.hist.Replace(entries)
		}
		if closed, err := s.store.LoadClosed(); err != nil {
			applog.Error("shell.load_closed", err)
		} else if len(closed) > 0 {
			s.reg.Closed().Replace(closed)
		}
	}
	return s
}

// SetOnRender registers a callback invoked after every Apply.
func (s *Shell) SetOnRender(fn func()) { s.onRender = fn }

func (s *Shell) Tabs() []*types.Tab { return s.reg.Tabs() }

func (s *Shell) Active() *types.Tab { return s.reg.Active() }

func (s *Shell) Groups() []*types.TabGroup { return s.groups.Groups() }

func (s *Shell) Group(id string) *types.TabGroup { return s.groups.Get(id) }

func (s *Shell) History() *history.Log { return s.hist }

func (s *Shell) Closed() []types.Tab { return s.reg.Closed().Entries() }

func (s *Shell) Settings() types.Settings { return s.settings }

func (s *Shell) Privacy() types.PrivacyStats { return s.privacy }

func (s *Shell) Profile() types.Profile { return s.profiles.Active() }

func (s *Shell) Loading() bool { return s.loading }

func (s *Shell) Notices() []Notice { return s.notices }

// LastNotice returns the most recent notice, if any.
func (s *Shell) LastNotice() (Notice, bool) {
	if len(s.notices) == 0 {
		return Notice{}, false
	}
	return s.notices[len(s.notices)-1], true
}

// Sessions lists the saved snapshots, newest first. Without a database
// the list is empty.
func (s *Shell) Sessions() []types.SessionSnapshot {
	if s.store == nil {
		return nil
	}
	list, err := s.store.List()
	if err != nil {
		applog.Error("shell.list_sessions", err)
		return nil
	}
	return list
}

// EventChannels returns the engine event channels the UI should drain
// into EngineEvent actions.
func (s *Shell) EventChannels() []<-chan engine.Event {
	chans := []<-chan engine.Event{s.sim.Events()}
	if s.bridge != nil {
		chans = append(chans, s.bridge.Events())
	}
	return chans
}

// host selects the engine host per dispatch: the bridge while an engine
// process is connected, the simulated host otherwise.
func (s *Shell) host() engine.Host {
	if s.bridge != nil && s.bridge.Available() {
		return s.bridge
	}
	return s.sim
}

func (s *Shell) notify(format string, args ...any) {
	s.notices = append(s.notices, Notice{
		Text: fmt.Sprintf(format, args...),
		Time: time.Now(),
	})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

// Apply runs one action to completion and invokes the render callback.
func (s *Shell) Apply(a Action) {
	switch a := a.(type) {
	case Navigate:
		s.navigate(a.Input)
	case NewTab:
		s.newTab(a.URL, a.Title)
	case CloseTab:
		s.closeTab(a.ID)
	case SwitchTab:
		s.reg.SwitchTo(a.ID)
	case ReopenClosed:
		s.reopenClosed()
	case UpdateActive:
		s.reg.UpdateActive(a.Patch)
	case EngineEvent:
		s.engineEvent(a.Event)
	case SaveSessionNamed:
		s.saveSessionNamed(a.Name)
	case RestoreSession:
		s.restoreSession(a.ID)
	case DeleteSession:
		s.deleteSession(a.ID)
	case PersistLastSession:
		s.persistLastSession()
	case RestoreLastSession:
		s.restoreLastSession()
	case SwitchProfile:
		s.switchProfile(a.ProfileID, a.Guest)
	case RecordSettings:
		s.recordSettings(a.Settings)
	case ClearHistory:
		s.clearHistory()
	case PrivacyDecay:
		s.privacyDecay()
	}

	if s.onRender != nil {
		s.onRender()
	}
}

func (s *Shell) navigate(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	r := nav.Resolver{
		SearchTemplate: s.settings.SearchEngine,
		HTTPSOnly:      s.settings.HTTPSOnly,
	}
	url := r.Resolve(input)

	// Domain stands in as the title until the engine reports one.
	title := nav.Domain(url)
	if title == "" {
		title = url
	}

	patch := registry.Patch{URL: &url, Title: &title}
	if s.settings.TabGrouping {
		gid := s.groups.ResolveGroupFor(url)
		patch.GroupID = &gid
	}
	s.reg.UpdateActive(patch)

	s.hist.Record(url, title)
	s.trackPrivacy(url)
	s.requestLoad(url)
	s.persistHistory()
	applog.Info("shell.navigate", "url", url)
}

func (s *Shell) newTab(url, title string) {
	id := s.reg.CreateTab(url, title)
	applog.Info("shell.tab_created", "id", id, "url", url)
	if url == "" {
		return
	}
	tab := s.reg.Get(id)
	s.hist.Record(tab.URL, tab.Title)
	s.trackPrivacy(tab.URL)
	s.requestLoad(tab.URL)
	s.persistHistory()
}

func (s *Shell) closeTab(id int) {
	if !s.reg.CloseTab(id) {
		return
	}
	applog.Info("shell.tab_closed", "id", id)
	s.persistClosed()
}

func (s *Shell) reopenClosed() {
	id, ok := s.reg.ReopenClosed()
	if !ok {
		s.notify("no recently closed tabs")
		return
	}
	tab := s.reg.Get(id)
	applog.Info("shell.tab_reopened", "id", id, "url", tab.URL)
	if tab.URL != "" {
		s.hist.Record(tab.URL, tab.Title)
		s.requestLoad(tab.URL)
	}
	s.persistClosed()
}

func (s *Shell) engineEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventLoadingStart:
		s.loading = true
	case engine.EventLoadingStop:
		s.loading = false
	case engine.EventNavigated:
		if ev.URL != "" {
			url := ev.URL
			s.reg.UpdateActive(registry.Patch{URL: &url})
		}
	case engine.EventTitle:
		if ev.Title == "" {
			return
		}
		title := ev.Title
		s.reg.UpdateActive(registry.Patch{Title: &title})
		url := ev.URL
		if url == "" {
			url = s.reg.Active().URL
		}
		s.hist.Retitle(url, ev.Title)
	case engine.EventFavicon:
		if ev.Favicon != "" {
			fav := ev.Favicon
			s.reg.UpdateActive(registry.Patch{Favicon: &fav})
		}
	}
}

func (s *Shell) saveSessionNamed(name string) {
	if s.store == nil {
		s.notify("session save unavailable: no database")
		return
	}
	snap, err := s.store.SaveNamed(name, s.reg.Tabs())
	if err != nil {
		applog.Error("shell.save_session", err)
		s.notify("session save failed: %v", err)
		return
	}
	applog.Info("shell.session_saved", "id", snap.ID, "tabs", len(snap.Tabs))
	s.notify("saved session %q (%d tabs)", snap.Name, len(snap.Tabs))
}

func (s *Shell) restoreSession(id int64) {
	if s.store == nil {
		s.notify("session restore unavailable: no database")
		return
	}
	snap, err := s.store.Get(id)
	if err != nil {
		applog.Error("shell.restore_session", err)
		s.notify("session restore failed: %v", err)
		return
	}
	if snap == nil {
		s.notify("session %d not found", id)
		return
	}
	s.reg.Reset(snap.Tabs)
	s.persistClosed()
	if active := s.reg.Active(); active.URL != "" {
		s.requestLoad(active.URL)
	}
	applog.Info("shell.session_restored", "id", id, "tabs", len(snap.Tabs))
	s.notify("restored session %q (%d tabs)", snap.Name, len(snap.Tabs))
}

func (s *Shell) deleteSession(id int64) {
	if s.store == nil {
		s.notify("session delete unavailable: no database")
		return
	}
	removed, err := s.store.Delete(id)
	if err != nil {
		applog.Error("shell.delete_session", err)
		s.notify("session delete failed: %v", err)
		return
	}
	if removed {
		s.notify("deleted session %d", id)
	}
}

// persistLastSession writes the auto-save record: window state, the
// recently-closed stack and the history log. The shutdown path and the
// auto-save tick both land here.
func (s *Shell) persistLastSession() {
	if s.store == nil {
		return
	}
	ls := session.LastSession{ActiveID: s.reg.Active().ID}
	for _, t := range s.reg.Tabs() {
		ls.Tabs = append(ls.Tabs, *t)
	}
	for _, g := range s.groups.Groups() {
		ls.Groups = append(ls.Groups, *g)
	}
	if err := s.store.SaveLast(ls); err != nil {
		applog.Error("shell.persist_last", err)
		s.notify("auto-save failed: %v", err)
		return
	}
	s.persistClosed()
	s.persistHistory()
	applog.Info("shell.last_session_saved", "tabs", len(ls.Tabs))
}

func (s *Shell) restoreLastSession() {
	if s.store == nil {
		return
	}
	ls, err := s.store.LoadLast()
	if err != nil {
		applog.Error("shell.restore_last", err)
		return
	}
	if ls == nil {
		return
	}
	for _, g := range ls.Groups {
		s.groups.Ensure(g)
	}
	s.reg.Rehydrate(ls.Tabs, ls.ActiveID)
	applog.Info("shell.last_session_restored", "tabs", len(ls.Tabs))
}

func (s *Shell) switchProfile(profileID string, guest bool) {
	var p types.Profile
	if guest {
		p = s.profiles.EnterGuest()
	} else {
		p = s.profiles.Switch(profileID)
	}
	partition := profiles.Partition(p)
	if err := s.host().SwitchPartition(partition); err != nil {
		applog.Error("shell.switch_partition", err, "partition", partition)
	}

	// Re-issue the active destination against the new partition.
	url := s.reg.Active().URL
	if url == "" {
		url = s.settings.HomePage
	}
	if url != "" {
		s.requestLoad(url)
	}

	applog.Info("shell.profile_switched", "id", p.ID, "guest", p.Guest)
	if p.Guest {
		s.notify("guest mode")
	} else {
		s.notify("profile %s", p.ID)
	}
}

func (s *Shell) recordSettings(st types.Settings) {
	s.settings = st
	if s.db == nil {
		return
	}
	if err := storage.SaveSettings(s.db, st); err != nil {
		applog.Error("shell.save_settings", err)
		s.notify("settings save failed: %v", err)
		return
	}
	applog.Info("shell.settings_saved")
}

func (s *Shell) clearHistory() {
	s.hist.Clear()
	s.persistHistory()
	s.notify("history cleared")
}

// trackPrivacy bumps the simulated blocking counters for an https
// navigation.
func (s *Shell) trackPrivacy(url string) {
	if !s.settings.BlockTrackers || !strings.HasPrefix(url, "https://") {
		return
	}
	trackers := s.randn(6)
	s.privacy.TrackersBlocked += trackers
	s.privacy.AdsBlocked += trackers / 2
	if s.settings.BlockFingerprinting {
		s.privacy.FingerprintingBlocked += s.randn(2)
	}
	s.privacy.RecentHits += trackers
}

func (s *Shell) privacyDecay() {
	if s.privacy.RecentHits > 0 {
		s.privacy.RecentHits--
	}
}

func (s *Shell) requestLoad(url string) {
	if err := s.host().RequestLoad(url); err != nil {
		applog.Error("shell.request_load", err, "url", url)
	}
}

func (s *Shell) persistHistory() {
	if s.db == nil {
		return
	}
	if err := storage.SaveHistory(s.db, s.hist.Entries()); err != nil {
		applog.Error("shell.save_history", err)
		s.notify("history save failed: %v", err)
	}
}

func (s *Shell) persistClosed() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveClosed(s.reg.Closed().Entries()); err != nil {
		applog.Error("shell.save_closed", err)
	}
}
