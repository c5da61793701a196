package shell

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumen-browser/lumen/internal/engine"
	"github.com/lumen-browser/lumen/internal/storage"
	"github.com/lumen-browser/lumen/internal/types"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "lumen.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewInMemory(t *testing.T) {
	s := New(Config{})

	if len(s.Tabs()) != 1 {
		t.Fatalf("tabs = %d, want 1 blank", len(s.Tabs()))
	}
	if s.Active().URL != "" {
		t.Errorf("seed tab has url %q", s.Active().URL)
	}
	if got := s.Settings(); got != types.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", got)
	}
	if s.Profile().ID != "default" {
		t.Errorf("profile = %+v", s.Profile())
	}
}

func TestNavigateLiteralURL(t *testing.T) {
	s := New(Config{})
	s.Apply(Navigate{Input: "openai.com"})

	tab := s.Active()
	if tab.URL != "https://openai.com" {
		t.Errorf("url = %q", tab.URL)
	}
	if tab.Title != "openai.com" {
		t.Errorf("placeholder title = %q", tab.Title)
	}
	if tab.GroupID == types.DefaultGroupID {
		t.Error("navigation did not assign a domain group")
	}
	if s.History().Len() != 1 {
		t.Errorf("history len = %d, want 1", s.History().Len())
	}
}

func TestNavigateSearchQuery(t *testing.T) {
	s := New(Config{})
	s.Apply(Navigate{Input: "weather today"})

	tab := s.Active()
	if !strings.HasPrefix(tab.URL, "https://www.google.com/search?q=") {
		t.Errorf("url = %q, want search", tab.URL)
	}
}

func TestNavigateEmptyInputIsNoop(t *testing.T) {
	s := New(Config{})
	s.Apply(Navigate{Input: "   "})

	if s.Active().URL != "" || s.History().Len() != 0 {
		t.Error("blank input navigated")
	}
}

func TestNavigateGroupingDisabled(t *testing.T) {
	s := New(Config{})
	st := s.Settings()
	st.TabGrouping = false
	s.Apply(RecordSettings{Settings: st})

	s.Apply(Navigate{Input: "https://example.com/"})
	if got := s.Active().GroupID; got != types.DefaultGroupID {
		t.Errorf("group = %q, want default", got)
	}
}

func TestEngineTitleEventRetitles(t *testing.T) {
	s := New(Config{})
	s.Apply(Navigate{Input: "https://example.com/"})

	s.Apply(EngineEvent{Event: engine.Event{
		Kind:  engine.EventTitle,
		URL:   "https://example.com/",
		Title: "Example Domain",
	}})

	if got := s.Active().Title; got != "Example Domain" {
		t.Errorf("tab title = %q", got)
	}
	entries := s.History().Entries()
	if entries[0].Title != "Example Domain" {
		t.Errorf("history title = %q", entries[0].Title)
	}
	if entries[0].VisitCount != 1 {
		t.Errorf("retitle bumped visit count to %d", entries[0].VisitCount)
	}
}

func TestEngineLoadingEvents(t *testing.T) {
	s := New(Config{})
	s.Apply(EngineEvent{Event: engine.Event{Kind: engine.EventLoadingStart}})
	if !s.Loading() {
		t.Error("loading flag not set")
	}
	s.Apply(EngineEvent{Event: engine.Event{Kind: engine.EventLoadingStop}})
	if s.Loading() {
		t.Error("loading flag not cleared")
	}
}

func TestCloseAndReopen(t *testing.T) {
	s := New(Config{})
	s.Apply(NewTab{URL: "https://example.com/", Title: "Example"})
	id := s.Active().ID

	s.Apply(CloseTab{ID: id})
	if len(s.Closed()) != 1 {
		t.Fatalf("closed stack len = %d", len(s.Closed()))
	}

	s.Apply(ReopenClosed{})
	if got := s.Active().URL; got != "https://example.com/" {
		t.Errorf("reopened url = %q", got)
	}
	if len(s.Closed()) != 0 {
		t.Error("reopen did not pop the stack")
	}
}

func TestReopenEmptyStackNotifies(t *testing.T) {
	s := New(Config{})
	before := len(s.Tabs())

	s.Apply(ReopenClosed{})
	if len(s.Tabs()) != before {
		t.Error("empty-stack reopen mutated tabs")
	}
	notice, ok := s.LastNotice()
	if !ok || !strings.Contains(notice.Text, "no recently closed tabs") {
		t.Errorf("notice = %+v, want empty-stack message", notice)
	}
}

func TestRenderCallback(t *testing.T) {
	s := New(Config{})
	renders := 0
	s.SetOnRender(func() { renders++ })

	s.Apply(NewTab{})
	s.Apply(SwitchTab{ID: 1})
	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}
}

func TestSaveAndRestoreSession(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})

	s.Apply(Navigate{Input: "https://example.com/"})
	s.Apply(NewTab{URL: "https://go.dev/", Title: "Go"})
	s.Apply(SaveSessionNamed{Name: "work"})

	notice, ok := s.LastNotice()
	if !ok || !strings.Contains(notice.Text, `"work"`) {
		t.Fatalf("save notice = %+v", notice)
	}

	sessions := s.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d", len(sessions))
	}

	// Drift the live state, then restore.
	s.Apply(CloseTab{ID: s.Active().ID})
	s.Apply(Navigate{Input: "https://other.example/"})

	s.Apply(RestoreSession{ID: sessions[0].ID})
	tabs := s.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("restored tabs = %d, want 2", len(tabs))
	}
	if tabs[0].URL != "https://example.com/" || !tabs[0].Active {
		t.Errorf("first restored tab = %+v", tabs[0])
	}
}

func TestRestoreSessionKeepsReplacedTabsRecoverable(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})

	s.Apply(Navigate{Input: "https://kept.test/"})
	s.Apply(SaveSessionNamed{Name: "one"})

	s.Apply(NewTab{URL: "https://extra-a.test/", Title: "A"})
	s.Apply(NewTab{URL: "https://extra-b.test/", Title: "B"})

	s.Apply(RestoreSession{ID: s.Sessions()[0].ID})
	if len(s.Tabs()) != 1 {
		t.Fatalf("restored tabs = %d, want 1", len(s.Tabs()))
	}

	// All three replaced tabs land on the closed stack, newest first.
	closed := s.Closed()
	if len(closed) != 3 {
		t.Fatalf("closed stack len = %d, want 3", len(closed))
	}
	if closed[0].URL != "https://extra-b.test/" {
		t.Errorf("top of stack = %q", closed[0].URL)
	}

	s.Apply(ReopenClosed{})
	if got := s.Active().URL; got != "https://extra-b.test/" {
		t.Errorf("reopened url = %q", got)
	}

	// The stack change persisted: a fresh shell over the same database
	// still sees the remaining entries.
	s2 := New(Config{DB: db})
	if got := len(s2.Closed()); got != 2 {
		t.Errorf("closed stack after restart = %d, want 2", got)
	}
}

func TestRestoreUnknownSession(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})
	before := len(s.Tabs())

	s.Apply(RestoreSession{ID: 424242})
	if len(s.Tabs()) != before {
		t.Error("unknown restore mutated tabs")
	}
	notice, ok := s.LastNotice()
	if !ok || !strings.Contains(notice.Text, "not found") {
		t.Errorf("notice = %+v", notice)
	}
}

func TestDeleteSession(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})

	s.Apply(NewTab{URL: "https://example.com/"})
	s.Apply(SaveSessionNamed{Name: "tmp"})
	id := s.Sessions()[0].ID

	s.Apply(DeleteSession{ID: id})
	if len(s.Sessions()) != 0 {
		t.Error("session not deleted")
	}
}

func TestLastSessionRoundTrip(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})

	s.Apply(Navigate{Input: "https://example.com/"})
	s.Apply(NewTab{URL: "https://go.dev/", Title: "Go"})
	activeID := s.Active().ID
	s.Apply(PersistLastSession{})

	// A fresh shell over the same database restores the window.
	s2 := New(Config{DB: db})
	s2.Apply(RestoreLastSession{})

	tabs := s2.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("restored tabs = %d, want 2", len(tabs))
	}
	if s2.Active().ID != activeID {
		t.Errorf("active id = %d, want %d", s2.Active().ID, activeID)
	}
	if s2.Active().URL != "https://go.dev/" {
		t.Errorf("active url = %q", s2.Active().URL)
	}
	if g := s2.Group(tabs[0].GroupID); g == nil {
		t.Errorf("group %q not rehydrated", tabs[0].GroupID)
	}
	if s2.History().Len() == 0 {
		t.Error("history not persisted with last session")
	}
}

func TestClosedStackSurvivesRestart(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})

	s.Apply(NewTab{URL: "https://example.com/", Title: "Example"})
	s.Apply(CloseTab{ID: s.Active().ID})

	s2 := New(Config{DB: db})
	closed := s2.Closed()
	if len(closed) != 1 || closed[0].URL != "https://example.com/" {
		t.Errorf("closed stack after restart = %+v", closed)
	}
}

func TestRecordSettingsPersists(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})

	st := s.Settings()
	st.Theme = "dark"
	st.HTTPSOnly = false
	s.Apply(RecordSettings{Settings: st})

	s2 := New(Config{DB: db})
	if got := s2.Settings(); got.Theme != "dark" || got.HTTPSOnly {
		t.Errorf("settings after restart = %+v", got)
	}
	if !s2.Settings().BlockTrackers {
		t.Error("untouched default lost")
	}
}

func TestClearHistory(t *testing.T) {
	db := testDB(t)
	s := New(Config{DB: db})

	s.Apply(Navigate{Input: "https://example.com/"})
	s.Apply(ClearHistory{})
	if s.History().Len() != 0 {
		t.Error("history not cleared")
	}

	s2 := New(Config{DB: db})
	if s2.History().Len() != 0 {
		t.Error("cleared history came back after restart")
	}
}

func TestPrivacyTracking(t *testing.T) {
	s := New(Config{})
	s.randn = func(n int) int { return n - 1 }

	s.Apply(Navigate{Input: "https://example.com/"})
	p := s.Privacy()
	if p.TrackersBlocked != 5 || p.AdsBlocked != 2 || p.FingerprintingBlocked != 1 {
		t.Errorf("privacy = %+v", p)
	}
	if p.RecentHits != 5 {
		t.Errorf("recent hits = %d", p.RecentHits)
	}

	s.Apply(PrivacyDecay{})
	if s.Privacy().RecentHits != 4 {
		t.Errorf("recent hits after decay = %d", s.Privacy().RecentHits)
	}
}

func TestPrivacyNotTrackedWhenDisabled(t *testing.T) {
	s := New(Config{})
	s.randn = func(n int) int { return n - 1 }
	st := s.Settings()
	st.BlockTrackers = false
	s.Apply(RecordSettings{Settings: st})

	s.Apply(Navigate{Input: "https://example.com/"})
	if p := s.Privacy(); p.TrackersBlocked != 0 {
		t.Errorf("privacy = %+v", p)
	}
}

func TestSwitchProfileGuest(t *testing.T) {
	s := New(Config{})
	s.Apply(SwitchProfile{Guest: true})

	p := s.Profile()
	if !p.Guest || !strings.HasPrefix(p.ID, "guest-") {
		t.Errorf("profile = %+v", p)
	}

	s.Apply(SwitchProfile{ProfileID: "work"})
	if p := s.Profile(); p.Guest || p.ID != "work" {
		t.Errorf("profile = %+v", p)
	}
}

func TestNoticeBacklogCapped(t *testing.T) {
	s := New(Config{})
	for i := 0; i < maxNotices+3; i++ {
		s.notify("notice %d", i)
	}
	if len(s.Notices()) != maxNotices {
		t.Errorf("notices = %d, want %d", len(s.Notices()), maxNotices)
	}
	last, _ := s.LastNotice()
	if !strings.Contains(last.Text, "7") {
		t.Errorf("last notice = %q", last.Text)
	}
}
