package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumen-browser/lumen/internal/types"
)

// testDB creates a temporary database for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDB(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "lumen.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not found: %v", err)
	}

	// Verify tables exist.
	if _, err := db.Exec(`INSERT INTO sessions (id, name, tab_count) VALUES (1, 'work', 3)`); err != nil {
		t.Fatalf("insert into sessions: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO history (position, url, last_visit) VALUES (0, 'https://x.test/', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert into history: %v", err)
	}
}

func TestOpenDBIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "lumen.db")

	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	db, err = OpenDB(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != len(migrations) {
		t.Errorf("applied migrations = %d, want %d", n, len(migrations))
	}
}

func TestCreateAndGetSession(t *testing.T) {
	db := testDB(t)

	tabs := []types.SessionTab{
		{URL: "https://a.test/", Title: "A", GroupID: "default"},
		{URL: "https://b.test/", Title: "B", GroupID: "group_7"},
	}
	id, err := CreateSession(db, "work", tabs, time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := GetSession(db, id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("session not found")
	}
	if got.Name != "work" || len(got.Tabs) != 2 {
		t.Fatalf("unexpected session: %+v", got)
	}
	for i := range tabs {
		if got.Tabs[i] != tabs[i] {
			t.Errorf("tab %d = %+v, want %+v", i, got.Tabs[i], tabs[i])
		}
	}
}

func TestGetSessionUnknown(t *testing.T) {
	db := testDB(t)

	got, err := GetSession(db, 12345)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

func TestSessionIDsDistinctWithinMillisecond(t *testing.T) {
	db := testDB(t)

	now := time.Now().UnixMilli()
	a, err := CreateSession(db, "one", nil, now)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	b, err := CreateSession(db, "two", nil, now)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if a == b {
		t.Errorf("session ids collide: %d", a)
	}
}

func TestSessionCapEvictsOldest(t *testing.T) {
	db := testDB(t)

	base := time.Now().UnixMilli()
	for i := 0; i < MaxSessions+3; i++ {
		if _, err := CreateSession(db, fmt.Sprintf("s%d", i), nil, base+int64(i)); err != nil {
			t.Fatalf("CreateSession %d: %v", i, err)
		}
	}

	sessions, err := ListSessions(db)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != MaxSessions {
		t.Fatalf("len = %d, want %d", len(sessions), MaxSessions)
	}
	// Newest first, oldest three evicted.
	if sessions[0].Name != fmt.Sprintf("s%d", MaxSessions+2) {
		t.Errorf("first = %q, want newest", sessions[0].Name)
	}
	if sessions[len(sessions)-1].Name != "s3" {
		t.Errorf("last = %q, want s3", sessions[len(sessions)-1].Name)
	}
}

func TestSessionEvictionCascadesTabs(t *testing.T) {
	db := testDB(t)

	base := time.Now().UnixMilli()
	tabs := []types.SessionTab{{URL: "https://x.test/", Title: "X", GroupID: "default"}}
	for i := 0; i < MaxSessions+1; i++ {
		if _, err := CreateSession(db, "s", tabs, base+int64(i)); err != nil {
			t.Fatalf("CreateSession %d: %v", i, err)
		}
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM session_tabs").Scan(&n); err != nil {
		t.Fatalf("count session_tabs: %v", err)
	}
	if n != MaxSessions {
		t.Errorf("orphaned session tabs: count = %d, want %d", n, MaxSessions)
	}
}

func TestDeleteSession(t *testing.T) {
	db := testDB(t)

	id, err := CreateSession(db, "gone", nil, time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	removed, err := DeleteSession(db, id)
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if !removed {
		t.Error("expected removed=true")
	}

	removed, err = DeleteSession(db, id)
	if err != nil {
		t.Fatalf("second DeleteSession: %v", err)
	}
	if removed {
		t.Error("deleting an unknown id reported removed=true")
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	db := testDB(t)

	entries := []types.HistoryEntry{
		{URL: "https://b.test/", Title: "B", VisitCount: 3, LastVisit: time.Now().UTC().Truncate(time.Second)},
		{URL: "https://a.test/", Title: "A", VisitCount: 1, LastVisit: time.Now().UTC().Truncate(time.Second)},
	}
	if err := SaveHistory(db, entries); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	got, err := LoadHistory(db)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// List order is preserved, not alphabetical.
	if got[0].URL != "https://b.test/" || got[1].URL != "https://a.test/" {
		t.Errorf("order not preserved: %q, %q", got[0].URL, got[1].URL)
	}
	if got[0].VisitCount != 3 {
		t.Errorf("visit count = %d, want 3", got[0].VisitCount)
	}
}

func TestSaveHistoryReplacesWholesale(t *testing.T) {
	db := testDB(t)

	first := []types.HistoryEntry{{URL: "https://old.test/", LastVisit: time.Now()}}
	if err := SaveHistory(db, first); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	second := []types.HistoryEntry{{URL: "https://new.test/", LastVisit: time.Now()}}
	if err := SaveHistory(db, second); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	got, err := LoadHistory(db)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://new.test/" {
		t.Errorf("unexpected history: %+v", got)
	}
}
