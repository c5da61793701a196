package history

import (
	"fmt"
	"testing"
	"time"
)

func TestRecordDedupesByURL(t *testing.T) {
	l := New()

	l.Record("https://example.com/", "Example")
	l.Record("https://example.com/", "Example")

	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}
	e := l.Entries()[0]
	if e.VisitCount != 2 {
		t.Errorf("visit count = %d, want 2", e.VisitCount)
	}
}

func TestRecordURLsAreCaseSensitive(t *testing.T) {
	l := New()

	l.Record("https://example.com/A", "a")
	l.Record("https://example.com/a", "a")

	if l.Len() != 2 {
		t.Errorf("case-different URLs merged: len = %d", l.Len())
	}
}

func TestRecordMovesRevisitToFront(t *testing.T) {
	l := New()

	l.Record("https://first.test/", "first")
	l.Record("https://second.test/", "second")
	l.Record("https://first.test/", "first again")

	entries := l.Entries()
	if entries[0].URL != "https://first.test/" {
		t.Errorf("revisited entry not at front: %q", entries[0].URL)
	}
	if entries[0].Title != "first again" {
		t.Errorf("revisit did not refresh title: %q", entries[0].Title)
	}
	if entries[1].URL != "https://second.test/" {
		t.Errorf("unexpected second entry: %q", entries[1].URL)
	}
}

func TestRecordEmptyURLIsNoop(t *testing.T) {
	l := New()
	l.Record("", "title")
	if l.Len() != 0 {
		t.Errorf("empty URL recorded: len = %d", l.Len())
	}
}

func TestRecordEmptyTitleFallsBackToURL(t *testing.T) {
	l := New()
	l.Record("https://example.com/", "")
	if got := l.Entries()[0].Title; got != "https://example.com/" {
		t.Errorf("title = %q, want the URL", got)
	}
}

func TestCapEvictsOldest(t *testing.T) {
	l := New()

	for i := 0; i < MaxEntries+1; i++ {
		l.Record(fmt.Sprintf("https://site%d.test/", i), "")
	}
	if l.Len() != MaxEntries {
		t.Fatalf("len = %d, want %d", l.Len(), MaxEntries)
	}
	// The first-recorded URL is the one evicted.
	for _, e := range l.Entries() {
		if e.URL == "https://site0.test/" {
			t.Error("oldest entry survived eviction")
		}
	}
	if got := l.Entries()[0].URL; got != fmt.Sprintf("https://site%d.test/", MaxEntries) {
		t.Errorf("front = %q, want newest", got)
	}
}

func TestRetitle(t *testing.T) {
	l := New()
	l.Record("https://example.com/", "example.com")
	l.Record("https://go.dev/", "go.dev")

	l.Retitle("https://example.com/", "Example Domain")

	entries := l.Entries()
	if entries[1].Title != "Example Domain" {
		t.Errorf("title = %q, want Example Domain", entries[1].Title)
	}
	if entries[1].VisitCount != 1 {
		t.Errorf("visit count = %d, retitle must not count a visit", entries[1].VisitCount)
	}
	if entries[0].URL != "https://go.dev/" {
		t.Error("retitle reordered the log")
	}

	l.Retitle("https://unknown.test/", "x")
	l.Retitle("https://example.com/", "")
	if l.Len() != 2 || l.Entries()[1].Title != "Example Domain" {
		t.Error("no-op retitles mutated the log")
	}
}

func TestClear(t *testing.T) {
	l := New()
	l.Record("https://example.com/", "x")
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("len after clear = %d", l.Len())
	}
}

func TestSearch(t *testing.T) {
	l := New()
	l.Record("https://golang.org/doc", "Go Documentation")
	l.Record("https://example.com/", "Example Domain")
	l.Record("https://go.dev/blog", "The Go Blog")

	tests := []struct {
		query string
		want  int
	}{
		{"go", 2},      // matches title and url, case-insensitive
		{"EXAMPLE", 1}, // query case folded
		{"blog", 1},
		{"missing", 0},
		{"", 3},
	}
	for _, tt := range tests {
		if got := len(l.Search(tt.query)); got != tt.want {
			t.Errorf("Search(%q) returned %d matches, want %d", tt.query, got, tt.want)
		}
	}
}

func TestRecordRefreshesTimestamp(t *testing.T) {
	l := New()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return ts }

	l.Record("https://example.com/", "x")
	ts = ts.Add(time.Hour)
	l.Record("https://example.com/", "x")

	if got := l.Entries()[0].LastVisit; !got.Equal(ts) {
		t.Errorf("LastVisit = %v, want %v", got, ts)
	}
}
