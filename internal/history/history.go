// Package history keeps the append/merge-dedup log of visited
// destinations.
package history

import (
	"strings"
	"time"

	"github.com/lumen-browser/lumen/internal/types"
)

// MaxEntries caps the log; the oldest entries are evicted on overflow.
const MaxEntries = 1000

// Log is an in-memory, most-recent-first list of history entries with at
// most one entry per URL (case-sensitive exact match).
type Log struct {
	entries []types.HistoryEntry

	now func() time.Time
}

// New returns an empty log.
func New() *Log {
	return &Log{now: time.Now}
}

// Entries returns the log contents, most recent first.
func (l *Log) Entries() []types.HistoryEntry {
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Record notes a visit. An empty url is a no-op. Revisits increment the
// visit count, refresh the timestamp and move the entry to the front;
// otherwise a new entry is prepended. The cap is enforced by truncation
// after insertion.
func (l *Log) Record(url, title string) {
	if url == "" {
		return
	}
	if title == "" {
		title = url
	}

	for i, e := range l.entries {
		if e.URL == url {
			e.VisitCount++
			e.Title = title
			e.LastVisit = l.now()
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			l.entries = append([]types.HistoryEntry{e}, l.entries...)
			return
		}
	}

	l.entries = append([]types.HistoryEntry{{
		URL:        url,
		Title:      title,
		VisitCount: 1,
		LastVisit:  l.now(),
	}}, l.entries...)

	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
}

// Retitle replaces the stored title for a URL without counting a visit,
// used when the engine reports the real page title after navigation.
// Unknown URLs and empty titles are no-ops.
func (l *Log) Retitle(url, title string) {
	if url == "" || title == "" {
		return
	}
	for i := range l.entries {
		if l.entries[i].URL == url {
			l.entries[i].Title = title
			return
		}
	}
}

// Clear empties the log unconditionally. Confirmation is the UI layer's
// concern.
func (l *Log) Clear() {
	l.entries = nil
}

// Search returns entries whose title or URL contains the query,
// case-insensitively, in log order. An empty query matches everything.
func (l *Log) Search(query string) []types.HistoryEntry {
	q := strings.ToLower(query)
	var matches []types.HistoryEntry
	for _, e := range l.entries {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.URL), q) {
			matches = append(matches, e)
		}
	}
	return matches
}

// Replace swaps the log contents wholesale, used when rehydrating from
// storage. Input is truncated to the cap.
func (l *Log) Replace(entries []types.HistoryEntry) {
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	l.entries = entries
}
