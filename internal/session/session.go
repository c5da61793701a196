// Package session persists named snapshots, the rolling last-session
// record, and the recently-closed stack on top of the storage layer.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumen-browser/lumen/internal/storage"
	"github.com/lumen-browser/lumen/internal/types"
)

// LastSession is the auto-saved window state restored at startup when
// the reopenLastSession setting is on. Unlike named snapshots it keeps
// the full tab records and the groups they reference.
type LastSession struct {
	Tabs     []types.Tab      `json:"tabs"`
	Groups   []types.TabGroup `json:"groups"`
	ActiveID int              `json:"activeId"`
	SavedAt  int64            `json:"savedAt"`
}

// Store wraps the database with session-level operations.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SaveNamed captures the given tabs as a named snapshot. Blank names
// fall back to a timestamped default, mirroring the save dialog.
func (s *Store) SaveNamed(name string, tabs []*types.Tab) (*types.SessionSnapshot, error) {
	now := s.now()
	if name == "" {
		name = "Session " + now.Format("Jan 2 15:04")
	}

	st := make([]types.SessionTab, 0, len(tabs))
	for _, t := range tabs {
		if t.URL == "" {
			continue
		}
		st = append(st, types.SessionTab{URL: t.URL, Title: t.Title, GroupID: t.GroupID})
	}

	id, err := storage.CreateSession(s.db, name, st, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &types.SessionSnapshot{ID: id, Name: name, Tabs: st, CreatedAt: now}, nil
}

// List returns saved snapshots newest first, without their tabs.
func (s *Store) List() ([]types.SessionSnapshot, error) {
	return storage.ListSessions(s.db)
}

// Get loads one snapshot with its tabs. Unknown ids return nil, nil.
func (s *Store) Get(id int64) (*types.SessionSnapshot, error) {
	return storage.GetSession(s.db, id)
}

// Delete removes a snapshot. Unknown ids are a no-op.
func (s *Store) Delete(id int64) (bool, error) {
	return storage.DeleteSession(s.db, id)
}

// SaveLast overwrites the auto-saved last-session record.
func (s *Store) SaveLast(ls LastSession) error {
	ls.SavedAt = s.now().UnixMilli()
	data, err := json.Marshal(ls)
	if err != nil {
		return fmt.Errorf("encode last session: %w", err)
	}
	return storage.SaveRecord(s.db, storage.RecordLastSession, storage.CompressRecord(data))
}

// LoadLast reads the auto-saved last-session record. Returns nil when
// none has been written yet or the stored record cannot be decoded.
func (s *Store) LoadLast() (*LastSession, error) {
	data, err := storage.LoadRecord(s.db, storage.RecordLastSession)
	if err != nil || data == nil {
		return nil, err
	}
	raw, err := storage.DecompressRecord(data)
	if err != nil {
		return nil, nil
	}
	var ls LastSession
	if err := json.Unmarshal(raw, &ls); err != nil {
		return nil, nil
	}
	return &ls, nil
}

// SaveClosed persists the recently-closed stack, newest first.
func (s *Store) SaveClosed(entries []types.Tab) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode recently closed: %w", err)
	}
	return storage.SaveRecord(s.db, storage.RecordRecentlyClosed, storage.CompressRecord(data))
}

// LoadClosed reads the persisted recently-closed stack. Missing or
// undecodable records yield an empty stack.
func (s *Store) LoadClosed() ([]types.Tab, error) {
	data, err := storage.LoadRecord(s.db, storage.RecordRecentlyClosed)
	if err != nil || data == nil {
		return nil, err
	}
	raw, err := storage.DecompressRecord(data)
	if err != nil {
		return nil, nil
	}
	var entries []types.Tab
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}
