package storage

import (
	"database/sql"
	"fmt"

	"github.com/lumen-browser/lumen/internal/types"
)

// MaxSessions bounds the list of named session snapshots; the oldest are
// evicted when a save pushes the count past the cap.
const MaxSessions = 20

// CreateSession inserts a named snapshot with its tabs in one transaction
// and enforces the snapshot cap. The snapshot id doubles as its creation
// timestamp (unix millis), bumped past any existing id so saves in the
// same millisecond stay distinct. Returns the assigned id.
func CreateSession(db *sql.DB, name string, tabs []types.SessionTab, nowMillis int64) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxID int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(id), 0) FROM sessions").Scan(&maxID); err != nil {
		return 0, fmt.Errorf("query max session id: %w", err)
	}
	id := nowMillis
	if id <= maxID {
		id = maxID + 1
	}

	if _, err := tx.Exec(
		"INSERT INTO sessions (id, name, tab_count) VALUES (?, ?, ?)",
		id, name, len(tabs),
	); err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}

	for i, tab := range tabs {
		if _, err := tx.Exec(
			"INSERT INTO session_tabs (session_id, position, url, title, group_id) VALUES (?, ?, ?, ?, ?)",
			id, i, tab.URL, tab.Title, tab.GroupID,
		); err != nil {
			return 0, fmt.Errorf("insert session tab %q: %w", tab.URL, err)
		}
	}

	// Evict the oldest snapshots beyond the cap. Tabs cascade.
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id NOT IN (
		SELECT id FROM sessions ORDER BY id DESC LIMIT ?)`, MaxSessions,
	); err != nil {
		return 0, fmt.Errorf("evict old sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

// ListSessions returns all snapshots newest first, without their tabs.
func ListSessions(db *sql.DB) ([]types.SessionSnapshot, error) {
	rows, err := db.Query("SELECT id, name, created_at FROM sessions ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var result []types.SessionSnapshot
	for rows.Next() {
		var s types.SessionSnapshot
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return result, nil
}

// GetSession loads a full snapshot by id. Returns nil, nil when the id is
// unknown; absence is not an error at this layer.
func GetSession(db *sql.DB, id int64) (*types.SessionSnapshot, error) {
	s := &types.SessionSnapshot{}
	err := db.QueryRow(
		"SELECT id, name, created_at FROM sessions WHERE id = ?", id,
	).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	rows, err := db.Query(
		"SELECT url, title, group_id FROM session_tabs WHERE session_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query session tabs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tab types.SessionTab
		if err := rows.Scan(&tab.URL, &tab.Title, &tab.GroupID); err != nil {
			return nil, fmt.Errorf("scan session tab: %w", err)
		}
		s.Tabs = append(s.Tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session tabs: %w", err)
	}
	return s, nil
}

// DeleteSession removes a snapshot by id. Deleting an unknown id is a
// no-op; the bool reports whether a row was removed.
func DeleteSession(db *sql.DB, id int64) (bool, error) {
	res, err := db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return affected > 0, nil
}
