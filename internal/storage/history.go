package storage

import (
	"database/sql"
	"fmt"

	"github.com/lumen-browser/lumen/internal/types"
)

// SaveHistory replaces the persisted history list wholesale, preserving
// list order. Entries are written in one transaction.
func SaveHistory(db *sql.DB, entries []types.HistoryEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for i, e := range entries {
		if _, err := tx.Exec(
			"INSERT INTO history (position, url, title, visit_count, last_visit) VALUES (?, ?, ?, ?, ?)",
			i, e.URL, e.Title, e.VisitCount, e.LastVisit,
		); err != nil {
			return fmt.Errorf("insert history entry %q: %w", e.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadHistory reads the persisted history list in list order.
func LoadHistory(db *sql.DB) ([]types.HistoryEntry, error) {
	rows, err := db.Query(
		"SELECT url, title, visit_count, last_visit FROM history ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var e types.HistoryEntry
		if err := rows.Scan(&e.URL, &e.Title, &e.VisitCount, &e.LastVisit); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
