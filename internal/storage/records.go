package storage

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/lumen-browser/lumen/internal/types"
)

// Record keys for the key-value slots.
const (
	RecordSettings       = "settings"
	RecordLastSession    = "last_session"
	RecordRecentlyClosed = "recently_closed"
)

// lz4-framed record header: 8-byte magic + 4-byte LE uint32 raw size,
// followed by one lz4 block (same framing family as Mozilla's mozlz4).
var recordMagic = []byte("lumenz4\x00")

const recordHeaderSize = 12

// CompressRecord wraps raw bytes in the lz4 record framing. Incompressible
// input is returned unframed; DecompressRecord handles both shapes.
func CompressRecord(raw []byte) []byte {
	dst := make([]byte, recordHeaderSize+lz4.CompressBlockBound(len(raw)))
	copy(dst, recordMagic)
	binary.LittleEndian.PutUint32(dst[8:12], uint32(len(raw)))

	var c lz4.Compressor
	n, err := c.CompressBlock(raw, dst[recordHeaderSize:])
	if err != nil || n == 0 {
		// Did not shrink; store the raw bytes as-is.
		return raw
	}
	return dst[:recordHeaderSize+n]
}

// DecompressRecord unwraps a record written by CompressRecord. Data
// without the frame magic is returned unchanged, so plain JSON older than
// the framing still loads.
func DecompressRecord(data []byte) ([]byte, error) {
	if len(data) < recordHeaderSize || string(data[:8]) != string(recordMagic) {
		return data, nil
	}
	rawSize := binary.LittleEndian.Uint32(data[8:12])
	dst := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data[recordHeaderSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("decompress record: %w", err)
	}
	return dst[:n], nil
}

// SaveRecord upserts a key-value slot.
func SaveRecord(db *sql.DB, key string, value []byte) error {
	_, err := db.Exec(`INSERT INTO records (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save record %q: %w", key, err)
	}
	return nil
}

// LoadRecord reads a key-value slot. A missing key returns nil, nil.
func LoadRecord(db *sql.DB, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRow("SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load record %q: %w", key, err)
	}
	return value, nil
}

// SaveSettings persists the whole settings record as JSON.
func SaveSettings(db *sql.DB, s types.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return SaveRecord(db, RecordSettings, data)
}

// LoadSettings reads the settings record, unmarshalling over the defaults
// so a missing or partially-shaped record falls back field-by-field. A
// malformed record loads as pure defaults rather than failing.
func LoadSettings(db *sql.DB) types.Settings {
	s := types.DefaultSettings()
	data, err := LoadRecord(db, RecordSettings)
	if err != nil || len(data) == 0 {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return types.DefaultSettings()
	}
	return s
}
