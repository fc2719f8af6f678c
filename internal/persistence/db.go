// Package persistence provides SQLite-based snapshot history storage.
// See design doc Section 6.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/needle-hull/internal/snapshot"
)

// DB wraps a SQLite connection for snapshot history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path, creating the
// parent directory if needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		power_avg_mw REAL NOT NULL,
		exotic_mass_kg REAL NOT NULL,
		zeta REAL NOT NULL,
		calibration_clamped INTEGER NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pipeline_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	CREATE INDEX IF NOT EXISTS idx_snapshots_mode ON snapshots(mode);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SnapshotRow is one stored snapshot with its summary columns.
type SnapshotRow struct {
	ID                 string  `db:"id" json:"id"`
	CreatedAt          string  `db:"created_at" json:"created_at"`
	Mode               string  `db:"mode" json:"mode"`
	Status             string  `db:"status" json:"status"`
	PowerAvgMW         float64 `db:"power_avg_mw" json:"power_avg_mw"`
	ExoticMassKg       float64 `db:"exotic_mass_kg" json:"exotic_mass_kg"`
	Zeta               float64 `db:"zeta" json:"zeta"`
	CalibrationClamped int     `db:"calibration_clamped" json:"calibration_clamped"`
	PayloadJSON        string  `db:"payload_json" json:"payload_json"`
}

// SaveSnapshot appends one normalized payload to the history and returns
// the new row ID.
func (db *DB) SaveSnapshot(p snapshot.Payload) (string, error) {
	payloadJSON, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	id := uuid.NewString()
	clamped := 0
	if p.CalibrationClamped {
		clamped = 1
	}

	_, err = db.conn.Exec(`INSERT INTO snapshots
		(id, created_at, mode, status, power_avg_mw, exotic_mass_kg, zeta,
		 calibration_clamped, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), p.Mode, p.OverallStatus,
		p.PowerAvgMW, p.ExoticMassKg, p.Zeta, clamped, string(payloadJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	slog.Debug("snapshot saved", "id", id, "mode", p.Mode, "status", p.OverallStatus)
	return id, nil
}

// RecentSnapshots returns the most recent N snapshot rows, newest first.
func (db *DB) RecentSnapshots(limit int) ([]SnapshotRow, error) {
	var rows []SnapshotRow
	err := db.conn.Select(&rows,
		`SELECT id, created_at, mode, status, power_avg_mw, exotic_mass_kg,
		        zeta, calibration_clamped, payload_json
		 FROM snapshots ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	return rows, err
}

// PruneSnapshots deletes all but the most recent keep rows.
func (db *DB) PruneSnapshots(keep int) error {
	_, err := db.conn.Exec(`DELETE FROM snapshots WHERE id NOT IN
		(SELECT id FROM snapshots ORDER BY created_at DESC LIMIT ?)`, keep)
	return err
}

// SaveMeta stores a key-value pair in pipeline metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO pipeline_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM pipeline_meta WHERE key = ?", key)
	return value, err
}
