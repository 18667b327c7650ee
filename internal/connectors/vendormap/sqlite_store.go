package vendormap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Summary represents one downstream vendor and number of mapped material
// streams.
type Summary struct {
	VendorID    string `json:"vendor_id"`
	StreamCount int64  `json:"stream_count"`
}

// Mapping is one vendor's full material stream set.
type Mapping struct {
	VendorID string   `json:"vendor_id"`
	Streams  []string `json:"streams"`
}

// Preset is an app-owned persisted drill-down filter set.
type Preset struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	RecordType  string     `json:"record_type"`
	ConfigJSON  string     `json:"config_json"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Store manages vendor/material-stream mappings and drill-down presets in
// SQLite.
type Store struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS vendor_material_streams (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  vendor_id TEXT NOT NULL,
  material_stream TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(vendor_id, material_stream)
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_vms_vendor_id ON vendor_material_streams(vendor_id);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_vms_stream ON vendor_material_streams(material_stream);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS drilldown_presets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  record_type TEXT NOT NULL DEFAULT 'processinglot',
  config_json TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_dp_record_type ON drilldown_presets(record_type);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the backing SQLite file path for the status page.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) ListVendors(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT vendor_id, COUNT(*)
FROM vendor_material_streams
GROUP BY vendor_id
ORDER BY vendor_id
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Summary, 0, limit)
	for rows.Next() {
		var item Summary
		if err := rows.Scan(&item.VendorID, &item.StreamCount); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) StreamsForVendor(ctx context.Context, vendorID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT material_stream
FROM vendor_material_streams
WHERE vendor_id = ?
ORDER BY material_stream;
`, strings.TrimSpace(vendorID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var stream string
		if err := rows.Scan(&stream); err != nil {
			return nil, err
		}
		stream = strings.TrimSpace(stream)
		if stream != "" {
			out = append(out, stream)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceStreams replaces a vendor's mapped material streams in one
// transaction and returns the number of streams stored.
func (s *Store) ReplaceStreams(ctx context.Context, vendorID string, streams []string) (int, error) {
	vendorID = strings.TrimSpace(vendorID)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vendor_material_streams WHERE vendor_id = ?`, vendorID); err != nil {
		return 0, err
	}

	norm := normalizeStreams(streams)
	for _, stream := range norm {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO vendor_material_streams (vendor_id, material_stream)
VALUES (?, ?)
ON CONFLICT(vendor_id, material_stream) DO NOTHING;
`, vendorID, stream); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(norm), nil
}

func (s *Store) DeleteVendor(ctx context.Context, vendorID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vendor_material_streams WHERE vendor_id = ?`, strings.TrimSpace(vendorID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func normalizeStreams(streams []string) []string {
	seen := make(map[string]struct{}, len(streams))
	out := make([]string, 0, len(streams))
	for _, stream := range streams {
		stream = strings.TrimSpace(stream)
		if stream == "" {
			continue
		}
		if _, ok := seen[stream]; ok {
			continue
		}
		seen[stream] = struct{}{}
		out = append(out, stream)
	}
	return out
}

func (s *Store) ListPresets(ctx context.Context, limit int) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, description, record_type, config_json, created_at, updated_at
FROM drilldown_presets
ORDER BY name ASC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Preset, 0, limit)
	for rows.Next() {
		var (
			item      Preset
			createdAt sql.NullTime
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.RecordType, &item.ConfigJSON, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			t := createdAt.Time.UTC()
			item.CreatedAt = &t
		}
		if updatedAt.Valid {
			t := updatedAt.Time.UTC()
			item.UpdatedAt = &t
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetPreset(ctx context.Context, id int64) (*Preset, error) {
	var (
		item      Preset
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, description, record_type, config_json, created_at, updated_at
FROM drilldown_presets
WHERE id = ?;
`, id).Scan(&item.ID, &item.Name, &item.Description, &item.RecordType, &item.ConfigJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		t := createdAt.Time.UTC()
		item.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		item.UpdatedAt = &t
	}
	return &item, nil
}

func (s *Store) UpsertPreset(ctx context.Context, name, description, recordType, configJSON string) (int64, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	recordType = strings.ToLower(strings.TrimSpace(recordType))
	configJSON = strings.TrimSpace(configJSON)
	if name == "" {
		return 0, fmt.Errorf("preset name is required")
	}
	if recordType == "" {
		recordType = "processinglot"
	}
	if recordType != "processinglot" && recordType != "processedmaterial" {
		return 0, fmt.Errorf("unsupported record type: %s", recordType)
	}
	if configJSON == "" {
		return 0, fmt.Errorf("config_json is required")
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO drilldown_presets (name, description, record_type, config_json, created_at, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET
  description = excluded.description,
  record_type = excluded.record_type,
  config_json = excluded.config_json,
  updated_at = CURRENT_TIMESTAMP;
`, name, description, recordType, configJSON)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err == nil && id > 0 {
		return id, nil
	}

	var existingID int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM drilldown_presets WHERE name = ?`, name).Scan(&existingID); err != nil {
		return 0, err
	}
	return existingID, nil
}

func (s *Store) DeletePreset(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drilldown_presets WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
