package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS catalog_versions (
	version_id      TEXT PRIMARY KEY,
	parent_id       TEXT,
	catalog_version TEXT NOT NULL,
	source          TEXT NOT NULL,
	weapon_count    INTEGER NOT NULL,
	document        TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES catalog_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_catalog (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES catalog_versions(version_id)
);
`

// #endregion schema

// ErrNoActiveCatalog is returned by Current before the first commit.
var ErrNoActiveCatalog = errors.New("no active catalog")

// #region store-struct
// VersionRecord describes one committed catalog snapshot.
type VersionRecord struct {
	VersionID      string
	ParentID       string
	CatalogVersion string
	Source         string
	WeaponCount    int
	CreatedAt      time.Time
}

// Store keeps every committed catalog snapshot in SQLite with a pointer to the
// active one.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (grade log, stock).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region commit
// Commit stores snap as a new version and makes it active in one transaction.
func (s *Store) Commit(snap *Snapshot, source string) (VersionRecord, error) {
	doc, err := json.Marshal(snap.Document())
	if err != nil {
		return VersionRecord{}, fmt.Errorf("marshal catalog: %w", err)
	}

	rec := VersionRecord{
		VersionID:      uuid.New().String(),
		CatalogVersion: snap.Version(),
		Source:         source,
		WeaponCount:    snap.Len(),
		CreatedAt:      time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return VersionRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentID sql.NullString
	err = tx.QueryRow(`SELECT version_id FROM active_catalog WHERE id = 1`).Scan(&parentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return VersionRecord{}, fmt.Errorf("get active: %w", err)
	}
	var parentPtr interface{}
	if parentID.Valid {
		rec.ParentID = parentID.String
		parentPtr = parentID.String
	}

	_, err = tx.Exec(
		`INSERT INTO catalog_versions (version_id, parent_id, catalog_version, source, weapon_count, document, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, parentPtr, rec.CatalogVersion, rec.Source, rec.WeaponCount, string(doc),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return VersionRecord{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_catalog (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return VersionRecord{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return VersionRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion commit

// #region get-current
// Current loads the active snapshot.
func (s *Store) Current() (*Snapshot, VersionRecord, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_catalog WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, VersionRecord{}, ErrNoActiveCatalog
	}
	if err != nil {
		return nil, VersionRecord{}, fmt.Errorf("get active: %w", err)
	}
	return s.Version(versionID)
}

// #endregion get-current

// #region get-version
// Version loads a specific committed snapshot.
func (s *Store) Version(id string) (*Snapshot, VersionRecord, error) {
	var rec VersionRecord
	var parentID sql.NullString
	var doc, createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, parent_id, catalog_version, source, weapon_count, document, created_at
		 FROM catalog_versions WHERE version_id = ?`, id,
	).Scan(&rec.VersionID, &parentID, &rec.CatalogVersion, &rec.Source, &rec.WeaponCount, &doc, &createdStr)
	if err != nil {
		return nil, VersionRecord{}, fmt.Errorf("get version %s: %w", id, err)
	}
	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

	var d Document
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return nil, VersionRecord{}, fmt.Errorf("unmarshal catalog %s: %w", id, err)
	}
	snap, err := d.Snapshot()
	if err != nil {
		return nil, VersionRecord{}, fmt.Errorf("rebuild catalog %s: %w", id, err)
	}
	return snap, rec, nil
}

// #endregion get-version

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM catalog_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found", targetVersionID)
	}

	_, err = s.db.Exec(`UPDATE active_catalog SET version_id = ? WHERE id = 1`, targetVersionID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent versions, newest first.
func (s *Store) ListVersions(limit int) ([]VersionRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, catalog_version, source, weapon_count, created_at
		 FROM catalog_versions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []VersionRecord
	for rows.Next() {
		var rec VersionRecord
		var parentID sql.NullString
		var createdStr string
		if err := rows.Scan(&rec.VersionID, &parentID, &rec.CatalogVersion, &rec.Source, &rec.WeaponCount, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if parentID.Valid {
			rec.ParentID = parentID.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-versions
