// Package stock persists owned rivens keyed by their content identity, so the
// same physical mod is stored once however its attributes were ordered.
package stock

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/rivenwatch/internal/identity"
	"github.com/danielpatrickdp/rivenwatch/internal/query"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// ErrNotFound is returned when no record has the requested identity.
var ErrNotFound = errors.New("stock record not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS stock (
	id              TEXT PRIMARY KEY,
	weapon_url_name TEXT NOT NULL,
	mod_name        TEXT NOT NULL,
	record          TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stock_weapon ON stock(weapon_url_name);
`

// #endregion schema

// #region store
// Entry is a stored record with its identity and timestamps.
type Entry struct {
	ID        uuid.UUID
	Record    riven.StockRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the SQLite stock table. It shares a *sql.DB with the catalog store.
type Store struct {
	db *sql.DB
}

// NewStore ensures the stock schema on db.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate stock: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion store

// #region upsert
// Upsert stores rec under identity.Of(rec). created is false when the same
// physical mod was already stored; its record is replaced.
func (s *Store) Upsert(rec riven.StockRecord) (id uuid.UUID, created bool, err error) {
	id = identity.Of(rec)
	body, err := json.Marshal(rec)
	if err != nil {
		return id, false, fmt.Errorf("marshal stock record: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return id, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow(`SELECT id FROM stock WHERE id = ?`, id.String()).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
	case err != nil:
		return id, false, fmt.Errorf("lookup stock: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO stock (id, weapon_url_name, mod_name, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record, mod_name = excluded.mod_name, updated_at = excluded.updated_at`,
		id.String(), rec.WeaponURLName, rec.ModName, string(body), now, now,
	)
	if err != nil {
		return id, false, fmt.Errorf("upsert stock: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return id, false, fmt.Errorf("commit: %w", err)
	}
	return id, created, nil
}

// #endregion upsert

// #region read
// Get loads one record by identity.
func (s *Store) Get(id uuid.UUID) (Entry, error) {
	row := s.db.QueryRow(`SELECT id, record, created_at, updated_at FROM stock WHERE id = ?`, id.String())
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// List returns stored records for one weapon, or all when weaponURLName is
// empty, ordered by weapon then mod name.
func (s *Store) List(weaponURLName string) ([]Entry, error) {
	q := `SELECT id, record, created_at, updated_at FROM stock`
	var args []interface{}
	if weaponURLName != "" {
		q += ` WHERE weapon_url_name = ?`
		args = append(args, weaponURLName)
	}
	q += ` ORDER BY weapon_url_name, mod_name, id`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Find returns the stored records the filter matches locally.
func (s *Store) Find(c query.MatchCriteria) ([]Entry, error) {
	all, err := s.List("")
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if query.Matches(c, e.Record) {
			out = append(out, e)
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (Entry, error) {
	var idStr, body, createdAt, updatedAt string
	if err := row.Scan(&idStr, &body, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan stock: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Entry{}, fmt.Errorf("parse stock id: %w", err)
	}
	var e Entry
	e.ID = id
	if err := json.Unmarshal([]byte(body), &e.Record); err != nil {
		return Entry{}, fmt.Errorf("unmarshal stock record: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return e, nil
}

// #endregion read

// #region delete
// Delete removes one record.
func (s *Store) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM stock WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// #endregion delete
