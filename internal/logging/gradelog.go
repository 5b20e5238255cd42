package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region grade-entry
// GradeEntry is one row in the grade_log table: the fingerprint as received
// and what the engine made of it.
type GradeEntry struct {
	ID              int64
	CatalogVersion  string
	FingerprintJSON string
	WeaponID        string
	ModName         string
	Grade           string // empty on failure
	ErrorKind       string // empty on success
	Error           string
	CreatedAt       time.Time
}

// #endregion grade-entry

// #region schema
const gradeLogSchema = `
CREATE TABLE IF NOT EXISTS grade_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	catalog_version  TEXT,
	fingerprint_json TEXT NOT NULL,
	weapon_id        TEXT NOT NULL,
	mod_name         TEXT,
	grade            TEXT,
	error_kind       TEXT,
	error            TEXT,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_grade_log_weapon ON grade_log(weapon_id);
`

// EnsureSchema creates the grade_log table if needed.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(gradeLogSchema); err != nil {
		return fmt.Errorf("create grade_log: %w", err)
	}
	return nil
}

// #endregion schema

// #region log-grade
// LogGrade appends an entry to the grade log.
func LogGrade(db *sql.DB, entry GradeEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO grade_log (catalog_version, fingerprint_json, weapon_id, mod_name, grade, error_kind, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.CatalogVersion),
		entry.FingerprintJSON,
		entry.WeaponID,
		nullIfEmpty(entry.ModName),
		nullIfEmpty(entry.Grade),
		nullIfEmpty(entry.ErrorKind),
		nullIfEmpty(entry.Error),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log grade: %w", err)
	}
	return nil
}

// #endregion log-grade

// #region list-grades
// ListGrades returns the most recent n entries, oldest first. n <= 0 returns all.
func ListGrades(db *sql.DB, n int) ([]GradeEntry, error) {
	query := `SELECT id, catalog_version, fingerprint_json, weapon_id, mod_name, grade, error_kind, error, created_at
		FROM (SELECT * FROM grade_log ORDER BY id DESC LIMIT ?) ORDER BY id ASC`
	limit := n
	if n <= 0 {
		limit = -1
	}

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	defer rows.Close()

	var out []GradeEntry
	for rows.Next() {
		var (
			e                                        GradeEntry
			version, modName, grade, errKind, errMsg sql.NullString
			createdAt                                string
		)
		if err := rows.Scan(&e.ID, &version, &e.FingerprintJSON, &e.WeaponID, &modName, &grade, &errKind, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		e.CatalogVersion = version.String
		e.ModName = modName.String
		e.Grade = grade.String
		e.ErrorKind = errKind.String
		e.Error = errMsg.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-grades

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
