package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a grading fixture.
type Fixture struct {
	Description string        `json:"description"`
	CatalogFile string        `json:"catalog_file"` // relative to the fixture file
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one recorded fingerprint and what grading it should produce.
type FixtureCase struct {
	ID          string            `json:"id"`
	Fingerprint riven.Fingerprint `json:"fingerprint"`
	Expected    Expectation       `json:"expected"`
}

// Expectation is either a grade (with optional mod name) or an error kind.
type Expectation struct {
	Grade     riven.Grade `json:"grade,omitempty"`
	ModName   string      `json:"mod_name,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file. CatalogFile is resolved
// against the fixture's directory.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.CatalogFile != "" && !filepath.IsAbs(f.CatalogFile) {
		f.CatalogFile = filepath.Join(filepath.Dir(path), f.CatalogFile)
	}
	return &f, nil
}

// Snapshot loads the catalog the fixture was recorded against.
func (f *Fixture) Snapshot() (*catalog.Snapshot, error) {
	if f.CatalogFile == "" {
		return nil, fmt.Errorf("fixture %q names no catalog file", f.Description)
	}
	return catalog.LoadYAML(f.CatalogFile)
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// CasesFromLog turns grade log rows into fixture cases whose expectations are
// the outcomes the engine recorded at the time.
func CasesFromLog(entries []logging.GradeEntry) ([]FixtureCase, error) {
	cases := make([]FixtureCase, 0, len(entries))
	for _, e := range entries {
		var fp riven.Fingerprint
		if err := json.Unmarshal([]byte(e.FingerprintJSON), &fp); err != nil {
			return nil, fmt.Errorf("grade log entry %d: %w", e.ID, err)
		}
		cases = append(cases, FixtureCase{
			ID:          fmt.Sprintf("log-%d", e.ID),
			Fingerprint: fp,
			Expected: Expectation{
				Grade:     riven.Grade(e.Grade),
				ModName:   e.ModName,
				ErrorKind: e.ErrorKind,
			},
		})
	}
	return cases, nil
}

// #endregion fixture-loader
