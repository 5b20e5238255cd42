package replay

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region fixture-tests

// TestFixture_GradedSession re-grades the recorded session and fails on any
// drift in grade, mod name or error kind.
func TestFixture_GradedSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "graded_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	snap, err := f.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	results := Replay(grade.NewGrader(snap, grade.DefaultCostTable()), f.Cases)
	if len(results) != len(f.Cases) {
		t.Fatalf("expected %d results, got %d", len(f.Cases), len(results))
	}
	for i, r := range results {
		if r.CaseID != f.Cases[i].ID {
			t.Errorf("case %d: expected id %s, got %s", i, f.Cases[i].ID, r.CaseID)
		}
		if r.Outcome != OutcomePass {
			t.Errorf("case %s: %s", r.CaseID, r.Reason)
		}
	}

	s := Summarize(results)
	if s.Passed != 6 || s.Failed != 0 {
		t.Errorf("expected 6 passed, got %+v", s)
	}
	if s.Grades[riven.GradeDecisive] != 1 || s.Errors["unknown_stat"] != 1 {
		t.Errorf("unexpected breakdown: %+v", s)
	}
}

func TestLoadFixture_ResolvesCatalogPath(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "graded_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if want := filepath.Join("testdata", "catalog.yaml"); f.CatalogFile != want {
		t.Fatalf("expected catalog path %s, got %s", want, f.CatalogFile)
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestWriteFixture_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	in := &Fixture{
		Description: "exported",
		CatalogFile: "catalog.yaml",
		Cases: []FixtureCase{{
			ID:       "c1",
			Expected: Expectation{Grade: riven.GradeGood, ModName: "Critacan"},
		}},
	}
	if err := WriteFixture(path, in); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	out, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if out.Cases[0].Expected != in.Cases[0].Expected {
		t.Fatalf("expectation changed: %+v", out.Cases[0].Expected)
	}
	if out.CatalogFile != filepath.Join(filepath.Dir(path), "catalog.yaml") {
		t.Fatalf("catalog path not resolved: %s", out.CatalogFile)
	}
}

// #endregion fixture-tests

// #region log-export-tests
func TestCasesFromLog(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if err := logging.EnsureSchema(db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	fp := riven.Fingerprint{
		Compatibility: "/Lotus/Weapons/Testbow",
		ModRank:       8,
		Buffs: []riven.AttributeEntry{
			{Tag: "critical_chance", RolledValue: 180, IsPositive: true},
			{Tag: "multishot", RolledValue: 100, IsPositive: true},
		},
	}
	body, _ := json.Marshal(fp)
	if err := logging.LogGrade(db, logging.GradeEntry{FingerprintJSON: string(body), WeaponID: fp.Compatibility, ModName: "Critacan", Grade: "Good"}); err != nil {
		t.Fatalf("LogGrade: %v", err)
	}
	if err := logging.LogGrade(db, logging.GradeEntry{FingerprintJSON: string(body), WeaponID: fp.Compatibility, ErrorKind: "unknown_stat"}); err != nil {
		t.Fatalf("LogGrade: %v", err)
	}

	entries, err := logging.ListGrades(db, 0)
	if err != nil {
		t.Fatalf("ListGrades: %v", err)
	}
	cases, err := CasesFromLog(entries)
	if err != nil {
		t.Fatalf("CasesFromLog: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].ID != "log-1" || cases[0].Expected.Grade != riven.GradeGood || cases[0].Fingerprint.Buffs[1].Tag != "multishot" {
		t.Errorf("unexpected first case: %+v", cases[0])
	}
	if cases[1].Expected.ErrorKind != "unknown_stat" || cases[1].Expected.Grade != "" {
		t.Errorf("unexpected second case: %+v", cases[1])
	}
}

func TestCasesFromLog_BadJSON(t *testing.T) {
	_, err := CasesFromLog([]logging.GradeEntry{{ID: 7, FingerprintJSON: "{"}})
	if err == nil {
		t.Fatal("expected error for malformed fingerprint")
	}
}

// #endregion log-export-tests
