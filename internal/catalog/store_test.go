package catalog

import (
	"errors"
	"path/filepath"
	"testing"
)

// #region helpers
func tempDB(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// #endregion helpers

func TestCurrentBeforeCommit(t *testing.T) {
	s := tempDB(t)
	if _, _, err := s.Current(); !errors.Is(err, ErrNoActiveCatalog) {
		t.Fatalf("expected ErrNoActiveCatalog, got %v", err)
	}
}

func TestCommitAndCurrent(t *testing.T) {
	s := tempDB(t)
	snap := loadFixture(t)

	rec, err := s.Commit(snap, "file:testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if rec.ParentID != "" {
		t.Errorf("first commit should have no parent, got %s", rec.ParentID)
	}
	if rec.WeaponCount != 2 || rec.CatalogVersion != "fixture-1" {
		t.Errorf("unexpected record: %+v", rec)
	}

	current, currentRec, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if currentRec.VersionID != rec.VersionID {
		t.Fatalf("expected active %s, got %s", rec.VersionID, currentRec.VersionID)
	}
	if _, ok := current.LookupUpgrade("LotusRifleRandomModRare", "multishot"); !ok {
		t.Fatal("stored snapshot lost upgrades")
	}
}

func TestCommitChainsParents(t *testing.T) {
	s := tempDB(t)
	snap := loadFixture(t)

	first, err := s.Commit(snap, "a")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	second, err := s.Commit(snap, "b")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if second.ParentID != first.VersionID {
		t.Fatalf("expected parent %s, got %s", first.VersionID, second.ParentID)
	}

	versions, err := s.ListVersions(10)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 || versions[0].VersionID != second.VersionID {
		t.Fatalf("expected newest first, got %+v", versions)
	}
}

func TestRollback(t *testing.T) {
	s := tempDB(t)
	snap := loadFixture(t)

	first, _ := s.Commit(snap, "a")
	if _, err := s.Commit(snap, "b"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := s.Rollback(first.VersionID); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	_, rec, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if rec.VersionID != first.VersionID || rec.Source != "a" {
		t.Fatalf("expected rollback to %s, got %+v", first.VersionID, rec)
	}

	if err := s.Rollback("no-such-version"); err == nil {
		t.Fatal("expected error rolling back to unknown version")
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()
	if _, err := s.Commit(loadFixture(t), "mem"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, _, err := s.Current(); err != nil {
		t.Fatalf("Current: %v", err)
	}
}
