package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to rivenwatch.db")
	last := flag.Int("last", 50, "number of most recent grade log rows to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("description", "", "fixture description")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N] [--description text]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

// run writes the last N grade log rows as fixture cases, plus the active
// catalog as a YAML file next to the fixture so it replays stand-alone.
func run(dbPath string, last int, outPath, desc string) error {
	store, err := catalog.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	snap, rec, err := store.Current()
	if err != nil {
		return fmt.Errorf("active catalog: %w", err)
	}

	entries, err := logging.ListGrades(store.DB(), last)
	if err != nil {
		return err
	}
	var kept []logging.GradeEntry
	skipped := 0
	for _, e := range entries {
		// only rows graded against the catalog being exported replay faithfully
		if e.CatalogVersion != snap.Version() {
			skipped++
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return fmt.Errorf("no grade log rows for catalog %s in last %d entries", snap.Version(), last)
	}

	cases, err := replay.CasesFromLog(kept)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d grade log rows (%d from other catalog versions skipped)\n", len(cases), skipped)

	catalogPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".catalog.yaml"
	if err := catalog.WriteYAML(catalogPath, snap); err != nil {
		return err
	}

	if desc == "" {
		desc = fmt.Sprintf("exported from %s, catalog %s (%s)", filepath.Base(dbPath), snap.Version(), rec.VersionID)
	}
	f := &replay.Fixture{
		Description: desc,
		CatalogFile: filepath.Base(catalogPath),
		Cases:       cases,
	}
	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}
	fmt.Printf("Wrote %s and %s\n", outPath, catalogPath)
	return nil
}

// #endregion extract
