package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
)

// #region main
func main() {
	dbPath := flag.String("db", envOr("RIVEN_DB", "rivenwatch.db"), "path to rivenwatch.db")
	yamlPath := flag.String("yaml", "", "import a YAML catalog file")
	exportPath := flag.String("export", "", "import an upstream JSON export file")
	url := flag.String("url", "", "download and import an upstream JSON export")
	rollback := flag.String("rollback", "", "make a stored version active again")
	list := flag.Int("list", 0, "list the N most recent versions")
	flag.Parse()

	modes := 0
	for _, set := range []bool{*yamlPath != "", *exportPath != "", *url != "", *rollback != "", *list > 0} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintln(os.Stderr, "usage: catalog-import [--db path] (--yaml file | --export file | --url url | --rollback version-id | --list N)")
		os.Exit(2)
	}

	store, err := catalog.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *list > 0:
		err = runList(store, *list)
	case *rollback != "":
		err = runRollback(store, *rollback)
	default:
		err = runImport(store, *yamlPath, *exportPath, *url)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region import
func runImport(store *catalog.Store, yamlPath, exportPath, url string) error {
	var (
		snap   *catalog.Snapshot
		source string
		err    error
	)
	switch {
	case yamlPath != "":
		source = "file:" + yamlPath
		snap, err = catalog.LoadYAML(yamlPath)
	case exportPath != "":
		source = "file:" + exportPath
		var data []byte
		if data, err = os.ReadFile(exportPath); err == nil {
			snap, err = catalog.ParseExport(data, time.Now())
		}
	default:
		source = url
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		snap, err = catalog.NewHTTPSource(url, 2*time.Minute).Fetch(ctx)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", source, err)
	}
	if snap.Len() == 0 {
		return catalog.ErrEmptyCatalog
	}

	rec, err := store.Commit(snap, source)
	if err != nil {
		return err
	}
	fmt.Printf("=== Import Complete ===\n")
	fmt.Printf("  Version ID:      %s\n", rec.VersionID)
	fmt.Printf("  Catalog version: %s\n", rec.CatalogVersion)
	fmt.Printf("  Weapons:         %d\n", rec.WeaponCount)
	if rec.ParentID != "" {
		fmt.Printf("  Parent:          %s\n", rec.ParentID)
	}
	return nil
}

// #endregion import

// #region versions
func runRollback(store *catalog.Store, versionID string) error {
	if err := store.Rollback(versionID); err != nil {
		return err
	}
	_, rec, err := store.Current()
	if err != nil {
		return err
	}
	fmt.Printf("active catalog: %s (%s, %d weapons)\n", rec.VersionID, rec.CatalogVersion, rec.WeaponCount)
	return nil
}

func runList(store *catalog.Store, n int) error {
	versions, err := store.ListVersions(n)
	if err != nil {
		return err
	}
	_, active, err := store.Current()
	if err != nil && !errors.Is(err, catalog.ErrNoActiveCatalog) {
		return err
	}

	fmt.Printf("  %-36s  %-20s  %7s  %-20s  %s\n", "Version", "Catalog", "Weapons", "Created", "Source")
	for _, v := range versions {
		marker := " "
		if v.VersionID == active.VersionID {
			marker = "*"
		}
		fmt.Printf("%s %-36s  %-20s  %7d  %-20s  %s\n",
			marker, v.VersionID, v.CatalogVersion, v.WeaponCount, v.CreatedAt.Format("2006-01-02T15:04:05Z"), v.Source)
	}
	return nil
}

// #endregion versions

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
