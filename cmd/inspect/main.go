package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/query"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
	"github.com/danielpatrickdp/rivenwatch/internal/stock"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to rivenwatch.db")
	last := flag.Int("last", 20, "show N most recent grade log rows")
	id := flag.Int64("id", 0, "show one grade log row, re-graded against the active catalog")
	weapon := flag.String("weapon", "", "filter by weapon (id in grade mode, url name in stock mode)")
	stockMode := flag.Bool("stock", false, "list stock records instead of the grade log")
	criteria := flag.String("criteria", "", "stock mode: JSON match criteria file")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/rivenwatch.db [--last N] [--id row] [--weapon w] [--stock [--criteria file]] [--json]")
		os.Exit(2)
	}

	store, err := catalog.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := logging.EnsureSchema(store.DB()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	switch {
	case *stockMode:
		err = runStockMode(store, *weapon, *criteria, *jsonOut)
	case *id > 0:
		err = runDetailMode(store, *id, *jsonOut)
	default:
		err = runListMode(store, *last, *weapon, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ID        int64  `json:"id"`
	WeaponID  string `json:"weapon_id"`
	ModName   string `json:"mod_name,omitempty"`
	Outcome   string `json:"outcome"`
	Catalog   string `json:"catalog_version,omitempty"`
	CreatedAt string `json:"created_at"`
}

func runListMode(store *catalog.Store, last int, weapon string, jsonOut bool) error {
	entries, err := logging.ListGrades(store.DB(), last)
	if err != nil {
		return err
	}

	var rows []listRow
	counts := make(map[string]int)
	for _, e := range entries {
		if weapon != "" && e.WeaponID != weapon {
			continue
		}
		outcome := e.Grade
		if e.ErrorKind != "" {
			outcome = "error:" + e.ErrorKind
		}
		counts[outcome]++
		rows = append(rows, listRow{
			ID:        e.ID,
			WeaponID:  e.WeaponID,
			ModName:   e.ModName,
			Outcome:   outcome,
			Catalog:   e.CatalogVersion,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no grade log rows found")
		return nil
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%6s  %-36s  %-16s  %-24s  %s\n", "ID", "Weapon", "Mod", "Outcome", "Time")
	fmt.Printf("%6s+-%-36s+-%-16s+-%-24s+-%s\n", "------", strings.Repeat("-", 36), strings.Repeat("-", 16), strings.Repeat("-", 24), "--------------------")
	for _, r := range rows {
		fmt.Printf("%6d  %-36s  %-16s  %-24s  %s\n", r.ID, r.WeaponID, r.ModName, r.Outcome, r.CreatedAt)
	}

	fmt.Printf("\nOutcomes:\n")
	for _, g := range riven.Grades {
		if n := counts[string(g)]; n > 0 {
			fmt.Printf("  %-24s %d\n", g, n)
		}
	}
	for outcome, n := range counts {
		if strings.HasPrefix(outcome, "error:") {
			fmt.Printf("  %-24s %d\n", outcome, n)
		}
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Entry     logging.GradeEntry `json:"entry"`
	Regraded  *riven.GradedRiven `json:"regraded,omitempty"`
	RegradeOn string             `json:"regrade_catalog,omitempty"`
	Error     string             `json:"regrade_error,omitempty"`
}

func runDetailMode(store *catalog.Store, id int64, jsonOut bool) error {
	entries, err := logging.ListGrades(store.DB(), 0)
	if err != nil {
		return err
	}
	var entry *logging.GradeEntry
	for i := range entries {
		if entries[i].ID == id {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("grade log row %d not found", id)
	}

	out := detailOutput{Entry: *entry}
	snap, _, err := store.Current()
	switch {
	case errors.Is(err, catalog.ErrNoActiveCatalog):
		out.Error = err.Error()
	case err != nil:
		return err
	default:
		var fp riven.Fingerprint
		if err := json.Unmarshal([]byte(entry.FingerprintJSON), &fp); err != nil {
			return fmt.Errorf("parse fingerprint: %w", err)
		}
		out.RegradeOn = snap.Version()
		res, gerr := grade.NewGrader(snap, grade.DefaultCostTable()).Grade(fp)
		if gerr != nil {
			out.Error = gerr.Error()
		} else {
			out.Regraded = &res
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Row:        %d\n", entry.ID)
	fmt.Printf("Weapon:     %s\n", entry.WeaponID)
	fmt.Printf("Catalog:    %s\n", entry.CatalogVersion)
	fmt.Printf("Created:    %s\n", entry.CreatedAt.Format("2006-01-02T15:04:05Z"))
	if entry.ErrorKind != "" {
		fmt.Printf("Error:      %s (%s)\n", entry.ErrorKind, entry.Error)
	} else {
		fmt.Printf("Mod:        %s\n", entry.ModName)
		fmt.Printf("Grade:      %s\n", entry.Grade)
	}

	if out.Regraded == nil {
		if out.Error != "" {
			fmt.Printf("\nRe-grade failed: %s\n", out.Error)
		}
		return nil
	}
	r := out.Regraded
	fmt.Printf("\nRe-graded against %s: %s %s (%s)\n", out.RegradeOn, r.WeaponName, r.ModName, r.Grade)
	fmt.Printf("  Endo: %d  Kuva: %d\n", r.EndoCost, r.KuvaCost)
	for _, a := range r.Attributes {
		sign := "+"
		if !a.Positive {
			sign = "-"
		}
		fmt.Printf("  %s %-22s %8.1f  [%7.1f, %7.1f]  quality %.2f\n", sign, a.Tag, a.Value, a.MinRoll, a.MaxRoll, a.Quality)
	}
	return nil
}

// #endregion detail-mode

// #region stock-mode

func runStockMode(store *catalog.Store, weapon, criteriaPath string, jsonOut bool) error {
	st, err := stock.NewStore(store.DB())
	if err != nil {
		return err
	}

	var entries []stock.Entry
	if criteriaPath != "" {
		data, err := os.ReadFile(criteriaPath)
		if err != nil {
			return fmt.Errorf("read criteria: %w", err)
		}
		var c query.MatchCriteria
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("parse criteria: %w", err)
		}
		if entries, err = st.Find(c); err != nil {
			return err
		}
		if q := query.Encode(c); !q.IsEmpty() {
			fmt.Fprintf(os.Stderr, "search query: %s\n", q.Encode())
		}
	} else if entries, err = st.List(weapon); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(entries)
	}
	fmt.Printf("%-36s  %-16s  %-16s  %4s  %7s  %s\n", "ID", "Weapon", "Mod", "MR", "Rerolls", "Attributes")
	for _, e := range entries {
		var attrs []string
		for _, a := range e.Record.Attributes {
			sign := "+"
			if !a.Positive {
				sign = "-"
			}
			attrs = append(attrs, fmt.Sprintf("%s%s %.1f", sign, a.URLName, a.Value))
		}
		fmt.Printf("%-36s  %-16s  %-16s  %4d  %7d  %s\n",
			e.ID, e.Record.WeaponURLName, e.Record.ModName, e.Record.MasteryRank, e.Record.Rerolls, strings.Join(attrs, ", "))
	}
	fmt.Printf("\n%d records\n", len(entries))
	return nil
}

// #endregion stock-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
