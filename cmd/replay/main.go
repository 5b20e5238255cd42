package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to rivenwatch.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	costsPath := flag.String("costs", "", "optional YAML cost table")
	last := flag.Int("last", 0, "DB mode: replay only the N most recent grade log rows")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/rivenwatch.db [--last N] [--costs file]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json [--costs file]")
		os.Exit(2)
	}

	costs := grade.DefaultCostTable()
	if *costsPath != "" {
		var err error
		if costs, err = grade.LoadCostTable(*costsPath); err != nil {
			fmt.Fprintf(os.Stderr, "costs: %v\n", err)
			os.Exit(2)
		}
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, costs)
	} else {
		exitCode = runDBMode(*dbPath, *last, costs)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region modes

// runDBMode re-grades the grade log against the active catalog, which shows
// what a catalog refresh changed.
func runDBMode(dbPath string, last int, costs grade.CostTable) int {
	store, err := catalog.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	snap, _, err := store.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "active catalog: %v\n", err)
		return 2
	}
	entries, err := logging.ListGrades(store.DB(), last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	cases, err := replay.CasesFromLog(entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	fmt.Printf("Replaying %d grade log rows against catalog %s\n\n", len(cases), snap.Version())
	return report(replay.Replay(grade.NewGrader(snap, costs), cases), cases)
}

func runFixtureMode(path string, costs grade.CostTable) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	snap, err := f.Snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	fmt.Printf("Fixture: %s\n\n", f.Description)
	return report(replay.Replay(grade.NewGrader(snap, costs), f.Cases), f.Cases)
}

// #endregion modes

// #region output

func report(results []replay.Result, cases []replay.FixtureCase) int {
	fmt.Printf("%-24s| %-20s| %-20s| %s\n", "Case", "Expected", "Replayed", "Match")
	fmt.Printf("%-24s+%-20s+%-20s+%s\n", "------------------------", "---------------------", "---------------------", "------")
	for i, r := range results {
		match := "OK"
		if r.Outcome != replay.OutcomePass {
			match = "DIVERGE"
		}
		fmt.Printf("%-24s| %-20s| %-20s| %s\n", r.CaseID, expected(cases[i].Expected), replayed(r), match)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", s.Total, s.Passed, s.Failed)
	for kind, n := range s.Errors {
		fmt.Printf("  %s: %d\n", kind, n)
	}
	for _, r := range results {
		if r.Outcome != replay.OutcomePass {
			fmt.Printf("  %s: %s\n", r.CaseID, r.Reason)
		}
	}
	if s.Failed > 0 {
		return 1
	}
	return 0
}

func expected(e replay.Expectation) string {
	if e.ErrorKind != "" {
		return "error:" + e.ErrorKind
	}
	return string(e.Grade)
}

func replayed(r replay.Result) string {
	if r.ErrorKind != "" {
		return "error:" + r.ErrorKind
	}
	return string(r.Got.Grade)
}

// #endregion output
