// Package replay re-grades recorded fingerprints against a catalog and reports
// where the engine's output drifted from the recorded expectation.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/metrics"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region types
const (
	OutcomePass = "pass"
	OutcomeFail = "fail"
)

// Result captures the outcome of re-grading one case.
type Result struct {
	CaseID    string
	Outcome   string
	Reason    string
	Got       riven.GradedRiven
	ErrorKind string // empty when grading succeeded
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total  int
	Passed int
	Failed int
	Grades map[riven.Grade]int
	Errors map[string]int
}

// #endregion types

// #region replay
// Replay grades every case in order. Grading is pure, so cases do not affect
// one another.
func Replay(g *grade.Grader, cases []FixtureCase) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		got, err := g.Grade(c.Fingerprint)
		r := Result{CaseID: c.ID, Got: got}
		if err != nil {
			r.ErrorKind = metrics.ErrorKind(err)
			r.Reason = err.Error()
		}
		if reason, ok := check(c.Expected, r); ok {
			r.Outcome = OutcomePass
		} else {
			r.Outcome = OutcomeFail
			r.Reason = reason
		}
		results = append(results, r)
	}
	return results
}

func check(want Expectation, r Result) (string, bool) {
	if want.ErrorKind != "" || r.ErrorKind != "" {
		if want.ErrorKind != r.ErrorKind {
			return fmt.Sprintf("error kind: want %q, got %q (%s)", want.ErrorKind, r.ErrorKind, r.Reason), false
		}
		return "", true
	}
	if want.Grade != "" && want.Grade != r.Got.Grade {
		return fmt.Sprintf("grade: want %s, got %s", want.Grade, r.Got.Grade), false
	}
	if want.ModName != "" && want.ModName != r.Got.ModName {
		return fmt.Sprintf("mod name: want %q, got %q", want.ModName, r.Got.ModName), false
	}
	return "", true
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{
		Total:  len(results),
		Grades: make(map[riven.Grade]int),
		Errors: make(map[string]int),
	}
	for _, r := range results {
		if r.Outcome == OutcomePass {
			s.Passed++
		} else {
			s.Failed++
		}
		if r.ErrorKind != "" {
			s.Errors[r.ErrorKind]++
		} else {
			s.Grades[r.Got.Grade]++
		}
	}
	return s
}

// #endregion replay
