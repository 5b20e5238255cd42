// Package grade turns a riven fingerprint into a named, graded and costed
// riven using the catalog and the decoder.
package grade

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/decode"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// ErrWeaponNotFound means the fingerprint's compatibility id is not in the catalog.
var ErrWeaponNotFound = errors.New("weapon not found")

// #region grader
// Grader grades fingerprints against one catalog view. Build one per
// snapshot; it holds no mutable state.
type Grader struct {
	catalog catalog.Reader
	costs   CostTable
}

// NewGrader binds a catalog view and cost table.
func NewGrader(r catalog.Reader, costs CostTable) *Grader {
	return &Grader{catalog: r, costs: costs}
}

// Grade resolves, decodes, names, classifies and costs a fingerprint. On error
// the returned GradedRiven is always the zero value.
func (g *Grader) Grade(fp riven.Fingerprint) (riven.GradedRiven, error) {
	weapon, ok := g.catalog.LookupWeapon(fp.Compatibility)
	if !ok {
		return riven.GradedRiven{}, fmt.Errorf("%w: %s", ErrWeaponNotFound, fp.Compatibility)
	}

	attrs, err := decode.Decode(g.catalog, weapon, fp.Attributes(), fp.ModRank)
	if err != nil {
		return riven.GradedRiven{}, fmt.Errorf("decode %s: %w", weapon.ID, err)
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Positive && !attrs[j].Positive
	})

	var buffs []riven.AttributeEntry
	for _, e := range fp.Attributes() {
		if e.IsPositive {
			buffs = append(buffs, e)
		}
	}

	return riven.GradedRiven{
		WeaponName:  weapon.Name,
		WeaponID:    weapon.ID,
		ModName:     ModName(g.catalog, weapon.UpgradePool, buffs),
		MasteryRank: fp.MasteryRank,
		ModRank:     fp.ModRank,
		Rerolls:     fp.Rerolls,
		Attributes:  attrs,
		Polarity:    fp.Polarity,
		EndoCost:    g.costs.EndoCost(fp.MasteryRank, fp.Rerolls, fp.ModRank),
		KuvaCost:    g.costs.KuvaCost(fp.Rerolls),
		Grade:       Classify(weapon.IdealRoll, attrs),
	}, nil
}

// #endregion grader

// #region classify
// Classify grades decoded attributes against a weapon's ideal roll. Checks run
// in order: Decisive, Good, NotHelping, Bad; anything else is Unknown, as is a
// weapon without an ideal roll. Good needs the buffs to be a strict subset of
// the acceptable tags.
func Classify(ideal *catalog.IdealRoll, attrs []riven.DecodedAttribute) riven.Grade {
	if ideal == nil {
		return riven.GradeUnknown
	}

	type key struct {
		tag      string
		positive bool
	}
	want := make(map[key]bool, len(ideal.PositiveTags)+len(ideal.NegativeTags))
	for _, t := range ideal.PositiveTags {
		want[key{t, true}] = true
	}
	for _, t := range ideal.NegativeTags {
		want[key{t, false}] = true
	}
	have := make(map[key]bool, len(attrs))
	var buffs []string
	for _, a := range attrs {
		have[key{a.Tag, a.Positive}] = true
		if a.Positive {
			buffs = append(buffs, a.Tag)
		}
	}

	if len(want) > 0 && sameKeys(want, have) {
		return riven.GradeDecisive
	}
	if strictSubset(buffs, ideal.Acceptable()) {
		return riven.GradeGood
	}
	if !anyIn(buffs, ideal.PositiveTags) {
		return riven.GradeNotHelping
	}
	if anyIn(buffs, ideal.AvoidTags) {
		return riven.GradeBad
	}
	return riven.GradeUnknown
}

func sameKeys[K comparable](a, b map[K]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// strictSubset reports whether the distinct tags form a non-empty proper
// subset of set.
func strictSubset(tags, set []string) bool {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if !slices.Contains(set, t) {
			return false
		}
		seen[t] = true
	}
	distinct := make(map[string]bool, len(set))
	for _, t := range set {
		distinct[t] = true
	}
	return len(seen) > 0 && len(seen) < len(distinct)
}

func anyIn(tags, set []string) bool {
	for _, t := range tags {
		if slices.Contains(set, t) {
			return true
		}
	}
	return false
}

// #endregion classify
