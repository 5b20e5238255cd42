package query

import (
	"strings"

	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region match
// Similarity is the fraction of the filter's attributes that rec carries with
// the same sign. A filter without attributes scores 1.
func Similarity(c MatchCriteria, rec riven.StockRecord) float64 {
	if len(c.Attributes) == 0 {
		return 1
	}
	hits := 0
	for _, a := range c.Attributes {
		if hasAttribute(rec, a.URLName, a.Positive) {
			hits++
		}
	}
	return float64(hits) / float64(len(c.Attributes))
}

// Matches applies the full filter to a stock record locally, including the
// rank range and similarity threshold the marketplace search cannot express.
// A disabled filter matches everything.
func Matches(c MatchCriteria, rec riven.StockRecord) bool {
	if !c.IsEnabled() {
		return true
	}

	for _, a := range c.Attributes {
		if a.IsRequired && !hasAttribute(rec, a.URLName, a.Positive) {
			return false
		}
	}
	if c.RequiredNegative != nil && *c.RequiredNegative && !hasCurse(rec) {
		return false
	}

	modRank := 0
	if rec.ModRank != nil {
		modRank = *rec.ModRank
	}
	if !inRange(c.Rank, modRank) || !inRange(c.MasteryRank, rec.MasteryRank) || !inRange(c.Rerolls, rec.Rerolls) {
		return false
	}

	if c.Polarity != nil && *c.Polarity != "" && !strings.EqualFold(*c.Polarity, AnyPolarity) {
		if !strings.EqualFold(*c.Polarity, rec.Polarity) {
			return false
		}
	}

	if c.Similarity != nil && Similarity(c, rec) < *c.Similarity {
		return false
	}
	return true
}

func hasAttribute(rec riven.StockRecord, urlName string, positive bool) bool {
	for _, a := range rec.Attributes {
		if a.URLName == urlName && a.Positive == positive {
			return true
		}
	}
	return false
}

func hasCurse(rec riven.StockRecord) bool {
	for _, a := range rec.Attributes {
		if !a.Positive {
			return true
		}
	}
	return false
}

// inRange mirrors Encode: a zero Min is unbounded.
func inRange(r *Range, v int) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && *r.Min != 0 && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// #endregion match
