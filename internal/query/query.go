// Package query turns a stored match filter into the constrained parameter set
// the marketplace search accepts, and scores local stock against the same
// filter.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// HasNegative is the synthetic negative stat meaning "any curse at all".
const HasNegative = "has"

// AnyPolarity is sent when the filter names an empty polarity.
const AnyPolarity = "any"

// #region criteria
// Range is an optional integer bound pair. A zero Min means unbounded.
type Range struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// CriteriaAttribute is one stat the filter cares about.
type CriteriaAttribute struct {
	URLName    string `json:"url_name"`
	Positive   bool   `json:"positive"`
	IsRequired bool   `json:"is_required"`
}

// MatchCriteria is a persisted search filter. Every field is optional.
type MatchCriteria struct {
	Enabled          *bool               `json:"enabled,omitempty"`
	Rank             *Range              `json:"rank,omitempty"`
	MasteryRank      *Range              `json:"mastery_rank,omitempty"`
	Rerolls          *Range              `json:"rerolls,omitempty"`
	Polarity         *string             `json:"polarity,omitempty"`
	Similarity       *float64            `json:"similarity,omitempty"`
	RequiredNegative *bool               `json:"required_negative,omitempty"`
	Attributes       []CriteriaAttribute `json:"attributes,omitempty"`
}

// IsEnabled treats an absent flag as disabled.
func (c MatchCriteria) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// #endregion criteria

// #region search-query
// SearchQuery is the marketplace's search parameter set. Nil fields are not sent.
type SearchQuery struct {
	PositiveStats []string `json:"positive_stats,omitempty"`
	NegativeStat  *string  `json:"negative_stat,omitempty"`
	RerollsMin    *int     `json:"rerolls_min,omitempty"`
	RerollsMax    *int     `json:"rerolls_max,omitempty"`
	MasteryMin    *int     `json:"mastery_min,omitempty"`
	MasteryMax    *int     `json:"mastery_max,omitempty"`
	Polarity      *string  `json:"polarity,omitempty"`
}

// IsEmpty reports whether the query places no constraint at all.
func (q SearchQuery) IsEmpty() bool {
	return len(q.PositiveStats) == 0 && q.NegativeStat == nil &&
		q.RerollsMin == nil && q.RerollsMax == nil &&
		q.MasteryMin == nil && q.MasteryMax == nil &&
		q.Polarity == nil
}

// Encode renders the query string with keys in a fixed order. Positive stats
// are escaped one by one and joined with a literal comma.
func (q SearchQuery) Encode() string {
	var b strings.Builder
	addEscaped := func(key, escaped string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(escaped)
	}
	add := func(key, value string) {
		addEscaped(key, url.QueryEscape(value))
	}
	addInt := func(key string, v *int) {
		if v != nil {
			add(key, strconv.Itoa(*v))
		}
	}

	if len(q.PositiveStats) > 0 {
		stats := make([]string, len(q.PositiveStats))
		for i, s := range q.PositiveStats {
			stats[i] = url.QueryEscape(s)
		}
		addEscaped("positive_stats", strings.Join(stats, ","))
	}
	if q.NegativeStat != nil {
		add("negative_stat", *q.NegativeStat)
	}
	addInt("rerolls_min", q.RerollsMin)
	addInt("rerolls_max", q.RerollsMax)
	addInt("mastery_min", q.MasteryMin)
	addInt("mastery_max", q.MasteryMax)
	if q.Polarity != nil {
		add("polarity", *q.Polarity)
	}
	return b.String()
}

// #endregion search-query

// #region encode
// Encode projects criteria onto a SearchQuery. A disabled filter yields an
// empty query.
//
// The search accepts a single negative stat, so only the first required curse
// (or the synthetic HasNegative when required_negative is set and no curse is
// named) is sent; the rest are dropped without error.
func Encode(c MatchCriteria) SearchQuery {
	var q SearchQuery
	if !c.IsEnabled() {
		return q
	}

	var negatives []string
	for _, a := range c.Attributes {
		if !a.IsRequired {
			continue
		}
		if a.Positive {
			q.PositiveStats = append(q.PositiveStats, a.URLName)
		} else {
			negatives = append(negatives, a.URLName)
		}
	}
	if c.RequiredNegative != nil && *c.RequiredNegative {
		negatives = append(negatives, HasNegative)
	}
	if len(negatives) > 0 {
		q.NegativeStat = &negatives[0]
	}

	q.RerollsMin, q.RerollsMax = bounds(c.Rerolls)
	q.MasteryMin, q.MasteryMax = bounds(c.MasteryRank)

	if c.Polarity != nil {
		p := *c.Polarity
		if p == "" {
			p = AnyPolarity
		}
		q.Polarity = &p
	}
	return q
}

func bounds(r *Range) (*int, *int) {
	if r == nil {
		return nil, nil
	}
	var lo, hi *int
	if r.Min != nil && *r.Min != 0 {
		v := *r.Min
		lo = &v
	}
	if r.Max != nil {
		v := *r.Max
		hi = &v
	}
	return lo, hi
}

// #endregion encode
