// Package subtype describes the optional qualifiers (rank, charges, variant, star
// counters) that disambiguate otherwise identical tradable items.
package subtype

import (
	"hash/fnv"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// #region subtype
// SubType is an immutable value. Absent fields are nil; callers replace a
// SubType wholesale instead of mutating it.
type SubType struct {
	Rank       *int    `json:"rank,omitempty"`
	Charges    *int    `json:"charges,omitempty"`
	Variant    *string `json:"variant,omitempty"`
	AmberStars *int    `json:"amber_stars,omitempty"`
	CyanStars  *int    `json:"cyan_stars,omitempty"`
}

// New builds a SubType from the given options.
func New(opts ...Option) SubType {
	var s SubType
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option sets one field of a SubType under construction.
type Option func(*SubType)

func WithRank(n int) Option { return func(s *SubType) { s.Rank = &n } }
func WithCharges(n int) Option { return func(s *SubType) { s.Charges = &n } }
func WithVariant(v string) Option { return func(s *SubType) { s.Variant = &v } }
func WithAmberStars(n int) Option { return func(s *SubType) { s.AmberStars = &n } }
func WithCyanStars(n int) Option { return func(s *SubType) { s.CyanStars = &n } }

// #endregion subtype

// #region equality
// IsEmpty reports whether every field is absent.
func (s SubType) IsEmpty() bool {
	return s.Rank == nil && s.Charges == nil && s.Variant == nil && s.AmberStars == nil && s.CyanStars == nil
}

// Key returns the canonical structural encoding. Field order is fixed:
// rank, charges, variant, amber_stars, cyan_stars. Absent fields render as "-",
// so an absent rank and rank 0 never collide.
func (s SubType) Key() string {
	var b strings.Builder
	b.WriteString("rank=")
	b.WriteString(intField(s.Rank))
	b.WriteString(";charges=")
	b.WriteString(intField(s.Charges))
	b.WriteString(";variant=")
	if s.Variant == nil {
		b.WriteString("-")
	} else {
		b.WriteString(strconv.Quote(*s.Variant))
	}
	b.WriteString(";amber_stars=")
	b.WriteString(intField(s.AmberStars))
	b.WriteString(";cyan_stars=")
	b.WriteString(intField(s.CyanStars))
	return b.String()
}

// Equal compares two SubTypes field by field.
func (s SubType) Equal(other SubType) bool {
	return s.Key() == other.Key()
}

// Hash is a 64-bit FNV-1a digest of Key.
func (s SubType) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(s.Key()))
	return h.Sum64()
}

func intField(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

// #endregion equality

// #region display
// String renders the present fields for display, e.g. "Rank 5 | 3 Charges | Radiant".
// An empty SubType renders as "".
func (s SubType) String() string {
	var parts []string
	if s.Rank != nil {
		parts = append(parts, "Rank "+strconv.Itoa(*s.Rank))
	}
	if s.Charges != nil {
		parts = append(parts, strconv.Itoa(*s.Charges)+" Charges")
	}
	if s.Variant != nil && *s.Variant != "" {
		parts = append(parts, cases.Title(language.English).String(strings.ReplaceAll(*s.Variant, "_", " ")))
	}
	if s.AmberStars != nil {
		parts = append(parts, strconv.Itoa(*s.AmberStars)+" Amber Stars")
	}
	if s.CyanStars != nil {
		parts = append(parts, strconv.Itoa(*s.CyanStars)+" Cyan Stars")
	}
	return strings.Join(parts, " | ")
}

// #endregion display
