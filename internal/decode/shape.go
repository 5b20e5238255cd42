package decode

import (
	"errors"
	"fmt"
	"strings"
)

// #region errors
var (
	// ErrUnsupportedShape means the buff/curse counts are not one of the four legal layouts.
	ErrUnsupportedShape = errors.New("unsupported riven shape")
	// ErrUnknownStat means a tag is missing from the weapon's upgrade pool, usually stale catalog data.
	ErrUnknownStat = errors.New("unknown stat")
	// ErrInvalidRank means the mod rank is outside 0..MaxRank.
	ErrInvalidRank = errors.New("invalid mod rank")
)

// #endregion errors

// #region shape-table
// Multipliers scale the base roll of buffs and curses for a given shape.
type Multipliers struct {
	Positive float64
	Negative float64
}

var shapeTable = map[string]Multipliers{
	"B2|C0": {Positive: 0.99, Negative: 0},
	"B2|C1": {Positive: 1.2375, Negative: 0.495},
	"B3|C0": {Positive: 0.75, Negative: 0},
	"B3|C1": {Positive: 0.9375, Negative: 0.75},
}

// ShapeKey renders the table key for a buff/curse count, e.g. "B2|C1".
func ShapeKey(buffs, curses int) string {
	return fmt.Sprintf("B%d|C%d", buffs, curses)
}

// ShapeMultipliers looks up the multipliers for a buff/curse count.
func ShapeMultipliers(buffs, curses int) (Multipliers, error) {
	key := ShapeKey(buffs, curses)
	m, ok := shapeTable[key]
	if !ok {
		return Multipliers{}, fmt.Errorf("%w: %s", ErrUnsupportedShape, key)
	}
	return m, nil
}

// #endregion shape-table

// #region predicates
// factionTags are displayed as a multiplier ("x1.3"), one above the rolled bonus.
var factionTags = map[string]bool{
	"damage_vs_corpus":    true,
	"damage_vs_grineer":   true,
	"damage_vs_infested":  true,
	"damage_vs_corrupted": true,
	"damage_vs_sentient":  true,
}

// IsFactionTag reports whether tag carries the +1 display offset.
func IsFactionTag(tag string) bool {
	return factionTags[tag]
}

// factionOffset is the display offset for tag, 1 for faction tags and 0 otherwise.
func factionOffset(tag string) float64 {
	if IsFactionTag(tag) {
		return 1
	}
	return 0
}

// IsPercentFormat reports whether a display format renders its value as a
// percentage. Unit values of such upgrades are stored as fractions.
func IsPercentFormat(format string) bool {
	return strings.Contains(format, "%")
}

// #endregion predicates
