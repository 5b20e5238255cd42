// Package decode recovers the hidden roll quality of riven attributes from their
// rank-scaled display values and projects them across ranks and variants.
package decode

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region constants
const (
	// RollScale converts an upgrade's unit value into a full-rank roll.
	RollScale = 90
	// MaxRank is the highest riven mod rank.
	MaxRank = 8

	rollLow  = 0.9 // lowest roll as a fraction of base
	rollHigh = 1.1 // highest roll as a fraction of base

	// rankFallbackTolerance: an unranked mod whose value already sits this
	// close to base is taken as fully ranked.
	rankFallbackTolerance = 0.5
)

// #endregion constants

// #region decode
// UpgradeLookup is the part of the catalog the decoder reads.
type UpgradeLookup interface {
	LookupUpgrade(pool, tag string) (catalog.Upgrade, bool)
}

// Decode turns observed attributes into decoded ones, preserving input order.
// The result depends only on the arguments.
func Decode(upgrades UpgradeLookup, weapon catalog.Weapon, entries []riven.AttributeEntry, modRank int) ([]riven.DecodedAttribute, error) {
	if modRank < 0 || modRank > MaxRank {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, modRank)
	}

	var buffs, curses int
	for _, e := range entries {
		if e.IsPositive {
			buffs++
		} else {
			curses++
		}
	}
	mult, err := ShapeMultipliers(buffs, curses)
	if err != nil {
		return nil, err
	}

	out := make([]riven.DecodedAttribute, 0, len(entries))
	for _, e := range entries {
		up, ok := upgrades.LookupUpgrade(weapon.UpgradePool, e.Tag)
		if !ok {
			return nil, fmt.Errorf("%w: %s in pool %s", ErrUnknownStat, e.Tag, weapon.UpgradePool)
		}

		m := mult.Negative
		if e.IsPositive {
			m = mult.Positive
		}
		base := BaseValue(up, weapon.Disposition, m)

		adjusted := math.Abs(e.RolledValue) - factionOffset(e.Tag)
		rank := EffectiveRank(modRank, adjusted, base)
		scaled := Unscale(adjusted, rank)
		minRoll, maxRoll := RollBounds(base, e.IsPositive)

		out = append(out, riven.DecodedAttribute{
			Tag:           e.Tag,
			DisplayFormat: up.DisplayFormat,
			Positive:      e.IsPositive,
			Value:         scalar.Round(scaled, 1),
			MinRoll:       minRoll,
			MaxRoll:       maxRoll,
			Quality:       Quality(scaled, base, e.IsPositive),
		})
	}
	return out, nil
}

// #endregion decode

// #region steps
// BaseValue is the median full-rank roll of an upgrade on a weapon.
func BaseValue(up catalog.Upgrade, disposition, multiplier float64) float64 {
	base := RollScale * up.UnitValue * disposition * multiplier
	if IsPercentFormat(up.DisplayFormat) {
		base *= 100
	}
	return base
}

// EffectiveRank applies the rank fallback: a mod reported at rank 0 whose
// value is already within 50% of base is treated as fully ranked.
func EffectiveRank(modRank int, adjusted, base float64) int {
	if modRank == 0 && math.Abs(adjusted-base) < rankFallbackTolerance*adjusted {
		return MaxRank
	}
	return modRank
}

// Unscale undoes rank scaling (display = roll * (rank+1) / 9).
func Unscale(display float64, rank int) float64 {
	return display / float64(rank+1) * (MaxRank + 1)
}

// Rescale applies rank scaling to a rank-independent roll.
func Rescale(roll float64, rank int) float64 {
	return roll * float64(rank+1) / (MaxRank + 1)
}

// Quality places scaled within [0.9 base, 1.1 base], clamped to [0,1]. For
// curses a smaller penalty is better, so the result is inverted.
func Quality(scaled, base float64, positive bool) float64 {
	q := 0.0
	if base > 0 {
		q = clamp((scaled-base*rollLow)/(base*(rollHigh-rollLow)), 0, 1)
	}
	if !positive {
		return 1 - q
	}
	return q
}

// RollBounds is the display envelope for an attribute. Buffs span
// (0.81 base, 1.21 base); curses run from 1.1 base down to 0.9 base.
func RollBounds(base float64, positive bool) (float64, float64) {
	if positive {
		return base * rollLow * rollLow, base * rollHigh * rollHigh
	}
	return base * rollHigh, base * rollLow
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion steps
