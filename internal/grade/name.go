package grade

import (
	"math"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// ModName composes the riven's in-game name from its buffs' name fragments.
// Buffs are ordered by descending magnitude (ties by tag); two buffs give
// "Prefix"+"suffix", three give "Prefix-prefix"+"suffix". Missing fragments
// fall back to the tag.
func ModName(upgrades UpgradeLookup, pool string, buffs []riven.AttributeEntry) string {
	ordered := make([]riven.AttributeEntry, len(buffs))
	copy(ordered, buffs)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := math.Abs(ordered[i].RolledValue), math.Abs(ordered[j].RolledValue)
		if a != b {
			return a > b
		}
		return ordered[i].Tag < ordered[j].Tag
	})

	fragment := func(tag string, suffix bool) string {
		up, ok := upgrades.LookupUpgrade(pool, tag)
		if !ok {
			return tag
		}
		if suffix && up.Suffix != "" {
			return up.Suffix
		}
		if !suffix && up.Prefix != "" {
			return up.Prefix
		}
		return tag
	}

	// a Caser is stateful and may not be shared between goroutines
	title := cases.Title(language.Und).String

	switch len(ordered) {
	case 0:
		return ""
	case 1:
		return title(fragment(ordered[0].Tag, true))
	case 2:
		return title(fragment(ordered[0].Tag, false)) + fragment(ordered[1].Tag, true)
	default:
		return title(fragment(ordered[0].Tag, false)) + "-" +
			fragment(ordered[1].Tag, false) + fragment(ordered[2].Tag, true)
	}
}

// UpgradeLookup is the slice of the catalog the namer reads.
type UpgradeLookup interface {
	LookupUpgrade(pool, tag string) (catalog.Upgrade, bool)
}
