package decode

import (
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region types
// ProjectedAttribute is an attribute's display value at one rank on one variant.
type ProjectedAttribute struct {
	Tag      string  `json:"tag"`
	Positive bool    `json:"positive"`
	Value    float64 `json:"value"`
	MinRoll  float64 `json:"min_roll"`
	MaxRoll  float64 `json:"max_roll"`
}

// VariantProjection holds display values for ranks 0..MaxRank on one weapon variant.
type VariantProjection struct {
	Name        string                             `json:"name"`
	Disposition float64                            `json:"disposition"`
	Ranks       [MaxRank + 1][]ProjectedAttribute `json:"ranks"`
}

// #endregion types

// #region project
// Project renders decoded attributes for the base weapon and each variant that
// shares its upgrade pool, at every rank. The base weapon is always first.
// Variants rolling from another pool are skipped.
func Project(attrs []riven.DecodedAttribute, weapon catalog.Weapon, variants []catalog.Variant) []VariantProjection {
	out := make([]VariantProjection, 0, len(variants)+1)
	out = append(out, projectVariant(attrs, weapon.Name, weapon.Disposition, 1))

	for _, v := range variants {
		if v.UpgradePool != "" && v.UpgradePool != weapon.UpgradePool {
			continue
		}
		ratio := v.Disposition / weapon.Disposition
		out = append(out, projectVariant(attrs, v.Name, v.Disposition, ratio))
	}
	return out
}

func projectVariant(attrs []riven.DecodedAttribute, name string, disposition, ratio float64) VariantProjection {
	vp := VariantProjection{Name: name, Disposition: disposition}
	for rank := 0; rank <= MaxRank; rank++ {
		row := make([]ProjectedAttribute, len(attrs))
		for i, a := range attrs {
			offset := factionOffset(a.Tag)
			row[i] = ProjectedAttribute{
				Tag:      a.Tag,
				Positive: a.Positive,
				Value:    scalar.Round(Rescale(a.Value*ratio, rank)+offset, 2),
				MinRoll:  scalar.Round(Rescale(a.MinRoll*ratio, rank)+offset, 2),
				MaxRoll:  scalar.Round(Rescale(a.MaxRoll*ratio, rank)+offset, 2),
			}
		}
		vp.Ranks[rank] = row
	}
	return vp
}

// #endregion project
