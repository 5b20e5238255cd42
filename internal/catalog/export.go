package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// ErrMalformedExport is returned when an upstream export is not valid JSON or
// lacks the weapon list.
var ErrMalformedExport = errors.New("malformed catalog export")

// #region parse-export
// ParseExport reads the raw upstream export. Weapons without an
// omegaAttenuation (disposition) cannot carry rivens and are skipped. When the
// export has no version field the fetch time is used.
func ParseExport(data []byte, fetchedAt time.Time) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedExport)
	}
	root := gjson.ParseBytes(data)

	weaponsJSON := root.Get("ExportWeapons")
	if !weaponsJSON.IsArray() {
		return nil, fmt.Errorf("%w: missing ExportWeapons", ErrMalformedExport)
	}

	var weapons []Weapon
	weaponsJSON.ForEach(func(_, w gjson.Result) bool {
		disposition := w.Get("omegaAttenuation").Float()
		if disposition <= 0 {
			return true
		}
		weapon := Weapon{
			ID:          w.Get("uniqueName").String(),
			URLName:     w.Get("urlName").String(),
			Name:        w.Get("name").String(),
			Disposition: disposition,
			UpgradePool: w.Get("rivenType").String(),
		}
		w.Get("variants").ForEach(func(_, v gjson.Result) bool {
			weapon.Variants = append(weapon.Variants, Variant{
				Name:        v.Get("name").String(),
				Disposition: v.Get("omegaAttenuation").Float(),
				UpgradePool: v.Get("rivenType").String(),
			})
			return true
		})
		if ideal := w.Get("idealRoll"); ideal.Exists() {
			weapon.IdealRoll = &IdealRoll{
				PositiveTags:   stringArray(ideal.Get("positive")),
				NegativeTags:   stringArray(ideal.Get("negative")),
				AcceptableTags: stringArray(ideal.Get("acceptable")),
				AvoidTags:      stringArray(ideal.Get("avoid")),
			}
		}
		weapons = append(weapons, weapon)
		return true
	})

	upgrades := make(map[string][]Upgrade)
	root.Get("ExportUpgrades").ForEach(func(pool, list gjson.Result) bool {
		list.ForEach(func(_, u gjson.Result) bool {
			upgrades[pool.String()] = append(upgrades[pool.String()], Upgrade{
				Tag:           u.Get("tag").String(),
				UnitValue:     u.Get("value").Float(),
				DisplayFormat: u.Get("locTag").String(),
				Prefix:        u.Get("prefix").String(),
				Suffix:        u.Get("suffix").String(),
			})
			return true
		})
		return true
	})

	version := root.Get("version").String()
	if version == "" {
		version = fetchedAt.UTC().Format(time.RFC3339)
	}
	return NewSnapshot(version, fetchedAt, weapons, upgrades)
}

// #endregion parse-export

func stringArray(r gjson.Result) []string {
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}
