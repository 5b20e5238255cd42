package catalog

// #region weapon
// Weapon is a riven-compatible weapon as the catalog knows it.
type Weapon struct {
	ID          string     `json:"id" yaml:"id"`
	URLName     string     `json:"url_name" yaml:"url_name"`
	Name        string     `json:"name" yaml:"name"`
	Disposition float64    `json:"disposition" yaml:"disposition"`
	UpgradePool string     `json:"upgrade_pool" yaml:"upgrade_pool"`
	Variants    []Variant  `json:"variants,omitempty" yaml:"variants,omitempty"`
	IdealRoll   *IdealRoll `json:"ideal_roll,omitempty" yaml:"ideal_roll,omitempty"`
}

// Variant is a cosmetic or prime variant of a base weapon. An empty
// UpgradePool means the variant shares the base weapon's pool.
type Variant struct {
	Name        string  `json:"name" yaml:"name"`
	Disposition float64 `json:"disposition" yaml:"disposition"`
	UpgradePool string  `json:"upgrade_pool,omitempty" yaml:"upgrade_pool,omitempty"`
}

// IdealRoll is the reference roll a weapon is graded against.
// AcceptableTags defaults to PositiveTags when empty.
type IdealRoll struct {
	PositiveTags   []string `json:"positive_tags" yaml:"positive_tags"`
	NegativeTags   []string `json:"negative_tags,omitempty" yaml:"negative_tags,omitempty"`
	AcceptableTags []string `json:"acceptable_tags,omitempty" yaml:"acceptable_tags,omitempty"`
	AvoidTags      []string `json:"avoid_tags,omitempty" yaml:"avoid_tags,omitempty"`
}

// Acceptable returns AcceptableTags, falling back to PositiveTags.
func (r IdealRoll) Acceptable() []string {
	if len(r.AcceptableTags) == 0 {
		return r.PositiveTags
	}
	return r.AcceptableTags
}

// #endregion weapon

// #region upgrade
// Upgrade is one stat available in an upgrade pool. UnitValue is stored as a
// fraction for percentage formats. Prefix and Suffix are the name fragments
// used when composing a riven's name.
type Upgrade struct {
	Tag           string  `json:"tag" yaml:"tag"`
	UnitValue     float64 `json:"unit_value" yaml:"unit_value"`
	DisplayFormat string  `json:"display_format" yaml:"display_format"`
	Prefix        string  `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix        string  `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// #endregion upgrade

// #region reader
// Reader is the read contract the engine needs from a catalog.
type Reader interface {
	LookupWeapon(id string) (Weapon, bool)
	LookupUpgrade(pool, tag string) (Upgrade, bool)
}

// #endregion reader
