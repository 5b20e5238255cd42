// Package catalog provides immutable weapon/upgrade snapshots, the loaders that
// build them, a versioned SQLite store and a scheduled refresher.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"
)

// #region snapshot
// Snapshot is an immutable view of the catalog. All accessors return copies,
// so a snapshot can be shared by any number of goroutines.
type Snapshot struct {
	version   string
	createdAt time.Time
	weapons   map[string]Weapon
	byURL     map[string]string // url name -> weapon id
	upgrades  map[string]map[string]Upgrade
}

// ErrInvalidCatalog is returned when snapshot input fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// NewSnapshot validates and deep-copies the given data into a new snapshot.
func NewSnapshot(version string, createdAt time.Time, weapons []Weapon, upgrades map[string][]Upgrade) (*Snapshot, error) {
	s := &Snapshot{
		version:   version,
		createdAt: createdAt.UTC(),
		weapons:   make(map[string]Weapon, len(weapons)),
		byURL:     make(map[string]string, len(weapons)),
		upgrades:  make(map[string]map[string]Upgrade, len(upgrades)),
	}

	for _, w := range weapons {
		if w.ID == "" {
			return nil, fmt.Errorf("%w: weapon %q has no id", ErrInvalidCatalog, w.Name)
		}
		if _, dup := s.weapons[w.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate weapon id %s", ErrInvalidCatalog, w.ID)
		}
		if w.Disposition <= 0 {
			return nil, fmt.Errorf("%w: weapon %s has disposition %v", ErrInvalidCatalog, w.ID, w.Disposition)
		}
		for _, v := range w.Variants {
			if v.Disposition <= 0 {
				return nil, fmt.Errorf("%w: variant %s of %s has disposition %v", ErrInvalidCatalog, v.Name, w.ID, v.Disposition)
			}
		}
		s.weapons[w.ID] = copyWeapon(w)
		if w.URLName != "" {
			s.byURL[w.URLName] = w.ID
		}
	}

	for pool, ups := range upgrades {
		m := make(map[string]Upgrade, len(ups))
		for _, u := range ups {
			if u.Tag == "" {
				return nil, fmt.Errorf("%w: upgrade without tag in pool %s", ErrInvalidCatalog, pool)
			}
			m[u.Tag] = u
		}
		s.upgrades[pool] = m
	}

	return s, nil
}

// EmptySnapshot returns a snapshot with no weapons.
func EmptySnapshot() *Snapshot {
	s, _ := NewSnapshot("", time.Time{}, nil, nil)
	return s
}

// #endregion snapshot

// #region accessors
func (s *Snapshot) Version() string      { return s.version }
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

// Len returns the number of weapons.
func (s *Snapshot) Len() int { return len(s.weapons) }

// LookupWeapon resolves a weapon by its stable id.
func (s *Snapshot) LookupWeapon(id string) (Weapon, bool) {
	w, ok := s.weapons[id]
	if !ok {
		return Weapon{}, false
	}
	return copyWeapon(w), true
}

// LookupWeaponByURL resolves a weapon by its market url name.
func (s *Snapshot) LookupWeaponByURL(urlName string) (Weapon, bool) {
	id, ok := s.byURL[urlName]
	if !ok {
		return Weapon{}, false
	}
	return s.LookupWeapon(id)
}

// LookupUpgrade resolves a stat tag within an upgrade pool.
func (s *Snapshot) LookupUpgrade(pool, tag string) (Upgrade, bool) {
	u, ok := s.upgrades[pool][tag]
	return u, ok
}

// Weapons returns every weapon ordered by id.
func (s *Snapshot) Weapons() []Weapon {
	out := make([]Weapon, 0, len(s.weapons))
	for _, w := range s.weapons {
		out = append(out, copyWeapon(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upgrades returns every pool's upgrades ordered by tag.
func (s *Snapshot) Upgrades() map[string][]Upgrade {
	out := make(map[string][]Upgrade, len(s.upgrades))
	for pool, m := range s.upgrades {
		ups := make([]Upgrade, 0, len(m))
		for _, u := range m {
			ups = append(ups, u)
		}
		sort.Slice(ups, func(i, j int) bool { return ups[i].Tag < ups[j].Tag })
		out[pool] = ups
	}
	return out
}

// Variants returns the variants of a weapon that share its upgrade pool.
func (s *Snapshot) Variants(weaponID string) []Variant {
	w, ok := s.weapons[weaponID]
	if !ok {
		return nil
	}
	return SharedPoolVariants(w)
}

// SharedPoolVariants filters a weapon's variants down to those rolling from
// the same upgrade pool.
func SharedPoolVariants(w Weapon) []Variant {
	var out []Variant
	for _, v := range w.Variants {
		if v.UpgradePool == "" || v.UpgradePool == w.UpgradePool {
			out = append(out, v)
		}
	}
	return out
}

// #endregion accessors

// #region holder
// Holder publishes the current snapshot. Readers never block; a refresh swaps
// in a new snapshot and in-flight readers keep the one they loaded.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns a holder publishing s, or an empty snapshot when s is nil.
func NewHolder(s *Snapshot) *Holder {
	h := &Holder{}
	if s == nil {
		s = EmptySnapshot()
	}
	h.current.Store(s)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Swap publishes s and returns the previous snapshot.
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	if s == nil {
		s = EmptySnapshot()
	}
	return h.current.Swap(s)
}

// #endregion holder

// #region helpers
func copyWeapon(w Weapon) Weapon {
	out := w
	if w.Variants != nil {
		out.Variants = append([]Variant(nil), w.Variants...)
	}
	if w.IdealRoll != nil {
		r := IdealRoll{
			PositiveTags:   append([]string(nil), w.IdealRoll.PositiveTags...),
			NegativeTags:   append([]string(nil), w.IdealRoll.NegativeTags...),
			AcceptableTags: append([]string(nil), w.IdealRoll.AcceptableTags...),
			AvoidTags:      append([]string(nil), w.IdealRoll.AvoidTags...),
		}
		out.IdealRoll = &r
	}
	return out
}

// #endregion helpers
