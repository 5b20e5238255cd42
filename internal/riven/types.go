// Package riven holds the value types shared by the decoder, grader and
// identity builder.
package riven

import "github.com/danielpatrickdp/rivenwatch/internal/subtype"

// #region attribute-entry
// AttributeEntry is one observed stat on a mod, as displayed at its current rank.
type AttributeEntry struct {
	Tag         string  `json:"tag"`
	RolledValue float64 `json:"rolled_value"`
	IsPositive  bool    `json:"is_positive"`
}

// #endregion attribute-entry

// #region fingerprint
// Fingerprint is the raw description of a mod before decoding.
type Fingerprint struct {
	Compatibility string           `json:"compatibility"`
	MasteryRank   int              `json:"mastery_rank"`
	ModRank       int              `json:"mod_rank"`
	Rerolls       int              `json:"rerolls"`
	Polarity      string           `json:"polarity"`
	Buffs         []AttributeEntry `json:"buffs"`
	Curses        []AttributeEntry `json:"curses"`
}

// Attributes returns buffs followed by curses.
func (f Fingerprint) Attributes() []AttributeEntry {
	out := make([]AttributeEntry, 0, len(f.Buffs)+len(f.Curses))
	out = append(out, f.Buffs...)
	out = append(out, f.Curses...)
	return out
}

// #endregion fingerprint

// #region decoded-attribute
// DecodedAttribute is a stat with its rank-independent roll value recovered.
type DecodedAttribute struct {
	Tag           string  `json:"tag"`
	DisplayFormat string  `json:"display_format"`
	Positive      bool    `json:"positive"`
	Value         float64 `json:"value"`
	MinRoll       float64 `json:"min_roll"`
	MaxRoll       float64 `json:"max_roll"`
	Quality       float64 `json:"quality"` // [0,1]
}

// #endregion decoded-attribute

// #region grade
// Grade is the qualitative verdict on a roll against a weapon's ideal roll.
type Grade string

const (
	GradeDecisive   Grade = "Decisive"
	GradeGood       Grade = "Good"
	GradeNotHelping Grade = "NotHelping"
	GradeBad        Grade = "Bad"
	GradeUnknown    Grade = "Unknown"
)

// Grades lists every grade in display order.
var Grades = []Grade{GradeDecisive, GradeGood, GradeNotHelping, GradeBad, GradeUnknown}

// #endregion grade

// #region graded-riven
// GradedRiven is the grader output, serialized flat for the stock layer.
type GradedRiven struct {
	WeaponName  string             `json:"weapon_name"`
	WeaponID    string             `json:"weapon_id"`
	ModName     string             `json:"mod_name"`
	MasteryRank int                `json:"mastery_rank"`
	ModRank     int                `json:"mod_rank"`
	Rerolls     int                `json:"rerolls"`
	Attributes  []DecodedAttribute `json:"attributes"`
	Polarity    string             `json:"polarity"`
	EndoCost    int                `json:"endo_cost"`
	KuvaCost    int                `json:"kuva_cost"`
	Grade       Grade              `json:"grade"`
}

// #endregion graded-riven

// #region stock-record
// StockAttribute is one stat on a persisted stock record.
type StockAttribute struct {
	URLName  string  `json:"url_name"`
	Positive bool    `json:"positive"`
	Value    float64 `json:"value"`
}

// StockRecord is an owned riven as the stock layer stores it. ModRank is nil
// when the rank was never observed.
type StockRecord struct {
	WeaponURLName string           `json:"weapon_url_name"`
	ModName       string           `json:"mod_name"`
	Rerolls       int              `json:"rerolls"`
	MasteryRank   int              `json:"mastery_rank"`
	ModRank       *int             `json:"mod_rank,omitempty"`
	Polarity      string           `json:"polarity"`
	Attributes    []StockAttribute `json:"attributes"`
	SubType       *subtype.SubType `json:"sub_type,omitempty"`
}

// #endregion stock-record
