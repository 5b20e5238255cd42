// Package identity derives a stable content-addressed key for a riven stock
// record. Two records describing the same physical mod always share a key,
// regardless of attribute order or the casing of mod name and polarity.
package identity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// Namespace seeds every riven identity. Changing it re-keys all stock.
var Namespace = uuid.MustParse("6f1c5a2e-3b7d-5c84-9e21-4d0a8b6f7c13")

const typeMarker = "riven"

// Of returns the UUIDv5 identity of a stock record.
func Of(rec riven.StockRecord) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(Canonical(rec)))
}

// Canonical renders the string that Of hashes.
func Canonical(rec riven.StockRecord) string {
	modRank := 0
	if rec.ModRank != nil {
		modRank = *rec.ModRank
	}

	parts := []string{
		typeMarker,
		rec.WeaponURLName,
		strings.ToLower(rec.ModName),
		strconv.Itoa(rec.Rerolls),
		strconv.Itoa(rec.MasteryRank),
		strconv.Itoa(modRank),
		strings.ToLower(rec.Polarity),
	}

	var attrs strings.Builder
	for _, a := range sortedAttributes(rec.Attributes) {
		attrs.WriteString(a.URLName)
		attrs.WriteByte(':')
		attrs.WriteString(strconv.FormatBool(a.Positive))
		attrs.WriteByte(':')
		attrs.WriteString(strconv.FormatFloat(a.Value, 'f', -1, 64))
		attrs.WriteByte(';')
	}
	parts = append(parts, attrs.String())

	return strings.Join(parts, "|")
}

// sortedAttributes orders by tag; duplicate tags put the buff first, then the
// lower value.
func sortedAttributes(in []riven.StockAttribute) []riven.StockAttribute {
	out := make([]riven.StockAttribute, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].URLName != out[j].URLName {
			return out[i].URLName < out[j].URLName
		}
		if out[i].Positive != out[j].Positive {
			return out[i].Positive
		}
		return out[i].Value < out[j].Value
	})
	return out
}
