package identity

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

func intPtr(v int) *int { return &v }

func sampleRecord() riven.StockRecord {
	return riven.StockRecord{
		WeaponURLName: "testbow",
		ModName:       "Critatis",
		Rerolls:       12,
		MasteryRank:   14,
		ModRank:       intPtr(8),
		Polarity:      "Madurai",
		Attributes: []riven.StockAttribute{
			{URLName: "critical_chance", Positive: true, Value: 180.2},
			{URLName: "critical_damage", Positive: true, Value: 120.5},
			{URLName: "zoom", Positive: false, Value: -40},
		},
	}
}

func TestCanonicalLayout(t *testing.T) {
	got := Canonical(sampleRecord())
	want := "riven|testbow|critatis|12|14|8|madurai|" +
		"critical_chance:true:180.2;critical_damage:true:120.5;zoom:false:-40;"
	if got != want {
		t.Fatalf("canonical mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestOfIsDeterministic(t *testing.T) {
	a := Of(sampleRecord())
	b := Of(sampleRecord())
	if a != b {
		t.Fatalf("expected equal identities, got %s and %s", a, b)
	}
	if a.Version() != 5 {
		t.Fatalf("expected UUIDv5, got version %d", a.Version())
	}
}

func TestOfIgnoresAttributeOrder(t *testing.T) {
	rec := sampleRecord()
	shuffled := sampleRecord()
	shuffled.Attributes = []riven.StockAttribute{rec.Attributes[2], rec.Attributes[0], rec.Attributes[1]}

	if Of(rec) != Of(shuffled) {
		t.Fatal("attribute order changed the identity")
	}
}

func TestOfIgnoresCase(t *testing.T) {
	rec := sampleRecord()
	upper := sampleRecord()
	upper.ModName = strings.ToUpper(rec.ModName)
	upper.Polarity = strings.ToLower(rec.Polarity)

	if Of(rec) != Of(upper) {
		t.Fatal("mod name or polarity case changed the identity")
	}
}

func TestOfMissingRankIsZero(t *testing.T) {
	missing := sampleRecord()
	missing.ModRank = nil
	zero := sampleRecord()
	zero.ModRank = intPtr(0)

	if Of(missing) != Of(zero) {
		t.Fatal("absent mod rank should hash as rank 0")
	}
	if Of(missing) == Of(sampleRecord()) {
		t.Fatal("rank 0 and rank 8 should differ")
	}
}

func TestOfDistinguishesFields(t *testing.T) {
	base := Of(sampleRecord())
	mutations := map[string]func(*riven.StockRecord){
		"weapon":   func(r *riven.StockRecord) { r.WeaponURLName = "plainblade" },
		"rerolls":  func(r *riven.StockRecord) { r.Rerolls++ },
		"mastery":  func(r *riven.StockRecord) { r.MasteryRank = 8 },
		"polarity": func(r *riven.StockRecord) { r.Polarity = "vazarin" },
		"value":    func(r *riven.StockRecord) { r.Attributes[0].Value = 180.3 },
		"sign":     func(r *riven.StockRecord) { r.Attributes[2].Positive = true },
	}
	for name, mutate := range mutations {
		rec := sampleRecord()
		mutate(&rec)
		if Of(rec) == base {
			t.Errorf("%s: mutation did not change identity", name)
		}
	}
}

func TestCanonicalDoesNotMutateInput(t *testing.T) {
	rec := sampleRecord()
	rec.Attributes[0], rec.Attributes[2] = rec.Attributes[2], rec.Attributes[0]
	first := rec.Attributes[0].URLName
	_ = Canonical(rec)
	if rec.Attributes[0].URLName != first {
		t.Fatal("Canonical reordered the caller's attributes")
	}
}
