package subtype

import (
	"encoding/json"
	"testing"
)

func TestEmpty(t *testing.T) {
	var s SubType
	if !s.IsEmpty() {
		t.Fatal("zero SubType should be empty")
	}
	if s.String() != "" {
		t.Errorf("expected empty display, got %q", s.String())
	}
	if New(WithRank(0)).IsEmpty() {
		t.Error("rank 0 is present, SubType should not be empty")
	}
}

func TestEqualIsStructural(t *testing.T) {
	a := New(WithRank(3), WithVariant("radiant"))
	b := New(WithVariant("radiant"), WithRank(3))
	if !a.Equal(b) {
		t.Fatalf("expected %s == %s", a.Key(), b.Key())
	}
	if a.Hash() != b.Hash() {
		t.Errorf("equal values must hash equal: %d vs %d", a.Hash(), b.Hash())
	}

	c := New(WithRank(3), WithVariant("flawless"))
	if a.Equal(c) {
		t.Error("different variants compared equal")
	}
}

func TestAbsentDiffersFromZero(t *testing.T) {
	absent := SubType{}
	zero := New(WithRank(0))
	if absent.Equal(zero) {
		t.Fatal("absent rank must not equal rank 0")
	}
	if absent.Hash() == zero.Hash() {
		t.Error("absent rank and rank 0 hashed to the same value")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   SubType
		want string
	}{
		{"rank", New(WithRank(5)), "Rank 5"},
		{"charges", New(WithCharges(3)), "3 Charges"},
		{"variant", New(WithVariant("radiant")), "Radiant"},
		{"underscore variant", New(WithVariant("flawless_relic")), "Flawless Relic"},
		{"stars", New(WithAmberStars(2), WithCyanStars(1)), "2 Amber Stars | 1 Cyan Stars"},
		{"all", New(WithRank(10), WithCharges(1), WithVariant("small"), WithAmberStars(0), WithCyanStars(4)),
			"Rank 10 | 1 Charges | Small | 0 Amber Stars | 4 Cyan Stars"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestJSONIsSparse(t *testing.T) {
	data, err := json.Marshal(New(WithRank(2)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"rank":2}` {
		t.Errorf("expected sparse object, got %s", data)
	}

	var back SubType
	if err := json.Unmarshal([]byte(`{"variant":"radiant","cyan_stars":1}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Rank != nil || back.Variant == nil || *back.Variant != "radiant" || back.CyanStars == nil || *back.CyanStars != 1 {
		t.Errorf("unexpected decode: %+v", back)
	}
}
