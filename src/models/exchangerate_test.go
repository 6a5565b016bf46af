package models

import (
	"math"
	"testing"
)

func TestFormatRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{name: "plain two decimals", rate: 1.35, want: "1.35"},
		{name: "reciprocal keeps two decimals", rate: 1 / 0.74, want: "1.35"},
		{name: "tiny rate falls back to significant figures", rate: 0.0067, want: "0.0067"},
		{name: "very small rate", rate: 0.00123, want: "0.0012"},
		{name: "large rate stays fixed", rate: 150.0, want: "150.00"},
		{name: "fraction with short fixed form", rate: 0.5, want: "0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRate(tt.rate); got != tt.want {
				t.Errorf("FormatRate(%v) = %q, want %q", tt.rate, got, tt.want)
			}
		})
	}
}

func TestRateTableSetStoresBothDirections(t *testing.T) {
	rt := RateTable{}

	if !rt.Set("SGD", "USD", 0.74) {
		t.Fatal("Set(SGD, USD, 0.74) should succeed")
	}

	direct, ok := rt.Rate("SGD", "USD")
	if !ok || direct != "0.74" {
		t.Errorf("Rate(SGD, USD) = (%q, %v), want (0.74, true)", direct, ok)
	}
	inverse, ok := rt.Rate("USD", "SGD")
	if !ok || inverse != FormatRate(1/0.74) {
		t.Errorf("Rate(USD, SGD) = (%q, %v), want (%q, true)", inverse, ok, FormatRate(1/0.74))
	}
}

func TestRateTableOverwriteKeepsDirectionsConsistent(t *testing.T) {
	rt := RateTable{}
	rt.Set("USD", "SGD", 1.30)
	rt.Set("USD", "SGD", 1.40)

	direct, _ := rt.Rate("USD", "SGD")
	if direct != "1.40" {
		t.Errorf("Rate(USD, SGD) after overwrite = %q, want 1.40", direct)
	}
	inverse, _ := rt.Rate("SGD", "USD")
	if inverse != FormatRate(1/1.40) {
		t.Errorf("Rate(SGD, USD) after overwrite = %q, want %q", inverse, FormatRate(1/1.40))
	}
}

func TestRateTableRejectsInvalidRates(t *testing.T) {
	rt := RateTable{}
	invalid := []float64{0, -1.5, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, rate := range invalid {
		if rt.Set("USD", "SGD", rate) {
			t.Errorf("Set(USD, SGD, %v) should be rejected", rate)
		}
	}
	if len(rt) != 0 {
		t.Errorf("rejected edits must leave the table untouched, got %v", rt)
	}
}

func TestRateTableSameCurrencyIsAlwaysOne(t *testing.T) {
	rt := RateTable{}
	rate, ok := rt.Rate("USD", "USD")
	if !ok || rate != "1" {
		t.Errorf("Rate(USD, USD) = (%q, %v), want (1, true)", rate, ok)
	}
}

func TestRateTableConvert(t *testing.T) {
	rt := RateTable{}
	rt.Set("SGD", "USD", 0.74)

	if got := rt.Convert(10, "SGD", "USD"); math.Abs(got-7.4) > 1e-9 {
		t.Errorf("Convert(10, SGD, USD) = %v, want 7.4", got)
	}
	if got := rt.Convert(20, "USD", "USD"); got != 20 {
		t.Errorf("Convert(20, USD, USD) = %v, want 20 unchanged", got)
	}
	if got := rt.Convert(10, "EUR", "USD"); got != 0 {
		t.Errorf("Convert with unknown pair = %v, want 0", got)
	}
}

func TestRateTableCloneIsIndependent(t *testing.T) {
	rt := RateTable{}
	rt.Set("USD", "SGD", 1.35)

	clone := rt.Clone()
	clone.Set("USD", "SGD", 2.00)

	original, _ := rt.Rate("USD", "SGD")
	if original != "1.35" {
		t.Errorf("mutating a clone changed the original: Rate(USD, SGD) = %q", original)
	}
}
