package models

import (
	"math"
	"strconv"
	"strings"
)

// RateTable maps a source currency to the conversion rate used for each
// target currency, e.g. rates["USD"]["SGD"] = "1.35". Rates are kept as the
// formatted strings the user sees so an edit round-trips unchanged. Every
// explicit edit stores both directions of the pair; the table must never be
// mutated one direction at a time outside of Set.
type RateTable map[string]map[string]string

// Set stores the rate from -> to together with its reciprocal to -> from.
// Returns false (table untouched) when the rate is not a positive finite
// number, which is how invalid user input is silently discarded.
func (rt RateTable) Set(from, to string, rate float64) bool {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return false
	}
	if rt[from] == nil {
		rt[from] = make(map[string]string)
	}
	if rt[to] == nil {
		rt[to] = make(map[string]string)
	}
	rt[from][to] = FormatRate(rate)
	rt[to][from] = FormatRate(1 / rate)
	return true
}

// Rate returns the stored rate string for from -> to. A currency always
// converts to itself at rate "1" without a lookup. The second return value
// is false when no rate is known for the pair.
func (rt RateTable) Rate(from, to string) (string, bool) {
	if from == to {
		return "1", true
	}
	inner, ok := rt[from]
	if !ok {
		return "", false
	}
	rate, ok := inner[to]
	return rate, ok
}

// Convert converts amount from one currency to another. An unknown pair
// contributes zero, so unconvertible amounts simply do not count toward a
// converted total.
func (rt RateTable) Convert(amount float64, from, to string) float64 {
	if from == to {
		return amount
	}
	rateStr, ok := rt.Rate(from, to)
	if !ok {
		return 0
	}
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return 0
	}
	return amount * rate
}

// Clone returns a deep copy, so edits can be applied to a fresh table and
// swapped in whole.
func (rt RateTable) Clone() RateTable {
	out := make(RateTable, len(rt))
	for from, inner := range rt {
		copied := make(map[string]string, len(inner))
		for to, rate := range inner {
			copied[to] = rate
		}
		out[from] = copied
	}
	return out
}

// FormatRate renders a rate with two decimal places, falling back to two
// significant figures when the fixed form would round to zero. Between the
// two forms, the one preserving more non-zero decimal digits wins. Without
// the fallback, pairs like JPY/USD would collapse to "0.00".
func FormatRate(rate float64) string {
	fixed := strconv.FormatFloat(rate, 'f', 2, 64)
	sig := formatSigFigs(rate, 2)

	if fixed == "0.00" {
		return sig
	}
	if countFracDigits(sig) > countFracDigits(fixed) {
		return sig
	}
	return fixed
}

func formatSigFigs(v float64, figs int) string {
	if v == 0 {
		return "0"
	}
	exp := int(math.Floor(math.Log10(math.Abs(v))))
	scale := math.Pow(10, float64(exp-figs+1))
	rounded := math.Round(v/scale) * scale
	decimals := figs - 1 - exp
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(rounded, 'f', decimals, 64)
}

func countFracDigits(s string) int {
	_, frac, found := strings.Cut(s, ".")
	if !found {
		return 0
	}
	return len(strings.TrimRight(frac, "0"))
}
