package parsers

import (
	"regexp"
	"strconv"
	"strings"
)

// priceRegex matches an optional non-digit prefix followed by a numeric run
// permitting '.' and ',' separators, anchored at the start of the string.
var priceRegex = regexp.MustCompile(`^([^\d]*)([\d.,]+)`)

// ParsePrice splits a raw invoice price like "SGD1,234.56" into its numeric
// amount and the non-digit prefix labeling the currency. Malformed input
// degrades to (0, "") rather than dropping the record, and a zero amount
// always yields an empty currency so free and refunded entries carry no
// currency label.
func ParsePrice(raw string) (float64, string) {
	if raw == "" {
		return 0, ""
	}

	match := priceRegex.FindStringSubmatch(raw)
	if match == nil {
		return 0, ""
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64)
	if err != nil || amount == 0 {
		return 0, ""
	}

	return amount, strings.TrimSpace(match[1])
}
