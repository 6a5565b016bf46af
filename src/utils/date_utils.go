package utils

import (
	"fmt"
	"time"
)

const DefaultDateFormat = "02-01-2006"

// purchaseTimeLayouts covers the timestamp shapes seen across Play exports.
// First match wins.
var purchaseTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Jan 2, 2006 3:04:05 PM MST",
	"2006-01-02",
}

// ParsePurchaseTime parses the ISO-ish purchaseTime string of a raw record.
func ParsePurchaseTime(value string) (time.Time, error) {
	for _, layout := range purchaseTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized purchase time %q", value)
}

// FormatDisplayDate renders a timestamp at day precision in the display
// convention used everywhere downstream.
func FormatDisplayDate(t time.Time) string {
	return t.Format(DefaultDateFormat)
}

// ParseDate parses a display-format date string back into a time.Time.
// Returns zero time if parsing fails.
func ParseDate(dateStr string) time.Time {
	t, err := time.Parse(DefaultDateFormat, dateStr)
	if err != nil {
		return time.Time{}
	}
	return t
}
