package parsers

import (
	"regexp"
	"strings"
)

// In-app purchase titles embed the app name as a trailing parenthetical,
// e.g. "Gem Pack (Super Game)". Parentheses anywhere else are part of the
// title itself.
var (
	appNameRegex       = regexp.MustCompile(`\(([^)]+)\)$`)
	trailingParenRegex = regexp.MustCompile(`\s*\([^)]+\)$`)
)

// SplitTitle splits a compound title into the display title and the app name.
// Titles without a trailing parenthetical come back unchanged with an empty
// app name.
func SplitTitle(fullTitle string) (displayTitle, appName string) {
	match := appNameRegex.FindStringSubmatch(fullTitle)
	if match == nil {
		return fullTitle, ""
	}
	displayTitle = strings.TrimSpace(trailingParenRegex.ReplaceAllString(fullTitle, ""))
	return displayTitle, match[1]
}
