package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictHTMLPolicy = bluemonday.StrictPolicy()

// SanitizeTitle strips any HTML markup and non-printable characters from a
// purchase title before it is stored and served back to clients. Text
// entities introduced by the sanitizer (e.g. "&amp;") are unescaped again so
// plain-text titles round-trip unchanged.
func SanitizeTitle(s string) string {
	return StripUnprintable(html.UnescapeString(strictHTMLPolicy.Sanitize(s)))
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
