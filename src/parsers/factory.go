package parsers

import "fmt"

const SourceGooglePlay = "googleplay"

// GetParser resolves an export source to its parser. An empty source selects
// the Google Play parser, the only format currently supported.
func GetParser(source string) (Parser, error) {
	switch source {
	case SourceGooglePlay, "":
		return NewGooglePlayParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
