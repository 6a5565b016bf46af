package parsers

import (
	"io"

	"github.com/username/playfolio/backend/src/models"
)

// Parser turns an uploaded purchase-history export into the normalized
// purchase list. A malformed batch fails as one unit; individual records
// with unparsable prices or dates degrade instead of failing.
type Parser interface {
	Parse(file io.Reader) ([]models.Purchase, error)
}
