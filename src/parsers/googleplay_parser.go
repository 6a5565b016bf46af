package parsers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/username/playfolio/backend/src/models"
	"github.com/username/playfolio/backend/src/security/validation"
	"github.com/username/playfolio/backend/src/utils"
)

type googlePlayParser struct{}

// NewGooglePlayParser creates a parser for the "Purchase History.json" file
// of a Google Play Takeout export.
func NewGooglePlayParser() Parser {
	return &googlePlayParser{}
}

// Parse decodes the raw record batch and normalizes each record in order,
// 1:1. Structural problems with the batch fail the whole upload; nothing is
// partially applied.
func (p *googlePlayParser) Parse(file io.Reader) ([]models.Purchase, error) {
	var records []models.RawPurchaseRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding purchase history: %w", err)
	}

	purchases := make([]models.Purchase, 0, len(records))
	for _, record := range records {
		purchases = append(purchases, normalizeRecord(record))
	}
	return purchases, nil
}

func normalizeRecord(record models.RawPurchaseRecord) models.Purchase {
	history := record.PurchaseHistory

	amount, currency := ParsePrice(history.InvoicePrice)
	title, appName := SplitTitle(validation.SanitizeTitle(history.Doc.Title))

	// An unrecognizable timestamp degrades to an empty date; such purchases
	// still appear in the table and breakdowns, only the timeline skips them.
	date := ""
	if t, err := utils.ParsePurchaseTime(history.PurchaseTime); err == nil {
		date = utils.FormatDisplayDate(t)
	}

	return models.Purchase{
		Title:        title,
		AppName:      appName,
		Amount:       amount,
		Currency:     currency,
		Date:         date,
		DocumentType: history.Doc.DocumentType,
	}
}
