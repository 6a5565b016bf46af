package processors

import (
	"github.com/username/playfolio/backend/src/models"
	"github.com/username/playfolio/backend/src/utils"
)

type totalProcessorImpl struct{}

// NewTotalProcessor creates the processor behind the total-spent figure.
func NewTotalProcessor() TotalProcessor {
	return &totalProcessorImpl{}
}

// Process sums positive purchase amounts. With a target currency every
// amount is converted first, so unconvertible entries contribute zero and
// the total undercounts rather than fails. With no target currency, amounts
// are summed per currency with no conversion attempted.
func (pr *totalProcessorImpl) Process(purchases []models.Purchase, rates models.RateTable, currency string) TotalResult {
	if currency == "" {
		byCurrency := make(map[string]float64)
		for _, p := range purchases {
			if p.Amount <= 0 || p.Currency == "" {
				continue
			}
			byCurrency[p.Currency] += p.Amount
		}
		for c, sum := range byCurrency {
			byCurrency[c] = utils.RoundFloat(sum, 2)
		}
		return TotalResult{ByCurrency: byCurrency}
	}

	var total float64
	for _, p := range purchases {
		if p.Amount <= 0 {
			continue
		}
		total += rates.Convert(p.Amount, p.Currency, currency)
	}
	return TotalResult{Currency: currency, Total: utils.RoundFloat(total, 2)}
}
