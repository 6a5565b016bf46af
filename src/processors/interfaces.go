package processors

import (
	"github.com/username/playfolio/backend/src/models"
)

// BreakdownResult is one level of the app/title hierarchy for one currency.
// App is empty at the top level, an app name when drilled into that app's
// titles, or the synthetic Others key when the collapsed tail is expanded.
type BreakdownResult struct {
	Currency string          `json:"currency"`
	App      string          `json:"app,omitempty"`
	Buckets  []models.Bucket `json:"buckets"`
}

// TimelineResult holds time-bucketed converted spending totals.
type TimelineResult struct {
	Granularity string          `json:"granularity"`
	Currency    string          `json:"currency"`
	Buckets     []models.Bucket `json:"buckets"`
}

// TotalResult is either a single converted total (Currency set) or one sum
// per currency with no conversion attempted (ByCurrency set).
type TotalResult struct {
	Currency   string             `json:"currency,omitempty"`
	Total      float64            `json:"total"`
	ByCurrency map[string]float64 `json:"byCurrency,omitempty"`
}

// BreakdownProcessor produces threshold-bucketed app and title breakdowns.
type BreakdownProcessor interface {
	Process(purchases []models.Purchase, currency, app string) BreakdownResult
}

// TimelineProcessor produces time-bucketed spending series.
type TimelineProcessor interface {
	Process(purchases []models.Purchase, rates models.RateTable, granularity, currency string) TimelineResult
}

// TotalProcessor sums converted amounts across a purchase set.
type TotalProcessor interface {
	Process(purchases []models.Purchase, rates models.RateTable, currency string) TotalResult
}
