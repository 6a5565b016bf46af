package processors

import (
	"github.com/username/playfolio/backend/src/models"
)

const (
	// DefaultAppKey groups purchases whose title had no app suffix. Distinct
	// from the synthetic Others bucket; both can appear in one breakdown.
	DefaultAppKey = "Other"

	unknownTitleKey = "Unknown"
)

type breakdownProcessorImpl struct{}

// NewBreakdownProcessor creates the processor behind the pie-chart style
// app/title hierarchy.
func NewBreakdownProcessor() BreakdownProcessor {
	return &breakdownProcessorImpl{}
}

// Process computes one breakdown level for one currency. With an empty app
// it buckets by app name; with a real app name it drills into that app's
// purchase titles; with the Others key it re-runs the bucketing over just
// the apps that were collapsed at the top level.
func (pr *breakdownProcessorImpl) Process(purchases []models.Purchase, currency, app string) BreakdownResult {
	var inCurrency []models.Purchase
	for _, p := range purchases {
		if p.Currency == currency {
			inCurrency = append(inCurrency, p)
		}
	}

	var buckets []models.Bucket
	switch app {
	case "":
		buckets = Aggregate(inCurrency, appKey, amountOf, DefaultThreshold)
	case OthersBucketKey:
		head := HeadKeys(inCurrency, appKey, amountOf, DefaultThreshold)
		var tail []models.Purchase
		for _, p := range inCurrency {
			if _, kept := head[appKey(p)]; !kept {
				tail = append(tail, p)
			}
		}
		buckets = Aggregate(tail, appKey, amountOf, DefaultThreshold)
	default:
		var withinApp []models.Purchase
		for _, p := range inCurrency {
			if appKey(p) == app {
				withinApp = append(withinApp, p)
			}
		}
		buckets = Aggregate(withinApp, titleKey, amountOf, DefaultThreshold)
	}

	return BreakdownResult{Currency: currency, App: app, Buckets: buckets}
}

func appKey(p models.Purchase) string {
	if p.AppName == "" {
		return DefaultAppKey
	}
	return p.AppName
}

func titleKey(p models.Purchase) string {
	if p.Title == "" {
		return unknownTitleKey
	}
	return p.Title
}

func amountOf(p models.Purchase) float64 {
	return p.Amount
}
