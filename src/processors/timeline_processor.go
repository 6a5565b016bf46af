package processors

import (
	"sort"

	"github.com/username/playfolio/backend/src/models"
	"github.com/username/playfolio/backend/src/utils"
)

const (
	GranularityDaily   = "daily"
	GranularityMonthly = "monthly"
	GranularityYearly  = "yearly"
)

type timelineProcessorImpl struct{}

// NewTimelineProcessor creates the processor behind the spending-over-time
// series.
func NewTimelineProcessor() TimelineProcessor {
	return &timelineProcessorImpl{}
}

// Process buckets converted purchase amounts by calendar day, month, or
// year. Amounts are converted into the target currency first, so purchases
// in a currency without a known rate contribute nothing. Purchases whose
// date could not be normalized are skipped; they have no place on a
// timeline. Unlike the breakdowns, every period stays explicit and buckets
// come out chronologically: a time axis has no position for a collapsed
// tail, and low-spend periods must not vanish from the series.
func (pr *timelineProcessorImpl) Process(purchases []models.Purchase, rates models.RateTable, granularity, currency string) TimelineResult {
	layout := bucketLayout(granularity)

	sums := make(map[string]float64)
	for _, p := range purchases {
		date := utils.ParseDate(p.Date)
		if date.IsZero() {
			continue
		}
		value := rates.Convert(p.Amount, p.Currency, currency)
		if value <= 0 {
			continue
		}
		sums[date.Format(layout)] += value
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	// The bucket layouts are zero-padded big-endian, so lexicographic order
	// is chronological order.
	sort.Strings(keys)

	buckets := []models.Bucket{}
	for _, key := range keys {
		buckets = append(buckets, models.Bucket{Key: key, Amount: sums[key]})
	}

	return TimelineResult{
		Granularity: granularity,
		Currency:    currency,
		Buckets:     buckets,
	}
}

func bucketLayout(granularity string) string {
	switch granularity {
	case GranularityMonthly:
		return "2006-01"
	case GranularityYearly:
		return "2006"
	default:
		return "2006-01-02"
	}
}
