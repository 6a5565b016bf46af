package processors

import (
	"sort"

	"github.com/username/playfolio/backend/src/models"
)

// OthersBucketKey names the synthetic bucket the long tail collapses into.
const OthersBucketKey = "Others"

// DefaultThreshold is the cumulative share of the grand total kept as
// explicit buckets before the remainder collapses into Others.
const DefaultThreshold = 0.95

// Aggregate groups positive-value items by key and collapses the tail.
// Keys are summed, sorted by value descending (ties keep first-seen order),
// and walked accumulating a running total: while the running total before a
// key is still below threshold*grandTotal the key stays explicit, everything
// after goes into a single Others bucket. Others is only emitted when its
// amount is strictly positive, so a zero grand total yields no split.
func Aggregate(purchases []models.Purchase, keyOf func(models.Purchase) string, valueOf func(models.Purchase) float64, threshold float64) []models.Bucket {
	ranked := rankedBuckets(purchases, keyOf, valueOf)

	var grandTotal float64
	for _, b := range ranked {
		grandTotal += b.Amount
	}

	buckets := []models.Bucket{}
	var running, others float64
	for _, b := range ranked {
		if running < threshold*grandTotal {
			buckets = append(buckets, b)
			running += b.Amount
		} else {
			others += b.Amount
		}
	}

	if others > 0 {
		buckets = append(buckets, models.Bucket{Key: OthersBucketKey, Amount: others})
	}
	return buckets
}

// HeadKeys returns the set of keys Aggregate would keep explicit, i.e.
// everything outside the Others bucket. The Others drill-down needs this to
// select the items that were collapsed.
func HeadKeys(purchases []models.Purchase, keyOf func(models.Purchase) string, valueOf func(models.Purchase) float64, threshold float64) map[string]struct{} {
	ranked := rankedBuckets(purchases, keyOf, valueOf)

	var grandTotal float64
	for _, b := range ranked {
		grandTotal += b.Amount
	}

	head := make(map[string]struct{})
	var running float64
	for _, b := range ranked {
		if running >= threshold*grandTotal {
			break
		}
		head[b.Key] = struct{}{}
		running += b.Amount
	}
	return head
}

// rankedBuckets sums positive values per key and sorts descending by amount.
// The stable sort keeps equal-valued keys in first-seen input order.
func rankedBuckets(purchases []models.Purchase, keyOf func(models.Purchase) string, valueOf func(models.Purchase) float64) []models.Bucket {
	sums := make(map[string]float64)
	var order []string
	for _, p := range purchases {
		value := valueOf(p)
		if value <= 0 {
			continue
		}
		key := keyOf(p)
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += value
	}

	buckets := make([]models.Bucket, 0, len(order))
	for _, key := range order {
		buckets = append(buckets, models.Bucket{Key: key, Amount: sums[key]})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Amount > buckets[j].Amount
	})
	return buckets
}
