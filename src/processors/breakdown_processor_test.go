package processors

import (
	"math"
	"testing"

	"github.com/username/playfolio/backend/src/models"
)

func TestBreakdownGroupsByApp(t *testing.T) {
	purchases := []models.Purchase{
		{Title: "Gems", AppName: "Clash Royale", Amount: 10, Currency: "USD"},
		{Title: "Gold Pass", AppName: "Clash Royale", Amount: 5, Currency: "USD"},
		{Title: "YouTube Premium", AppName: "", Amount: 12, Currency: "USD"},
		{Title: "Sticker Pack", AppName: "Telegram", Amount: 200, Currency: "JPY"},
	}

	result := NewBreakdownProcessor().Process(purchases, "USD", "")

	if result.Currency != "USD" || result.App != "" {
		t.Errorf("result echo = (%q, %q), want (USD, empty)", result.Currency, result.App)
	}
	if len(result.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2: %v", len(result.Buckets), result.Buckets)
	}
	if result.Buckets[0].Key != "Clash Royale" || result.Buckets[0].Amount != 15 {
		t.Errorf("buckets[0] = %+v, want {Clash Royale 15}", result.Buckets[0])
	}
	// The app-less purchase groups under the Other key, and the JPY purchase
	// never enters a USD breakdown.
	if result.Buckets[1].Key != DefaultAppKey || result.Buckets[1].Amount != 12 {
		t.Errorf("buckets[1] = %+v, want {%s 12}", result.Buckets[1], DefaultAppKey)
	}
}

func TestBreakdownDrillsIntoTitles(t *testing.T) {
	purchases := []models.Purchase{
		{Title: "Gems", AppName: "Clash Royale", Amount: 10, Currency: "USD"},
		{Title: "Gems", AppName: "Clash Royale", Amount: 4, Currency: "USD"},
		{Title: "", AppName: "Clash Royale", Amount: 2, Currency: "USD"},
		{Title: "Gems", AppName: "Some Other App", Amount: 99, Currency: "USD"},
	}

	result := NewBreakdownProcessor().Process(purchases, "USD", "Clash Royale")

	if len(result.Buckets) != 2 {
		t.Fatalf("got %d buckets, want 2: %v", len(result.Buckets), result.Buckets)
	}
	if result.Buckets[0].Key != "Gems" || result.Buckets[0].Amount != 14 {
		t.Errorf("buckets[0] = %+v, want {Gems 14}", result.Buckets[0])
	}
	if result.Buckets[1].Key != unknownTitleKey || result.Buckets[1].Amount != 2 {
		t.Errorf("buckets[1] = %+v, want {%s 2}", result.Buckets[1], unknownTitleKey)
	}
}

func TestBreakdownDrillsIntoDefaultAppKey(t *testing.T) {
	purchases := []models.Purchase{
		{Title: "YouTube Premium", AppName: "", Amount: 12, Currency: "USD"},
		{Title: "Gems", AppName: "Clash Royale", Amount: 10, Currency: "USD"},
	}

	result := NewBreakdownProcessor().Process(purchases, "USD", DefaultAppKey)

	if len(result.Buckets) != 1 {
		t.Fatalf("got %d buckets, want 1: %v", len(result.Buckets), result.Buckets)
	}
	if result.Buckets[0].Key != "YouTube Premium" || result.Buckets[0].Amount != 12 {
		t.Errorf("buckets[0] = %+v, want {YouTube Premium 12}", result.Buckets[0])
	}
}

func TestBreakdownExpandsOthers(t *testing.T) {
	purchases := []models.Purchase{
		{Title: "Big Pack", AppName: "App One", Amount: 90, Currency: "USD"},
		{Title: "Booster", AppName: "App Two", Amount: 8, Currency: "USD"},
		{Title: "Tip Jar", AppName: "App Three", Amount: 2, Currency: "USD"},
	}

	top := NewBreakdownProcessor().Process(purchases, "USD", "")
	last := top.Buckets[len(top.Buckets)-1]
	if last.Key != OthersBucketKey {
		t.Fatalf("top-level breakdown has no Others bucket: %v", top.Buckets)
	}

	expanded := NewBreakdownProcessor().Process(purchases, "USD", OthersBucketKey)

	// The expanded view covers exactly the collapsed amount.
	var expandedTotal float64
	for _, b := range expanded.Buckets {
		if b.Key == "App One" {
			t.Errorf("head app App One leaked into the Others expansion: %v", expanded.Buckets)
		}
		expandedTotal += b.Amount
	}
	if math.Abs(expandedTotal-last.Amount) > 1e-9 {
		t.Errorf("Others expansion sums to %v, want %v", expandedTotal, last.Amount)
	}
}

func TestBreakdownEmptyCurrencySlice(t *testing.T) {
	purchases := []models.Purchase{
		{Title: "Gems", AppName: "Clash Royale", Amount: 10, Currency: "USD"},
	}

	result := NewBreakdownProcessor().Process(purchases, "EUR", "")
	if len(result.Buckets) != 0 {
		t.Errorf("breakdown for an absent currency should be empty, got %v", result.Buckets)
	}
}
