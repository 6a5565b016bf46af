package services

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/username/playfolio/backend/src/database"
	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/parsers"
	"github.com/username/playfolio/backend/src/processors"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	database.InitDB(":memory:")
	os.Exit(m.Run())
}

func newTestService() HistoryService {
	return NewHistoryService(
		processors.NewBreakdownProcessor(),
		processors.NewTimelineProcessor(),
		processors.NewTotalProcessor(),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	)
}

const sampleExport = `[
	{"purchaseHistory": {
		"invoicePrice": "USD 20.00",
		"doc": {"documentType": "In App Item", "title": "Gems (Clash Royale)"},
		"purchaseTime": "2024-01-05T10:00:00Z"
	}},
	{"purchaseHistory": {
		"invoicePrice": "SGD10.00",
		"doc": {"documentType": "In App Item", "title": "Sticker Pack (Telegram)"},
		"purchaseTime": "2024-02-10T10:00:00Z"
	}},
	{"purchaseHistory": {
		"invoicePrice": "Free",
		"doc": {"documentType": "App", "title": "Telegram"},
		"purchaseTime": "2024-02-11T10:00:00Z"
	}}
]`

func TestProcessUploadStoresAndReturnsPurchases(t *testing.T) {
	svc := newTestService()
	sessionID := "session-upload"

	result, err := svc.ProcessUpload(strings.NewReader(sampleExport), sessionID, parsers.SourceGooglePlay)
	if err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}
	if len(result.Purchases) != 3 {
		t.Fatalf("got %d purchases, want 3", len(result.Purchases))
	}
	if got := result.Currencies; len(got) != 2 || got[0] != "USD" || got[1] != "SGD" {
		t.Errorf("Currencies = %v, want [USD SGD] in first-seen order", got)
	}

	stored, err := svc.GetPurchases(sessionID)
	if err != nil {
		t.Fatalf("GetPurchases: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("got %d stored purchases, want 3", len(stored))
	}
	if stored[0].Title != "Gems" || stored[0].AppName != "Clash Royale" || stored[0].Amount != 20 || stored[0].Currency != "USD" {
		t.Errorf("stored[0] = %+v, want normalized Gems purchase", stored[0])
	}
	if stored[2].Amount != 0 || stored[2].Currency != "" {
		t.Errorf("stored[2] = %+v, want zero amount with empty currency", stored[2])
	}
}

func TestProcessUploadReplacesDataset(t *testing.T) {
	svc := newTestService()
	sessionID := "session-replace"

	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), sessionID, parsers.SourceGooglePlay); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	smaller := `[{"purchaseHistory": {
		"invoicePrice": "USD 5.00",
		"doc": {"documentType": "Subscription", "title": "Premium (Some App)"},
		"purchaseTime": "2024-03-01T10:00:00Z"
	}}]`
	if _, err := svc.ProcessUpload(strings.NewReader(smaller), sessionID, parsers.SourceGooglePlay); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	stored, err := svc.GetPurchases(sessionID)
	if err != nil {
		t.Fatalf("GetPurchases: %v", err)
	}
	if len(stored) != 1 || stored[0].Title != "Premium" {
		t.Errorf("dataset after replacement = %+v, want only the Premium purchase", stored)
	}
}

func TestProcessUploadParseFailureKeepsDataset(t *testing.T) {
	svc := newTestService()
	sessionID := "session-parse-failure"

	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), sessionID, parsers.SourceGooglePlay); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	_, err := svc.ProcessUpload(strings.NewReader(`{"not": "an array"`), sessionID, parsers.SourceGooglePlay)
	if !errors.Is(err, ErrParsingFailed) {
		t.Fatalf("malformed upload error = %v, want ErrParsingFailed", err)
	}

	stored, err := svc.GetPurchases(sessionID)
	if err != nil {
		t.Fatalf("GetPurchases: %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("dataset after failed upload has %d purchases, want the original 3", len(stored))
	}
}

func TestProcessUploadUnknownSource(t *testing.T) {
	svc := newTestService()
	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), "session-source", "itunes"); !errors.Is(err, ErrParsingFailed) {
		t.Errorf("unknown source error = %v, want ErrParsingFailed", err)
	}
}

func TestDeleteAllPurchases(t *testing.T) {
	svc := newTestService()
	sessionID := "session-delete"

	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), sessionID, parsers.SourceGooglePlay); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.DeleteAllPurchases(sessionID); err != nil {
		t.Fatalf("DeleteAllPurchases: %v", err)
	}

	stored, err := svc.GetPurchases(sessionID)
	if err != nil {
		t.Fatalf("GetPurchases: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("got %d purchases after delete, want 0", len(stored))
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newTestService()

	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), "session-a", parsers.SourceGooglePlay); err != nil {
		t.Fatalf("upload: %v", err)
	}

	stored, err := svc.GetPurchases("session-b")
	if err != nil {
		t.Fatalf("GetPurchases: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("session-b sees %d purchases from session-a, want 0", len(stored))
	}
}

func TestSetRatePersistsBothDirections(t *testing.T) {
	svc := newTestService()
	sessionID := "session-rates"

	updated, err := svc.SetRate(sessionID, "SGD", "USD", 0.74)
	if err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if rate, ok := updated.Rate("SGD", "USD"); !ok || rate != "0.74" {
		t.Errorf("Rate(SGD, USD) = (%q, %v), want (0.74, true)", rate, ok)
	}
	if rate, ok := updated.Rate("USD", "SGD"); !ok || rate != "1.35" {
		t.Errorf("Rate(USD, SGD) = (%q, %v), want (1.35, true)", rate, ok)
	}

	// A fresh cache forces a reload from the database.
	fresh := newTestService()
	reloaded, err := fresh.GetRates(sessionID)
	if err != nil {
		t.Fatalf("GetRates: %v", err)
	}
	if rate, ok := reloaded.Rate("USD", "SGD"); !ok || rate != "1.35" {
		t.Errorf("reloaded Rate(USD, SGD) = (%q, %v), want (1.35, true)", rate, ok)
	}
}

func TestSetRateInvalidIsNoOp(t *testing.T) {
	svc := newTestService()
	sessionID := "session-bad-rate"

	if _, err := svc.SetRate(sessionID, "SGD", "USD", 0.74); err != nil {
		t.Fatalf("seed rate: %v", err)
	}

	table, err := svc.SetRate(sessionID, "SGD", "USD", -1)
	if err != nil {
		t.Fatalf("SetRate with invalid rate: %v", err)
	}
	if rate, ok := table.Rate("SGD", "USD"); !ok || rate != "0.74" {
		t.Errorf("Rate(SGD, USD) after invalid edit = (%q, %v), want unchanged (0.74, true)", rate, ok)
	}
}

func TestGetTotalsUsesStoredRates(t *testing.T) {
	svc := newTestService()
	sessionID := "session-totals"

	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), sessionID, parsers.SourceGooglePlay); err != nil {
		t.Fatalf("upload: %v", err)
	}

	before, err := svc.GetTotals(sessionID, "USD")
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}
	if before.Total != 20 {
		t.Errorf("total without a rate = %v, want 20 (SGD purchase unconvertible)", before.Total)
	}

	if _, err := svc.SetRate(sessionID, "SGD", "USD", 0.74); err != nil {
		t.Fatalf("SetRate: %v", err)
	}

	after, err := svc.GetTotals(sessionID, "USD")
	if err != nil {
		t.Fatalf("GetTotals: %v", err)
	}
	if after.Total != 27.4 {
		t.Errorf("total with SGD->USD at 0.74 = %v, want 27.4", after.Total)
	}
}

func TestGetTimelineDefaultsToFirstCurrency(t *testing.T) {
	svc := newTestService()
	sessionID := "session-timeline"

	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), sessionID, parsers.SourceGooglePlay); err != nil {
		t.Fatalf("upload: %v", err)
	}

	timeline, err := svc.GetTimeline(sessionID, processors.GranularityMonthly, "")
	if err != nil {
		t.Fatalf("GetTimeline: %v", err)
	}
	if timeline.Currency != "USD" {
		t.Errorf("defaulted currency = %q, want USD (first purchase currency)", timeline.Currency)
	}
	if len(timeline.Buckets) != 1 || timeline.Buckets[0].Key != "2024-01" || timeline.Buckets[0].Amount != 20 {
		t.Errorf("buckets = %v, want [{2024-01 20}] (SGD month unconvertible)", timeline.Buckets)
	}
}

func TestGetAppBreakdownFromStoredData(t *testing.T) {
	svc := newTestService()
	sessionID := "session-breakdown"

	if _, err := svc.ProcessUpload(strings.NewReader(sampleExport), sessionID, parsers.SourceGooglePlay); err != nil {
		t.Fatalf("upload: %v", err)
	}

	breakdown, err := svc.GetAppBreakdown(sessionID, "USD", "")
	if err != nil {
		t.Fatalf("GetAppBreakdown: %v", err)
	}
	if len(breakdown.Buckets) != 1 || breakdown.Buckets[0].Key != "Clash Royale" || breakdown.Buckets[0].Amount != 20 {
		t.Errorf("buckets = %v, want [{Clash Royale 20}]", breakdown.Buckets)
	}
}
