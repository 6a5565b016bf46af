package services

import (
	"errors"
	"io"

	"github.com/username/playfolio/backend/src/models"
	"github.com/username/playfolio/backend/src/processors"
)

var (
	// ErrParsingFailed marks uploads whose content is not a well-formed
	// purchase-history export. The session's previous dataset is untouched.
	ErrParsingFailed = errors.New("parsing failed")
)

// UploadResult is what a successful upload hands back to the client: the
// freshly normalized dataset and the distinct currencies found in it.
type UploadResult struct {
	Purchases  []models.Purchase `json:"purchases"`
	Currencies []string          `json:"currencies"`
}

// HistoryService is the core service behind every endpoint: it owns the
// per-session purchase dataset and rate table, and feeds the processors.
type HistoryService interface {
	ProcessUpload(fileReader io.Reader, sessionID string, source string) (*UploadResult, error)
	GetPurchases(sessionID string) ([]models.Purchase, error)
	GetCurrencies(sessionID string) ([]string, error)
	DeleteAllPurchases(sessionID string) error

	GetRates(sessionID string) (models.RateTable, error)
	SetRate(sessionID, from, to string, rate float64) (models.RateTable, error)

	GetAppBreakdown(sessionID, currency, app string) (*processors.BreakdownResult, error)
	GetTimeline(sessionID, granularity, currency string) (*processors.TimelineResult, error)
	GetTotals(sessionID, currency string) (*processors.TotalResult, error)
}
