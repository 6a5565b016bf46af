package services

import (
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/playfolio/backend/src/database"
	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/models"
	"github.com/username/playfolio/backend/src/parsers"
	"github.com/username/playfolio/backend/src/processors"
)

const (
	ckPurchases = "res_purchases_session_%s"
	ckRateTable = "res_rate_table_session_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type historyServiceImpl struct {
	breakdownProcessor processors.BreakdownProcessor
	timelineProcessor  processors.TimelineProcessor
	totalProcessor     processors.TotalProcessor
	reportCache        *cache.Cache
}

func NewHistoryService(
	breakdownProcessor processors.BreakdownProcessor,
	timelineProcessor processors.TimelineProcessor,
	totalProcessor processors.TotalProcessor,
	reportCache *cache.Cache,
) HistoryService {
	return &historyServiceImpl{
		breakdownProcessor: breakdownProcessor,
		timelineProcessor:  timelineProcessor,
		totalProcessor:     totalProcessor,
		reportCache:        reportCache,
	}
}

// ProcessUpload parses a purchase-history export and replaces the session's
// dataset wholesale. Replacement happens in one database transaction: a
// parse failure or insert error leaves the previous dataset untouched.
func (s *historyServiceImpl) ProcessUpload(fileReader io.Reader, sessionID string, source string) (*UploadResult, error) {
	startTime := time.Now()
	logger.L.Info("ProcessUpload START", "sessionID", sessionID, "source", source)

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	purchases, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM purchases WHERE session_id = ?`, sessionID); err != nil {
		return nil, fmt.Errorf("error clearing previous dataset: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO purchases (session_id, position, title, app_name, amount, currency, purchase_date, document_type) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for position, p := range purchases {
		if _, err := stmt.Exec(sessionID, position, p.Title, p.AppName, p.Amount, p.Currency, p.Date, p.DocumentType); err != nil {
			return nil, fmt.Errorf("error inserting purchase (position %d): %w", position, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing purchases: %w", err)
	}

	s.InvalidateSessionCache(sessionID)

	logger.L.Info("ProcessUpload END", "sessionID", sessionID, "purchaseCount", len(purchases), "duration", time.Since(startTime))
	return &UploadResult{
		Purchases:  purchases,
		Currencies: distinctCurrencies(purchases),
	}, nil
}

// InvalidateSessionCache clears cached data for a session, forcing a rebuild
// from the database on the next request.
func (s *historyServiceImpl) InvalidateSessionCache(sessionID string) {
	s.reportCache.Delete(fmt.Sprintf(ckPurchases, sessionID))
	s.reportCache.Delete(fmt.Sprintf(ckRateTable, sessionID))
	logger.L.Debug("Invalidated caches for session", "sessionID", sessionID)
}

func (s *historyServiceImpl) GetPurchases(sessionID string) ([]models.Purchase, error) {
	cacheKey := fmt.Sprintf(ckPurchases, sessionID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for purchases", "sessionID", sessionID)
		return cached.([]models.Purchase), nil
	}

	purchases, err := fetchSessionPurchases(sessionID)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, purchases, DefaultCacheExpiration)
	return purchases, nil
}

func (s *historyServiceImpl) GetCurrencies(sessionID string) ([]string, error) {
	purchases, err := s.GetPurchases(sessionID)
	if err != nil {
		return nil, err
	}
	return distinctCurrencies(purchases), nil
}

func (s *historyServiceImpl) DeleteAllPurchases(sessionID string) error {
	if _, err := database.DB.Exec(`DELETE FROM purchases WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("error deleting purchases for session: %w", err)
	}
	s.InvalidateSessionCache(sessionID)
	logger.L.Info("Deleted all purchases for session", "sessionID", sessionID)
	return nil
}

func (s *historyServiceImpl) GetRates(sessionID string) (models.RateTable, error) {
	cacheKey := fmt.Sprintf(ckRateTable, sessionID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(models.RateTable), nil
	}

	rates, err := fetchSessionRates(sessionID)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, rates, DefaultCacheExpiration)
	return rates, nil
}

// SetRate applies one rate edit. The live table is cloned, both directions
// of the pair are set on the clone, the clone is persisted and swapped in.
// An invalid rate (zero, negative, not finite) is a silent no-op: the live
// table is returned unchanged, matching the UI contract where the edit
// field simply reverts.
func (s *historyServiceImpl) SetRate(sessionID, from, to string, rate float64) (models.RateTable, error) {
	current, err := s.GetRates(sessionID)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	if !updated.Set(from, to, rate) {
		logger.L.Debug("Ignoring invalid rate edit", "sessionID", sessionID, "from", from, "to", to, "rate", rate)
		return current, nil
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Both directions land in the same transaction so the stored table can
	// never hold one side of a pair without the other.
	directRate, _ := updated.Rate(from, to)
	inverseRate, _ := updated.Rate(to, from)
	upsert := `INSERT INTO conversion_rates (session_id, from_currency, to_currency, rate) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, from_currency, to_currency) DO UPDATE SET rate = excluded.rate, updated_at = CURRENT_TIMESTAMP`
	if _, err := dbTx.Exec(upsert, sessionID, from, to, directRate); err != nil {
		return nil, fmt.Errorf("error storing rate %s->%s: %w", from, to, err)
	}
	if _, err := dbTx.Exec(upsert, sessionID, to, from, inverseRate); err != nil {
		return nil, fmt.Errorf("error storing rate %s->%s: %w", to, from, err)
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing rate edit: %w", err)
	}

	s.reportCache.Set(fmt.Sprintf(ckRateTable, sessionID), updated, DefaultCacheExpiration)
	logger.L.Info("Stored conversion rate pair", "sessionID", sessionID, "from", from, "to", to, "rate", directRate, "inverse", inverseRate)
	return updated, nil
}

func (s *historyServiceImpl) GetAppBreakdown(sessionID, currency, app string) (*processors.BreakdownResult, error) {
	purchases, err := s.GetPurchases(sessionID)
	if err != nil {
		return nil, err
	}
	result := s.breakdownProcessor.Process(purchases, currency, app)
	return &result, nil
}

func (s *historyServiceImpl) GetTimeline(sessionID, granularity, currency string) (*processors.TimelineResult, error) {
	purchases, err := s.GetPurchases(sessionID)
	if err != nil {
		return nil, err
	}

	// No explicit target currency: default to the dataset's first purchase
	// currency, mirroring the upload flow's default selection.
	if currency == "" {
		currency = firstCurrency(purchases)
	}

	rates, err := s.GetRates(sessionID)
	if err != nil {
		return nil, err
	}
	result := s.timelineProcessor.Process(purchases, rates, granularity, currency)
	return &result, nil
}

func (s *historyServiceImpl) GetTotals(sessionID, currency string) (*processors.TotalResult, error) {
	purchases, err := s.GetPurchases(sessionID)
	if err != nil {
		return nil, err
	}
	rates, err := s.GetRates(sessionID)
	if err != nil {
		return nil, err
	}
	result := s.totalProcessor.Process(purchases, rates, currency)
	return &result, nil
}

func fetchSessionPurchases(sessionID string) ([]models.Purchase, error) {
	rows, err := database.DB.Query(`
		SELECT id, title, app_name, amount, currency, purchase_date, document_type
		FROM purchases
		WHERE session_id = ?
		ORDER BY position ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying purchases for session: %w", err)
	}
	defer rows.Close()

	purchases := []models.Purchase{}
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.ID, &p.Title, &p.AppName, &p.Amount, &p.Currency, &p.Date, &p.DocumentType); err != nil {
			return nil, fmt.Errorf("error scanning purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase rows: %w", err)
	}
	return purchases, nil
}

func fetchSessionRates(sessionID string) (models.RateTable, error) {
	rows, err := database.DB.Query(`
		SELECT from_currency, to_currency, rate
		FROM conversion_rates
		WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying rates for session: %w", err)
	}
	defer rows.Close()

	rates := models.RateTable{}
	for rows.Next() {
		var from, to, rate string
		if err := rows.Scan(&from, &to, &rate); err != nil {
			return nil, fmt.Errorf("error scanning rate row: %w", err)
		}
		if rates[from] == nil {
			rates[from] = make(map[string]string)
		}
		rates[from][to] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate rows: %w", err)
	}
	return rates, nil
}

func distinctCurrencies(purchases []models.Purchase) []string {
	seen := make(map[string]struct{})
	currencies := []string{}
	for _, p := range purchases {
		if p.Currency == "" {
			continue
		}
		if _, ok := seen[p.Currency]; ok {
			continue
		}
		seen[p.Currency] = struct{}{}
		currencies = append(currencies, p.Currency)
	}
	return currencies
}

func firstCurrency(purchases []models.Purchase) string {
	for _, p := range purchases {
		if p.Currency != "" {
			return p.Currency
		}
	}
	return ""
}
