package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/username/playfolio/backend/src/logger"
)

// CurrencySymbolInfo is one entry of the symbol-to-code data file.
type CurrencySymbolInfo struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

var (
	symbolToCodes map[string][]string
	loadOnce      sync.Once
	loadError     error
	dataLoaded    bool
)

var displayPrinter = message.NewPrinter(language.English)

// InitCurrencyData loads the currency symbol table from the given file path.
// This should be called once from main.go after config is loaded.
func InitCurrencyData(filePath string) error {
	logger.L.Info("Initializing currency symbol data", "path", filePath)
	loadOnce.Do(func() {
		fileData, err := os.ReadFile(filePath)
		if err != nil {
			loadError = fmt.Errorf("failed to read currency data file '%s': %w", filePath, err)
			logger.L.Error("Failed to read currency data file", "path", filePath, "error", err)
			return
		}

		var entries []CurrencySymbolInfo
		if err := json.Unmarshal(fileData, &entries); err != nil {
			loadError = fmt.Errorf("failed to unmarshal currency data from '%s': %w", filePath, err)
			logger.L.Error("Failed to unmarshal currency data", "path", filePath, "error", err)
			return
		}

		symbolToCodes = make(map[string][]string)
		for _, entry := range entries {
			symbolToCodes[entry.Symbol] = append(symbolToCodes[entry.Symbol], entry.Code)
		}
		dataLoaded = true
		logger.L.Info("Currency symbol data loaded successfully.", "path", filePath, "symbolCount", len(symbolToCodes))
	})
	return loadError
}

// ResolveCurrencyCode maps a currency symbol like "₹" to its ISO code.
// The second return value is false when the symbol is unknown or shared by
// more than one code (e.g. "¥" is both JPY and CNY).
func ResolveCurrencyCode(symbol string) (string, bool) {
	if !dataLoaded {
		return "", false
	}
	codes := symbolToCodes[symbol]
	if len(codes) != 1 {
		return "", false
	}
	return codes[0], true
}

// FormatCurrency renders an amount with its currency label for display.
// The label is tried as an ISO code first, then resolved through the symbol
// table; when neither yields a unique code the amount is rendered as
// "<label><amount fixed to 2 decimals>".
func FormatCurrency(amount float64, code string) string {
	if unit, err := currency.ParseISO(code); err == nil {
		return displayPrinter.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
	}
	if resolved, ok := ResolveCurrencyCode(code); ok {
		if unit, err := currency.ParseISO(resolved); err == nil {
			return displayPrinter.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
		}
	}
	return fmt.Sprintf("%s%.2f", code, amount)
}
