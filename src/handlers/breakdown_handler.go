package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/services"
	"github.com/username/playfolio/backend/src/utils"
)

type BreakdownHandler struct {
	historyService services.HistoryService
}

func NewBreakdownHandler(service services.HistoryService) *BreakdownHandler {
	return &BreakdownHandler{
		historyService: service,
	}
}

// HandleGetBreakdown serves one level of the app/title hierarchy for one
// currency. Without an "app" query parameter it returns the app-level
// buckets; "app=<name>" drills into that app's titles; "app=Others" expands
// the collapsed tail into its constituent apps.
func (h *BreakdownHandler) HandleGetBreakdown(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		utils.SendJSONError(w, "query parameter 'currency' is required", http.StatusBadRequest)
		return
	}
	app := r.URL.Query().Get("app")

	result, err := h.historyService.GetAppBreakdown(sessionID, currency, app)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing breakdown: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding breakdown response", "sessionID", sessionID, "error", err)
	}
}
