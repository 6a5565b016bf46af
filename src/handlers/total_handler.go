package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/services"
	"github.com/username/playfolio/backend/src/utils"
)

type TotalHandler struct {
	historyService services.HistoryService
}

func NewTotalHandler(service services.HistoryService) *TotalHandler {
	return &TotalHandler{
		historyService: service,
	}
}

// HandleGetTotals serves the total-spent figure. With a "currency" query
// parameter every amount is converted into it (unconvertible entries count
// zero); without one the response carries one sum per currency instead.
func (h *TotalHandler) HandleGetTotals(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	result, err := h.historyService.GetTotals(sessionID, r.URL.Query().Get("currency"))
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing totals: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding totals response", "sessionID", sessionID, "error", err)
	}
}
