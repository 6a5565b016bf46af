package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/services"
	"github.com/username/playfolio/backend/src/utils"
)

type RateHandler struct {
	historyService services.HistoryService
}

func NewRateHandler(service services.HistoryService) *RateHandler {
	return &RateHandler{
		historyService: service,
	}
}

type setRateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"` // raw user-entered decimal string
}

// HandleSetRate applies one conversion-rate edit. The rate arrives as the
// raw string the user typed; anything that doesn't parse to a positive
// number is silently discarded and the live table is returned unchanged, so
// the edit field can just revert.
func (h *RateHandler) HandleSetRate(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	if req.From == "" || req.To == "" || req.From == req.To {
		utils.SendJSONError(w, "'from' and 'to' must be two distinct currencies", http.StatusBadRequest)
		return
	}

	// A non-numeric rate string degrades to zero, which SetRate discards
	// along with negative and non-finite values.
	rate, err := strconv.ParseFloat(strings.TrimSpace(req.Rate), 64)
	if err != nil {
		logger.L.Debug("Non-numeric rate input ignored", "sessionID", sessionID, "rate", req.Rate)
		rate = 0
	}

	rates, err := h.historyService.SetRate(sessionID, req.From, req.To, rate)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error storing rate: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rates); err != nil {
		logger.L.Error("Error encoding rate table response", "sessionID", sessionID, "error", err)
	}
}

// HandleGetRates serves the session's current rate table.
func (h *RateHandler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	rates, err := h.historyService.GetRates(sessionID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving rates: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rates); err != nil {
		logger.L.Error("Error encoding rate table response", "sessionID", sessionID, "error", err)
	}
}
