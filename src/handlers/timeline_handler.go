package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/processors"
	"github.com/username/playfolio/backend/src/services"
	"github.com/username/playfolio/backend/src/utils"
)

type TimelineHandler struct {
	historyService services.HistoryService
}

func NewTimelineHandler(service services.HistoryService) *TimelineHandler {
	return &TimelineHandler{
		historyService: service,
	}
}

// HandleGetTimeline serves time-bucketed converted spending totals. The
// granularity defaults to daily; the currency defaults to the dataset's
// first purchase currency, and the response echoes the one actually used.
func (h *TimelineHandler) HandleGetTimeline(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	granularity := r.URL.Query().Get("granularity")
	switch granularity {
	case "":
		granularity = processors.GranularityDaily
	case processors.GranularityDaily, processors.GranularityMonthly, processors.GranularityYearly:
	default:
		utils.SendJSONError(w, fmt.Sprintf("invalid granularity %q: must be daily, monthly or yearly", granularity), http.StatusBadRequest)
		return
	}

	result, err := h.historyService.GetTimeline(sessionID, granularity, r.URL.Query().Get("currency"))
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing timeline: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding timeline response", "sessionID", sessionID, "error", err)
	}
}
