package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/playfolio/backend/src/logger"
	"github.com/username/playfolio/backend/src/models"
	"github.com/username/playfolio/backend/src/services"
	"github.com/username/playfolio/backend/src/utils"
)

// purchaseView adds the localized amount rendering to a purchase. The core
// only produces the raw number and currency label; formatting for display
// happens here at the response boundary.
type purchaseView struct {
	models.Purchase
	AmountDisplay string `json:"amountDisplay,omitempty"`
}

func toPurchaseViews(purchases []models.Purchase) []purchaseView {
	views := make([]purchaseView, 0, len(purchases))
	for _, p := range purchases {
		view := purchaseView{Purchase: p}
		if p.Amount > 0 && p.Currency != "" {
			view.AmountDisplay = utils.FormatCurrency(p.Amount, p.Currency)
		}
		views = append(views, view)
	}
	return views
}

type PurchaseHandler struct {
	historyService services.HistoryService
}

func NewPurchaseHandler(service services.HistoryService) *PurchaseHandler {
	return &PurchaseHandler{
		historyService: service,
	}
}

// HandleGetPurchases serves the normalized purchase list for the table view,
// with ETag support so an unchanged dataset costs a 304.
func (h *PurchaseHandler) HandleGetPurchases(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	purchases, err := h.historyService.GetPurchases(sessionID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving purchases: %v", err), http.StatusInternalServerError)
		return
	}

	views := toPurchaseViews(purchases)

	currentETag, etagErr := utils.GenerateETag(views)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for purchases", "sessionID", sessionID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if currentETag != "" {
		w.Header().Set("ETag", currentETag)
		if r.Header.Get("If-None-Match") == currentETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		logger.L.Error("Error encoding purchases response", "sessionID", sessionID, "error", err)
	}
}

// HandleGetCurrencies lists the distinct currencies present in the dataset.
func (h *PurchaseHandler) HandleGetCurrencies(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	currencies, err := h.historyService.GetCurrencies(sessionID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving currencies: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"currencies": currencies}); err != nil {
		logger.L.Error("Error encoding currencies response", "sessionID", sessionID, "error", err)
	}
}

// HandleDeleteAllPurchases clears the session's dataset.
func (h *PurchaseHandler) HandleDeleteAllPurchases(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "session required", http.StatusUnauthorized)
		return
	}

	if err := h.historyService.DeleteAllPurchases(sessionID); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting purchases: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "all purchases deleted"})
}
