package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"peerlend/internal/middleware"
	"peerlend/internal/services"
	"peerlend/internal/validator"
)

type executeTransactionRequest struct {
	ToUserID        string       `json:"toUserId"`
	Type            string       `json:"type"`
	Amount          *json.Number `json:"amount"`
	ItemID          *string      `json:"itemId"`
	ContractAddress *string      `json:"contractAddress"`
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondSuccess(w, http.StatusOK, h.ledger.GetUserTransactions(r.Context(), userID))
}

// ExecuteTransaction books a transaction from the current user. An amount of
// zero is valid; only a missing amount is rejected.
func (h *Handler) ExecuteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req executeTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	toUserID := strings.TrimSpace(req.ToUserID)
	if toUserID == "" || req.Type == "" || req.Amount == nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validUserIDs(toUserID) {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	txType, err := validator.ParseTransactionType(req.Type)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid transaction type")
		return
	}
	amount, err := parseAmount(*req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	tx := h.ledger.ExecuteTransaction(r.Context(), services.ExecuteTransactionRequest{
		FromUserID:      userID,
		ToUserID:        toUserID,
		Type:            txType,
		Amount:          amount,
		ItemID:          nonEmpty(req.ItemID),
		ContractAddress: nonEmpty(req.ContractAddress),
	})
	respondSuccess(w, http.StatusOK, tx)
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
