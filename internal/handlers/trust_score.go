package handlers

import (
	"net/http"
	"strings"

	"peerlend/internal/models"
	"peerlend/internal/services"
)

type trustScoreResponse struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

type trustScoreHistoryResponse struct {
	models.TrustScore
	Level string `json:"level"`
}

type verifyIdentityRequest struct {
	UserID string `json:"userId"`
}

func (h *Handler) GetTrustScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.queryUserID(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, trustScoreResponse{
		UserID: userID,
		Score:  h.ledger.GetTrustScore(r.Context(), userID),
	})
}

func (h *Handler) GetTrustScoreHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.queryUserID(w, r)
	if !ok {
		return
	}
	record := h.ledger.GetOrCreateTrustScore(r.Context(), userID)
	respondSuccess(w, http.StatusOK, trustScoreHistoryResponse{
		TrustScore: record,
		Level:      services.TrustLevel(record.Score),
	})
}

func (h *Handler) VerifyIdentity(w http.ResponseWriter, r *http.Request) {
	var req verifyIdentityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	if !validUserIDs(userID) {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if !h.ledger.VerifyUserIdentity(r.Context(), userID) {
		respondError(w, http.StatusBadRequest, "Failed to verify identity")
		return
	}
	respondSuccess(w, http.StatusOK, trustScoreResponse{
		UserID: userID,
		Score:  h.ledger.GetTrustScore(r.Context(), userID),
	})
}
