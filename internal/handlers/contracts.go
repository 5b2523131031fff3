package handlers

import (
	"errors"
	"net/http"
	"strings"

	"peerlend/internal/middleware"
	"peerlend/internal/services"
	"peerlend/internal/validator"

	"github.com/go-chi/chi/v5"
)

type createContractRequest struct {
	LenderID   string                `json:"lenderId"`
	BorrowerID string                `json:"borrowerId"`
	ItemID     string                `json:"itemId"`
	Type       string                `json:"type"`
	Terms      *contractTermsPayload `json:"terms"`
}

type signContractRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondSuccess(w, http.StatusOK, h.ledger.GetUserContracts(r.Context(), userID))
}

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.LenderID == "" || req.BorrowerID == "" || req.ItemID == "" || req.Type == "" || req.Terms == nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validUserIDs(req.LenderID, req.BorrowerID) {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	contractType, err := validator.ParseContractType(req.Type)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract type")
		return
	}
	terms, err := parseTerms(*req.Terms)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contract terms")
		return
	}
	contract := h.ledger.CreateSmartContract(r.Context(), services.CreateContractRequest{
		LenderID:   req.LenderID,
		BorrowerID: req.BorrowerID,
		ItemID:     req.ItemID,
		Type:       contractType,
		Terms:      terms,
	})
	respondSuccess(w, http.StatusOK, contract)
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.ledger.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrContractNotFound) {
			respondError(w, http.StatusNotFound, "Contract not found")
			return
		}
		h.internalError(w, r, err, "Failed to fetch contract")
		return
	}
	respondSuccess(w, http.StatusOK, contract)
}

func (h *Handler) SignContract(w http.ResponseWriter, r *http.Request) {
	var req signContractRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		if current, ok := middleware.UserIDFromContext(r.Context()); ok {
			userID = current
		}
	}
	if userID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validUserIDs(userID) {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	role, err := validator.ParseRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	contract, err := h.ledger.Sign(r.Context(), chi.URLParam(r, "id"), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContractNotFound):
			respondError(w, http.StatusBadRequest, "Contract not found")
		case errors.Is(err, services.ErrInvalidRole):
			respondError(w, http.StatusBadRequest, "Invalid role")
		default:
			h.internalError(w, r, err, "Failed to sign contract")
		}
		return
	}
	respondSuccess(w, http.StatusOK, contract)
}

func (h *Handler) CompleteContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.ledger.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContractNotFound):
			respondError(w, http.StatusBadRequest, "Contract not found")
		case errors.Is(err, services.ErrContractNotActive):
			respondError(w, http.StatusBadRequest, "Contract is not active")
		default:
			h.internalError(w, r, err, "Failed to complete contract")
		}
		return
	}
	respondSuccess(w, http.StatusOK, contract)
}
