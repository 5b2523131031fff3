package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"peerlend/internal/validator"
)

// envelope wraps every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondSuccess(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Error: message})
}

// queryUserID reads and validates the userId query parameter, writing the
// 400 itself when it is unusable.
func (h *Handler) queryUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		respondError(w, http.StatusBadRequest, "User ID is required")
		return "", false
	}
	if validator.ValidateUserID(userID) != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return "", false
	}
	return userID, true
}

func validUserIDs(ids ...string) bool {
	for _, id := range ids {
		if validator.ValidateUserID(id) != nil {
			return false
		}
	}
	return true
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(dest)
}
