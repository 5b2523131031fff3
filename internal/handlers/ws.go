package handlers

import (
	"net/http"

	"peerlend/internal/websocket"
)

// WSTrustScore streams trust score changes for the userId query parameter,
// starting with the current score.
func (h *Handler) WSTrustScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.queryUserID(w, r)
	if !ok {
		return
	}
	websocket.ServeWS(w, r, h.hub, userID, func(attach func(websocket.TrustScoreUpdate)) {
		h.ledger.SubscribeTrustScore(r.Context(), userID, attach)
	})
}
