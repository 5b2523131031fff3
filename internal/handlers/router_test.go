package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"peerlend/internal/models"
	"peerlend/internal/websocket"
)

func TestHealth(t *testing.T) {
	rr := serve(t, newTestHandler(stubLedger{}), http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(stubLedger{})
	serve(t, handler, http.MethodGet, "/health", nil)
	rr := serve(t, handler, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "peerlend_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestPanicBecomesInternalError(t *testing.T) {
	handler := newTestHandler(stubLedger{
		userContractsFn: func(context.Context, string) []models.SmartContract {
			panic("store exploded")
		},
	})
	rr := serve(t, handler, http.MethodGet, "/api/contracts", nil)
	expectError(t, rr, http.StatusInternalServerError, "Internal server error")
}

func TestWSTrustScoreRequiresUser(t *testing.T) {
	rr := serve(t, newTestHandler(stubLedger{}), http.MethodGet, "/ws/trust-score", nil)
	expectError(t, rr, http.StatusBadRequest, "User ID is required")
}

func TestWSTrustScoreRejectsInvalidUser(t *testing.T) {
	handler := newTestHandler(stubLedger{
		subscribeFn: func(context.Context, string, func(websocket.TrustScoreUpdate)) {
			t.Fatalf("ledger should not be called")
		},
	})
	rr := serve(t, handler, http.MethodGet, "/ws/trust-score?userId=not%20valid", nil)
	expectError(t, rr, http.StatusBadRequest, "Invalid user id")
}

func TestAllowedOrigins(t *testing.T) {
	got := allowedOrigins(" https://a.example, ,https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", got)
	}
	if got := allowedOrigins(""); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard, got %v", got)
	}
}
