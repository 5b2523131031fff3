package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"peerlend/internal/config"
	"peerlend/internal/logger"
	"peerlend/internal/models"
	"peerlend/internal/services"
	"peerlend/internal/websocket"
)

type stubLedger struct {
	createFn         func(ctx context.Context, req services.CreateContractRequest) models.SmartContract
	signFn           func(ctx context.Context, contractID, userID string, role models.Role) (models.SmartContract, error)
	completeFn       func(ctx context.Context, contractID string) (models.SmartContract, error)
	getContractFn    func(ctx context.Context, contractID string) (models.SmartContract, error)
	userContractsFn  func(ctx context.Context, userID string) []models.SmartContract
	executeFn        func(ctx context.Context, req services.ExecuteTransactionRequest) models.Transaction
	userTxFn         func(ctx context.Context, userID string) []models.Transaction
	trustScoreFn     func(ctx context.Context, userID string) int
	trustScoreRecFn  func(ctx context.Context, userID string) models.TrustScore
	verifyIdentityFn func(ctx context.Context, userID string) bool
	subscribeFn      func(ctx context.Context, userID string, attach func(websocket.TrustScoreUpdate))
}

func (s stubLedger) CreateSmartContract(ctx context.Context, req services.CreateContractRequest) models.SmartContract {
	if s.createFn == nil {
		return models.SmartContract{}
	}
	return s.createFn(ctx, req)
}

func (s stubLedger) Sign(ctx context.Context, contractID, userID string, role models.Role) (models.SmartContract, error) {
	if s.signFn == nil {
		return models.SmartContract{}, nil
	}
	return s.signFn(ctx, contractID, userID, role)
}

func (s stubLedger) Complete(ctx context.Context, contractID string) (models.SmartContract, error) {
	if s.completeFn == nil {
		return models.SmartContract{}, nil
	}
	return s.completeFn(ctx, contractID)
}

func (s stubLedger) GetContract(ctx context.Context, contractID string) (models.SmartContract, error) {
	if s.getContractFn == nil {
		return models.SmartContract{}, services.ErrContractNotFound
	}
	return s.getContractFn(ctx, contractID)
}

func (s stubLedger) GetUserContracts(ctx context.Context, userID string) []models.SmartContract {
	if s.userContractsFn == nil {
		return []models.SmartContract{}
	}
	return s.userContractsFn(ctx, userID)
}

func (s stubLedger) ExecuteTransaction(ctx context.Context, req services.ExecuteTransactionRequest) models.Transaction {
	if s.executeFn == nil {
		return models.Transaction{}
	}
	return s.executeFn(ctx, req)
}

func (s stubLedger) GetUserTransactions(ctx context.Context, userID string) []models.Transaction {
	if s.userTxFn == nil {
		return []models.Transaction{}
	}
	return s.userTxFn(ctx, userID)
}

func (s stubLedger) GetTrustScore(ctx context.Context, userID string) int {
	if s.trustScoreFn == nil {
		return services.InitialTrustScore
	}
	return s.trustScoreFn(ctx, userID)
}

func (s stubLedger) GetOrCreateTrustScore(ctx context.Context, userID string) models.TrustScore {
	if s.trustScoreRecFn == nil {
		return models.TrustScore{UserID: userID, Score: services.InitialTrustScore}
	}
	return s.trustScoreRecFn(ctx, userID)
}

func (s stubLedger) VerifyUserIdentity(ctx context.Context, userID string) bool {
	if s.verifyIdentityFn == nil {
		return true
	}
	return s.verifyIdentityFn(ctx, userID)
}

func (s stubLedger) SubscribeTrustScore(ctx context.Context, userID string, attach func(websocket.TrustScoreUpdate)) {
	if s.subscribeFn == nil {
		attach(websocket.TrustScoreUpdate{UserID: userID, Score: services.InitialTrustScore})
		return
	}
	s.subscribeFn(ctx, userID, attach)
}

func newTestHandler(ledger LedgerService) *Handler {
	cfg := config.Config{
		AppEnv:            "test",
		Port:              "0",
		AllowedOrigins:    "*",
		DemoUserID:        "user123",
		ContractMatchMode: config.MatchContractID,
	}
	return New(cfg, ledger, websocket.NewHub(), logger.Discard())
}

// serve routes the request through the full router so URL params and the
// current-user middleware are applied.
func serve(t *testing.T, handler *Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return env
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d (%s)", status, rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Success {
		t.Fatalf("expected success=false")
	}
	if env.Error != message {
		t.Fatalf("expected error %q, got %q", message, env.Error)
	}
}
