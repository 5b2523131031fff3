package handlers

import (
	"context"

	"peerlend/internal/models"
	"peerlend/internal/services"
	"peerlend/internal/websocket"
)

type LedgerService interface {
	CreateSmartContract(ctx context.Context, req services.CreateContractRequest) models.SmartContract
	Sign(ctx context.Context, contractID, userID string, role models.Role) (models.SmartContract, error)
	Complete(ctx context.Context, contractID string) (models.SmartContract, error)
	GetContract(ctx context.Context, contractID string) (models.SmartContract, error)
	GetUserContracts(ctx context.Context, userID string) []models.SmartContract
	ExecuteTransaction(ctx context.Context, req services.ExecuteTransactionRequest) models.Transaction
	GetUserTransactions(ctx context.Context, userID string) []models.Transaction
	GetTrustScore(ctx context.Context, userID string) int
	GetOrCreateTrustScore(ctx context.Context, userID string) models.TrustScore
	VerifyUserIdentity(ctx context.Context, userID string) bool
	SubscribeTrustScore(ctx context.Context, userID string, attach func(snapshot websocket.TrustScoreUpdate))
}
