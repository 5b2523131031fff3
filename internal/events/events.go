// Package events describes the domain events emitted by the ledger service and
// the publishers that deliver them.
package events

import "context"

const (
	TopicTransactionCompleted = "transaction_completed"
	TopicContractActivated    = "contract_activated"
	TopicContractCompleted    = "contract_completed"
	TopicIdentityVerified     = "identity_verified"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type TransactionCompleted struct {
	TransactionID string  `json:"transaction_id"`
	Type          string  `json:"type"`
	FromUserID    string  `json:"from_user_id"`
	ToUserID      string  `json:"to_user_id"`
	ItemID        *string `json:"item_id,omitempty"`
	Amount        string  `json:"amount"`
	OccurredAt    int64   `json:"occurred_at"`
}

type ContractStatusChanged struct {
	ContractID      string `json:"contract_id"`
	ContractAddress string `json:"contract_address"`
	LenderID        string `json:"lender_id"`
	BorrowerID      string `json:"borrower_id"`
	Status          string `json:"status"`
	OccurredAt      int64  `json:"occurred_at"`
}

type IdentityVerified struct {
	UserID     string `json:"user_id"`
	Score      int    `json:"score"`
	OccurredAt int64  `json:"occurred_at"`
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
