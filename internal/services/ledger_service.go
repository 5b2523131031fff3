package services

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"peerlend/internal/events"
	"peerlend/internal/logger"
	"peerlend/internal/metrics"
	"peerlend/internal/models"
	"peerlend/internal/money"
	"peerlend/internal/store"
	"peerlend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrContractNotFound  = errors.New("contract not found")
	ErrContractNotActive = errors.New("contract is not active")
	ErrInvalidRole       = errors.New("invalid contract role")
)

type ContractStore interface {
	Create(contract models.SmartContract)
	GetByID(contractID string) (*models.SmartContract, error)
	List(keep func(models.SmartContract) bool) []models.SmartContract
	Count() int
}

type TransactionStore interface {
	Create(transaction models.Transaction)
	ListByUser(userID string) []models.Transaction
	Count() int
}

type TrustScoreStore interface {
	Get(userID string) (*models.TrustScore, error)
	Put(score *models.TrustScore)
	Count() int
}

type TrustScoreHub interface {
	BroadcastTrustScore(update websocket.TrustScoreUpdate)
}

// ContractMatcher decides whether a contract belongs in a user's contract list.
type ContractMatcher func(contract models.SmartContract, userID string) bool

// MatchContractID keeps contracts whose identifier contains the user id. It
// does not check who the parties are.
func MatchContractID(contract models.SmartContract, userID string) bool {
	return strings.Contains(contract.ID, userID)
}

func MatchContractParty(contract models.SmartContract, userID string) bool {
	return contract.LenderID == userID || contract.BorrowerID == userID
}

// LedgerService owns the contract, transaction and trust score collections.
// One mutex covers all three. Trust score pushes are fanned out while it is
// held so subscribers see them in history order; events go out after release.
type LedgerService struct {
	mu              sync.Mutex
	contracts       ContractStore
	transactions    TransactionStore
	trustScores     TrustScoreStore
	publisher       events.Publisher
	hub             TrustScoreHub
	log             *logrus.Logger
	now             func() time.Time
	match           ContractMatcher
	draftActivation bool
}

type Option func(*LedgerService)

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithContractMatcher(match ContractMatcher) Option {
	return func(s *LedgerService) { s.match = match }
}

// WithDraftOnlyActivation restricts activation to draft contracts. Without it
// any contract whose two flags are set becomes active, including one that was
// already completed.
func WithDraftOnlyActivation() Option {
	return func(s *LedgerService) { s.draftActivation = true }
}

func NewLedgerService(contracts ContractStore, transactions TransactionStore, trustScores TrustScoreStore, publisher events.Publisher, hub TrustScoreHub, log *logrus.Logger, opts ...Option) *LedgerService {
	s := &LedgerService{
		contracts:    contracts,
		transactions: transactions,
		trustScores:  trustScores,
		publisher:    publisher,
		hub:          hub,
		log:          log,
		now:          time.Now,
		match:        MatchContractID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

type CreateContractRequest struct {
	LenderID   string
	BorrowerID string
	ItemID     string
	Type       models.ContractType
	Terms      models.ContractTerms
}

// CreateSmartContract stores a new draft contract with neither party signed.
func (s *LedgerService) CreateSmartContract(ctx context.Context, req CreateContractRequest) models.SmartContract {
	s.mu.Lock()
	contract := models.SmartContract{
		ID:              uuid.NewString(),
		ContractAddress: newContractAddress(),
		Type:            req.Type,
		LenderID:        req.LenderID,
		BorrowerID:      req.BorrowerID,
		ItemID:          req.ItemID,
		Terms:           req.Terms,
		Status:          models.ContractDraft,
		CreatedAt:       s.nowMillis(),
	}
	if contract.Terms.Conditions == nil {
		contract.Terms.Conditions = []string{}
	}
	s.contracts.Create(contract)
	s.recordCountsLocked()
	s.mu.Unlock()

	metrics.RecordContractTransition(string(models.ContractDraft))
	s.log.WithField("contract_id", contract.ID).
		WithField("lender_id", req.LenderID).
		WithField("borrower_id", req.BorrowerID).
		Info("contract created")
	return contract.Clone()
}

// Sign sets the role's signature flag. Once both flags are set the contract
// becomes active; with WithDraftOnlyActivation only a draft one does.
func (s *LedgerService) Sign(ctx context.Context, contractID, userID string, role models.Role) (models.SmartContract, error) {
	if role != models.RoleLender && role != models.RoleBorrower {
		return models.SmartContract{}, ErrInvalidRole
	}
	s.mu.Lock()
	contract, err := s.contracts.GetByID(contractID)
	if err != nil {
		s.mu.Unlock()
		return models.SmartContract{}, notFound(err)
	}
	if role == models.RoleLender {
		contract.Signatures.Lender = true
	} else {
		contract.Signatures.Borrower = true
	}
	activated := false
	if contract.Signatures.Lender && contract.Signatures.Borrower && s.canActivate(contract.Status) {
		contract.Status = models.ContractActive
		activated = true
	}
	signed := contract.Clone()
	at := s.nowMillis()
	s.mu.Unlock()

	s.log.WithField("contract_id", contractID).
		WithField("user_id", userID).
		WithField("role", role).
		Info("contract signed")
	if activated {
		metrics.RecordContractTransition(string(models.ContractActive))
		s.publish(ctx, events.TopicContractActivated, signed.ID, contractEvent(signed, at))
	}
	return signed, nil
}

func (s *LedgerService) canActivate(status models.ContractStatus) bool {
	if status == models.ContractActive {
		return false
	}
	return !s.draftActivation || status == models.ContractDraft
}

// SignContract reports whether the signature was recorded.
func (s *LedgerService) SignContract(ctx context.Context, contractID, userID string, role models.Role) bool {
	_, err := s.Sign(ctx, contractID, userID, role)
	return err == nil
}

// Complete moves an active contract to completed.
func (s *LedgerService) Complete(ctx context.Context, contractID string) (models.SmartContract, error) {
	s.mu.Lock()
	contract, err := s.contracts.GetByID(contractID)
	if err != nil {
		s.mu.Unlock()
		return models.SmartContract{}, notFound(err)
	}
	if contract.Status != models.ContractActive {
		s.mu.Unlock()
		return models.SmartContract{}, ErrContractNotActive
	}
	contract.Status = models.ContractCompleted
	completed := contract.Clone()
	at := s.nowMillis()
	s.mu.Unlock()

	metrics.RecordContractTransition(string(models.ContractCompleted))
	s.log.WithField("contract_id", contractID).Info("rental completed")
	s.publish(ctx, events.TopicContractCompleted, completed.ID, contractEvent(completed, at))
	return completed, nil
}

// CompleteRental reports whether the contract was active and is now completed.
func (s *LedgerService) CompleteRental(ctx context.Context, contractID string) bool {
	_, err := s.Complete(ctx, contractID)
	return err == nil
}

func (s *LedgerService) GetContract(ctx context.Context, contractID string) (models.SmartContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, err := s.contracts.GetByID(contractID)
	if err != nil {
		return models.SmartContract{}, notFound(err)
	}
	return contract.Clone(), nil
}

// GetUserContracts returns the active contracts the configured matcher
// associates with userID.
func (s *LedgerService) GetUserContracts(ctx context.Context, userID string) []models.SmartContract {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contracts.List(func(contract models.SmartContract) bool {
		return contract.Status == models.ContractActive && s.match(contract, userID)
	})
}

type ExecuteTransactionRequest struct {
	FromUserID      string
	ToUserID        string
	Type            models.TransactionType
	Amount          decimal.Decimal
	ItemID          *string
	ContractAddress *string
}

// ExecuteTransaction records a completed transaction and applies the trust
// score rules to both participants.
func (s *LedgerService) ExecuteTransaction(ctx context.Context, req ExecuteTransactionRequest) models.Transaction {
	s.mu.Lock()
	tx := models.Transaction{
		ID:              uuid.NewString(),
		Timestamp:       s.nowMillis(),
		Type:            req.Type,
		FromUserID:      req.FromUserID,
		ToUserID:        req.ToUserID,
		ItemID:          req.ItemID,
		Amount:          req.Amount,
		Status:          models.TransactionCompleted,
		ContractAddress: req.ContractAddress,
	}
	s.transactions.Create(tx)
	var updates []websocket.TrustScoreUpdate
	for _, userID := range []string{req.FromUserID, req.ToUserID} {
		if update, ok := s.applyTransactionLocked(userID, req.Type); ok {
			updates = append(updates, update)
		}
	}
	s.recordCountsLocked()
	s.notifyLocked(updates)
	s.mu.Unlock()

	metrics.RecordTransaction(string(tx.Type))
	s.log.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"type":           tx.Type,
		"from_user_id":   tx.FromUserID,
		"to_user_id":     tx.ToUserID,
		"amount":         money.Format(tx.Amount),
	}).Info("transaction executed")
	s.publish(ctx, events.TopicTransactionCompleted, tx.ID, events.TransactionCompleted{
		TransactionID: tx.ID,
		Type:          string(tx.Type),
		FromUserID:    tx.FromUserID,
		ToUserID:      tx.ToUserID,
		ItemID:        tx.ItemID,
		Amount:        money.Format(tx.Amount),
		OccurredAt:    tx.Timestamp,
	})
	return tx
}

// GetUserTransactions returns the user's transactions, most recent first.
func (s *LedgerService) GetUserTransactions(ctx context.Context, userID string) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions.ListByUser(userID)
}

func (s *LedgerService) publish(ctx context.Context, topic, key string, event any) {
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		s.log.WithError(err).WithField("topic", topic).WithField("key", key).Warn("event publish failed")
	}
}

// notifyLocked requires s.mu; the hub never blocks on a slow client.
func (s *LedgerService) notifyLocked(updates []websocket.TrustScoreUpdate) {
	if s.hub == nil {
		return
	}
	for _, update := range updates {
		s.hub.BroadcastTrustScore(update)
	}
}

func (s *LedgerService) recordCountsLocked() {
	metrics.SetStoredRecords(metrics.CollectionContracts, s.contracts.Count())
	metrics.SetStoredRecords(metrics.CollectionTransactions, s.transactions.Count())
	metrics.SetStoredRecords(metrics.CollectionTrustScores, s.trustScores.Count())
}

func (s *LedgerService) nowMillis() int64 {
	return s.now().UnixMilli()
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrContractNotFound
	}
	return err
}

func contractEvent(contract models.SmartContract, at int64) events.ContractStatusChanged {
	return events.ContractStatusChanged{
		ContractID:      contract.ID,
		ContractAddress: contract.ContractAddress,
		LenderID:        contract.LenderID,
		BorrowerID:      contract.BorrowerID,
		Status:          string(contract.Status),
		OccurredAt:      at,
	}
}

// newContractAddress renders 20 random bytes as a 0x-prefixed hex string. The
// value is decorative and never resolved.
func newContractAddress() string {
	first, second := uuid.New(), uuid.New()
	raw := append(first[:], second[:4]...)
	return "0x" + hex.EncodeToString(raw)
}
