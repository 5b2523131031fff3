package models

import "github.com/shopspring/decimal"

type TransactionType string

const (
	TransactionBorrow     TransactionType = "borrow"
	TransactionLend       TransactionType = "lend"
	TransactionReturn     TransactionType = "return"
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

type ContractType string

const (
	ContractRental ContractType = "rental"
	ContractBarter ContractType = "barter"
)

type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractDisputed  ContractStatus = "disputed"
	ContractCancelled ContractStatus = "cancelled"
)

// Role identifies which signature flag a party sets on a contract.
type Role string

const (
	RoleLender   Role = "lender"
	RoleBorrower Role = "borrower"
)

// Transaction amounts are signed; a negative amount is an outflow for FromUserID.
type Transaction struct {
	ID              string            `json:"id"`
	Timestamp       int64             `json:"timestamp"`
	Type            TransactionType   `json:"type"`
	FromUserID      string            `json:"fromUserId"`
	ToUserID        string            `json:"toUserId"`
	ItemID          *string           `json:"itemId,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	Status          TransactionStatus `json:"status"`
	ContractAddress *string           `json:"contractAddress,omitempty"`
}

type ContractTerms struct {
	StartDate   int64            `json:"startDate"`
	EndDate     int64            `json:"endDate"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Deposit     *decimal.Decimal `json:"deposit,omitempty"`
	BarterItems []string         `json:"barterItems,omitempty"`
	Conditions  []string         `json:"conditions"`
}

type Signatures struct {
	Lender   bool `json:"lender"`
	Borrower bool `json:"borrower"`
}

// SmartContract is an in-memory agreement record. ContractAddress is a display
// string only.
type SmartContract struct {
	ID              string         `json:"id"`
	ContractAddress string         `json:"contractAddress"`
	Type            ContractType   `json:"type"`
	LenderID        string         `json:"lenderId"`
	BorrowerID      string         `json:"borrowerId"`
	ItemID          string         `json:"itemId"`
	Terms           ContractTerms  `json:"terms"`
	Signatures      Signatures     `json:"signatures"`
	Status          ContractStatus `json:"status"`
	CreatedAt       int64          `json:"createdAt"`
}

type TrustFactors struct {
	SuccessfulTransactions int `json:"successfulTransactions"`
	OnTimeReturns          int `json:"onTimeReturns"`
	ItemCondition          int `json:"itemCondition"`
	UserReviews            int `json:"userReviews"`
	AccountVerification    int `json:"accountVerification"`
}

type TrustHistoryEntry struct {
	Timestamp int64  `json:"timestamp"`
	Score     int    `json:"score"`
	Reason    string `json:"reason"`
}

type TrustScore struct {
	UserID  string              `json:"userId"`
	Score   int                 `json:"score"`
	Factors TrustFactors        `json:"factors"`
	History []TrustHistoryEntry `json:"history"`
}

// Clone returns a copy that shares no slices with the receiver.
func (c SmartContract) Clone() SmartContract {
	out := c
	out.Terms.Price = cloneDecimal(c.Terms.Price)
	out.Terms.Deposit = cloneDecimal(c.Terms.Deposit)
	out.Terms.BarterItems = cloneStrings(c.Terms.BarterItems)
	out.Terms.Conditions = cloneStrings(c.Terms.Conditions)
	return out
}

func (t TrustScore) Clone() TrustScore {
	out := t
	if t.History != nil {
		out.History = make([]TrustHistoryEntry, len(t.History))
		copy(out.History, t.History)
	}
	return out
}

// cloneStrings keeps the nil/empty distinction so an empty list still
// encodes as [].
func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneDecimal(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
