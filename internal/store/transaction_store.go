package store

import (
	"sort"

	"peerlend/internal/models"
)

type TransactionStore struct {
	transactions []models.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

func (s *TransactionStore) Create(transaction models.Transaction) {
	s.transactions = append(s.transactions, transaction)
}

// ListByUser returns every transaction the user sent or received, newest first.
// Records sharing a timestamp come back in reverse insertion order.
func (s *TransactionStore) ListByUser(userID string) []models.Transaction {
	out := make([]models.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if tx.FromUserID == userID || tx.ToUserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

func (s *TransactionStore) Count() int {
	return len(s.transactions)
}
