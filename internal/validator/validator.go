package validator

import (
	"errors"
	"regexp"
	"strings"

	"peerlend/internal/models"
)

var (
	ErrInvalidUserID          = errors.New("invalid user id")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidContractType    = errors.New("invalid contract type")
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidTerms           = errors.New("invalid contract terms")
)

var userIDRegex = regexp.MustCompile(`^[A-Za-z0-9_.@:\-]{1,128}$`)

func ValidateUserID(userID string) error {
	if !userIDRegex.MatchString(userID) {
		return ErrInvalidUserID
	}
	return nil
}

func ParseTransactionType(raw string) (models.TransactionType, error) {
	switch txType := models.TransactionType(strings.ToLower(strings.TrimSpace(raw))); txType {
	case models.TransactionBorrow, models.TransactionLend, models.TransactionReturn,
		models.TransactionDeposit, models.TransactionWithdrawal:
		return txType, nil
	default:
		return "", ErrInvalidTransactionType
	}
}

func ParseContractType(raw string) (models.ContractType, error) {
	switch contractType := models.ContractType(strings.ToLower(strings.TrimSpace(raw))); contractType {
	case models.ContractRental, models.ContractBarter:
		return contractType, nil
	default:
		return "", ErrInvalidContractType
	}
}

func ParseRole(raw string) (models.Role, error) {
	switch role := models.Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case models.RoleLender, models.RoleBorrower:
		return role, nil
	default:
		return "", ErrInvalidRole
	}
}

// ValidateTerms only rejects a rental window that ends before it starts; every
// other field is free-form.
func ValidateTerms(terms models.ContractTerms) error {
	if terms.StartDate < 0 || terms.EndDate < 0 {
		return ErrInvalidTerms
	}
	if terms.EndDate != 0 && terms.EndDate < terms.StartDate {
		return ErrInvalidTerms
	}
	return nil
}
