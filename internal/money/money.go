package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
	ErrNegativeAmount  = errors.New("amount must not be negative")
)

const maxDecimals = 2

// ParseAmount accepts a signed amount with at most two fractional digits.
// Negative values are outflows and are allowed.
func ParseAmount(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return CheckAmount(value)
}

func CheckAmount(value decimal.Decimal) (decimal.Decimal, error) {
	if value.Exponent() < -maxDecimals && !value.Equal(value.Round(maxDecimals)) {
		return decimal.Zero, ErrTooManyDecimals
	}
	return value.Round(maxDecimals), nil
}

// CheckNonNegative validates prices and deposits, which have no sign.
func CheckNonNegative(value decimal.Decimal) (decimal.Decimal, error) {
	checked, err := CheckAmount(value)
	if err != nil {
		return decimal.Zero, err
	}
	if checked.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return checked, nil
}

func Format(value decimal.Decimal) string {
	return value.StringFixed(maxDecimals)
}
