package handlers

import (
	"encoding/json"
	"errors"

	"peerlend/internal/models"
	"peerlend/internal/money"
	"peerlend/internal/validator"

	"github.com/shopspring/decimal"
)

var errInvalidTerms = errors.New("invalid terms")

type contractTermsPayload struct {
	StartDate   int64        `json:"startDate"`
	EndDate     int64        `json:"endDate"`
	Price       *json.Number `json:"price"`
	Deposit     *json.Number `json:"deposit"`
	BarterItems []string     `json:"barterItems"`
	Conditions  []string     `json:"conditions"`
}

func parseAmount(raw json.Number) (decimal.Decimal, error) {
	return money.ParseAmount(raw.String())
}

func parseOptionalPrice(raw *json.Number) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw.String())
	if err != nil {
		return nil, money.ErrInvalidAmount
	}
	value, err = money.CheckNonNegative(value)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parseTerms(payload contractTermsPayload) (models.ContractTerms, error) {
	price, err := parseOptionalPrice(payload.Price)
	if err != nil {
		return models.ContractTerms{}, errInvalidTerms
	}
	deposit, err := parseOptionalPrice(payload.Deposit)
	if err != nil {
		return models.ContractTerms{}, errInvalidTerms
	}
	terms := models.ContractTerms{
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		Price:       price,
		Deposit:     deposit,
		BarterItems: payload.BarterItems,
		Conditions:  payload.Conditions,
	}
	if err := validator.ValidateTerms(terms); err != nil {
		return models.ContractTerms{}, errInvalidTerms
	}
	return terms, nil
}
