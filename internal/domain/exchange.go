package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrWeightBelowDeduction = errors.New("weight must be greater than the exchange deduction")

// ExchangeWeight is the pure gold weight given in exchange:
// (weight - deduction) * exGold / 100, rounded to 3 places.
func ExchangeWeight(weight, exGold, deduction decimal.Decimal) (decimal.Decimal, error) {
	if !weight.GreaterThan(deduction) {
		return decimal.Zero, ErrWeightBelowDeduction
	}
	if exGold.IsNegative() || exGold.GreaterThan(hundred) {
		return decimal.Zero, ErrPercentageRange
	}

	return weight.Sub(deduction).Mul(exGold).Div(hundred).Round(3), nil
}

type PureExchange struct {
	TokenNo   string          `json:"token_no"`
	Weight    decimal.Decimal `json:"weight"`
	ExGold    decimal.Decimal `json:"ex_gold"`
	ExWeight  decimal.Decimal `json:"ex_weight"`
	Remarks   string          `json:"remarks"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Code string `json:"code"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// Compute rounds the inputs and fills ExWeight.
func (p *PureExchange) Compute(deduction decimal.Decimal) error {
	p.Weight = p.Weight.Round(3)
	p.ExGold = p.ExGold.Round(2)

	exWeight, err := ExchangeWeight(p.Weight, p.ExGold, deduction)
	if err != nil {
		return err
	}
	p.ExWeight = exWeight

	return nil
}

type ExchangeFilter struct {
	From time.Time
	To   time.Time
	Page Page
}
