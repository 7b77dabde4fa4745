package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

// ExchangeRequest leaves Weight and ExGold nil to take them from the token
// and its skin test.
type ExchangeRequest struct {
	TokenNo string           `json:"token_no"`
	Weight  *decimal.Decimal `json:"weight"`
	ExGold  *decimal.Decimal `json:"ex_gold"`
	Remarks string           `json:"remarks"`
}

func (req *ExchangeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Weight, weightRule),
		validation.Field(&req.ExGold, percentRule),
		validation.Field(&req.Remarks, validation.Length(0, 200)),
	)
}

func (req *ExchangeRequest) ValidateCreate() error {
	if err := validation.ValidateStruct(req, validation.Field(&req.TokenNo, validation.Required)); err != nil {
		return err
	}

	return req.Validate()
}
