package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/goldlab/assay-api/internal/domain"
)

type ExpenseTypeRequest struct {
	Name string `json:"name"`
}

func (req *ExpenseTypeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
	)
}

type ExpenseRequest struct {
	Date    string          `json:"date"`
	TypeID  uint            `json:"type_id"`
	Amount  decimal.Decimal `json:"amount"`
	PaidTo  string          `json:"paid_to"`
	PayMode string          `json:"pay_mode"`
	Remarks string          `json:"remarks"`
}

func payModes() []interface{} {
	modes := make([]interface{}, 0, len(domain.PayModes))
	for _, m := range domain.PayModes {
		modes = append(modes, string(m))
	}
	return modes
}

func (req *ExpenseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Date, validation.Required, validation.Match(dateExp)),
		validation.Field(&req.TypeID, validation.Required),
		validation.Field(&req.Amount, decimalPositive, amountRule),
		validation.Field(&req.PaidTo, validation.Length(0, 100)),
		validation.Field(&req.PayMode, validation.Required, validation.In(payModes()...)),
		validation.Field(&req.Remarks, validation.Length(0, 200)),
	)
}
