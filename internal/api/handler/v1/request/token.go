package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"

	"github.com/goldlab/assay-api/internal/domain"
)

var (
	dateExp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeExp = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

// TokenRequest is the body of token create and update. Date and Time are
// optional on create and default to now.
type TokenRequest struct {
	Code   string          `json:"code"`
	Test   string          `json:"test"`
	Weight decimal.Decimal `json:"weight"`
	Sample string          `json:"sample"`
	Amount decimal.Decimal `json:"amount"`
	IsPaid bool            `json:"is_paid"`
	Date   string          `json:"date"`
	Time   string          `json:"time"`
}

func (req *TokenRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(1, 20), is.Alphanumeric),
		validation.Field(&req.Test, validation.Required, validation.In(string(domain.TestSkin), string(domain.TestPhoto))),
		validation.Field(&req.Weight, weightRule),
		validation.Field(&req.Sample, validation.Length(0, 100)),
		validation.Field(&req.Amount, amountRule),
		validation.Field(&req.Date, validation.Match(dateExp)),
		validation.Field(&req.Time, validation.Match(timeExp)),
	)
}

type SetPaidRequest struct {
	IsPaid *bool `json:"is_paid"`
}

func (req *SetPaidRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.IsPaid, validation.NotNil),
	)
}
