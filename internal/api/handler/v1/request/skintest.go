package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

// SkinTestRequest carries the analyser readings. TokenNo is ignored on
// update, where it comes from the path.
type SkinTestRequest struct {
	TokenNo   string          `json:"token_no"`
	Gold      decimal.Decimal `json:"gold"`
	Silver    decimal.Decimal `json:"silver"`
	Copper    decimal.Decimal `json:"copper"`
	Zinc      decimal.Decimal `json:"zinc"`
	Cadmium   decimal.Decimal `json:"cadmium"`
	Nickel    decimal.Decimal `json:"nickel"`
	Iridium   decimal.Decimal `json:"iridium"`
	Ruthenium decimal.Decimal `json:"ruthenium"`
	Osmium    decimal.Decimal `json:"osmium"`
	Rhodium   decimal.Decimal `json:"rhodium"`
	Lead      decimal.Decimal `json:"lead"`
	Tungsten  decimal.Decimal `json:"tungsten"`
	Platinum  decimal.Decimal `json:"platinum"`
	Palladium decimal.Decimal `json:"palladium"`
	Others    decimal.Decimal `json:"others"`
	Remarks   string          `json:"remarks"`
}

func (req *SkinTestRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Gold, percentRule),
		validation.Field(&req.Silver, percentRule),
		validation.Field(&req.Copper, percentRule),
		validation.Field(&req.Zinc, percentRule),
		validation.Field(&req.Cadmium, percentRule),
		validation.Field(&req.Nickel, percentRule),
		validation.Field(&req.Iridium, percentRule),
		validation.Field(&req.Ruthenium, percentRule),
		validation.Field(&req.Osmium, percentRule),
		validation.Field(&req.Rhodium, percentRule),
		validation.Field(&req.Lead, percentRule),
		validation.Field(&req.Tungsten, percentRule),
		validation.Field(&req.Platinum, percentRule),
		validation.Field(&req.Palladium, percentRule),
		validation.Field(&req.Others, percentRule),
		validation.Field(&req.Remarks, validation.Length(0, 200)),
	)
}

func (req *SkinTestRequest) ValidateCreate() error {
	if err := validation.ValidateStruct(req, validation.Field(&req.TokenNo, validation.Required)); err != nil {
		return err
	}

	return req.Validate()
}
