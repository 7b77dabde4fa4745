package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateEntryRequest struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Place string `json:"place"`
}

func (req *CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(1, 20), is.Alphanumeric),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Phone, validation.Required, phoneRule),
		validation.Field(&req.Place, validation.Length(0, 100)),
	)
}

type UpdateEntryRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Place string `json:"place"`
}

func (req *UpdateEntryRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Phone, validation.Required, phoneRule),
		validation.Field(&req.Place, validation.Length(0, 100)),
	)
}
