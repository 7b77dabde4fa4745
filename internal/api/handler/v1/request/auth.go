package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/goldlab/assay-api/internal/domain"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
)

var (
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)

	errInvalidPassword = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (req *CreateUserRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.Length(3, 50), is.Alphanumeric),
		validation.Field(&req.Password, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Role, validation.Required, validation.In(domain.RoleAdmin, domain.RoleStaff)),
	)
	if err != nil {
		return err
	}

	ok, err := passwordExp.MatchString(req.Password)
	if err != nil || !ok {
		return errInvalidPassword
	}

	return nil
}
