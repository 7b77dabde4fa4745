package request

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

var (
	phoneExp    = regexp.MustCompile(`^\d{10}$`)
	phoneStrip  = strings.NewReplacer(" ", "", "-", "")
	errBadPhone = errors.New("must be 10 digits, optionally prefixed with +91")
)

// NormalizePhone strips spaces, dashes and a leading +91.
func NormalizePhone(phone string) string {
	phone = phoneStrip.Replace(strings.TrimSpace(phone))
	if len(phone) == 13 && strings.HasPrefix(phone, "+91") {
		phone = phone[3:]
	}

	return phone
}

var phoneRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !phoneExp.MatchString(NormalizePhone(s)) {
		return errBadPhone
	}
	return nil
})

// decimalBetween checks min <= value <= max. A nil pointer passes.
func decimalBetween(min, max decimal.Decimal) validation.Rule {
	return validation.By(func(value interface{}) error {
		var d decimal.Decimal
		switch v := value.(type) {
		case decimal.Decimal:
			d = v
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			d = *v
		default:
			return fmt.Errorf("unexpected type %T", value)
		}

		if d.LessThan(min) || d.GreaterThan(max) {
			return fmt.Errorf("must be between %s and %s", min, max)
		}
		return nil
	})
}

// decimalPositive checks value > 0.
var decimalPositive = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return fmt.Errorf("unexpected type %T", value)
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	return nil
})

// Upper bounds are the largest values the NUMERIC(10,3) weight and
// NUMERIC(12,2) amount columns hold.
var (
	maxWeight = decimal.RequireFromString("9999999.999")
	maxAmount = decimal.RequireFromString("9999999999.99")

	percentRule = decimalBetween(decimal.Zero, decimal.NewFromInt(100))
	weightRule  = decimalBetween(decimal.Zero, maxWeight)
	amountRule  = decimalBetween(decimal.Zero, maxAmount)
)
