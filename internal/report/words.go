package report

import (
	"strings"

	"github.com/divan/num2words"
	"github.com/shopspring/decimal"
)

// AmountInWords spells a rupee amount for printed receipts, e.g.
// "Rupees two hundred fifty and fifty paise only".
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString("Rupees ")
	b.WriteString(num2words.Convert(int(rupees)))
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(num2words.Convert(int(paise)))
		b.WriteString(" paise")
	}
	b.WriteString(" only")

	return b.String()
}
