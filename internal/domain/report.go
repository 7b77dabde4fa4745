package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statement lists a customer's tokens over a date range.
type Statement struct {
	Entry       Entry           `json:"entry"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Tokens      []Token         `json:"tokens"`
	Count       int             `json:"count"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Paid        decimal.Decimal `json:"paid"`
	Unpaid      decimal.Decimal `json:"unpaid"`
}

func NewStatement(entry Entry, from, to time.Time, tokens []Token) Statement {
	st := Statement{
		Entry:       entry,
		From:        from,
		To:          to,
		Tokens:      tokens,
		Count:       len(tokens),
		TotalWeight: decimal.Zero,
		TotalAmount: decimal.Zero,
		Paid:        decimal.Zero,
		Unpaid:      decimal.Zero,
	}
	for _, t := range tokens {
		st.TotalWeight = st.TotalWeight.Add(t.Weight)
		st.TotalAmount = st.TotalAmount.Add(t.Amount)
		if t.IsPaid {
			st.Paid = st.Paid.Add(t.Amount)
		} else {
			st.Unpaid = st.Unpaid.Add(t.Amount)
		}
	}

	return st
}

type DaySummary struct {
	Date           string           `json:"date"`
	Tokens         int64            `json:"tokens"`
	TokensByTest   map[TestType]int `json:"tokens_by_test"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Collected      decimal.Decimal  `json:"collected"`
	Outstanding    decimal.Decimal  `json:"outstanding"`
	SkinTests      int64            `json:"skin_tests"`
	Exchanges      int64            `json:"exchanges"`
	ExchangeWeight decimal.Decimal  `json:"exchange_weight"`
	Expenses       decimal.Decimal  `json:"expenses"`
	NetCash        decimal.Decimal  `json:"net_cash"`
}
