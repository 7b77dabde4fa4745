package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayMode string

const (
	PayCash   PayMode = "cash"
	PayUPI    PayMode = "upi"
	PayCard   PayMode = "card"
	PayBank   PayMode = "bank"
	PayCheque PayMode = "cheque"
)

var PayModes = []PayMode{PayCash, PayUPI, PayCard, PayBank, PayCheque}

func (m PayMode) Valid() bool {
	for _, known := range PayModes {
		if m == known {
			return true
		}
	}
	return false
}

type ExpenseType struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Expense struct {
	ID        uint            `json:"id"`
	Date      time.Time       `json:"date"`
	TypeID    uint            `json:"type_id"`
	TypeName  string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	PaidTo    string          `json:"paid_to"`
	PayMode   PayMode         `json:"pay_mode"`
	Remarks   string          `json:"remarks"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ExpenseFilter struct {
	From    time.Time
	To      time.Time
	TypeID  uint
	PayMode PayMode
}

type ExpenseTotal struct {
	Key    string          `json:"key"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type ExpenseSummary struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	ByType    []ExpenseTotal  `json:"by_type"`
	ByPayMode []ExpenseTotal  `json:"by_pay_mode"`
	Total     decimal.Decimal `json:"total"`
}
