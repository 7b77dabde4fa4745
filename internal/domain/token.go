package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TestType string

const (
	TestSkin  TestType = "skin"
	TestPhoto TestType = "photo"
)

func (t TestType) Label() string {
	switch t {
	case TestSkin:
		return "Skin Testing"
	case TestPhoto:
		return "Photo Testing"
	default:
		return string(t)
	}
}

// Token is the queue ticket issued for one testing visit.
type Token struct {
	ID           uint            `json:"id"`
	TokenNo      string          `json:"token_no"`
	IssuedAt     time.Time       `json:"issued_at"`
	Date         string          `json:"date"`
	Time         string          `json:"time"`
	Code         string          `json:"code"`
	CustomerName string          `json:"name"`
	Test         TestType        `json:"test"`
	Weight       decimal.Decimal `json:"weight"`
	Sample       string          `json:"sample"`
	Amount       decimal.Decimal `json:"amount"`
	IsPaid       bool            `json:"is_paid"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Localize fills Date and Time from IssuedAt in the shop timezone.
func (t *Token) Localize(loc *time.Location) {
	local := t.IssuedAt.In(loc)
	t.Date = local.Format(DateLayout)
	t.Time = local.Format(TimeLayout)
}

type TokenFilter struct {
	From   time.Time
	To     time.Time
	Code   string
	IsPaid *bool
	Page   Page
}

// TokenStage is where a token stands in the shop workflow.
type TokenStage string

const (
	StagePending   TokenStage = "pending"
	StageTested    TokenStage = "tested"
	StageExchanged TokenStage = "exchanged"
)

type BoardItem struct {
	Token
	Stage TokenStage `json:"stage"`
}

type TokenEvent struct {
	Event string `json:"event"`
	Token Token  `json:"token"`
}

const (
	TokenCreated = "created"
	TokenUpdated = "updated"
	TokenPaid    = "paid"
	TokenDeleted = "deleted"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)
