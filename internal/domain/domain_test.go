package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestKarat(t *testing.T) {
	tests := []struct {
		gold string
		want string
	}{
		{"100", "24"},
		{"91.6", "21.98"},
		{"75", "18"},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.gold, func(t *testing.T) {
			assert.True(t, dec(tt.want).Equal(Karat(dec(tt.gold))), Karat(dec(tt.gold)).String())
		})
	}
}

func TestComposition_Validate(t *testing.T) {
	ok := Composition{Gold: dec("91.6"), Silver: dec("5"), Copper: dec("3.4")}
	require.NoError(t, ok.Validate())

	over := Composition{Gold: dec("91.6"), Silver: dec("9")}
	assert.ErrorIs(t, over.Validate(), ErrCompositionOverflow)

	negative := Composition{Gold: dec("-1")}
	assert.ErrorIs(t, negative.Validate(), ErrPercentageRange)

	single := Composition{Zinc: dec("100.01")}
	assert.ErrorIs(t, single.Validate(), ErrPercentageRange)
}

func TestSkinTest_Compute(t *testing.T) {
	st := SkinTest{Composition: Composition{Gold: dec("91.666"), Silver: dec("8.333")}}
	st.Compute()

	assert.Equal(t, "91.67", st.Gold.StringFixed(2))
	assert.Equal(t, "8.33", st.Silver.StringFixed(2))
	assert.Equal(t, "22.00", st.Karat.StringFixed(2))
	assert.Len(t, st.Elements(), 15)
}

func TestExchangeWeight(t *testing.T) {
	got, err := ExchangeWeight(dec("10.000"), dec("91.60"), dec("0.010"))
	require.NoError(t, err)
	assert.Equal(t, "9.151", got.StringFixed(3))

	_, err = ExchangeWeight(dec("0.010"), dec("91.60"), dec("0.010"))
	assert.ErrorIs(t, err, ErrWeightBelowDeduction)

	_, err = ExchangeWeight(dec("5"), dec("101"), dec("0.010"))
	assert.ErrorIs(t, err, ErrPercentageRange)
}

func TestPureExchange_Compute(t *testing.T) {
	p := PureExchange{Weight: dec("5.12345"), ExGold: dec("75.555")}
	require.NoError(t, p.Compute(dec("0.010")))

	assert.Equal(t, "5.123", p.Weight.StringFixed(3))
	assert.Equal(t, "75.56", p.ExGold.StringFixed(2))
	// (5.123 - 0.010) * 75.56 / 100 = 3.86338...
	assert.Equal(t, "3.863", p.ExWeight.StringFixed(3))
}

func TestPeriod(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	from, err := ParseDay("2024-03-01", loc)
	require.NoError(t, err)
	to, err := ParseDay("2024-03-03", loc)
	require.NoError(t, err)

	p, err := NewPeriod(from, to)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, loc), p.To)
	assert.Equal(t, to, p.LastDay())

	_, err = NewPeriod(to, from)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = ParseDay("01/03/2024", loc)
	assert.Error(t, err)
}

func TestDayPeriod(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC is already the next day in India.
	p := DayPeriod(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, loc), p.From)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, loc), p.To)
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, Size: MaxPageSize}, NewPage(3, 10000))
	assert.Equal(t, 40, NewPage(3, 20).Offset())
}

func TestNewStatement(t *testing.T) {
	tokens := []Token{
		{TokenNo: "A0001", Weight: dec("10.5"), Amount: dec("50"), IsPaid: true},
		{TokenNo: "A0002", Weight: dec("2.25"), Amount: dec("30"), IsPaid: false},
	}

	st := NewStatement(Entry{Code: "C1"}, time.Time{}, time.Time{}, tokens)

	assert.Equal(t, 2, st.Count)
	assert.True(t, dec("12.75").Equal(st.TotalWeight))
	assert.True(t, dec("80").Equal(st.TotalAmount))
	assert.True(t, dec("50").Equal(st.Paid))
	assert.True(t, dec("30").Equal(st.Unpaid))
}

func TestToken_Localize(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tok := Token{IssuedAt: time.Date(2024, 3, 1, 20, 15, 0, 0, time.UTC)}
	tok.Localize(loc)

	assert.Equal(t, "2024-03-02", tok.Date)
	assert.Equal(t, "01:45:00", tok.Time)
}

func TestPayMode_Valid(t *testing.T) {
	assert.True(t, PayUPI.Valid())
	assert.False(t, PayMode("crypto").Valid())
}
