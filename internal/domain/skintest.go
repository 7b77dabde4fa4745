package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCompositionOverflow = errors.New("composition percentages add up to more than 100")
	ErrPercentageRange     = errors.New("percentages must be between 0 and 100")

	hundred = decimal.NewFromInt(100)
	karat24 = decimal.NewFromInt(24)
)

// Composition holds the element percentages read off the analyser.
type Composition struct {
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
}

type Element struct {
	Name  string
	Value decimal.Decimal
}

// Elements lists the composition in report order.
func (c Composition) Elements() []Element {
	return []Element{
		{"Gold", c.Gold},
		{"Silver", c.Silver},
		{"Copper", c.Copper},
		{"Zinc", c.Zinc},
		{"Cadmium", c.Cadmium},
		{"Nickel", c.Nickel},
		{"Iridium", c.Iridium},
		{"Ruthenium", c.Ruthenium},
		{"Osmium", c.Osmium},
		{"Rhodium", c.Rhodium},
		{"Lead", c.Lead},
		{"Tungsten", c.Tungsten},
		{"Platinum", c.Platinum},
		{"Palladium", c.Palladium},
		{"Others", c.Others},
	}
}

func (c Composition) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Elements() {
		total = total.Add(e.Value)
	}

	return total
}

// Rounded returns a copy with every percentage rounded to 2 places.
func (c Composition) Rounded() Composition {
	r := func(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

	return Composition{
		Gold: r(c.Gold), Silver: r(c.Silver), Copper: r(c.Copper), Zinc: r(c.Zinc),
		Cadmium: r(c.Cadmium), Nickel: r(c.Nickel), Iridium: r(c.Iridium),
		Ruthenium: r(c.Ruthenium), Osmium: r(c.Osmium), Rhodium: r(c.Rhodium),
		Lead: r(c.Lead), Tungsten: r(c.Tungsten), Platinum: r(c.Platinum),
		Palladium: r(c.Palladium), Others: r(c.Others),
	}
}

func (c Composition) Validate() error {
	for _, e := range c.Elements() {
		if e.Value.IsNegative() || e.Value.GreaterThan(hundred) {
			return ErrPercentageRange
		}
	}
	if c.Total().GreaterThan(hundred) {
		return ErrCompositionOverflow
	}

	return nil
}

// Karat converts a gold percentage to karats on the 24 scale.
func Karat(gold decimal.Decimal) decimal.Decimal {
	return gold.Mul(karat24).Div(hundred).Round(2)
}

type SkinTest struct {
	TokenNo string `json:"token_no"`
	Composition
	Karat     decimal.Decimal `json:"karat"`
	Remarks   string          `json:"remarks"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Read-only, joined from the token and its entry.
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Weight   decimal.Decimal `json:"weight"`
	Sample   string          `json:"sample"`
	IssuedAt time.Time       `json:"issued_at"`
	Date     string          `json:"date"`
}

// Compute rounds the composition and derives the karat.
func (s *SkinTest) Compute() {
	s.Composition = s.Composition.Rounded()
	s.Karat = Karat(s.Gold)
}

type SkinTestFilter struct {
	From time.Time
	To   time.Time
	Page Page
}
