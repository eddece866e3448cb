package discount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(p *PriceToken) float64 {
	if p == nil {
		return 0
	}
	return p.Value
}

func TestRoleAssignerAssign(t *testing.T) {
	testCases := []struct {
		name         string
		order        RoleOrder
		candidate    Candidate
		wantOriginal float64
		wantSale     float64
	}{
		{
			name:  "class markers",
			order: SaleFirst,
			candidate: Candidate{
				Text: "€ 170,99 € 119,99",
				Elements: []Element{
					{Class: "price-box", Text: "€ 170,99 € 119,99"},
					{Class: "price old-price", Text: "€ 170,99"},
					{Class: "price final-price", Text: "€ 119,99"},
				},
			},
			wantOriginal: 170.99,
			wantSale:     119.99,
		},
		{
			name: "strikethrough marks the original",
			candidate: Candidate{
				Text: "€ 119,99 € 170,99",
				Elements: []Element{
					{Tag: "span", Text: "€ 119,99"},
					{Tag: "del", Text: "€ 170,99", Strikethrough: true},
				},
			},
			wantOriginal: 170.99,
			wantSale:     119.99,
		},
		{
			name: "one marker, the other token fills the gap",
			candidate: Candidate{
				Text: "€ 80,00 € 100,00",
				Elements: []Element{
					{Class: "was", Text: "€ 100,00"},
				},
			},
			wantOriginal: 100,
			wantSale:     80,
		},
		{
			name: "sale marker only",
			candidate: Candidate{
				Text: "€ 80,00 € 100,00",
				Elements: []Element{
					{Class: "price--now", Text: "€ 80,00"},
				},
			},
			wantOriginal: 100,
			wantSale:     80,
		},
		{
			name:         "unlabeled pair, sale first",
			order:        SaleFirst,
			candidate:    Candidate{Text: "€ 50,00 € 40,00"},
			wantOriginal: 40,
			wantSale:     50,
		},
		{
			name:         "unlabeled pair, original first",
			order:        OriginalFirst,
			candidate:    Candidate{Text: "€ 50,00 € 40,00"},
			wantOriginal: 50,
			wantSale:     40,
		},
		{
			name:         "unlabeled pair, by magnitude",
			order:        ByMagnitude,
			candidate:    Candidate{Text: "€ 40,00 € 50,00"},
			wantOriginal: 50,
			wantSale:     40,
		},
		{
			name:         "single price is the regular price",
			candidate:    Candidate{Text: "€ 89,99"},
			wantOriginal: 89.99,
		},
		{
			name:      "three unlabeled prices stay unresolved",
			candidate: Candidate{Text: "€ 1,00 € 2,00 € 3,00"},
		},
		{
			name: "no prices",
			candidate: Candidate{
				Text:     "out of stock",
				Elements: []Element{{Class: "old-price", Text: "n/a"}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := RoleAssigner{Prices: NewPriceParser(nil, 0), Order: tc.order}
			original, sale := r.Assign(tc.candidate)
			assert.Equal(t, tc.wantOriginal, value(original), "original")
			assert.Equal(t, tc.wantSale, value(sale), "sale")
		})
	}
}

func TestParseRoleOrder(t *testing.T) {
	for _, o := range []RoleOrder{SaleFirst, OriginalFirst, ByMagnitude} {
		parsed, err := ParseRoleOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, parsed)
	}

	parsed, err := ParseRoleOrder("")
	require.NoError(t, err)
	assert.Equal(t, SaleFirst, parsed)

	_, err = ParseRoleOrder("cheapest_first")
	assert.Error(t, err)
}
