package discount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferPricePair(t *testing.T) {
	inf := DefaultInferrer()

	a := inf.Infer(Candidate{Text: "Drill set € 119,99 € 170,99 10% korting"})

	require.True(t, a.OnSale())
	assert.Equal(t, MethodPricePair, a.Method)
	assert.InDelta(t, 29.8263, a.Percentage, 0.001)
	require.NotNil(t, a.OriginalPrice)
	require.NotNil(t, a.SalePrice)
	assert.Equal(t, 170.99, a.OriginalPrice.Value)
	assert.Equal(t, 119.99, a.SalePrice.Value)
}

func TestInferCascade(t *testing.T) {
	testCases := []struct {
		name      string
		candidate Candidate
		want      float64
		method    string
	}{
		{
			name:      "exact ratio of two prices",
			candidate: Candidate{Text: "€ 100,00 € 60,00"},
			want:      40,
			method:    MethodPricePair,
		},
		{
			name:      "more than two prices uses the two highest",
			candidate: Candidate{Text: "€ 5,00 shipping € 80,00 € 100,00"},
			want:      20,
			method:    MethodPricePair,
		},
		{
			name: "ratio below band falls through to badge",
			candidate: Candidate{
				Text:     "€ 100,00 € 98,00 50% OFF",
				Elements: []Element{{Tag: "span", Class: "discount-badge", Text: "50% OFF"}},
			},
			want:   50,
			method: MethodBadge,
		},
		{
			name:      "ratio above band falls through to text",
			candidate: Candidate{Text: "€ 100,00 € 1,00 save 30%"},
			want:      30,
			method:    MethodText,
		},
		{
			name: "badge without price pair",
			candidate: Candidate{
				Text:     "Tent 50% OFF € 49,99",
				Elements: []Element{{Tag: "div", Class: "Sale-Label", Text: "50% OFF"}},
			},
			want:   50,
			method: MethodBadge,
		},
		{
			name: "badge outside band is noise",
			candidate: Candidate{
				Text:     "Tent 97% OFF",
				Elements: []Element{{Tag: "div", Class: "badge", Text: "97% OFF"}},
			},
			want: 0,
		},
		{
			name: "badge outside band with a valid price pair",
			candidate: Candidate{
				Text:     "97% OFF € 200,00 € 150,00",
				Elements: []Element{{Tag: "div", Class: "badge", Text: "97% OFF"}},
			},
			want:   25,
			method: MethodPricePair,
		},
		{
			name: "first in-band badge percentage wins",
			candidate: Candidate{
				Text: "2% 35% korting",
				Elements: []Element{
					{Tag: "span", Class: "label", Text: "2%"},
					{Tag: "span", Class: "discount", Text: "-35% korting"},
				},
			},
			want:   35,
			method: MethodBadge,
		},
		{
			name:      "bare text needs a keyword",
			candidate: Candidate{Text: "100% cotton, 40% recycled"},
			want:      0,
		},
		{
			name:      "dutch keyword before the number",
			candidate: Candidate{Text: "Korting -20% op alles"},
			want:      20,
			method:    MethodText,
		},
		{
			name:      "no signal",
			candidate: Candidate{Text: "Workbench € 89,99"},
			want:      0,
		},
		{
			name:      "empty candidate",
			candidate: Candidate{},
			want:      0,
		},
	}

	inf := DefaultInferrer()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := inf.Infer(tc.candidate)
			assert.InDelta(t, tc.want, a.Percentage, 1e-9)
			assert.Equal(t, tc.method, a.Method)
			if a.Method != MethodPricePair {
				assert.Nil(t, a.OriginalPrice)
				assert.Nil(t, a.SalePrice)
			}
		})
	}
}

func TestInferDecimalCommaEqualsDecimalDot(t *testing.T) {
	inf := DefaultInferrer()

	comma := inf.Infer(Candidate{Text: "€ 1.299,99 € 999,99"})
	dot := inf.Infer(Candidate{Text: "€1299.99 €999.99"})

	require.NotNil(t, comma.OriginalPrice)
	require.NotNil(t, dot.OriginalPrice)
	assert.Equal(t, dot.OriginalPrice.Value, comma.OriginalPrice.Value)
	assert.Equal(t, dot.Percentage, comma.Percentage)
}

func TestInferIsIdempotent(t *testing.T) {
	inf := DefaultInferrer()
	c := Candidate{
		Text:     "€ 119,99 € 170,99 10% korting",
		Elements: []Element{{Class: "badge", Text: "10% korting"}},
	}

	first := inf.Infer(c)
	second := inf.Infer(c)

	assert.Equal(t, first, second)
}

func TestNewPolicy(t *testing.T) {
	c := Candidate{
		Text:     "€ 119,99 € 170,99 10% korting",
		Elements: []Element{{Class: "product-badge", Text: "10% korting"}},
	}

	t.Run("badge first", func(t *testing.T) {
		inf, err := NewPolicy(Options{Strategies: []string{"badge", "price_pair"}})
		require.NoError(t, err)

		a := inf.Infer(c)
		assert.Equal(t, 10.0, a.Percentage)
		assert.Equal(t, MethodBadge, a.Method)
		assert.Equal(t, []string{MethodBadge, MethodPricePair}, inf.Strategies())
	})

	t.Run("default order", func(t *testing.T) {
		inf, err := NewPolicy(Options{})
		require.NoError(t, err)
		assert.Equal(t, DefaultStrategyOrder, inf.Strategies())
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := NewPolicy(Options{Strategies: []string{"price_pair", "magic"}})
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("custom bounds", func(t *testing.T) {
		inf, err := NewPolicy(Options{Bounds: Bounds{MinPercent: 1, MaxPercent: 99}})
		require.NoError(t, err)

		a := inf.Infer(Candidate{Text: "€ 100,00 € 2,00"})
		assert.InDelta(t, 98.0, a.Percentage, 1e-9)
	})

	t.Run("permissive text", func(t *testing.T) {
		inf, err := NewPolicy(Options{Strategies: []string{"text"}, TextPermissive: true})
		require.NoError(t, err)

		a := inf.Infer(Candidate{Text: "now only 40%"})
		assert.Equal(t, 40.0, a.Percentage)
	})

	t.Run("badge requires keyword", func(t *testing.T) {
		inf, err := NewPolicy(Options{Strategies: []string{"badge"}, BadgeRequireKeyword: true})
		require.NoError(t, err)

		a := inf.Infer(Candidate{Elements: []Element{{Class: "label", Text: "30%"}}})
		assert.False(t, a.OnSale())

		a = inf.Infer(Candidate{Elements: []Element{{Class: "label", Text: "30% OFF"}}})
		assert.Equal(t, 30.0, a.Percentage)
	})
}

type fixedStrategy struct {
	name string
	pct  float64
}

func (s fixedStrategy) Name() string { return s.name }

func (s fixedStrategy) Detect(Candidate) (Assessment, bool) {
	if s.pct == 0 {
		return Assessment{}, false
	}
	return Assessment{Percentage: s.pct, Method: s.name}, true
}

func TestInferrerSubstitutesStrategies(t *testing.T) {
	inf := NewInferrer(fixedStrategy{name: "never"}, fixedStrategy{name: "always", pct: 42})

	a := inf.Infer(Candidate{})

	assert.Equal(t, 42.0, a.Percentage)
	assert.Equal(t, "always", a.Method)
}
