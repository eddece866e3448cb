// Package discount infers whether a product card is on sale, by how much,
// and which of its prices is the original and which the sale price.
//
// Inference runs on a plain snapshot of the card (see Candidate) so it never
// touches a live browser and always returns the same answer for the same
// input.
package discount

import "fmt"

// Element is one descendant element of a product card, in document order.
type Element struct {
	Tag   string
	Class string
	Text  string
	// Strikethrough is true when the element, or one of its ancestors inside
	// the card, renders with a line-through decoration.
	Strikethrough bool
}

// Candidate is the snapshot of a single product listing.
type Candidate struct {
	Text     string
	Elements []Element
}

// PriceToken is a monetary amount found in card text.
type PriceToken struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
	Raw      string  `json:"raw"`
}

func (p PriceToken) String() string {
	if p.Raw != "" {
		return p.Raw
	}
	return fmt.Sprintf("%s%.2f", p.Currency, p.Value)
}

// Assessment is the result of inference. A zero Percentage means no discount
// signal was found.
type Assessment struct {
	Percentage    float64     `json:"percentage"`
	OriginalPrice *PriceToken `json:"originalPrice,omitempty"`
	SalePrice     *PriceToken `json:"salePrice,omitempty"`
	Method        string      `json:"method,omitempty"`
}

// OnSale reports whether a discount was detected.
func (a Assessment) OnSale() bool {
	return a.Percentage > 0
}

// Bounds is the band of percentages treated as real discounts. Anything
// outside it is noise from the page.
type Bounds struct {
	MinPercent float64
	MaxPercent float64
}

// DefaultBounds accepts discounts between 5% and 90% inclusive.
var DefaultBounds = Bounds{MinPercent: 5, MaxPercent: 90}

// Accept reports whether p lies inside the band.
func (b Bounds) Accept(p float64) bool {
	return p >= b.MinPercent && p <= b.MaxPercent
}

func (b Bounds) orDefault() Bounds {
	if b == (Bounds{}) {
		return DefaultBounds
	}
	return b
}
