package discount

import (
	"fmt"
	"regexp"
	"strings"
)

// RoleOrder decides which of two unlabeled prices is the sale price.
type RoleOrder int

const (
	// SaleFirst treats the first price on the card as the sale price.
	SaleFirst RoleOrder = iota
	// OriginalFirst treats the first price on the card as the original price.
	OriginalFirst
	// ByMagnitude treats the higher price as the original price.
	ByMagnitude
)

func (o RoleOrder) String() string {
	switch o {
	case OriginalFirst:
		return "original_first"
	case ByMagnitude:
		return "by_magnitude"
	default:
		return "sale_first"
	}
}

// ParseRoleOrder reads a RoleOrder from its config name.
func ParseRoleOrder(s string) (RoleOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sale_first":
		return SaleFirst, nil
	case "original_first":
		return OriginalFirst, nil
	case "by_magnitude":
		return ByMagnitude, nil
	}
	return SaleFirst, fmt.Errorf("unknown price role order %q", s)
}

var (
	originalMarkerRe = regexp.MustCompile(`(?i)original|old|was|before`)
	saleMarkerRe     = regexp.MustCompile(`(?i)current|special|now|final`)
)

// RoleAssigner labels the prices of a card as original or sale.
type RoleAssigner struct {
	Prices *PriceParser
	Order  RoleOrder
}

// Assign returns the original and sale price of the card; either may be nil.
//
// Elements holding a single price are labeled from their class name or a
// strikethrough. Whatever the markers leave open is filled from the card
// text: the one remaining token when a single role is known, or Order when
// exactly two unlabeled prices exist. A lone unlabeled price is the regular,
// that is original, price.
func (r RoleAssigner) Assign(c Candidate) (original, sale *PriceToken) {
	prices := r.Prices
	if prices == nil {
		prices = defaultParser
	}

	for _, el := range c.Elements {
		tokens := prices.Extract(el.Text)
		if len(tokens) != 1 {
			continue
		}
		tok := tokens[0]
		switch {
		case original == nil && (el.Strikethrough || originalMarkerRe.MatchString(el.Class)):
			original = &tok
		case sale == nil && saleMarkerRe.MatchString(el.Class):
			sale = &tok
		}
		if original != nil && sale != nil {
			return original, sale
		}
	}

	all := prices.Extract(c.Text)
	switch {
	case original != nil && sale == nil:
		if rest := without(all, *original); len(rest) == 1 {
			sale = &rest[0]
		}
	case sale != nil && original == nil:
		if rest := without(all, *sale); len(rest) == 1 {
			original = &rest[0]
		}
	case original == nil && sale == nil:
		switch len(all) {
		case 1:
			original = &all[0]
		case 2:
			original, sale = r.orderPair(all[0], all[1])
		}
	}
	return original, sale
}

func (r RoleAssigner) orderPair(first, second PriceToken) (original, sale *PriceToken) {
	switch r.Order {
	case OriginalFirst:
		return &first, &second
	case ByMagnitude:
		if first.Value >= second.Value {
			return &first, &second
		}
		return &second, &first
	default:
		return &second, &first
	}
}

// without drops the first token equal in value to tok.
func without(tokens []PriceToken, tok PriceToken) []PriceToken {
	rest := make([]PriceToken, 0, len(tokens))
	dropped := false
	for _, t := range tokens {
		if !dropped && t.Value == tok.Value {
			dropped = true
			continue
		}
		rest = append(rest, t)
	}
	return rest
}
