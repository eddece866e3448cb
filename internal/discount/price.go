package discount

import (
	"regexp"
	"strings"

	"DealFinder/utils"
)

// DefaultMaxPrice rejects amounts that are almost certainly parse garbage.
const DefaultMaxPrice = 100000

var defaultParser = NewPriceParser(nil, 0)

// PriceParser extracts currency amounts from text.
type PriceParser struct {
	MaxPrice float64

	amountRe  *regexp.Regexp
	mentionRe *regexp.Regexp
}

// NewPriceParser builds a parser for the given currency symbols. An empty
// list defaults to the euro sign; maxPrice <= 0 defaults to DefaultMaxPrice.
func NewPriceParser(currencies []string, maxPrice float64) *PriceParser {
	if len(currencies) == 0 {
		currencies = []string{"€"}
	}
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}

	quoted := make([]string, 0, len(currencies))
	for _, c := range utils.UniqueStrings(currencies) {
		if c = strings.TrimSpace(c); c != "" {
			quoted = append(quoted, regexp.QuoteMeta(c))
		}
	}
	if len(quoted) == 0 {
		quoted = append(quoted, "€")
	}
	symbols := strings.Join(quoted, "|")

	return &PriceParser{
		MaxPrice: maxPrice,
		// Grouped thousands are tried before the plain 1-6 digit form so
		// "€ 1.299,99" is read whole instead of as "€ 1.29". The trailing
		// group catches a digit right after the fraction, as in "€ 1.299,-".
		amountRe:  regexp.MustCompile(`(` + symbols + `)[\s\x{00A0}]*((?:\d{1,3}(?:[.,]\d{3})+|\d{1,6})[.,]\d{2})(\d?)`),
		mentionRe: regexp.MustCompile(`(?:` + symbols + `)[\s\x{00A0}]*\d`),
	}
}

// Extract returns every valid price token in text, in order of appearance.
// Amounts that fail to parse, run on into more digits or fall outside
// (0, MaxPrice) are skipped.
func (p *PriceParser) Extract(text string) []PriceToken {
	var tokens []PriceToken
	for _, m := range p.amountRe.FindAllStringSubmatch(text, -1) {
		if m[3] != "" {
			continue
		}
		value, ok := utils.ParseAmount(m[2])
		if !ok || value <= 0 || value >= p.MaxPrice {
			continue
		}
		tokens = append(tokens, PriceToken{
			Currency: m[1],
			Value:    value,
			Raw:      strings.Join(strings.Fields(m[0]), " "),
		})
	}
	return tokens
}

// Mentions reports whether text contains anything that looks like a price,
// including whole amounts without a fraction.
func (p *PriceParser) Mentions(text string) bool {
	return p.mentionRe.MatchString(text)
}
