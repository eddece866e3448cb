package discount

import (
	"regexp"
	"sort"
	"strings"

	"DealFinder/utils"
)

// Strategy names accepted by NewPolicy.
const (
	MethodPricePair = "price_pair"
	MethodBadge     = "badge"
	MethodText      = "text"
)

// Strategy is one detection method of the cascade.
type Strategy interface {
	Name() string
	// Detect returns ok=false when the method finds no usable signal.
	Detect(c Candidate) (Assessment, bool)
}

// DefaultBadgeMarkers are the class-name substrings that mark a discount badge.
var DefaultBadgeMarkers = []string{"discount", "sale", "badge", "label"}

const (
	percentNumber = `(\d+(?:[.,]\d+)?)\s*%`
	offKeywords   = `korting|save|off|sale|discount|clearance`
)

var (
	percentRe = regexp.MustCompile(percentNumber)
	// Either "<keyword> 30%" or "30% <keyword>", in English or Dutch.
	keywordPercentRe = regexp.MustCompile(`(?i)(?:` + offKeywords + `)\s*-?\s*` + percentNumber + `|` + percentNumber + `\s*(?:` + offKeywords + `)`)
)

// PricePair computes the discount from the two highest prices on the card.
type PricePair struct {
	Prices *PriceParser
	Bounds Bounds
}

func (s PricePair) Name() string { return MethodPricePair }

func (s PricePair) Detect(c Candidate) (Assessment, bool) {
	prices := s.Prices
	if prices == nil {
		prices = defaultParser
	}
	tokens := prices.Extract(c.Text)
	if len(tokens) < 2 {
		return Assessment{}, false
	}

	sorted := make([]PriceToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	original, sale := sorted[0], sorted[1]
	if original.Value <= sale.Value {
		return Assessment{}, false
	}

	pct := (original.Value - sale.Value) / original.Value * 100
	if !s.Bounds.orDefault().Accept(pct) {
		return Assessment{}, false
	}
	return Assessment{
		Percentage:    pct,
		OriginalPrice: &original,
		SalePrice:     &sale,
		Method:        MethodPricePair,
	}, true
}

// BadgeText reads an explicit percentage from elements whose class marks
// them as a discount badge.
type BadgeText struct {
	Markers []string
	// RequireKeyword only accepts percentages next to an off/sale keyword.
	RequireKeyword bool
	Bounds         Bounds
}

func (s BadgeText) Name() string { return MethodBadge }

func (s BadgeText) Detect(c Candidate) (Assessment, bool) {
	markers := s.Markers
	if len(markers) == 0 {
		markers = DefaultBadgeMarkers
	}

	re := percentRe
	if s.RequireKeyword {
		re = keywordPercentRe
	}

	for _, el := range c.Elements {
		if !IsBadgeClass(el.Class, markers) {
			continue
		}
		if pct, ok := firstPercent(re, el.Text, s.Bounds); ok {
			return Assessment{Percentage: pct, Method: MethodBadge}, true
		}
	}
	return Assessment{}, false
}

// IsBadgeClass reports whether class contains one of markers, ignoring case.
func IsBadgeClass(class string, markers []string) bool {
	class = strings.ToLower(class)
	if class == "" {
		return false
	}
	for _, m := range markers {
		if m != "" && strings.Contains(class, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// BareText is the last resort: a percentage anywhere in the card text.
type BareText struct {
	// RequireKeyword is the strict form; without it any "<n>%" counts.
	RequireKeyword bool
	Bounds         Bounds
}

func (s BareText) Name() string { return MethodText }

func (s BareText) Detect(c Candidate) (Assessment, bool) {
	re := percentRe
	if s.RequireKeyword {
		re = keywordPercentRe
	}
	if pct, ok := firstPercent(re, c.Text, s.Bounds); ok {
		return Assessment{Percentage: pct, Method: MethodText}, true
	}
	return Assessment{}, false
}

func firstPercent(re *regexp.Regexp, text string, bounds Bounds) (float64, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			if pct, ok := utils.ParsePercent(group); ok && bounds.orDefault().Accept(pct) {
				return pct, true
			}
			break
		}
	}
	return 0, false
}
