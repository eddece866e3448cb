package snapshot

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"DealFinder/internal/discount"
	"DealFinder/utils"
)

const (
	sampleCount     = 3
	sampleTextChars = 300
	badgeTextChars  = 50
	topClassCount   = 5
)

var (
	percentPatternRe = regexp.MustCompile(`\d+\s*%`)
	kortingRe        = regexp.MustCompile(`(?i)korting`)
)

// SelectorCount is how many outermost elements a selector matched.
type SelectorCount struct {
	Selector string `json:"selector"`
	Count    int    `json:"count"`
}

// ClassCount is how often a class leads the class list of a price element.
type ClassCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// Sample describes one card of the chosen selection.
type Sample struct {
	Text       string              `json:"text"`
	Percents   []string            `json:"percents"`
	HasKorting bool                `json:"has_korting"`
	Prices     []string            `json:"prices"`
	Badges     []string            `json:"badges"`
	Assessment discount.Assessment `json:"assessment"`
}

// Analysis is a report on how the page is structured, used to tune
// selectors for a new shop.
type Analysis struct {
	Selectors    []SelectorCount `json:"selectors"`
	Selector     string          `json:"selector"`
	Total        int             `json:"total"`
	Fallback     bool            `json:"fallback"`
	Error        string          `json:"error,omitempty"`
	Samples      []Sample        `json:"samples"`
	PriceClasses []ClassCount    `json:"price_classes"`
	Iframes      int             `json:"iframes"`
}

// Analyze inspects doc the way Locate would and describes the first cards.
// inferrer may be nil, in which case samples carry no assessment.
func Analyze(doc *goquery.Document, locator Locator, prices *discount.PriceParser, inferrer *discount.Inferrer) Analysis {
	if prices == nil {
		prices = defaultPrices
	}
	var a Analysis

	for _, sel := range locator.selectors() {
		a.Selectors = append(a.Selectors, SelectorCount{Selector: sel, Count: Outermost(doc.Find(sel)).Length()})
	}

	res, err := locator.Locate(doc)
	if err != nil {
		a.Error = err.Error()
	} else {
		a.Selector, a.Total, a.Fallback = res.Selector, res.Len(), res.Fallback
		res.Cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
			if i >= sampleCount {
				return false
			}
			a.Samples = append(a.Samples, sample(card, prices, inferrer))
			return true
		})
	}

	a.PriceClasses = priceClasses(doc, prices)
	a.Iframes = doc.Find("iframe").Length()
	return a
}

func sample(card *goquery.Selection, prices *discount.PriceParser, inferrer *discount.Inferrer) Sample {
	c := Build(card)
	s := Sample{
		Text:       utils.Truncate(c.Text, sampleTextChars),
		Percents:   percentPatternRe.FindAllString(c.Text, -1),
		HasKorting: kortingRe.MatchString(c.Text),
	}
	for _, tok := range prices.Extract(c.Text) {
		s.Prices = append(s.Prices, tok.String())
	}
	for _, el := range c.Elements {
		if discount.IsBadgeClass(el.Class, discount.DefaultBadgeMarkers) {
			s.Badges = append(s.Badges, utils.Truncate(el.Text, badgeTextChars))
		}
	}
	if inferrer != nil {
		s.Assessment = inferrer.Infer(c)
	}
	return s
}

// priceClasses ranks the first classes of elements that hold between one and
// five prices.
func priceClasses(doc *goquery.Document, prices *discount.PriceParser) []ClassCount {
	counts := make(map[string]int)
	doc.Find("body [class]").Each(func(_ int, s *goquery.Selection) {
		n := len(prices.Extract(NodeText(s.Get(0))))
		if n < 1 || n > 5 {
			return
		}
		if fields := strings.Fields(s.AttrOr("class", "")); len(fields) > 0 {
			counts[fields[0]]++
		}
	})

	ranked := make([]ClassCount, 0, len(counts))
	for class, count := range counts {
		ranked = append(ranked, ClassCount{Class: class, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Class < ranked[j].Class
	})
	if len(ranked) > topClassCount {
		ranked = ranked[:topClassCount]
	}
	return ranked
}
