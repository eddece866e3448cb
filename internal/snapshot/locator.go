package snapshot

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"DealFinder/internal/discount"
)

// ErrNoCandidates is returned when no group of elements on the page looks
// like a product listing.
var ErrNoCandidates = errors.New("no product listings found")

// DefaultSelectors are tried in order; the first one matching enough cards wins.
var DefaultSelectors = []string{
	".product-item",
	".product-card",
	".product",
	`[class*="product-"]`,
	`[class*="item-"]`,
	`[class*="goods"]`,
	".goods-item",
	".list-item",
	".flex_box",
	`[class*="clearance"]`,
	`[class*="sale-item"]`,
}

const (
	DefaultMinCandidates = 10
	DefaultReadyMin      = 5
	minContentChars      = 50
)

// Locator finds the product cards of a listing page.
type Locator struct {
	Selectors     []string
	MinCandidates int
	ReadyMin      int
	// HasPrice reports whether text mentions a price. Defaults to a loose
	// euro match.
	HasPrice func(string) bool
}

// Result is the set of cards a Locator settled on.
type Result struct {
	Selector string
	Cards    *goquery.Selection
	// Fallback is true when the cards were found by class frequency rather
	// than a known selector.
	Fallback bool
}

// Len returns the number of cards.
func (r Result) Len() int {
	if r.Cards == nil {
		return 0
	}
	return r.Cards.Length()
}

func (l Locator) selectors() []string {
	if len(l.Selectors) == 0 {
		return DefaultSelectors
	}
	return l.Selectors
}

func (l Locator) minCandidates() int {
	if l.MinCandidates < 1 {
		return DefaultMinCandidates
	}
	return l.MinCandidates
}

func (l Locator) readyMin() int {
	if l.ReadyMin < 1 {
		return DefaultReadyMin
	}
	return l.ReadyMin
}

func (l Locator) hasPrice(text string) bool {
	if l.HasPrice == nil {
		return defaultPrices.Mentions(text)
	}
	return l.HasPrice(text)
}

var defaultPrices = discount.NewPriceParser(nil, 0)

// Locate returns the cards of the first selector with at least MinCandidates
// outermost matches. When no selector qualifies it looks for the most common
// first class among divs holding an image and a price.
func (l Locator) Locate(doc *goquery.Document) (Result, error) {
	for _, sel := range l.selectors() {
		cards := Outermost(doc.Find(sel))
		if cards.Length() >= l.minCandidates() {
			return Result{Selector: sel, Cards: cards}, nil
		}
	}

	if class, count := l.dominantClass(doc); class != "" && count >= l.minCandidates() {
		cards := Outermost(doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.HasClass(class)
		}))
		return Result{Selector: "." + class, Cards: cards, Fallback: true}, nil
	}
	return Result{}, ErrNoCandidates
}

// dominantClass counts the first class of every div that holds an image and
// mentions a price. Ties go to the class seen first.
func (l Locator) dominantClass(doc *goquery.Document) (string, int) {
	counts := make(map[string]int)
	var order []string
	doc.Find("div[class]").Each(func(_ int, s *goquery.Selection) {
		fields := strings.Fields(s.AttrOr("class", ""))
		if len(fields) == 0 {
			return
		}
		if s.Find("img").Length() == 0 || !l.hasPrice(NodeText(s.Get(0))) {
			return
		}
		if counts[fields[0]] == 0 {
			order = append(order, fields[0])
		}
		counts[fields[0]]++
	})

	best, bestCount := "", 0
	for _, class := range order {
		if counts[class] > bestCount {
			best, bestCount = class, counts[class]
		}
	}
	return best, bestCount
}

// Ready reports whether lazily loaded cards have rendered: a selector matches
// at least ReadyMin elements and at least half of them carry content.
func (l Locator) Ready(doc *goquery.Document) bool {
	for _, sel := range l.selectors() {
		found := doc.Find(sel)
		if found.Length() < l.readyMin() {
			continue
		}
		loaded := found.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return l.hasContent(s)
		}).Length()
		if loaded*2 >= found.Length() {
			return true
		}
	}
	return false
}

func (l Locator) hasContent(s *goquery.Selection) bool {
	text := NodeText(s.Get(0))
	if utf8.RuneCountInString(text) <= minContentChars {
		return false
	}
	return l.hasPrice(text) || s.Find("img").Length() > 0
}

// Outermost drops every element nested inside another element of sel.
func Outermost(sel *goquery.Selection) *goquery.Selection {
	if sel.Length() < 2 {
		return sel
	}
	set := make(map[*html.Node]bool, sel.Length())
	for _, n := range sel.Nodes {
		set[n] = true
	}
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		for p := s.Get(0).Parent; p != nil; p = p.Parent {
			if set[p] {
				return false
			}
		}
		return true
	})
}
