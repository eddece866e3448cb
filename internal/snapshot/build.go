// Package snapshot turns product cards of a parsed page into plain
// discount.Candidate values and finds those cards in the first place.
package snapshot

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"DealFinder/internal/discount"
)

// ComputedStrikeAttr is set by the browser scraper on elements whose computed
// style has a line-through decoration.
const ComputedStrikeAttr = "data-computed-strike"

// Build snapshots a card: its visible text and every descendant element.
func Build(card *goquery.Selection) discount.Candidate {
	var c discount.Candidate
	if card == nil || card.Length() == 0 {
		return c
	}
	root := card.Get(0)
	c.Text = NodeText(root)

	var walk func(n *html.Node, struck bool)
	walk = func(n *html.Node, struck bool) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode || skipped(child) {
				continue
			}
			s := struck || isStruck(child)
			c.Elements = append(c.Elements, discount.Element{
				Tag:           child.Data,
				Class:         attr(child, "class"),
				Text:          NodeText(child),
				Strikethrough: s,
			})
			walk(child, s)
		}
	}
	walk(root, false)
	return c
}

// NodeText concatenates the text nodes below n without separators, like the
// DOM's textContent, then collapses whitespace runs to single spaces.
func NodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && skipped(n) {
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func skipped(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

func isStruck(n *html.Node) bool {
	switch n.Data {
	case "s", "del", "strike":
		return true
	}
	style := strings.ToLower(attr(n, "style"))
	if strings.Contains(style, "line-through") {
		return true
	}
	if attr(n, "data-a-strike") == "true" || attr(n, ComputedStrikeAttr) == "true" {
		return true
	}
	class := strings.ToLower(attr(n, "class"))
	return strings.Contains(class, "line-through") || strings.Contains(class, "strikethrough")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
