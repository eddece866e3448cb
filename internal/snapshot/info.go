package snapshot

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NotAvailable stands in for any product field the card does not carry.
const NotAvailable = "N/A"

// Info holds the descriptive fields of a product card.
type Info struct {
	Title string
	Link  string
	Image string
}

const (
	titleSelector = `[class*="title"], [class*="Title"], [class*="name"], [class*="Name"], h2, h3, h4, a`
	linkSelector  = `a[href*="product"], a[href*="item"]`
)

// ExtractInfo reads title, link and image of a card. Relative links are
// resolved against base when it is not nil.
func ExtractInfo(card *goquery.Selection, base *url.URL) Info {
	info := Info{Title: NotAvailable}

	if t := card.Find(titleSelector).First(); t.Length() > 0 {
		if text := NodeText(t.Get(0)); text != "" {
			info.Title = text
		}
	}

	link := card.Find(linkSelector).First()
	if link.Length() == 0 {
		link = card.Find("a[href]").First()
	}
	if href, ok := link.Attr("href"); ok {
		info.Link = resolve(base, href)
	}

	if img := card.Find("img").First(); img.Length() > 0 {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(src, "data:") {
			src = strings.TrimSpace(img.AttrOr("data-src", src))
		}
		info.Image = resolve(base, src)
	}
	return info
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
