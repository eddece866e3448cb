// Package browser renders listing pages in headless Chrome so lazily loaded
// product cards end up in the returned HTML.
package browser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"DealFinder/internal/models"
	"DealFinder/internal/snapshot"
)

// Options controls navigation, lazy-load waiting and scrolling.
type Options struct {
	Headless      bool
	Timeout       time.Duration
	MaxWait       time.Duration
	CheckInterval time.Duration
	ScrollSteps   int
	ScrollDelay   time.Duration
	// Locator decides when enough cards have rendered.
	Locator snapshot.Locator
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 10 * time.Second
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = 500 * time.Millisecond
	}
	if o.ScrollSteps < 0 {
		o.ScrollSteps = 0
	}
	if o.ScrollDelay <= 0 {
		o.ScrollDelay = time.Second
	}
	return o
}

// Scraper drives a single browser; pages are opened per call.
type Scraper struct {
	Browser *rod.Browser
	opts    Options
	owned   bool
}

// New launches a browser and connects to it.
func New(opts Options) (*Scraper, error) {
	u, err := launcher.New().Headless(opts.Headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	s := NewWithBrowser(browser, opts)
	s.owned = true
	return s, nil
}

// NewWithBrowser wraps an already connected browser. Close leaves it open.
func NewWithBrowser(browser *rod.Browser, opts Options) *Scraper {
	return &Scraper{Browser: browser, opts: opts.withDefaults()}
}

// Close shuts the browser down if New launched it.
func (s *Scraper) Close() error {
	if !s.owned {
		return nil
	}
	return s.Browser.Close()
}

// ScrapePage navigates to target, waits for cards, scrolls through the page
// and returns the rendered HTML with struck-through elements tagged.
func (s *Scraper) ScrapePage(ctx context.Context, target string) (models.Page, error) {
	page, err := stealth.Page(s.Browser)
	if err != nil {
		return models.Page{}, fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Timeout(s.opts.Timeout).Navigate(target); err != nil {
		return models.Page{}, fmt.Errorf("navigating to %s: %w", target, err)
	}
	if err := page.Timeout(s.opts.Timeout).WaitLoad(); err != nil {
		log.Printf("WARN: load event not seen for %s: %v", target, err)
	}
	log.Printf("Navigated to %s. Waiting for products to load...", target)

	if !s.waitForCards(ctx, page) {
		log.Printf("WARN: products did not load within %s, continuing with what is there", s.opts.MaxWait)
	}
	if err := s.scroll(ctx, page); err != nil {
		log.Printf("Error during scrolling: %v", err)
	}

	if res, err := page.Eval(markStruckJS, snapshot.ComputedStrikeAttr); err != nil {
		log.Printf("WARN: could not tag struck-through prices: %v", err)
	} else {
		log.Printf("Tagged %d struck-through elements", res.Value.Int())
	}

	html, err := page.HTML()
	if err != nil {
		return models.Page{}, fmt.Errorf("reading page HTML: %w", err)
	}
	return models.Page{URL: target, HTML: html, FetchedAt: time.Now()}, nil
}

// waitForCards polls the DOM until the locator reports the listing ready or
// MaxWait runs out.
func (s *Scraper) waitForCards(ctx context.Context, page *rod.Page) bool {
	deadline := time.Now().Add(s.opts.MaxWait)
	for attempt := 1; ; attempt++ {
		if html, err := page.HTML(); err == nil {
			if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil && s.opts.Locator.Ready(doc) {
				log.Printf("Products loaded after %d checks", attempt)
				return true
			}
		}
		if time.Now().Add(s.opts.CheckInterval).After(deadline) {
			return false
		}
		if err := sleep(ctx, s.opts.CheckInterval); err != nil {
			return false
		}
	}
}

// scroll moves down by 0.8 viewport per step to trigger lazy loading, then
// returns to the top.
func (s *Scraper) scroll(ctx context.Context, page *rod.Page) error {
	for step := 1; step <= s.opts.ScrollSteps; step++ {
		if _, err := page.Eval(scrollToJS, step); err != nil {
			return err
		}
		log.Printf("Scroll step %d/%d", step, s.opts.ScrollSteps)
		if err := sleep(ctx, s.opts.ScrollDelay); err != nil {
			return err
		}
	}
	if _, err := page.Eval(`() => window.scrollTo(0, 0)`); err != nil {
		return err
	}
	return sleep(ctx, s.opts.ScrollDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const scrollToJS = `(step) => window.scrollTo(0, window.innerHeight * 0.8 * step)`

const markStruckJS = `(attr) => {
	let n = 0;
	document.querySelectorAll('body *').forEach(el => {
		const style = window.getComputedStyle(el);
		const deco = style.textDecorationLine || style.textDecoration || '';
		if (deco.includes('line-through')) {
			el.setAttribute(attr, 'true');
			n++;
		}
	});
	return n;
}`
