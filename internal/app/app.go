package app

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"DealFinder/internal/discount"
	"DealFinder/internal/models"
	"DealFinder/internal/observability"
	"DealFinder/internal/scraper"
	"DealFinder/internal/scraper/browser"
	"DealFinder/internal/scraper/static"
	"DealFinder/internal/snapshot"
	"DealFinder/pkg/config"
	"DealFinder/utils"
)

// App is the main application structure holding all dependencies.
type App struct {
	Config   *config.Config
	Inferrer *discount.Inferrer
	Roles    discount.RoleAssigner
	Prices   *discount.PriceParser
	Locator  snapshot.Locator
	// Scraper is created on first use when left nil.
	Scraper scraper.Scraper

	workers int
	mu      sync.Mutex
	closer  func() error
}

// New creates a new application instance from cfg.
func New(cfg *config.Config) (*App, error) {
	inferrer, err := discount.NewPolicy(cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("building discount policy: %w", err)
	}
	order, err := discount.ParseRoleOrder(cfg.Discount.PriceRoles)
	if err != nil {
		return nil, fmt.Errorf("reading price roles: %w", err)
	}
	prices := discount.NewPriceParser(cfg.Discount.Currencies, cfg.Discount.MaxPrice)

	observability.Register()
	log.Printf("Discount policy: %s (min discount %.0f%%)", strings.Join(inferrer.Strategies(), " -> "), cfg.Discount.MinDiscount)

	return &App{
		Config:   cfg,
		Inferrer: inferrer,
		Roles:    discount.RoleAssigner{Prices: prices, Order: order},
		Prices:   prices,
		Locator: snapshot.Locator{
			Selectors:     cfg.Locator.Selectors,
			MinCandidates: cfg.Locator.MinCandidates,
			ReadyMin:      cfg.Locator.ReadyMin,
			HasPrice:      prices.Mentions,
		},
		workers: utils.GetOptimalWorkerCount(cfg.Scraper.Workers),
	}, nil
}

// Close releases the browser if one was launched.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closer == nil {
		return nil
	}
	err := a.closer()
	a.closer = nil
	return err
}

func (a *App) source() (scraper.Scraper, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Scraper != nil {
		return a.Scraper, nil
	}

	sc := a.Config.Scraper
	switch sc.Mode {
	case "static":
		a.Scraper = static.New(sc.UserAgent, sc.RequestsPerSecond, sc.Timeout)
	default:
		log.Printf("Launching browser (headless=%t)...", sc.Headless)
		b, err := browser.New(browser.Options{
			Headless:      sc.Headless,
			Timeout:       sc.Timeout,
			MaxWait:       sc.MaxWait,
			CheckInterval: sc.CheckInterval,
			ScrollSteps:   sc.ScrollSteps,
			ScrollDelay:   sc.ScrollDelay,
			Locator:       a.Locator,
		})
		if err != nil {
			return nil, err
		}
		a.Scraper, a.closer = b, b.Close
	}
	return a.Scraper, nil
}

// Scan fetches target and analyzes its product cards.
func (a *App) Scan(ctx context.Context, target string) (*models.ScanReport, error) {
	src, err := a.source()
	if err != nil {
		observability.ScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	page, err := src.ScrapePage(ctx, target)
	if err != nil {
		observability.ScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("scraping %s: %w", target, err)
	}
	report, err := a.Process(page)
	if err != nil {
		observability.ScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	report.Target = target
	observability.ScansTotal.WithLabelValues("ok").Inc()
	return report, nil
}

type cardResult struct {
	index  int
	onSale bool
	deal   *models.Product
}

// Process locates the product cards of page and keeps those discounted by
// more than the configured minimum, in page order.
func (a *App) Process(page models.Page) (*models.ScanReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	found, err := a.Locator.Locate(doc)
	if err != nil {
		return nil, fmt.Errorf("locating products on %q: %w", page.URL, err)
	}
	total := found.Len()
	log.Printf("Found %d products using selector: %s", total, found.Selector)

	base := baseURL(page.URL)
	numWorkers := a.workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > total {
		numWorkers = total
	}

	jobs := make(chan int, total)
	results := make(chan cardResult, total)
	for w := 1; w <= numWorkers; w++ {
		go func() {
			for i := range jobs {
				results <- a.evaluate(i, found.Cards.Eq(i), base)
			}
		}()
	}
	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)

	byIndex := make([]*models.Product, total)
	onSale := 0
	for i := 0; i < total; i++ {
		r := <-results
		if r.onSale {
			onSale++
		}
		byIndex[r.index] = r.deal
	}

	report := &models.ScanReport{
		RunID:      uuid.NewString(),
		Target:     page.URL,
		Selector:   found.Selector,
		Candidates: total,
		OnSale:     onSale,
		MinimumPct: a.Config.Discount.MinDiscount,
		Deals:      []models.Product{},
		ScannedAt:  time.Now(),
	}
	for _, deal := range byIndex {
		if deal == nil {
			continue
		}
		report.Deals = append(report.Deals, *deal)
		observability.DealsFound.WithLabelValues(deal.Method).Inc()
	}
	observability.CandidatesAnalyzed.Add(float64(total))

	log.Printf("Found %d products with >%.0f%% discount out of %d total", len(report.Deals), report.MinimumPct, total)
	return report, nil
}

// evaluate runs inference on one card and fills in the deal when its
// discount clears the minimum.
func (a *App) evaluate(index int, card *goquery.Selection, base *url.URL) cardResult {
	c := snapshot.Build(card)
	assessment := a.Inferrer.Infer(c)
	res := cardResult{index: index, onSale: assessment.OnSale()}
	if assessment.Percentage <= a.Config.Discount.MinDiscount {
		return res
	}

	info := snapshot.ExtractInfo(card, base)
	original, sale := assessment.OriginalPrice, assessment.SalePrice
	if original == nil && sale == nil {
		original, sale = a.Roles.Assign(c)
	}

	deal := &models.Product{
		Index:    index,
		Title:    info.Title,
		Link:     info.Link,
		Image:    info.Image,
		Discount: assessment.Percentage,
		Method:   assessment.Method,
	}
	if original != nil {
		deal.OriginalPrice, deal.OriginalValue = original.String(), original.Value
	}
	if sale != nil {
		deal.SalePrice, deal.SaleValue = sale.String(), sale.Value
	}
	res.deal = deal
	return res
}

// baseURL returns the page URL for resolving links, or nil for snapshots read
// from disk.
func baseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	return u
}
