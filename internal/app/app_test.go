package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DealFinder/internal/discount"
	"DealFinder/internal/models"
	"DealFinder/internal/snapshot"
	"DealFinder/pkg/config"
)

const clearanceURL = "https://www.vevor.nl/clearance"

var listingCards = []string{
	// price pair, 29.83%
	`<div class="product-item">
	  <img src="/img/drill.jpg">
	  <a href="/product/drill" class="title">Cordless drill</a>
	  <span class="price-current">€ 83,99</span> <del>€ 119,69</del>
	  <span class="discount-badge">-30%</span>
	</div>`,
	// price pair, 10%
	`<div class="product-item">
	  <a href="/product/saw" class="title">Circular saw</a>
	  <span class="price-current">€ 90,00</span> <del>€ 100,00</del>
	</div>`,
	// badge only
	`<div class="product-item">
	  <a href="/product/tent" class="title">Tent</a>
	  <span class="price">€ 50,00</span>
	  <span class="sale-label">-40%</span>
	</div>`,
	// bare text with keyword
	`<div class="product-item">
	  <a href="/product/lamp" class="title">Work lamp</a>
	  <span class="price">€ 12,50</span>
	  <p class="promo">Save 35% today</p>
	</div>`,
	// no signal
	`<div class="product-item">
	  <a href="/product/rope" class="title">Rope</a>
	  <span class="price">€ 20,00</span>
	</div>`,
	// exactly the minimum
	`<div class="product-item">
	  <a href="/product/cart" class="title">Hand cart</a>
	  <span class="price">€ 64,00</span>
	  <span class="discount-label">25% korting</span>
	</div>`,
}

func listingPage(fillers int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="grid">`)
	for _, c := range listingCards {
		b.WriteString(c)
	}
	for i := 0; i < fillers; i++ {
		fmt.Fprintf(&b, `<div class="product-item"><a href="/product/f%d" class="title">Filler %d</a><span class="price">€ 9,99</span></div>`, i, i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

type fakeScraper struct {
	html string
	err  error
	hits int
}

func (f *fakeScraper) ScrapePage(_ context.Context, target string) (models.Page, error) {
	f.hits++
	if f.err != nil {
		return models.Page{}, f.err
	}
	return models.Page{URL: target, HTML: f.html, FetchedAt: time.Now()}, nil
}

func newTestApp(t *testing.T, html string) (*App, *fakeScraper) {
	t.Helper()
	cfg := config.Default()
	cfg.Scraper.Workers = "3"
	cfg.Export.Dir = t.TempDir()

	a, err := New(cfg)
	require.NoError(t, err)
	fake := &fakeScraper{html: html}
	a.Scraper = fake
	return a, fake
}

func TestProcess(t *testing.T) {
	a, _ := newTestApp(t, "")

	report, err := a.Process(models.Page{URL: clearanceURL, HTML: listingPage(6)})
	require.NoError(t, err)

	assert.Equal(t, ".product-item", report.Selector)
	assert.Equal(t, 12, report.Candidates)
	assert.Equal(t, 5, report.OnSale)
	assert.Equal(t, 25.0, report.MinimumPct)
	assert.NotEmpty(t, report.RunID)

	require.Len(t, report.Deals, 3)

	drill := report.Deals[0]
	assert.Equal(t, 0, drill.Index)
	assert.Equal(t, "Cordless drill", drill.Title)
	assert.Equal(t, "https://www.vevor.nl/product/drill", drill.Link)
	assert.Equal(t, "https://www.vevor.nl/img/drill.jpg", drill.Image)
	assert.InDelta(t, 29.8263, drill.Discount, 1e-4)
	assert.Equal(t, discount.MethodPricePair, drill.Method)
	assert.Equal(t, "€ 119,69", drill.OriginalPrice)
	assert.Equal(t, "€ 83,99", drill.SalePrice)
	assert.Equal(t, 119.69, drill.OriginalValue)

	tent := report.Deals[1]
	assert.Equal(t, 2, tent.Index)
	assert.Equal(t, 40.0, tent.Discount)
	assert.Equal(t, discount.MethodBadge, tent.Method)
	assert.Equal(t, "€ 50,00", tent.OriginalPrice)
	assert.Empty(t, tent.SalePrice)

	lamp := report.Deals[2]
	assert.Equal(t, 3, lamp.Index)
	assert.Equal(t, 35.0, lamp.Discount)
	assert.Equal(t, discount.MethodText, lamp.Method)
}

func TestProcessKeepsPageOrderAcrossWorkers(t *testing.T) {
	a, _ := newTestApp(t, "")
	a.workers = 8
	page := models.Page{URL: clearanceURL, HTML: listingPage(40)}

	for run := 0; run < 5; run++ {
		report, err := a.Process(page)
		require.NoError(t, err)
		var titles []string
		for _, d := range report.Deals {
			titles = append(titles, d.Title)
		}
		assert.Equal(t, []string{"Cordless drill", "Tent", "Work lamp"}, titles)
	}
}

func TestProcessMinimumDiscountIsExclusive(t *testing.T) {
	a, _ := newTestApp(t, "")
	a.Config.Discount.MinDiscount = 35

	report, err := a.Process(models.Page{URL: clearanceURL, HTML: listingPage(6)})
	require.NoError(t, err)
	require.Len(t, report.Deals, 1)
	assert.Equal(t, "Tent", report.Deals[0].Title)
}

func TestProcessWithoutListing(t *testing.T) {
	a, _ := newTestApp(t, "")

	_, err := a.Process(models.Page{URL: clearanceURL, HTML: `<html><body><p>Maintenance</p></body></html>`})
	assert.ErrorIs(t, err, snapshot.ErrNoCandidates)
}

func TestProcessLocalSnapshotKeepsRelativeLinks(t *testing.T) {
	a, _ := newTestApp(t, "")

	report, err := a.Process(models.Page{URL: "/tmp/clearance.html", HTML: listingPage(6)})
	require.NoError(t, err)
	assert.Equal(t, "/product/drill", report.Deals[0].Link)
}

func TestScan(t *testing.T) {
	a, fake := newTestApp(t, listingPage(6))

	report, err := a.Scan(context.Background(), clearanceURL)
	require.NoError(t, err)
	assert.Equal(t, clearanceURL, report.Target)
	assert.Len(t, report.Deals, 3)
	assert.Equal(t, 1, fake.hits)

	fake.err = errors.New("connection reset")
	_, err = a.Scan(context.Background(), clearanceURL)
	assert.ErrorContains(t, err, "connection reset")
}

func TestRunScanWritesExports(t *testing.T) {
	a, _ := newTestApp(t, listingPage(6))

	report, err := a.RunScan(context.Background(), clearanceURL)
	require.NoError(t, err)
	assert.Len(t, report.Deals, 3)

	entries, err := os.ReadDir(a.Config.Export.Dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	today := time.Now().Format("2006-01-02")
	assert.ElementsMatch(t, []string{
		"deals_discounts_" + today + ".json",
		"deals_discounts_" + today + ".csv",
	}, names)

	data, err := os.ReadFile(filepath.Join(a.Config.Export.Dir, "deals_discounts_"+today+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"discount": "29.83"`)
	assert.Contains(t, string(data), `"salePrice": "N/A"`)
}

func TestRunDebug(t *testing.T) {
	a, _ := newTestApp(t, listingPage(6))

	analysis, err := a.RunDebug(context.Background(), clearanceURL)
	require.NoError(t, err)
	assert.Equal(t, ".product-item", analysis.Selector)
	assert.Equal(t, 12, analysis.Total)
	assert.Len(t, analysis.Samples, 3)
}

func TestExportPrefix(t *testing.T) {
	a, _ := newTestApp(t, "")
	assert.Equal(t, "deals", a.exportPrefix(clearanceURL))

	a.Config.Export.Prefix = ""
	assert.Equal(t, "www-vevor-nl", a.exportPrefix(clearanceURL))
	assert.Equal(t, "deals", a.exportPrefix("/tmp/page.html"))
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Discount.Strategies = []string{"price_pair", "magic"}

	_, err := New(cfg)
	assert.ErrorIs(t, err, discount.ErrUnknownStrategy)
}
