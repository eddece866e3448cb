package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DealFinder/internal/export"
	"DealFinder/internal/models"
	"DealFinder/internal/snapshot"
	"DealFinder/utils"
)

// RunScan scans target, logs every deal and writes the export files.
func (a *App) RunScan(ctx context.Context, target string) (*models.ScanReport, error) {
	log.Println("--- Starting Discount Scan Task ---")

	report, err := a.Scan(ctx, target)
	if err != nil {
		return nil, err
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("Found %d items with >%.0f%% discount (run %s):", len(report.Deals), report.MinimumPct, report.RunID)
	log.Println(strings.Repeat("=", 60))
	for i, d := range report.Deals {
		log.Printf("%d. %s", i+1, d.Title)
		log.Printf("   Discount: %.2f%% (%s)", d.Discount, d.Method)
		log.Printf("   Original: %s -> Sale: %s", orNA(d.OriginalPrice), orNA(d.SalePrice))
		log.Printf("   %s", d.Link)
	}

	paths, err := export.SaveFiles(a.Config.Export.Dir, a.exportPrefix(target), time.Now(), report.Deals, a.Config.Export.CSV)
	if err != nil {
		return report, fmt.Errorf("exporting deals: %w", err)
	}
	for _, p := range paths {
		log.Printf("Saved %s", p)
	}

	log.Println("--- Discount Scan Task Finished ---")
	return report, nil
}

// RunDebug prints a structural analysis of target to help tune selectors.
func (a *App) RunDebug(ctx context.Context, target string) (snapshot.Analysis, error) {
	log.Println("--- Starting Page Analysis Task ---")

	src, err := a.source()
	if err != nil {
		return snapshot.Analysis{}, err
	}
	page, err := src.ScrapePage(ctx, target)
	if err != nil {
		return snapshot.Analysis{}, fmt.Errorf("scraping %s: %w", target, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return snapshot.Analysis{}, fmt.Errorf("parsing HTML: %w", err)
	}

	analysis := snapshot.Analyze(doc, a.Locator, a.Prices, a.Inferrer)

	log.Println("Testing product selectors:")
	for _, sc := range analysis.Selectors {
		log.Printf("  %s: %d elements", sc.Selector, sc.Count)
	}
	if analysis.Error != "" {
		log.Printf("No products found: %s", analysis.Error)
	} else {
		log.Printf("Using selector: %s (%d products, fallback=%t)", analysis.Selector, analysis.Total, analysis.Fallback)
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return analysis, err
	}
	fmt.Fprintln(os.Stdout, string(out))

	log.Println("--- Page Analysis Task Finished ---")
	return analysis, nil
}

// exportPrefix is the configured prefix, or a slug of the target host.
func (a *App) exportPrefix(target string) string {
	if a.Config.Export.Prefix != "" {
		return a.Config.Export.Prefix
	}
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		if slug := utils.CreateSlug(u.Hostname()); slug != "" {
			return slug
		}
	}
	return "deals"
}

func orNA(s string) string {
	if s == "" {
		return snapshot.NotAvailable
	}
	return s
}
