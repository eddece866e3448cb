package scraper

import (
	"context"
	"errors"

	"DealFinder/internal/models"
)

// ErrUnexpectedStatus is returned when a shop answers with anything but 200.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Scraper defines the behavior shared by every page source.
// A browser scraper renders lazy-loaded listings; a static one fetches raw
// HTML or reads a saved snapshot from disk.
type Scraper interface {
	// ScrapePage loads target and returns its final HTML.
	ScrapePage(ctx context.Context, target string) (models.Page, error)
}
