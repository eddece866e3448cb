// Package static fetches listing pages without a browser, either over plain
// HTTP or from a saved HTML snapshot on disk.
package static

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"DealFinder/internal/models"
	"DealFinder/internal/scraper"
)

const maxBodyBytes = 20 << 20

// Scraper is a rate-limited HTTP page source.
type Scraper struct {
	client      *http.Client
	userAgent   string
	rateLimiter *rate.Limiter
}

// New creates a Scraper. requestsPerSecond <= 0 disables pacing.
func New(userAgent string, requestsPerSecond float64, timeout time.Duration) *Scraper {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		client:      &http.Client{Timeout: timeout},
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(limit, 1),
	}
}

// ScrapePage returns the HTML of target. Local paths and file:// URLs are
// read from disk.
func (s *Scraper) ScrapePage(ctx context.Context, target string) (models.Page, error) {
	if path, ok := localPath(target); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return models.Page{}, fmt.Errorf("reading snapshot: %w", err)
		}
		log.Printf("Loaded %d bytes from %s", len(data), path)
		return models.Page{URL: target, HTML: string(data), FetchedAt: time.Now()}, nil
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return models.Page{}, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("building request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Page{}, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Page{}, fmt.Errorf("%w: %s returned %d", scraper.ErrUnexpectedStatus, target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Page{}, fmt.Errorf("reading body: %w", err)
	}
	log.Printf("Fetched %d bytes from %s", len(body), target)
	return models.Page{URL: resp.Request.URL.String(), HTML: string(body), FetchedAt: time.Now()}, nil
}

func localPath(target string) (string, bool) {
	if strings.HasPrefix(target, "file://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", false
		}
		return u.Path, true
	}
	if strings.Contains(target, "://") {
		return "", false
	}
	return target, true
}
