package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"DealFinder/internal/models"
	"DealFinder/internal/observability"
	"DealFinder/internal/snapshot"
	"DealFinder/pkg/config"
)

const (
	maxBodyBytes = 20 << 20
	defaultLimit = 50
	maxLimit     = 1000
)

// Scanner is what the API needs from the application.
type Scanner interface {
	Process(page models.Page) (*models.ScanReport, error)
	Scan(ctx context.Context, target string) (*models.ScanReport, error)
}

// Start serves the API on the configured port.
func Start(app Scanner, cfg *config.Config) {
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting API server on port %s", port)
	log.Printf("Endpoints available at http://localhost:%s/assess, /scan and /metrics", port)

	if err := http.ListenAndServe(":"+port, Handler(app, cfg.Server.ApiKey)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// Handler routes the API. A non-empty apiKey is required in X-API-Key on
// every endpoint except /metrics.
func Handler(app Scanner, apiKey string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/assess", requireKey(apiKey, assessHandler(app)))
	mux.Handle("/scan", requireKey(apiKey, scanHandler(app)))
	mux.Handle("/metrics", observability.Handler())
	return mux
}

func requireKey(apiKey string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("X-API-Key")), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid API key")
			return
		}
		next(w, r)
	})
}

// assessHandler analyzes HTML posted in the request body.
func assessHandler(app Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeError(w, http.StatusMethodNotAllowed, "use POST with an HTML body")
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
			return
		}
		if strings.TrimSpace(string(body)) == "" {
			writeError(w, http.StatusBadRequest, "empty body")
			return
		}

		report, err := app.Process(models.Page{URL: r.URL.Query().Get("url"), HTML: string(body), FetchedAt: time.Now()})
		if err != nil {
			writeScanError(w, err)
			return
		}
		writeReport(w, r, report)
	}
}

// scanHandler fetches ?url= with the configured scraper.
func scanHandler(app Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, http.StatusMethodNotAllowed, "use GET")
			return
		}
		target := r.URL.Query().Get("url")
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			writeError(w, http.StatusBadRequest, "url must be an http(s) address")
			return
		}

		report, err := app.Scan(r.Context(), target)
		if err != nil {
			log.Printf("Scan of %s failed: %v", target, err)
			writeScanError(w, err)
			return
		}
		writeReport(w, r, report)
	}
}

func writeScanError(w http.ResponseWriter, err error) {
	if errors.Is(err, snapshot.ErrNoCandidates) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// writeReport sends one page of the deals, selected by ?page= and ?limit=.
func writeReport(w http.ResponseWriter, r *http.Request, report *models.ScanReport) {
	queryParams := r.URL.Query()
	page, _ := strconv.Atoi(queryParams.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(queryParams.Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	total := len(report.Deals)
	pageReport := *report
	// Compared by division so huge page numbers cannot overflow the offset.
	start, end := total, total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
		end = min(start+limit, total)
	}
	pageReport.Deals = report.Deals[start:end]

	response := models.ScanResponse{
		ScanReport: &pageReport,
		Pagination: models.Pagination{
			TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
			CurrentPage: page,
			Total:       total,
		},
	}
	writeJSON(w, http.StatusOK, response)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
