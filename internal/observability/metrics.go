package observability

import (
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CandidatesAnalyzed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dealfinder_candidates_analyzed_total",
			Help: "Product cards run through discount inference",
		},
	)
	DealsFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealfinder_deals_found_total",
			Help: "Cards above the minimum discount, by detection method",
		},
		[]string{"method"},
	)
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealfinder_scans_total",
			Help: "Page scans, by outcome",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(CandidatesAnalyzed, DealsFound, ScansTotal)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// Start serves /metrics on port in the background. An empty port does nothing.
func Start(port string) {
	if port == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		log.Printf("Metrics listening on :%s", port)
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
}
