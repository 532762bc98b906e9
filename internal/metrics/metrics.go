// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeRequestsTotal        *prometheus.CounterVec
	scrapeDurationSeconds      *prometheus.HistogramVec
	scrapePagesTotal           *prometheus.CounterVec
	scrapeProductsTotal        prometheus.Counter
	browsersOpen               prometheus.Gauge
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Page outcomes recorded by ObservePage.
const (
	PageOK        = "ok"
	PageEmpty     = "empty"
	PageNavFailed = "navigation_error"
	PageExtFailed = "extraction_error"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapeRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_requests_total",
				Help: "Total scrape requests, labeled by result.",
			},
			[]string{"result"},
		)

		scrapeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_request_duration_seconds",
				Help:    "Wall time per scrape request, labeled by result.",
				Buckets: []float64{1, 2, 5, 10, 20, 40, 80, 160},
			},
			[]string{"result"},
		)

		scrapePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Search result pages visited, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		scrapeProductsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_products_total",
				Help: "Total products extracted across all pages.",
			},
		)

		browsersOpen = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_browsers_open",
				Help: "Number of headless browsers currently owned by in-flight scrapes.",
			},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_rate_limit_delays_seconds",
				Help:    "Histogram of navigation rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveScrape records the outcome of a whole scrape request.
func ObserveScrape(result string, duration time.Duration) {
	Init()
	scrapeRequestsTotal.WithLabelValues(result).Inc()
	scrapeDurationSeconds.WithLabelValues(result).Observe(duration.Seconds())
}

// ObservePage records one visited search page and the products it yielded.
func ObservePage(site, outcome string, products int) {
	Init()
	scrapePagesTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
	if products > 0 {
		scrapeProductsTotal.Add(float64(products))
	}
}

// IncBrowsersOpen increments the open browser gauge.
func IncBrowsersOpen() {
	Init()
	browsersOpen.Inc()
}

// DecBrowsersOpen decrements the open browser gauge.
func DecBrowsersOpen() {
	Init()
	browsersOpen.Dec()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
