package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/market-search-scraper/internal/id/uuid"
	"github.com/JakeFAU/market-search-scraper/internal/metrics"
	"github.com/JakeFAU/market-search-scraper/internal/product"
)

// Scrape results recorded in metrics.
const (
	resultSuccess    = "success"
	resultInvalid    = "invalid_keyword"
	resultBrowser    = "browser_error"
	resultNavigation = "navigation_error"
	resultExtraction = "extraction_error"
	resultError      = "error"
)

// Config holds the orchestrator knobs.
type Config struct {
	BaseURL      string
	NavTimeout   time.Duration
	ReadyTimeout time.Duration
	MaxPages     int
	Selectors    Selectors
}

// IDGenerator supplies session IDs for log correlation.
type IDGenerator interface {
	NewID() (string, error)
}

// Scraper runs one complete, browser-isolated scrape per call.
type Scraper struct {
	launcher Launcher
	driver   *Driver
	ids      IDGenerator
	logger   *zap.Logger
}

// New wires a Scraper. limiter, ids and logger may be nil.
func New(cfg Config, launcher Launcher, limiter RateLimiter, ids IDGenerator, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = uuid.New()
	}
	if limiter == nil {
		limiter = noLimit{}
	}
	navCfg := NavigatorConfig{
		BaseURL:      cfg.BaseURL,
		NavTimeout:   cfg.NavTimeout,
		ReadyTimeout: cfg.ReadyTimeout,
		Selectors:    cfg.Selectors,
	}
	return &Scraper{
		launcher: launcher,
		driver:   NewDriver(navCfg, limiter, cfg.MaxPages, logger),
		ids:      ids,
		logger:   logger,
	}
}

// Scrape returns every product found for keyword across up to MaxPages
// result pages. The browser is released before Scrape returns. On success
// the slice is never nil.
func (s *Scraper) Scrape(ctx context.Context, keyword string) ([]product.Product, error) {
	start := time.Now()
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		metrics.ObserveScrape(resultInvalid, time.Since(start))
		return nil, ErrInvalidKeyword
	}

	sessionID, err := s.ids.NewID()
	if err != nil {
		s.logger.Warn("session id unavailable", zap.Error(err))
	}
	sess := newSession(sessionID, keyword)
	log := s.logger.With(zap.String("session_id", sessionID), zap.String("keyword", keyword))
	log.Info("scrape started")

	var products []product.Product
	err = withBrowser(ctx, s.launcher, log, func(page Page) error {
		var runErr error
		products, runErr = s.driver.Run(ctx, page, sess)
		return runErr
	})
	if err != nil {
		result := classify(err)
		metrics.ObserveScrape(result, time.Since(start))
		log.Error("scrape failed", zap.String("result", result), zap.Error(err))
		return nil, err
	}

	if products == nil {
		products = []product.Product{}
	}
	metrics.ObserveScrape(resultSuccess, time.Since(start))
	log.Info("scrape finished",
		zap.Int("count", len(products)),
		zap.Int("pages", sess.pageIndex),
		zap.Duration("elapsed", time.Since(start)),
	)
	return products, nil
}

func classify(err error) string {
	var navErr *NavigationError
	var extErr *ExtractionError
	switch {
	case errors.Is(err, ErrBrowserUnavailable):
		return resultBrowser
	case errors.As(err, &navErr):
		return resultNavigation
	case errors.As(err, &extErr):
		return resultExtraction
	default:
		return resultError
	}
}

type noLimit struct{}

func (noLimit) Wait(context.Context, string) error { return nil }
