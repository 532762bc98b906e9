package scraper

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/market-search-scraper/internal/metrics"
	"github.com/JakeFAU/market-search-scraper/internal/product"
)

// MaxPages is the hard cap on result pages visited per scrape.
const MaxPages = 3

// session is the per-request pagination state. Only the Driver mutates it.
type session struct {
	id        string
	keyword   string
	pageIndex int
	products  []product.Product
	done      bool
}

func newSession(id, keyword string) *session {
	return &session{id: id, keyword: keyword, pageIndex: 1}
}

// Driver walks result pages 1..maxPages, stopping early at the first page
// that yields no products.
type Driver struct {
	extractor *Extractor
	navCfg    NavigatorConfig
	limiter   RateLimiter
	maxPages  int
	logger    *zap.Logger
}

// NewDriver builds a Driver. maxPages outside 1..MaxPages is clamped to MaxPages.
func NewDriver(navCfg NavigatorConfig, limiter RateLimiter, maxPages int, logger *zap.Logger) *Driver {
	if maxPages <= 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		extractor: NewExtractor(navCfg.Selectors),
		navCfg:    navCfg,
		limiter:   limiter,
		maxPages:  maxPages,
		logger:    logger,
	}
}

// Run drives s to completion on page. On error the accumulated products are
// discarded and only the error is returned.
func (d *Driver) Run(ctx context.Context, page Page, s *session) ([]product.Product, error) {
	nav := NewNavigator(page, d.navCfg, d.limiter)
	sel := nav.cfg.Selectors
	log := d.logger.With(zap.String("session_id", s.id), zap.String("keyword", s.keyword))

	for !s.done {
		target, err := nav.Goto(ctx, s.keyword, s.pageIndex)
		if err != nil {
			log.Warn("navigation failed", zap.Int("page", s.pageIndex), zap.String("url", target), zap.Error(err))
			metrics.ObservePage(target, metrics.PageNavFailed, 0)
			return nil, err
		}
		log.Info("navigated", zap.Int("page", s.pageIndex), zap.String("url", target))

		snapCtx, cancel := context.WithTimeout(ctx, nav.cfg.ReadyTimeout)
		snap, err := page.Snapshot(snapCtx, sel.ResultsContainer, sel.ResultItem)
		cancel()
		if err != nil {
			log.Warn("extraction failed", zap.Int("page", s.pageIndex), zap.Error(err))
			metrics.ObservePage(target, metrics.PageExtFailed, 0)
			return nil, &ExtractionError{Page: s.pageIndex, Err: err}
		}
		found := d.extractor.ExtractPage(snap)

		if len(found) == 0 {
			metrics.ObservePage(target, metrics.PageEmpty, 0)
			log.Info("no products on page, ending scrape", zap.Int("page", s.pageIndex))
			s.done = true
			break
		}
		metrics.ObservePage(target, metrics.PageOK, len(found))
		s.products = append(s.products, found...)
		log.Debug("page extracted",
			zap.Int("page", s.pageIndex),
			zap.Int("nodes", len(snap.Nodes)),
			zap.Int("count", len(found)),
		)

		if s.pageIndex >= d.maxPages {
			s.done = true
			break
		}
		s.pageIndex++
	}
	return s.products, nil
}
