package scraper

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/market-search-scraper/internal/metrics"
)

// Browser is one browser instance with a single tab, owned by one scrape.
type Browser interface {
	Page() Page
	Close() error
}

// Launcher starts a fresh Browser for each scrape.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// withBrowser launches a browser, hands its page to fn, and closes the
// browser exactly once however fn returns, including by panic.
func withBrowser(ctx context.Context, launcher Launcher, logger *zap.Logger, fn func(Page) error) error {
	b, err := launcher.Launch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBrowserUnavailable, err)
	}
	metrics.IncBrowsersOpen()

	var once sync.Once
	release := func() {
		once.Do(func() {
			metrics.DecBrowsersOpen()
			if cerr := b.Close(); cerr != nil {
				logger.Warn("browser close failed", zap.Error(cerr))
			}
		})
	}
	defer release()

	return fn(b.Page())
}
