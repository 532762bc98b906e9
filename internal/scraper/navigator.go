package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultNavTimeout   = 60 * time.Second
	defaultReadyTimeout = 10 * time.Second
)

// Page is a browser tab exclusively owned by one scrape.
type Page interface {
	// Navigate loads rawURL and returns once network activity has settled.
	Navigate(ctx context.Context, rawURL string) error
	// WaitReady blocks until selector is present in the document.
	WaitReady(ctx context.Context, selector string) error
	// Snapshot reads the container matching containerSelector and returns
	// the result nodes matching itemSelector inside it.
	Snapshot(ctx context.Context, containerSelector, itemSelector string) (Snapshot, error)
}

// RateLimiter paces navigations per host.
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// NavigatorConfig bounds each navigation step.
type NavigatorConfig struct {
	BaseURL      string
	NavTimeout   time.Duration
	ReadyTimeout time.Duration
	Selectors    Selectors
}

// Navigator loads paginated search result URLs into a Page.
type Navigator struct {
	page    Page
	cfg     NavigatorConfig
	limiter RateLimiter
}

// NewNavigator wraps page. limiter may be nil.
func NewNavigator(page Page, cfg NavigatorConfig, limiter RateLimiter) *Navigator {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = defaultNavTimeout
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}
	cfg.Selectors = cfg.Selectors.withDefaults()
	return &Navigator{page: page, cfg: cfg, limiter: limiter}
}

// SearchURL builds <base>/s?k=<keyword>&page=<index>. Spaces are encoded as
// %20 to match what a browser's encodeURIComponent would send.
func SearchURL(baseURL, keyword string, pageIndex int) string {
	k := strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
	return strings.TrimRight(baseURL, "/") + "/s?k=" + k + "&page=" + strconv.Itoa(pageIndex)
}

// Goto navigates to the given result page and waits for the results
// container. Every failure, including either timeout, is a *NavigationError.
func (n *Navigator) Goto(ctx context.Context, keyword string, pageIndex int) (string, error) {
	target := SearchURL(n.cfg.BaseURL, keyword, pageIndex)
	fail := func(err error) (string, error) {
		return target, &NavigationError{Page: pageIndex, URL: target, Err: err}
	}

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx, target); err != nil {
			return fail(err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, n.cfg.NavTimeout)
	defer cancel()
	if err := n.page.Navigate(navCtx, target); err != nil {
		return fail(fmt.Errorf("load: %w", deadlineOr(navCtx, err)))
	}

	readyCtx, cancelReady := context.WithTimeout(ctx, n.cfg.ReadyTimeout)
	defer cancelReady()
	if err := n.page.WaitReady(readyCtx, n.cfg.Selectors.ResultsContainer); err != nil {
		return fail(fmt.Errorf("wait for results: %w", deadlineOr(readyCtx, err)))
	}
	return target, nil
}

// deadlineOr makes a timed-out wait recognizable via errors.Is even when the
// page implementation reports it with its own error value.
func deadlineOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}
