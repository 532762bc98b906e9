package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultUserAgent is a desktop Chrome identification string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// ChromedpConfig controls how headless Chrome is started.
type ChromedpConfig struct {
	UserAgent string
	Headless  bool
	NoSandbox bool
	ExecPath  string
}

// ChromedpLauncher implements Launcher with chromedp. Each Launch starts a
// separate Chrome process.
type ChromedpLauncher struct {
	cfg ChromedpConfig
}

// NewChromedpLauncher creates a launcher using the provided configuration.
func NewChromedpLauncher(cfg ChromedpConfig) *ChromedpLauncher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &ChromedpLauncher{cfg: cfg}
}

func (l *ChromedpLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.UserAgent(l.cfg.UserAgent),
	)
	if l.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if l.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}
	return opts
}

// Launch starts Chrome, opens one tab, and applies the user agent.
func (l *ChromedpLauncher) Launch(ctx context.Context) (Browser, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx,
		emulation.SetUserAgentOverride(l.cfg.UserAgent),
		cdppage.SetLifecycleEventsEnabled(true),
	); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp start: %w", err)
	}

	b := &chromedpBrowser{tabCancel: tabCancel, allocCancel: allocCancel}
	b.page = &chromedpPage{tabCtx: tabCtx}
	return b, nil
}

type chromedpBrowser struct {
	page        *chromedpPage
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
}

func (b *chromedpBrowser) Page() Page {
	return b.page
}

// Close shuts the browser down and kills the Chrome process.
func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.page.tabCtx)
	b.tabCancel()
	b.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

type chromedpPage struct {
	tabCtx context.Context
}

// run executes fn against the tab, bounded by ctx. Deriving from the tab
// context keeps the tab open when a single step times out.
func (p *chromedpPage) run(ctx context.Context, fn func(context.Context) error) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stopForward := forwardCancel(ctx, cancel)
	defer stopForward()

	if err := fn(runCtx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ctxErr, err)
		}
		return err
	}
	return nil
}

// Navigate loads rawURL and waits for the networkAlmostIdle lifecycle event
// of the new document. Only events for the main frame's committed loader
// count; iframes and the previous document are ignored.
func (p *chromedpPage) Navigate(ctx context.Context, rawURL string) error {
	return p.run(ctx, func(runCtx context.Context) error {
		var mainFrame cdp.FrameID
		if err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := cdppage.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			mainFrame = tree.Frame.ID
			return nil
		})); err != nil {
			return fmt.Errorf("chromedp frame tree: %w", err)
		}

		idle := make(chan struct{}, 1)
		var loader atomic.Value // cdp.LoaderID of the committed document

		listenCtx, stopListening := context.WithCancel(runCtx)
		defer stopListening()
		chromedp.ListenTarget(listenCtx, func(ev any) {
			e, ok := ev.(*cdppage.EventLifecycleEvent)
			if !ok || e.FrameID != mainFrame {
				return
			}
			switch e.Name {
			case "init":
				loader.Store(e.LoaderID)
			case "networkAlmostIdle":
				if committed, ok := loader.Load().(cdp.LoaderID); !ok || committed != e.LoaderID {
					return
				}
				select {
				case idle <- struct{}{}:
				default:
				}
			}
		})

		start := time.Now()
		if err := chromedp.Run(runCtx, chromedp.Navigate(rawURL)); err != nil {
			return fmt.Errorf("chromedp navigate: %w", err)
		}
		select {
		case <-idle:
			return nil
		case <-runCtx.Done():
			return fmt.Errorf("network idle after %s: %w", time.Since(start).Round(time.Millisecond), runCtx.Err())
		}
	})
}

func (p *chromedpPage) WaitReady(ctx context.Context, selector string) error {
	return p.run(ctx, func(runCtx context.Context) error {
		if err := chromedp.Run(runCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("chromedp wait ready: %w", err)
		}
		return nil
	})
}

// Snapshot copies the container HTML and the page location out of the
// browser; result nodes are then parsed in-process.
func (p *chromedpPage) Snapshot(ctx context.Context, containerSelector, itemSelector string) (Snapshot, error) {
	var location, html string
	err := p.run(ctx, func(runCtx context.Context) error {
		if err := chromedp.Run(runCtx,
			chromedp.Location(&location),
			chromedp.OuterHTML(containerSelector, &html, chromedp.ByQuery),
		); err != nil {
			return fmt.Errorf("chromedp read results: %w", err)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return ParseSnapshot(location, html, itemSelector)
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
