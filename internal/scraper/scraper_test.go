package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticIDs struct{}

func (staticIDs) NewID() (string, error) { return "session-1", nil }

func newTestScraper(l Launcher, navTimeout time.Duration) *Scraper {
	return New(Config{
		BaseURL:      "https://shop.example",
		NavTimeout:   navTimeout,
		ReadyTimeout: time.Second,
		MaxPages:     MaxPages,
	}, l, nil, staticIDs{}, nil)
}

func TestScrapeRejectsBlankKeyword(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{newPage: func() Page { return &fakePage{} }}
	s := newTestScraper(l, time.Second)

	for _, kw := range []string{"", "   ", "\t\n"} {
		got, err := s.Scrape(context.Background(), kw)
		require.ErrorIs(t, err, ErrInvalidKeyword)
		require.Nil(t, got)
	}
	launched, _ := l.counts()
	require.Zero(t, launched, "no browser for an invalid request")
}

func TestScrapeSuccess(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{newPage: func() Page {
		return &fakePage{nodes: map[int][]Node{1: productNodes(10), 2: productNodes(10)}}
	}}
	got, err := newTestScraper(l, time.Second).Scrape(context.Background(), "  lamp ")
	require.NoError(t, err)
	require.Len(t, got, 20)

	launched, closed := l.counts()
	require.Equal(t, 1, launched)
	require.Equal(t, 1, closed)

	page := l.browsers[0].page.(*fakePage)
	require.Equal(t, "https://shop.example/s?k=lamp&page=1", page.navigations()[0])
}

func TestScrapeEmptyResultIsNotNil(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{newPage: func() Page { return &fakePage{} }}
	got, err := newTestScraper(l, time.Second).Scrape(context.Background(), "zzzz")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestScrapeReleasesBrowserAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{newPage: func() Page {
		return &fakePage{
			nodes:   map[int][]Node{1: productNodes(10)},
			hangNav: map[int]bool{2: true},
		}
	}}
	s := newTestScraper(l, 10*time.Millisecond)

	const runs = 5
	for i := 0; i < runs; i++ {
		got, err := s.Scrape(context.Background(), "lamp")
		require.Nil(t, got)
		var navErr *NavigationError
		require.ErrorAs(t, err, &navErr)
		require.Equal(t, 2, navErr.Page)
	}

	launched, closed := l.counts()
	require.Equal(t, runs, launched)
	require.Equal(t, runs, closed)
}

func TestScrapeReleasesBrowserOnPanic(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{newPage: func() Page { return &fakePage{panicSnap: true} }}
	s := newTestScraper(l, time.Second)

	require.Panics(t, func() {
		_, _ = s.Scrape(context.Background(), "lamp")
	})
	launched, closed := l.counts()
	require.Equal(t, 1, launched)
	require.Equal(t, 1, closed)
}

func TestScrapeLaunchFailure(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{launchErr: errors.New("exec: chrome not found")}
	got, err := newTestScraper(l, time.Second).Scrape(context.Background(), "lamp")
	require.Nil(t, got)
	require.ErrorIs(t, err, ErrBrowserUnavailable)
	require.Contains(t, err.Error(), "chrome not found")
}

func TestScrapeCanceledContext(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{newPage: func() Page {
		return &fakePage{nodes: map[int][]Node{1: productNodes(1)}}
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := newTestScraper(l, time.Second).Scrape(ctx, "lamp")
	require.Nil(t, got)
	require.ErrorIs(t, err, context.Canceled)
	_, closed := l.counts()
	require.Equal(t, 1, closed)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	require.Equal(t, resultBrowser, classify(errors.Join(ErrBrowserUnavailable, errors.New("x"))))
	require.Equal(t, resultNavigation, classify(&NavigationError{Page: 1, Err: context.DeadlineExceeded}))
	require.Equal(t, resultExtraction, classify(&ExtractionError{Page: 1, Err: errors.New("x")}))
	require.Equal(t, resultError, classify(errors.New("other")))
}
