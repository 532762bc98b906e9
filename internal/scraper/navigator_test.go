package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSearchURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, keyword string
		page          int
		want          string
	}{
		{"https://www.amazon.com", "laptop", 1, "https://www.amazon.com/s?k=laptop&page=1"},
		{"https://www.amazon.com/", "wireless mouse", 2, "https://www.amazon.com/s?k=wireless%20mouse&page=2"},
		{"https://www.amazon.com", "salt & pepper", 3, "https://www.amazon.com/s?k=salt%20%26%20pepper&page=3"},
		{"https://shop.example", "café?", 1, "https://shop.example/s?k=caf%C3%A9%3F&page=1"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SearchURL(tt.base, tt.keyword, tt.page), tt.keyword)
	}
}

func TestNavigatorGoto(t *testing.T) {
	t.Parallel()

	page := &fakePage{}
	limiter := &recordingLimiter{}
	nav := NewNavigator(page, NavigatorConfig{BaseURL: "https://shop.example"}, limiter)

	target, err := nav.Goto(context.Background(), "desk lamp", 2)
	require.NoError(t, err)
	require.Equal(t, "https://shop.example/s?k=desk%20lamp&page=2", target)
	require.Equal(t, []string{target}, page.navigations())
	require.Equal(t, []string{target}, limiter.urls)
	require.Equal(t, []string{DefaultSelectors().ResultsContainer}, page.readyCalls)
}

func TestNavigatorGotoNavigationTimeout(t *testing.T) {
	t.Parallel()

	page := &fakePage{hangNav: map[int]bool{1: true}}
	nav := NewNavigator(page, NavigatorConfig{
		BaseURL:    "https://shop.example",
		NavTimeout: 20 * time.Millisecond,
	}, nil)

	_, err := nav.Goto(context.Background(), "lamp", 1)
	require.Error(t, err)

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	require.Equal(t, 1, navErr.Page)
	require.Equal(t, "https://shop.example/s?k=lamp&page=1", navErr.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, page.readyCalls, "readiness is not awaited after a failed load")
}

func TestNavigatorGotoReadyTimeout(t *testing.T) {
	t.Parallel()

	page := &fakePage{hangReady: map[int]bool{1: true}}
	nav := NewNavigator(page, NavigatorConfig{
		BaseURL:      "https://shop.example",
		ReadyTimeout: 20 * time.Millisecond,
	}, nil)

	_, err := nav.Goto(context.Background(), "lamp", 1)
	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Contains(t, err.Error(), "wait for results")
}

func TestNavigatorGotoErrors(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("net::ERR_CONNECTION_RESET")
	page := &fakePage{navErr: map[int]error{1: loadErr}}
	nav := NewNavigator(page, NavigatorConfig{BaseURL: "https://shop.example"}, nil)

	_, err := nav.Goto(context.Background(), "lamp", 1)
	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	require.ErrorIs(t, err, loadErr)
	require.NotErrorIs(t, err, context.DeadlineExceeded)

	limitErr := errors.New("rate limit wait: context canceled")
	nav = NewNavigator(&fakePage{}, NavigatorConfig{BaseURL: "https://shop.example"}, &recordingLimiter{err: limitErr})
	_, err = nav.Goto(context.Background(), "lamp", 1)
	require.ErrorAs(t, err, &navErr)
	require.ErrorIs(t, err, limitErr)
}
