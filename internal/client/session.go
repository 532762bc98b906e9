package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/JakeFAU/market-search-scraper/internal/product"
	"github.com/JakeFAU/market-search-scraper/internal/view"
)

// ErrEmptyKeyword is returned by Session.Search before any request is sent.
var ErrEmptyKeyword = errors.New("please enter a search keyword")

// Searcher fetches products for a keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]product.Product, error)
}

// Session is the client-side state store. The current view.State is only
// replaced when a fetch succeeds.
type Session struct {
	mu       sync.Mutex
	searcher Searcher
	state    view.State
}

// NewSession starts with an empty state.
func NewSession(s Searcher) *Session {
	return &Session{searcher: s, state: view.NewState()}
}

// Search fetches results for keyword and replaces the stored products. On
// error the previous state is kept.
func (s *Session) Search(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ErrEmptyKeyword
	}
	products, err := s.searcher.Search(ctx, keyword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.WithProducts(products)
	return nil
}

// SetSort changes the sort mode without refetching.
func (s *Session) SetSort(mode view.SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.WithSort(mode)
}

// SetHideSponsored changes the sponsored filter without refetching.
func (s *Session) SetHideSponsored(hide bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.WithHideSponsored(hide)
}

// State returns the current snapshot.
func (s *Session) State() view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns the filtered, sorted products for display.
func (s *Session) View() []product.Product {
	return view.Derive(s.State())
}
