package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JakeFAU/market-search-scraper/internal/product"
)

// SortMode orders the derived product list.
type SortMode string

const (
	SortNone       SortMode = "none"
	SortPriceAsc   SortMode = "price-asc"
	SortPriceDesc  SortMode = "price-desc"
	SortRatingDesc SortMode = "rating-desc"
)

// ParseSortMode accepts the mode names above plus "rating" and "" (none).
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(SortNone):
		return SortNone, nil
	case string(SortPriceAsc):
		return SortPriceAsc, nil
	case string(SortPriceDesc):
		return SortPriceDesc, nil
	case string(SortRatingDesc), "rating":
		return SortRatingDesc, nil
	default:
		return SortNone, fmt.Errorf("unknown sort mode %q", s)
	}
}

// State is an immutable snapshot of what the user fetched and how they want
// it shown. The With* methods return modified copies.
type State struct {
	products      []product.Product
	sort          SortMode
	hideSponsored bool
}

// NewState returns an empty state with no sorting.
func NewState() State {
	return State{sort: SortNone}
}

// WithProducts replaces the raw product list wholesale.
func (s State) WithProducts(products []product.Product) State {
	s.products = slices.Clone(products)
	return s
}

// WithSort sets the ordering applied to the visible list. The raw list is
// left untouched.
func (s State) WithSort(mode SortMode) State {
	s.sort = mode
	return s
}

// WithHideSponsored toggles whether sponsored products are filtered out of
// the visible list.
func (s State) WithHideSponsored(hide bool) State {
	s.hideSponsored = hide
	return s
}

// Products returns a copy of the raw, unfiltered product list.
func (s State) Products() []product.Product {
	return slices.Clone(s.products)
}

// Sort returns the active sort mode; the zero State reports SortNone.
func (s State) Sort() SortMode {
	if s.sort == "" {
		return SortNone
	}
	return s.sort
}

// HideSponsored reports whether sponsored products are hidden.
func (s State) HideSponsored() bool {
	return s.hideSponsored
}
