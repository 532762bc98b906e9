package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/market-search-scraper/internal/product"
)

func TestParseSortMode(t *testing.T) {
	t.Parallel()

	tests := map[string]SortMode{
		"":            SortNone,
		"none":        SortNone,
		"price-asc":   SortPriceAsc,
		"PRICE-DESC":  SortPriceDesc,
		"rating-desc": SortRatingDesc,
		"rating":      SortRatingDesc,
	}
	for in, want := range tests {
		got, err := ParseSortMode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseSortMode("cheapest")
	require.Error(t, err)
}

func TestStateIsImmutable(t *testing.T) {
	t.Parallel()

	raw := []product.Product{{Title: "A", ProductURL: "https://x/a"}}
	s0 := NewState()
	s1 := s0.WithProducts(raw).WithSort(SortPriceAsc).WithHideSponsored(true)

	require.Empty(t, s0.Products())
	require.Equal(t, SortNone, s0.Sort())
	require.False(t, s0.HideSponsored())

	raw[0].Title = "mutated by caller"
	require.Equal(t, "A", s1.Products()[0].Title)

	out := s1.Products()
	out[0].Title = "mutated by reader"
	require.Equal(t, "A", s1.Products()[0].Title)

	require.Equal(t, SortNone, State{}.Sort())
}
