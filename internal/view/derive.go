package view

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/JakeFAU/market-search-scraper/internal/product"
)

// Derive computes the displayed product list from s. It never mutates s;
// calling it twice on the same state yields the same result.
func Derive(s State) []product.Product {
	out := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		if s.hideSponsored && p.IsSponsored {
			continue
		}
		out = append(out, p)
	}

	switch s.Sort() {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(ParsePrice(a.Price), ParsePrice(b.Price))
		})
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(ParsePrice(b.Price), ParsePrice(a.Price))
		})
	case SortRatingDesc:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(ParseRating(b.Rating), ParseRating(a.Rating))
		})
	}
	return out
}

// ParsePrice turns "$1,299.00" into 1299. Missing or unparsable prices are 0.
func ParsePrice(price *string) float64 {
	if price == nil {
		return 0
	}
	clean := strings.NewReplacer("$", "", ",", "").Replace(*price)
	return parseFloat(clean)
}

// ParseRating turns "4.5" into 4.5. Missing or unparsable ratings are 0.
func ParseRating(rating *string) float64 {
	if rating == nil {
		return 0
	}
	return parseFloat(*rating)
}

// parseFloat reads a finite decimal number. Hex floats, NaN and infinities
// are all treated as unparseable.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
