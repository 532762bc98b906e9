// Package product defines the search result record shared by the scraper,
// the HTTP API, and the client view.
package product

// Product is one extracted search result. Title and ProductURL are always
// set; optional fields are nil when the marketplace did not render them.
type Product struct {
	Title       string  `json:"title"`
	Rating      *string `json:"rating"`
	Reviews     *string `json:"reviews"`
	Price       *string `json:"price"`
	ImageURL    *string `json:"imageUrl"`
	ProductURL  string  `json:"productUrl"`
	IsSponsored bool    `json:"isSponsored"`
}

// ResultPage is the ordered set of products extracted from one search page.
type ResultPage []Product

// Valid reports whether p carries both required fields.
func (p Product) Valid() bool {
	return p.Title != "" && p.ProductURL != ""
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// Value dereferences an optional field, returning "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
