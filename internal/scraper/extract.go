package scraper

import (
	"net/url"
	"strings"

	"github.com/JakeFAU/market-search-scraper/internal/product"
)

// Selectors locates the search results and each field inside a result node.
type Selectors struct {
	ResultsContainer string `mapstructure:"results_container"`
	ResultItem       string `mapstructure:"result_item"`
	Title            string `mapstructure:"title"`
	TitleLink        string `mapstructure:"title_link"`
	Image            string `mapstructure:"image"`
	Rating           string `mapstructure:"rating"`
	Reviews          string `mapstructure:"reviews"`
	PriceWhole       string `mapstructure:"price_whole"`
	PriceFraction    string `mapstructure:"price_fraction"`
	SponsoredLabel   string `mapstructure:"sponsored_label"`
}

// DefaultSelectors matches the marketplace's current search result markup.
func DefaultSelectors() Selectors {
	return Selectors{
		ResultsContainer: `[data-component-type="s-search-results"]`,
		ResultItem:       `[data-component-type="s-search-result"]`,
		Title:            "h2 .a-link-normal .a-text-normal",
		TitleLink:        "h2 a",
		Image:            ".s-image",
		Rating:           ".a-icon-alt",
		Reviews:          ".a-size-base.s-underline-text",
		PriceWhole:       ".a-price-whole",
		PriceFraction:    ".a-price-fraction",
		SponsoredLabel:   ".s-label-sponsored-label",
	}
}

// withDefaults fills any empty selector from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&s.ResultsContainer, d.ResultsContainer)
	fill(&s.ResultItem, d.ResultItem)
	fill(&s.Title, d.Title)
	fill(&s.TitleLink, d.TitleLink)
	fill(&s.Image, d.Image)
	fill(&s.Rating, d.Rating)
	fill(&s.Reviews, d.Reviews)
	fill(&s.PriceWhole, d.PriceWhole)
	fill(&s.PriceFraction, d.PriceFraction)
	fill(&s.SponsoredLabel, d.SponsoredLabel)
	return s
}

// Extractor projects result nodes into products.
type Extractor struct {
	sel Selectors
}

// NewExtractor returns an Extractor; empty selectors fall back to defaults.
func NewExtractor(sel Selectors) *Extractor {
	return &Extractor{sel: sel.withDefaults()}
}

// ExtractPage extracts every valid product from snap in node order.
func (e *Extractor) ExtractPage(snap Snapshot) product.ResultPage {
	base, err := url.Parse(snap.URL)
	if err != nil {
		base = nil
	}
	page := make(product.ResultPage, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if p, ok := e.Extract(n, base); ok {
			page = append(page, p)
		}
	}
	return page
}

// Extract maps one node to a product. It reports false when the node lacks
// a title or a resolvable product link; such nodes contribute nothing.
func (e *Extractor) Extract(n Node, base *url.URL) (product.Product, bool) {
	title, _ := n.Text(e.sel.Title)
	href, _ := n.Attr(e.sel.TitleLink, "href")
	productURL, _ := absolute(base, href)

	p := product.Product{
		Title:       title,
		ProductURL:  productURL,
		IsSponsored: n.Has(e.sel.SponsoredLabel),
	}
	if !p.Valid() {
		return product.Product{}, false
	}
	if src, ok := n.Attr(e.sel.Image, "src"); ok {
		if abs, ok := absolute(base, src); ok {
			p.ImageURL = &abs
		}
	}
	if alt, ok := n.Text(e.sel.Rating); ok {
		// "4.5 out of 5 stars" -> "4.5"
		p.Rating = product.StringPtr(strings.Fields(alt)[0])
	}
	if reviews, ok := n.Text(e.sel.Reviews); ok {
		p.Reviews = &reviews
	}
	p.Price = composePrice(n, e.sel)
	return p, true
}

// composePrice joins the whole and fraction parts verbatim; a price is only
// reported when both parts are present.
func composePrice(n Node, sel Selectors) *string {
	whole, ok := n.Text(sel.PriceWhole)
	if !ok {
		return nil
	}
	fraction, ok := n.Text(sel.PriceFraction)
	if !ok {
		return nil
	}
	return product.StringPtr("$" + whole + fraction)
}

func absolute(base *url.URL, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if !u.IsAbs() {
		return "", false
	}
	return u.String(), true
}
