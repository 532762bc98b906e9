// Package client calls the scrape API and keeps the fetched results in a
// view.State for filtering and sorting.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JakeFAU/market-search-scraper/internal/product"
)

const scrapePath = "/api/scrape"

// HTTPError is a non-2xx answer from the scrape API.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! Status: %d", e.Status)
}

// Client fetches search results from a scrape API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a Client for the API at baseURL, e.g. http://localhost:8080.
// The default HTTP client waits long enough for a full three-page scrape.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one scrape for keyword. A nil error always comes with a
// non-nil slice.
func (c *Client) Search(ctx context.Context, keyword string) ([]product.Product, error) {
	target := c.baseURL + scrapePath + "?keyword=" + strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch results: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		return nil, &HTTPError{Status: resp.StatusCode, Message: payload.Error}
	}

	var products []product.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if products == nil {
		products = []product.Product{}
	}
	return products, nil
}
