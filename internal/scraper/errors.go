package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeyword is returned when a scrape is requested without a keyword.
	ErrInvalidKeyword = errors.New("keyword is required")
	// ErrBrowserUnavailable wraps failures to start the headless browser.
	ErrBrowserUnavailable = errors.New("browser unavailable")
)

// NavigationError reports a failed or timed-out page load. It aborts the
// whole scrape.
type NavigationError struct {
	Page int
	URL  string
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failure while reading a loaded page.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract page %d: %v", e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
