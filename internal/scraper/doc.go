// Package scraper implements the marketplace search pipeline: a browser
// controller that owns one headless Chrome per request, a navigator that
// loads paginated search URLs under bounded waits, a field extractor that
// projects result nodes into product records, and a pagination driver that
// stitches pages together under the stop-on-empty and page-cap rules.
package scraper
