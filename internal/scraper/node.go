package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the read-only view of one rendered search result. It exposes text
// and attribute lookups only; no live browser handle crosses this boundary.
type Node interface {
	// Text returns the trimmed text content of the first descendant matching
	// selector. It reports false when nothing matches or the text is empty.
	Text(selector string) (string, bool)
	// Attr returns the named attribute of the first descendant matching
	// selector. It reports false when nothing matches or the value is empty.
	Attr(selector, name string) (string, bool)
	// Has reports whether any descendant matches selector.
	Has(selector string) bool
}

// Snapshot is the serializable state shipped out of the browser for one page:
// the final page location and the result nodes found in its container.
type Snapshot struct {
	URL   string
	Nodes []Node
}

// ParseSnapshot builds result nodes from the outer HTML of a results container.
func ParseSnapshot(pageURL, containerHTML, itemSelector string) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(containerHTML))
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse results html: %w", err)
	}
	snap := Snapshot{URL: pageURL}
	doc.Find(itemSelector).Each(func(_ int, s *goquery.Selection) {
		snap.Nodes = append(snap.Nodes, selectionNode{sel: s})
	})
	return snap, nil
}

type selectionNode struct {
	sel *goquery.Selection
}

func (n selectionNode) Text(selector string) (string, bool) {
	match := n.sel.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(match.Text())
	return text, text != ""
}

func (n selectionNode) Attr(selector, name string) (string, bool) {
	val, ok := n.sel.Find(selector).First().Attr(name)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

func (n selectionNode) Has(selector string) bool {
	return n.sel.Find(selector).Length() > 0
}
