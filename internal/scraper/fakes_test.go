package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
)

// fakeNode answers selector lookups from fixed maps.
type fakeNode struct {
	text  map[string]string
	attrs map[string]map[string]string
	has   map[string]bool
}

func (n fakeNode) Text(selector string) (string, bool) {
	v, ok := n.text[selector]
	return v, ok && v != ""
}

func (n fakeNode) Attr(selector, name string) (string, bool) {
	v, ok := n.attrs[selector][name]
	return v, ok && v != ""
}

func (n fakeNode) Has(selector string) bool {
	return n.has[selector]
}

func productNode(i int) fakeNode {
	sel := DefaultSelectors()
	return fakeNode{
		text: map[string]string{sel.Title: fmt.Sprintf("Product %d", i)},
		attrs: map[string]map[string]string{
			sel.TitleLink: {"href": fmt.Sprintf("/dp/P%03d", i)},
		},
	}
}

func productNodes(n int) []Node {
	nodes := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		nodes = append(nodes, productNode(i))
	}
	return nodes
}

// fakePage serves canned result nodes keyed by the page query parameter.
type fakePage struct {
	mu         sync.Mutex
	nodes      map[int][]Node
	navErr     map[int]error
	hangNav    map[int]bool
	hangReady  map[int]bool
	snapErr    map[int]error
	panicSnap  bool
	current    int
	navigated  []string
	readyCalls []string
}

func (p *fakePage) Navigate(ctx context.Context, rawURL string) error {
	p.mu.Lock()
	p.navigated = append(p.navigated, rawURL)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	idx, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return errors.New("missing page parameter")
	}

	p.mu.Lock()
	p.current = idx
	hang := p.hangNav[idx]
	navErr := p.navErr[idx]
	p.mu.Unlock()

	if hang {
		<-ctx.Done()
		return errors.New("navigation aborted")
	}
	return navErr
}

func (p *fakePage) WaitReady(ctx context.Context, selector string) error {
	p.mu.Lock()
	p.readyCalls = append(p.readyCalls, selector)
	hang := p.hangReady[p.current]
	p.mu.Unlock()

	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (p *fakePage) Snapshot(_ context.Context, _, _ string) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicSnap {
		panic("snapshot exploded")
	}
	if err := p.snapErr[p.current]; err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		URL:   "https://shop.example/s?page=" + strconv.Itoa(p.current),
		Nodes: p.nodes[p.current],
	}, nil
}

func (p *fakePage) navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigated...)
}

type fakeBrowser struct {
	page     Page
	closes   int
	closeErr error
	mu       *sync.Mutex
}

func (b *fakeBrowser) Page() Page { return b.page }

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return b.closeErr
}

// fakeLauncher hands out browsers built by newPage and counts lifecycle calls.
type fakeLauncher struct {
	mu        sync.Mutex
	newPage   func() Page
	launchErr error
	closeErr  error
	browsers  []*fakeBrowser
}

func (l *fakeLauncher) Launch(context.Context) (Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	b := &fakeBrowser{page: l.newPage(), closeErr: l.closeErr, mu: &l.mu}
	l.browsers = append(l.browsers, b)
	return b, nil
}

func (l *fakeLauncher) counts() (launched, closed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.browsers {
		closed += b.closes
	}
	return len(l.browsers), closed
}

type recordingLimiter struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (r *recordingLimiter) Wait(_ context.Context, rawURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, rawURL)
	return r.err
}
