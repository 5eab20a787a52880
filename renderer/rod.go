package renderer

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// Rod is the production Renderer over a live browser page.
type Rod struct {
	page *rod.Page
}

// NewRod wraps an already-open (and, for authenticated feeds, already
// logged-in) page.
func NewRod(page *rod.Page) *Rod {
	return &Rod{page: page}
}

// Navigate loads the URL on the underlying page.
func (r *Rod) Navigate(ctx context.Context, url string) error {
	return r.page.Context(ctx).Navigate(url)
}

// WaitReady races the given selectors against each other and the timeout.
// The first selector to match any element wins.
func (r *Rod) WaitReady(ctx context.Context, selectors []string, timeout time.Duration) bool {
	p := r.page.Context(ctx).Timeout(timeout)
	race := p.Race()
	for _, sel := range selectors {
		race = race.Element(sel)
	}
	_, err := race.Do()
	return err == nil
}

// Elements returns all elements matching the selector without waiting for
// any to appear.
func (r *Rod) Elements(selector string) ([]Handle, error) {
	els, err := r.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, len(els))
	for i, el := range els {
		handles[i] = &rodHandle{el: el}
	}
	return handles, nil
}

// LoadMore scrolls to the bottom of the document, triggering the feed's
// next incremental load.
func (r *Rod) LoadMore(ctx context.Context) error {
	_, err := r.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

// rodHandle adapts a *rod.Element to the Handle interface. All descendant
// lookups use NotFoundSleeper so a missing element fails immediately
// instead of polling.
type rodHandle struct {
	el *rod.Element
}

func (h *rodHandle) Text() (string, error) {
	return h.el.Text()
}

func (h *rodHandle) Attribute(name string) (*string, error) {
	return h.el.Attribute(name)
}

func (h *rodHandle) Element(selector string) (Handle, error) {
	el, err := h.el.Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return nil, ErrNotFound
	}
	return &rodHandle{el: el}, nil
}

func (h *rodHandle) Elements(selector string) ([]Handle, error) {
	els, err := h.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, len(els))
	for i, el := range els {
		handles[i] = &rodHandle{el: el}
	}
	return handles, nil
}
