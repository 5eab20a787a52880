package renderer

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Static replays a sequence of saved page snapshots. Each snapshot is the
// full document as it looked after one more incremental load, so LoadMore
// just advances to the next snapshot. Useful for debugging extraction
// against captured page dumps, and as the test double for the harvest loop.
type Static struct {
	docs []*goquery.Document
	idx  int

	// LastURL records the most recent Navigate target.
	LastURL string
}

// NewStatic parses the given HTML snapshots. At least one snapshot is
// required; parsing stops at the first malformed document.
func NewStatic(snapshots ...string) (*Static, error) {
	docs := make([]*goquery.Document, 0, len(snapshots))
	for _, html := range snapshots {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return &Static{docs: docs}, nil
}

// Navigate records the URL and rewinds to the first snapshot.
func (s *Static) Navigate(_ context.Context, url string) error {
	s.LastURL = url
	s.idx = 0
	return nil
}

// WaitReady reports whether any selector matches in the current snapshot.
// There is nothing to wait for in a static document, so the timeout only
// matters when no snapshot is loaded.
func (s *Static) WaitReady(_ context.Context, selectors []string, _ time.Duration) bool {
	if len(s.docs) == 0 {
		return false
	}
	doc := s.docs[s.idx]
	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// Elements returns handles for all matches in the current snapshot.
func (s *Static) Elements(selector string) ([]Handle, error) {
	if len(s.docs) == 0 {
		return nil, nil
	}
	return selectionHandles(s.docs[s.idx].Find(selector)), nil
}

// LoadMore advances to the next snapshot when one exists. Running off the
// end is not an error; the document simply stops growing, which is exactly
// how a drained feed behaves.
func (s *Static) LoadMore(_ context.Context) error {
	if s.idx < len(s.docs)-1 {
		s.idx++
	}
	return nil
}

// staticHandle adapts a single-element goquery selection to Handle.
type staticHandle struct {
	sel *goquery.Selection
}

func (h *staticHandle) Text() (string, error) {
	return h.sel.Text(), nil
}

func (h *staticHandle) Attribute(name string) (*string, error) {
	val, ok := h.sel.Attr(name)
	if !ok {
		return nil, nil
	}
	return &val, nil
}

func (h *staticHandle) Element(selector string) (Handle, error) {
	found := h.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, ErrNotFound
	}
	return &staticHandle{sel: found}, nil
}

func (h *staticHandle) Elements(selector string) ([]Handle, error) {
	return selectionHandles(h.sel.Find(selector)), nil
}

func selectionHandles(sel *goquery.Selection) []Handle {
	handles := make([]Handle, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		handles = append(handles, &staticHandle{sel: s})
	})
	return handles
}
