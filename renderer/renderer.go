// Package renderer abstracts the rendered-document interface the harvester
// runs against: navigation, content-readiness waits, element enumeration,
// and incremental content loading.
//
// The production implementation (Rod) drives a live browser page; the
// Static implementation replays saved page snapshots and backs the core's
// tests and extraction debugging.
package renderer

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Handle lookups when no element matches.
var ErrNotFound = errors.New("renderer: no element matches selector")

// Handle is one rendered element. Lookups never wait; a selector that
// matches nothing fails immediately with ErrNotFound so fallback chains
// stay cheap.
type Handle interface {
	// Text returns the element's visible text.
	Text() (string, error)

	// Attribute returns the named attribute's value, or nil when the
	// attribute is absent.
	Attribute(name string) (*string, error)

	// Element returns the first descendant matching the selector.
	Element(selector string) (Handle, error)

	// Elements returns all descendants matching the selector, in
	// document order.
	Elements(selector string) ([]Handle, error)
}

// Renderer is the rendered-document capability the harvest core consumes.
// Session lifecycle (open, authenticate, close) belongs to the caller; the
// core only drives an already-authenticated renderer.
type Renderer interface {
	// Navigate loads the given URL.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until any of the selectors matches an element or
	// the timeout elapses, reporting whether content became ready.
	WaitReady(ctx context.Context, selectors []string, timeout time.Duration) bool

	// Elements returns all elements in the document matching the
	// selector, in document order.
	Elements(selector string) ([]Handle, error)

	// LoadMore triggers the next incremental content load (the
	// scroll-to-bottom equivalent).
	LoadMore(ctx context.Context) error
}
