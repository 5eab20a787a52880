package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/renderer"
)

// snapshotWithItems builds a page snapshot holding one item per content.
func snapshotWithItems(contents ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, c := range contents {
		sb.WriteString(`<article data-testid="tweet"><div data-testid="tweetText">`)
		sb.WriteString(c)
		sb.WriteString(`</div></article>`)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// loopConfig is a harvest config with all waits zeroed for fast tests.
func loopConfig() config.HarvestConfig {
	return config.HarvestConfig{
		MaxSteps:        50,
		NoProgressLimit: 2,
		DaysBack:        3,
	}
}

func TestControllerRun_ConvergesWhenFeedStopsGrowing(t *testing.T) {
	r, err := renderer.NewStatic(
		snapshotWithItems("first item text", "second item text"),
		snapshotWithItems("first item text", "second item text", "third item text"),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctrl := NewController(r, loopConfig())
	res, err := ctrl.Run(context.Background(), "#nifty")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !res.Succeeded {
		t.Error("run with collected items should be marked succeeded")
	}
	if len(res.Items) != 3 {
		t.Fatalf("collected %d items, want 3", len(res.Items))
	}
	for _, item := range res.Items {
		if item.SourceQuery != "#nifty" {
			t.Errorf("item tagged with query %q, want #nifty", item.SourceQuery)
		}
	}
	if !strings.Contains(r.LastURL, "x.com/search") {
		t.Errorf("controller navigated to %q, want a search URL", r.LastURL)
	}
}

func TestControllerRun_DeduplicatesWithinQuery(t *testing.T) {
	// The same content appears twice in one snapshot and again after the
	// next load; only one record survives.
	r, err := renderer.NewStatic(
		snapshotWithItems("repeated content here", "repeated content here"),
		snapshotWithItems("repeated content here", "Repeated   CONTENT here"),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctrl := NewController(r, loopConfig())
	res, err := ctrl.Run(context.Background(), "#nifty")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Items) != 1 {
		t.Errorf("collected %d items, want 1 after dedup", len(res.Items))
	}
}

func TestControllerRun_StopsAtStepCeiling(t *testing.T) {
	// Every snapshot adds a fresh item, so the loop never converges and
	// must stop at the step ceiling instead.
	snapshots := make([]string, 0, 6)
	contents := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		contents = append(contents, fmt.Sprintf("unique item number %d", i))
		snapshots = append(snapshots, snapshotWithItems(contents...))
	}
	r, err := renderer.NewStatic(snapshots...)
	if err != nil {
		t.Fatal(err)
	}

	cfg := loopConfig()
	cfg.MaxSteps = 3
	ctrl := NewController(r, cfg)

	res, err := ctrl.Run(context.Background(), "#nifty")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Items) != 3 {
		t.Errorf("collected %d items, want 3 (one per step)", len(res.Items))
	}
}

func TestControllerRun_NoReadyContent(t *testing.T) {
	r, err := renderer.NewStatic(`<html><body><p>nothing to see</p></body></html>`)
	if err != nil {
		t.Fatal(err)
	}

	ctrl := NewController(r, loopConfig())
	res, err := ctrl.Run(context.Background(), "#veryquiettag")
	if err != nil {
		t.Fatalf("a query with no content is not an error, got %v", err)
	}
	if res.Succeeded {
		t.Error("empty run should not be marked succeeded")
	}
	if len(res.Items) != 0 {
		t.Errorf("expected no items, got %d", len(res.Items))
	}
}

// timeoutRecordingRenderer captures the readiness budget the loop uses.
type timeoutRecordingRenderer struct {
	renderer.Renderer
	gotTimeout time.Duration
}

func (r *timeoutRecordingRenderer) Navigate(context.Context, string) error { return nil }

func (r *timeoutRecordingRenderer) WaitReady(_ context.Context, _ []string, timeout time.Duration) bool {
	r.gotTimeout = timeout
	return false
}

func TestNewController_DefaultsReadyTimeout(t *testing.T) {
	// A zero ReadyTimeout would make the readiness wait expire instantly
	// against a live page, so it must fall back like the counters do.
	r := &timeoutRecordingRenderer{}
	ctrl := NewController(r, config.HarvestConfig{})

	if _, err := ctrl.Run(context.Background(), "#nifty"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.gotTimeout != 10*time.Second {
		t.Errorf("readiness budget = %v, want the 10s default", r.gotTimeout)
	}
}

// failingRenderer exercises navigation faults; only Navigate is reachable.
type failingRenderer struct {
	renderer.Renderer
}

func (f *failingRenderer) Navigate(context.Context, string) error {
	return errors.New("net::ERR_CONNECTION_RESET")
}

func TestControllerRun_NavigationFault(t *testing.T) {
	ctrl := NewController(&failingRenderer{}, loopConfig())

	_, err := ctrl.Run(context.Background(), "#nifty")
	if err == nil {
		t.Fatal("expected a navigation error")
	}
	var herr *models.HarvestError
	if !errors.As(err, &herr) {
		t.Fatalf("expected a HarvestError, got %T", err)
	}
	if herr.Code != models.ErrCodeNavigation {
		t.Errorf("error code = %q, want %q", herr.Code, models.ErrCodeNavigation)
	}
}

func TestControllerRun_CancelledContext(t *testing.T) {
	r, err := renderer.NewStatic(snapshotWithItems("some item text"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := NewController(r, loopConfig())
	if _, err := ctrl.Run(ctx, "#nifty"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
