package harvest

import (
	"testing"

	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/renderer"
)

// itemHandle parses a page fixture and returns its first item handle.
func itemHandle(t *testing.T, html string) renderer.Handle {
	t.Helper()
	r, err := renderer.NewStatic(html)
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	handles, err := r.Elements(`article[data-testid="tweet"]`)
	if err != nil {
		t.Fatalf("enumerating items: %v", err)
	}
	if len(handles) == 0 {
		t.Fatal("fixture contains no item")
	}
	return handles[0]
}

func TestExtract_FullItem(t *testing.T) {
	h := itemHandle(t, `<html><body>
		<article data-testid="tweet">
			<div data-testid="User-Name"><a role="link" href="https://x.com/trader_jane">Jane</a></div>
			<time datetime="2025-03-09T12:30:00.000Z">Mar 9</time>
			<div data-testid="tweetText">Nifty closed above 22000 today #nifty #nifty @marketwatch</div>
			<div aria-label="12 replies"></div>
			<div aria-label="1.2K reposts"></div>
			<div aria-label="3,400 likes"></div>
			<div aria-label="56K views"></div>
			<div aria-label="7 bookmarks"></div>
		</article>
	</body></html>`)

	rec := NewExtractor(0).Extract(h, "#nifty")
	if rec == nil {
		t.Fatal("expected a record")
	}

	if rec.Author != "trader_jane" {
		t.Errorf("author = %q, want trader_jane", rec.Author)
	}
	if rec.Timestamp == nil || *rec.Timestamp != "2025-03-09T12:30:00.000Z" {
		t.Errorf("timestamp = %v, want 2025-03-09T12:30:00.000Z", rec.Timestamp)
	}
	if rec.Content != "Nifty closed above 22000 today #nifty #nifty @marketwatch" {
		t.Errorf("unexpected content: %q", rec.Content)
	}
	if rec.SourceQuery != "#nifty" {
		t.Errorf("source query = %q, want #nifty", rec.SourceQuery)
	}

	if len(rec.Hashtags) != 1 || rec.Hashtags[0] != "#nifty" {
		t.Errorf("hashtags should deduplicate, got %v", rec.Hashtags)
	}
	if len(rec.Mentions) != 1 || rec.Mentions[0] != "@marketwatch" {
		t.Errorf("mentions = %v, want [@marketwatch]", rec.Mentions)
	}

	want := models.Engagement{Replies: 12, Reshares: 1200, Likes: 3400, Views: 56000, Bookmarks: 7}
	if rec.Engagement != want {
		t.Errorf("engagement = %+v, want %+v", rec.Engagement, want)
	}
}

func TestExtract_ContentTooShort(t *testing.T) {
	h := itemHandle(t, `<html><body>
		<article data-testid="tweet">
			<div data-testid="tweetText">gm</div>
		</article>
	</body></html>`)

	if rec := NewExtractor(0).Extract(h, "#nifty"); rec != nil {
		t.Errorf("content below the minimum length should be dropped, got %+v", rec)
	}
}

func TestExtract_NoContentRegion(t *testing.T) {
	h := itemHandle(t, `<html><body>
		<article data-testid="tweet">
			<span>promoted</span>
		</article>
	</body></html>`)

	if rec := NewExtractor(0).Extract(h, "#nifty"); rec != nil {
		t.Errorf("item without a content region should be dropped, got %+v", rec)
	}
}

func TestExtract_AuthorFallbackScan(t *testing.T) {
	// No dedicated profile link; the author resolves from the link scan.
	h := itemHandle(t, `<html><body>
		<article data-testid="tweet">
			<a href="/search?q=x">search</a>
			<a href="https://x.com/backup_user">profile</a>
			<div data-testid="tweetText">banknifty holding support for now</div>
		</article>
	</body></html>`)

	rec := NewExtractor(0).Extract(h, "#banknifty")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Author != "backup_user" {
		t.Errorf("author = %q, want backup_user", rec.Author)
	}
}

func TestExtract_UnknownAuthor(t *testing.T) {
	h := itemHandle(t, `<html><body>
		<article data-testid="tweet">
			<a href="https://x.com/someone/status/123">permalink</a>
			<div data-testid="tweetText">sensex range bound this week</div>
		</article>
	</body></html>`)

	rec := NewExtractor(0).Extract(h, "#sensex")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Author != models.AuthorUnknown {
		t.Errorf("author = %q, want %q", rec.Author, models.AuthorUnknown)
	}
	if rec.Timestamp != nil {
		t.Errorf("timestamp should be nil when no time element exists, got %v", rec.Timestamp)
	}
}

func TestExtract_ContentSelectorFallback(t *testing.T) {
	h := itemHandle(t, `<html><body>
		<article data-testid="tweet">
			<div lang="en">fallback region with enough text</div>
		</article>
	</body></html>`)

	rec := NewExtractor(0).Extract(h, "#nse")
	if rec == nil {
		t.Fatal("expected a record from the fallback content selector")
	}
	if rec.Content != "fallback region with enough text" {
		t.Errorf("unexpected content: %q", rec.Content)
	}
}

func TestHashtags_OrderAndDedup(t *testing.T) {
	got := Hashtags("#a text #b more #a #c")
	want := []string{"#a", "#b", "#c"}
	if len(got) != len(want) {
		t.Fatalf("hashtags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hashtags = %v, want %v", got, want)
		}
	}
}

func TestMentions_Empty(t *testing.T) {
	if got := Mentions("no handles in here"); got != nil {
		t.Errorf("expected nil for content without mentions, got %v", got)
	}
}
