package harvest

import (
	"fmt"
	"regexp"

	"github.com/andybalholm/cascadia"
)

// X.com DOM selectors. The upstream markup changes frequently, so every
// lookup is an ordered fallback chain tried most-specific first; the first
// strategy that yields anything wins. Update these when harvesting breaks.
var (
	// readySelectors are the content-presence signals awaited after
	// dispatching a search, in priority order.
	readySelectors = []string{
		`article[data-testid="tweet"]`,
		`div[data-testid="tweet"]`,
		`article`,
		`div[data-testid="cellInnerDiv"]`,
	}

	// itemSelectors enumerate the currently visible item handles.
	itemSelectors = []string{
		`article[data-testid="tweet"]`,
		`div[data-testid="cellInnerDiv"]`,
		`article`,
	}

	// contentSelectors resolve an item's text region.
	contentSelectors = []string{
		`div[data-testid="tweetText"]`,
		`div[lang]`,
	}

	// authorLinkSelector is the dedicated profile link inside an item;
	// anyLinkSelector is the fallback scan.
	authorLinkSelector = `div[data-testid="User-Name"] a[role="link"]`
	anyLinkSelector    = `a[href]`

	timeSelector     = `time`
	labelledSelector = `[aria-label]`
)

// profileURLPattern recognizes an absolute profile URL whose trailing path
// segment is the account handle.
var profileURLPattern = regexp.MustCompile(`^https://(x|twitter)\.com/[A-Za-z0-9_]+/?$`)

var (
	hashtagPattern = regexp.MustCompile(`#\w+`)
	mentionPattern = regexp.MustCompile(`@\w+`)
)

func init() {
	// A typo in a selector chain would silently disable its fallback tier,
	// so validate every selector up front.
	chains := [][]string{
		readySelectors,
		itemSelectors,
		contentSelectors,
		{authorLinkSelector, anyLinkSelector, timeSelector, labelledSelector},
	}
	for _, chain := range chains {
		for _, sel := range chain {
			if _, err := cascadia.Parse(sel); err != nil {
				panic(fmt.Sprintf("invalid selector %q: %v", sel, err))
			}
		}
	}
}
