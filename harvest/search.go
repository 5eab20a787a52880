package harvest

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SearchURL builds the bounded live-search URL for a query: the term plus
// a trailing since:/until: date window of daysBack days ending at now.
// Spaces inside the term are dropped so multi-word tags form one token.
func SearchURL(query string, daysBack int, now time.Time) string {
	if daysBack <= 0 {
		daysBack = 1
	}

	until := now.Format("2006-01-02")
	since := now.AddDate(0, 0, -daysBack).Format("2006-01-02")

	term := strings.ReplaceAll(query, " ", "")
	expr := fmt.Sprintf("%s since:%s until:%s", term, since, until)

	return "https://x.com/search?q=" + url.QueryEscape(expr) + "&src=typed_query&f=live"
}
