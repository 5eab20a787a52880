package harvest

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/gleaner/models"
	"github.com/use-agent/gleaner/renderer"
)

// defaultMinContentLength rejects shorter item text as UI chrome noise.
const defaultMinContentLength = 5

// Extractor turns one rendered item handle into a structured record.
// Every field resolves through an explicit value-or-default chain: partial
// failures degrade to sentinels, they never abort the item.
type Extractor struct {
	minContentLength int
}

// NewExtractor creates an Extractor. minContentLength <= 0 selects the
// default of 5 characters.
func NewExtractor(minContentLength int) *Extractor {
	if minContentLength <= 0 {
		minContentLength = defaultMinContentLength
	}
	return &Extractor{minContentLength: minContentLength}
}

// Extract produces a record from one item handle, or nil when the item is
// unusable (no resolvable content region, or content too short). A nil
// return is expected noise, not an error.
func (e *Extractor) Extract(h renderer.Handle, sourceQuery string) *models.ItemRecord {
	content, ok := e.resolveContent(h)
	if !ok {
		return nil
	}
	if utf8.RuneCountInString(content) < e.minContentLength {
		return nil
	}

	return &models.ItemRecord{
		Author:      resolveAuthor(h),
		Timestamp:   resolveTimestamp(h),
		Content:     content,
		SourceQuery: sourceQuery,
		Hashtags:    Hashtags(content),
		Mentions:    Mentions(content),
		Engagement:  extractEngagement(h),
	}
}

// resolveContent tries the content selector chain in priority order.
func (e *Extractor) resolveContent(h renderer.Handle) (string, bool) {
	for _, sel := range contentSelectors {
		el, err := h.Element(sel)
		if err != nil {
			continue
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		return strings.TrimSpace(text), true
	}
	return "", false
}

// resolveAuthor tries the dedicated profile link first, then scans every
// link for one matching the profile URL pattern. Unresolvable authors get
// the sentinel, never an error.
func resolveAuthor(h renderer.Handle) string {
	if link, err := h.Element(authorLinkSelector); err == nil {
		if href, err := link.Attribute("href"); err == nil && href != nil {
			if handle := trailingSegment(*href); handle != "" {
				return handle
			}
		}
	}

	links, err := h.Elements(anyLinkSelector)
	if err == nil {
		for _, link := range links {
			href, err := link.Attribute("href")
			if err != nil || href == nil {
				continue
			}
			if profileURLPattern.MatchString(*href) {
				if handle := trailingSegment(*href); handle != "" {
					return handle
				}
			}
		}
	}

	return models.AuthorUnknown
}

// trailingSegment returns the last path segment of a link target.
func trailingSegment(href string) string {
	href = strings.TrimRight(href, "/")
	if idx := strings.LastIndexByte(href, '/'); idx >= 0 {
		return href[idx+1:]
	}
	return href
}

// resolveTimestamp reads the time element's machine-readable datetime
// attribute. Absence yields nil.
func resolveTimestamp(h renderer.Handle) *string {
	el, err := h.Element(timeSelector)
	if err != nil {
		return nil
	}
	dt, err := el.Attribute("datetime")
	if err != nil {
		return nil
	}
	return dt
}

// Hashtags returns the deduplicated #tags in content, in first-seen order.
func Hashtags(content string) []string {
	return uniqueMatches(hashtagPattern, content)
}

// Mentions returns the deduplicated @handles in content, in first-seen order.
func Mentions(content string) []string {
	return uniqueMatches(mentionPattern, content)
}

func uniqueMatches(pattern *regexp.Regexp, content string) []string {
	matches := pattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	unique := matches[:0:0]
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		unique = append(unique, m)
	}
	return unique
}

// extractEngagement classifies every labelled element on the item by
// substring, in fixed priority order, and parses the numeric portion of
// the label. Unmatched or unparseable labels leave the metric at zero;
// nothing here can fail the item.
func extractEngagement(h renderer.Handle) models.Engagement {
	var eng models.Engagement

	labelled, err := h.Elements(labelledSelector)
	if err != nil {
		return eng
	}

	for _, el := range labelled {
		val, err := el.Attribute("aria-label")
		if err != nil || val == nil {
			continue
		}
		label := strings.ToLower(*val)
		num := ParseCount(*val)

		// "repl" catches both "reply" and "replies".
		switch {
		case strings.Contains(label, "repl"):
			eng.Replies = num
		case strings.Contains(label, "repost"), strings.Contains(label, "retweet"):
			eng.Reshares = num
		case strings.Contains(label, "like"):
			eng.Likes = num
		case strings.Contains(label, "view"):
			eng.Views = num
		case strings.Contains(label, "bookmark"):
			eng.Bookmarks = num
		}
	}

	return eng
}
