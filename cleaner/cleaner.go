// Package cleaner normalizes harvested records for downstream analysis:
// URL stripping, character filtering, lowercasing, timestamp validation,
// and cross-record deduplication on (content, timestamp).
package cleaner

import (
	"regexp"
	"strings"
	"time"

	"github.com/use-agent/gleaner/harvest"
	"github.com/use-agent/gleaner/models"
)

var (
	urlPattern     = regexp.MustCompile(`http\S+`)
	nonTextPattern = regexp.MustCompile(`[^a-zA-Z0-9@#\s]`)
)

// Clean returns a normalized copy of the records, preserving input order.
// Records that collapse onto an earlier (content, timestamp) pair are
// dropped. Hashtag and mention sets are re-derived from the cleaned
// content so the derived counts stay consistent.
func Clean(records []models.ItemRecord) []models.ItemRecord {
	type dedupKey struct {
		content   string
		timestamp string
	}
	seen := make(map[dedupKey]struct{}, len(records))

	out := make([]models.ItemRecord, 0, len(records))
	for _, rec := range records {
		content := urlPattern.ReplaceAllString(rec.Content, "")
		content = nonTextPattern.ReplaceAllString(content, " ")
		content = strings.ToLower(strings.TrimSpace(content))

		rec.Timestamp = validTimestamp(rec.Timestamp)

		key := dedupKey{content: content}
		if rec.Timestamp != nil {
			key.timestamp = *rec.Timestamp
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		rec.Content = content
		rec.Hashtags = harvest.Hashtags(content)
		rec.Mentions = harvest.Mentions(content)
		out = append(out, rec)
	}
	return out
}

// validTimestamp keeps only timestamps that parse as RFC 3339; anything
// else coerces to nil.
func validTimestamp(ts *string) *string {
	if ts == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, *ts); err != nil {
		return nil
	}
	return ts
}
