package models

import "encoding/json"

// AuthorUnknown is the sentinel author value used when no profile link
// on an item could be resolved.
const AuthorUnknown = "unknown"

// Engagement holds the per-item interaction counters parsed from the
// rendered page. Metrics that could not be resolved stay at zero.
type Engagement struct {
	Replies   int `json:"replies"`
	Reshares  int `json:"reshares"`
	Likes     int `json:"likes"`
	Views     int `json:"views"`
	Bookmarks int `json:"bookmarks"`
}

// ItemRecord is one harvested content unit. It is created once per unique
// fingerprint within a query's session and is immutable afterwards.
type ItemRecord struct {
	// Author is the posting account's handle, or AuthorUnknown when no
	// profile link could be resolved.
	Author string `json:"author"`

	// Timestamp is the machine-readable ISO-8601 publication time, or
	// nil when the time element carried no datetime attribute.
	Timestamp *string `json:"timestamp"`

	// Content is the normalized post text.
	Content string `json:"content"`

	// SourceQuery is the query term whose session produced this record.
	SourceQuery string `json:"source_query"`

	// Hashtags and Mentions are deduplicated sets derived from Content.
	// Order is not significant.
	Hashtags []string `json:"hashtags"`
	Mentions []string `json:"mentions"`

	Engagement Engagement `json:"engagement"`
}

// HashtagCount and MentionCount are always derived from the sets, never
// stored independently.
func (r *ItemRecord) HashtagCount() int { return len(r.Hashtags) }

func (r *ItemRecord) MentionCount() int { return len(r.Mentions) }

// MarshalJSON emits the derived count fields alongside the sets so that
// downstream consumers never see a count out of sync with its set.
func (r ItemRecord) MarshalJSON() ([]byte, error) {
	type alias ItemRecord
	return json.Marshal(struct {
		alias
		NumHashtags int `json:"num_hashtags"`
		NumMentions int `json:"num_mentions"`
	}{
		alias:       alias(r),
		NumHashtags: len(r.Hashtags),
		NumMentions: len(r.Mentions),
	})
}
