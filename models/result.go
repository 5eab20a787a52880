package models

// QueryRunResult is the outcome of one query's harvest session.
type QueryRunResult struct {
	// Query is the search term this session ran.
	Query string `json:"query"`

	// Items are the unique records collected, in extraction order.
	Items []ItemRecord `json:"items"`

	// Succeeded is true when at least one item was collected. A query
	// with no recent activity yields an empty, unsuccessful result
	// without being an error.
	Succeeded bool `json:"succeeded"`
}

// CollectionSummary aggregates all query runs of a harvest.
type CollectionSummary struct {
	// TotalItems is the count across all queries. Cross-query duplicates
	// are counted individually; deduplication is per-query only.
	TotalItems int `json:"total_items"`

	// PerQuery maps each query to the number of items it produced.
	PerQuery map[string]int `json:"per_query"`

	// FailedQueries lists queries whose runs faulted or produced nothing.
	FailedQueries []string `json:"failed_queries,omitempty"`
}
