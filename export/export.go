// Package export writes harvested records to disk. The harvest core itself
// defines no interchange format; these writers are the pipeline's sink.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/use-agent/gleaner/models"
)

// csvHeader is the flattened column layout. The count columns are derived
// from the sets at write time.
var csvHeader = []string{
	"author", "timestamp", "content", "source_query",
	"hashtags", "mentions", "num_hashtags", "num_mentions",
	"replies", "reshares", "likes", "views", "bookmarks",
}

// WriteJSONL writes one JSON object per line, creating parent directories
// as needed.
func WriteJSONL(path string, records []models.ItemRecord) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			f.Close()
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return f.Close()
}

// WriteCSV writes the flattened tabular form, creating parent directories
// as needed. Hashtag and mention sets are space-joined.
func WriteCSV(path string, records []models.ItemRecord) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return err
	}
	for i := range records {
		if err := w.Write(csvRow(&records[i])); err != nil {
			f.Close()
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func csvRow(r *models.ItemRecord) []string {
	timestamp := ""
	if r.Timestamp != nil {
		timestamp = *r.Timestamp
	}
	return []string{
		r.Author,
		timestamp,
		r.Content,
		r.SourceQuery,
		strings.Join(r.Hashtags, " "),
		strings.Join(r.Mentions, " "),
		strconv.Itoa(r.HashtagCount()),
		strconv.Itoa(r.MentionCount()),
		strconv.Itoa(r.Engagement.Replies),
		strconv.Itoa(r.Engagement.Reshares),
		strconv.Itoa(r.Engagement.Likes),
		strconv.Itoa(r.Engagement.Views),
		strconv.Itoa(r.Engagement.Bookmarks),
	}
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
