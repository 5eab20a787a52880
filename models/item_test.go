package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestItemRecord_MarshalDerivedCounts(t *testing.T) {
	rec := ItemRecord{
		Author:   "trader_jane",
		Content:  "text #a #b @c",
		Hashtags: []string{"#a", "#b"},
		Mentions: []string{"@c"},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["num_hashtags"] != float64(2) {
		t.Errorf("num_hashtags = %v, want 2", got["num_hashtags"])
	}
	if got["num_mentions"] != float64(1) {
		t.Errorf("num_mentions = %v, want 1", got["num_mentions"])
	}
	if got["timestamp"] != nil {
		t.Errorf("nil timestamp should serialize as null, got %v", got["timestamp"])
	}
}

func TestHarvestError_Unwrap(t *testing.T) {
	inner := errors.New("element detached")
	err := NewHarvestError(ErrCodeQueryFault, "extraction failed", inner)

	if err.Unwrap() != inner {
		t.Error("Unwrap should return the wrapped error")
	}
	if err.ToDetail().Code != ErrCodeQueryFault {
		t.Errorf("detail code = %q", err.ToDetail().Code)
	}
}
