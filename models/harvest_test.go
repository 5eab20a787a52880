package models

import (
	"sync"
	"testing"
)

func TestHarvestJob_SnapshotReflectsLifecycle(t *testing.T) {
	job := NewHarvestJob("harvest-abc", 3)

	snap := job.Snapshot()
	if snap.Status != "processing" || snap.Completed != 0 || snap.Total != 3 {
		t.Errorf("fresh job snapshot = %+v", snap)
	}

	job.SetProgress(2)
	if job.Snapshot().Completed != 2 {
		t.Errorf("completed = %d, want 2", job.Snapshot().Completed)
	}

	summary := &CollectionSummary{TotalItems: 1, PerQuery: map[string]int{"#a": 1}}
	items := []ItemRecord{{Content: "one item", SourceQuery: "#a"}}
	job.Finish("partial", summary, items)

	snap = job.Snapshot()
	if snap.Status != "partial" {
		t.Errorf("status = %q, want partial", snap.Status)
	}
	if snap.Summary != summary || len(snap.Items) != 1 {
		t.Errorf("finished snapshot lost results: %+v", snap)
	}
	if job.Status() != "partial" {
		t.Errorf("Status() = %q, want partial", job.Status())
	}
}

func TestHarvestJob_ConcurrentProgressAndReads(t *testing.T) {
	// The run goroutine updates the job while API polls snapshot it; this
	// must be safe under the race detector.
	job := NewHarvestJob("harvest-race", 10)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= 10; i++ {
			job.SetProgress(i)
		}
		job.Finish("completed", &CollectionSummary{}, nil)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			snap := job.Snapshot()
			if snap.Completed < 0 || snap.Completed > 10 {
				t.Errorf("snapshot saw impossible progress %d", snap.Completed)
			}
		}
	}()

	wg.Wait()

	if job.Status() != "completed" {
		t.Errorf("status = %q, want completed", job.Status())
	}
}
