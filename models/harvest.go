package models

import (
	"sync"
	"time"
)

// HarvestRequest is the payload for POST /api/v1/harvest.
type HarvestRequest struct {
	// Queries are the search terms to harvest, processed in order. Required.
	Queries []string `json:"queries" binding:"required,min=1,dive,min=1"`

	// DaysBack is the trailing date window for each query's search
	// expression. Default: 3. Max: 30.
	DaysBack int `json:"days_back,omitempty" binding:"omitempty,min=1,max=30"`

	// MaxSteps caps the pagination loop per query. Default: 50. Max: 200.
	MaxSteps int `json:"max_steps,omitempty" binding:"omitempty,min=1,max=200"`

	// CooldownSeconds is the inter-query throttle. Default: 10.
	CooldownSeconds int `json:"cooldown_seconds,omitempty" binding:"omitempty,min=0,max=300"`
}

// Defaults applies default values to unset fields.
func (r *HarvestRequest) Defaults() {
	if r.DaysBack == 0 {
		r.DaysBack = 3
	}
	if r.MaxSteps == 0 {
		r.MaxSteps = 50
	}
	if r.CooldownSeconds == 0 {
		r.CooldownSeconds = 10
	}
}

// HarvestResponse is the immediate response for POST /api/v1/harvest.
type HarvestResponse struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// HarvestStatusResponse is the response for GET /api/v1/harvest/:id.
type HarvestStatusResponse struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
	Summary   *CollectionSummary `json:"summary,omitempty"`
	Items     []ItemRecord       `json:"items,omitempty"`
}

// HarvestJob tracks an in-progress harvest run. The run goroutine writes
// progress and the final outcome while API reads poll, so the mutable state
// sits behind a mutex; ID, Total, and CreatedAt are fixed at creation.
type HarvestJob struct {
	ID        string
	Total     int   // number of queries
	CreatedAt int64 // unix timestamp

	mu        sync.Mutex
	status    string // "processing", "completed", "partial", "failed"
	completed int    // queries processed so far
	summary   *CollectionSummary
	items     []ItemRecord
}

// NewHarvestJob creates a job in the processing state.
func NewHarvestJob(id string, total int) *HarvestJob {
	return &HarvestJob{
		ID:        id,
		Total:     total,
		CreatedAt: time.Now().Unix(),
		status:    "processing",
	}
}

// SetProgress records how many queries have finished so far.
func (j *HarvestJob) SetProgress(completed int) {
	j.mu.Lock()
	j.completed = completed
	j.mu.Unlock()
}

// Finish records the run's terminal status and results.
func (j *HarvestJob) Finish(status string, summary *CollectionSummary, items []ItemRecord) {
	j.mu.Lock()
	j.status = status
	j.summary = summary
	j.items = items
	j.mu.Unlock()
}

// Status returns the job's current status.
func (j *HarvestJob) Status() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Snapshot returns a consistent API view of the job's current state.
func (j *HarvestJob) Snapshot() HarvestStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	return HarvestStatusResponse{
		ID:        j.ID,
		Status:    j.status,
		Completed: j.completed,
		Total:     j.Total,
		Summary:   j.summary,
		Items:     j.items,
	}
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"` // "healthy" or "busy"
	Uptime        string `json:"uptime"`
	Authenticated bool   `json:"authenticated"`
	Version       string `json:"version"`
}
