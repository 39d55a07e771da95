package results

import "time"

type ResultStatus string

const (
	StatusPending  ResultStatus = "pending"
	StatusRendered ResultStatus = "rendered"
	StatusFailed   ResultStatus = "failed"
	StatusSkipped  ResultStatus = "skipped"
)

type Run struct {
	ID        int64     `json:"id"`
	Panorama  string    `json:"panorama"`
	StartedAt time.Time `json:"started_at"`
}

type Result struct {
	ID           int64        `json:"id"`
	RunID        int64        `json:"run_id"`
	MaskPath     string       `json:"mask_path"`
	OutputPath   string       `json:"output_path,omitempty"`
	State        string       `json:"state,omitempty"`
	Status       ResultStatus `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

type StoreStats struct {
	TotalRuns       int       `json:"total_runs"`
	TotalResults    int       `json:"total_results"`
	RenderedResults int       `json:"rendered_results"`
	FailedResults   int       `json:"failed_results"`
	LastResultAt    time.Time `json:"last_result_at"`
}

type JobKind int

const (
	JobRender JobKind = iota
	JobRescan
)

type JobPriority int

const (
	PriorityLow JobPriority = iota
	PriorityNormal
	PriorityHigh
)

// Job is one unit of work for the render worker: either a counter
// state to compose and render, or a cache rescan after landscape
// changes.
type Job struct {
	Kind     JobKind
	State    []int
	Priority JobPriority
}
