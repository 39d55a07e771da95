// Package protocol defines the payloads exchanged over the daemon's
// control socket.
package protocol

import "time"

type StatusResult struct {
	Status   string        `json:"status"`
	Uptime   time.Duration `json:"uptime"`
	Panorama string        `json:"panorama,omitempty"`

	WorkerRunning bool  `json:"worker_running"`
	JobsInQueue   int64 `json:"jobs_in_queue"`
	ResultsTotal  int   `json:"results_total"`
	ResultsFailed int   `json:"results_failed"`
	RenderedTotal int   `json:"rendered_total"`
	RunsTotal     int   `json:"runs_total"`
}

type DiagnoseParams struct {
	Root string `json:"root,omitempty"`
}

type DiagnoseResult struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues,omitempty"`
}

type ConfigSetParams struct {
	MirrorMode     *bool `json:"mirror_mode,omitempty"`
	ShowStats      *bool `json:"show_stats,omitempty"`
	DisplayWindow  *bool `json:"display_window,omitempty"`
	Visualization  *bool `json:"visualization,omitempty"`
	Debug          *bool `json:"debug,omitempty"`
	MaskGeneration *bool `json:"mask_generation,omitempty"`
}

type ResultsParams struct {
	Limit int `json:"limit,omitempty"`
}

type ResultEntry struct {
	ID         int64     `json:"id"`
	MaskPath   string    `json:"mask_path"`
	OutputPath string    `json:"output_path,omitempty"`
	State      string    `json:"state,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type ResultsResult struct {
	Results []ResultEntry `json:"results"`
}

type ScanParams struct {
	PanoramaID string `json:"panorama_id"`
}

type ScanResult struct {
	PanoramaID   string `json:"panorama_id"`
	StaticMasks  []int  `json:"static_masks"`
	SequenceDirs []int  `json:"sequence_dirs"`
}
