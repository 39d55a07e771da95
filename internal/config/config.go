package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/tmplworks/tmpl/internal/depth"
	"github.com/tmplworks/tmpl/internal/watcher"
)

type DepthSettings struct {
	MinThreshold float64 `json:"min_threshold"`
	MaxThreshold float64 `json:"max_threshold"`
	GridH        int     `json:"grid_h"`
	GridV        int     `json:"grid_v"`
	MirrorMode   bool    `json:"mirror_mode"`
	// DisplayWindow is reserved for an embedding display stage; the
	// headless pipeline carries it through config.set but never reads it.
	DisplayWindow bool `json:"display_window"`
	ShowStats     bool `json:"show_stats"`
}

type TimingSettings struct {
	UIRefreshInterval        time.Duration `json:"ui_refresh_interval"`
	CounterIncrementInterval time.Duration `json:"counter_increment_interval"`
	MaskUpdateInterval       time.Duration `json:"mask_update_interval"`
}

type FeatureSettings struct {
	MaskGeneration bool `json:"mask_generation"`
	DepthTracking  bool `json:"depth_tracking"`
	// Visualization is reserved for an embedding display stage, same as
	// DepthSettings.DisplayWindow.
	Visualization bool `json:"visualization"`
	Debug         bool `json:"debug"`
}

// Config is the integrated configuration shared across the depth,
// generator and control-plane components.
type Config struct {
	PanoramaID string

	Depth    DepthSettings
	Timing   TimingSettings
	Features FeatureSettings
	Watcher  watcher.Config

	SocketPath   string
	DatabasePath string
	LogLevel     string
}

func Load() *Config {
	homeDir, _ := os.UserHomeDir()
	tmplDir := filepath.Join(homeDir, ".tmpl")

	return &Config{
		Depth: DepthSettings{
			MinThreshold:  0.4,
			MaxThreshold:  1.8,
			GridH:         10,
			GridV:         6,
			MirrorMode:    true,
			DisplayWindow: false,
			ShowStats:     true,
		},
		Timing: TimingSettings{
			UIRefreshInterval:        40 * time.Millisecond,
			CounterIncrementInterval: 500 * time.Millisecond,
			MaskUpdateInterval:       100 * time.Millisecond,
		},
		Features: FeatureSettings{
			MaskGeneration: true,
			DepthTracking:  true,
			Visualization:  true,
			Debug:          false,
		},
		Watcher: watcher.Config{
			Enabled:        true,
			DebounceWindow: 300 * time.Millisecond,
			MaxBatchSize:   100,
			IgnorePatterns: []string{
				"**/results/**",
				"**/rendered/**",
				"**/logs/**",
				"**/*.log",
				"**/*.tmp",
			},
			WatchHidden: false,
		},
		SocketPath:   filepath.Join(tmplDir, "daemon.sock"),
		DatabasePath: filepath.Join(tmplDir, "results.db"),
		LogLevel:     "info",
	}
}

func (c *Config) EnsureDirectories() error {
	homeDir, _ := os.UserHomeDir()
	return os.MkdirAll(filepath.Join(homeDir, ".tmpl"), 0700)
}

// ToDepth converts the integrated settings into the depth package's
// standalone configuration.
func (c *Config) ToDepth() depth.Config {
	return depth.Config{
		MinThreshold:             c.Depth.MinThreshold,
		MaxThreshold:             c.Depth.MaxThreshold,
		GridH:                    c.Depth.GridH,
		GridV:                    c.Depth.GridV,
		MirrorMode:               c.Depth.MirrorMode,
		CounterIncrementInterval: c.Timing.CounterIncrementInterval,
	}
}
