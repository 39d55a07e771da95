package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Depth.MinThreshold != 0.4 || cfg.Depth.MaxThreshold != 1.8 {
		t.Errorf("Unexpected thresholds: %v..%v", cfg.Depth.MinThreshold, cfg.Depth.MaxThreshold)
	}
	if cfg.Depth.GridH != 10 || cfg.Depth.GridV != 6 {
		t.Errorf("Unexpected grid: %dx%d", cfg.Depth.GridH, cfg.Depth.GridV)
	}
	if !cfg.Depth.MirrorMode {
		t.Error("Mirror mode should default on")
	}
	if cfg.Timing.CounterIncrementInterval != 500*time.Millisecond {
		t.Errorf("Unexpected increment interval: %v", cfg.Timing.CounterIncrementInterval)
	}
	if !cfg.Features.MaskGeneration || !cfg.Features.DepthTracking {
		t.Error("Core features should default on")
	}
	if cfg.SocketPath == "" || cfg.DatabasePath == "" {
		t.Error("Control-plane paths should have defaults")
	}
}

func TestToDepth(t *testing.T) {
	cfg := Load()
	cfg.Depth.MirrorMode = false
	cfg.Timing.CounterIncrementInterval = time.Second

	d := cfg.ToDepth()

	if d.MirrorMode {
		t.Error("MirrorMode should carry over")
	}
	if d.CounterIncrementInterval != time.Second {
		t.Errorf("CounterIncrementInterval = %v, want 1s", d.CounterIncrementInterval)
	}
	if d.GridH != cfg.Depth.GridH || d.GridV != cfg.Depth.GridV {
		t.Error("Grid dimensions should carry over")
	}
}

func TestPlaybackPresets(t *testing.T) {
	if got := DefaultStandardConfig.TotalFPS(); got != 15.5 {
		t.Errorf("Standard TotalFPS = %v, want 15.5", got)
	}
	if got := DefaultSimplifiedConfig.TotalFPS(); got != 36 {
		t.Errorf("Simplified TotalFPS = %v, want 36", got)
	}
}
