package tests

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/diagnostic"
	"github.com/tmplworks/tmpl/internal/pipeline"
	"github.com/tmplworks/tmpl/internal/results"
)

// chdir is t.Chdir for toolchains predating Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("Failed to restore working directory: %v", err)
		}
	})
}

// makeProject builds a complete synthetic project tree: one panorama
// with a static mask, one sequence and a mapping file.
func makeProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	panoDir := filepath.Join(root, "data", "landscapes", "pano")

	writeMask := func(path string, white image.Point) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dirs: %v", err)
		}

		img := image.NewGray(image.Rect(0, 0, 4, 4))
		img.SetGray(white.X, white.Y, color.Gray{Y: 255})

		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("Failed to create mask: %v", err)
		}
		defer f.Close()

		if err := png.Encode(f, img); err != nil {
			t.Fatalf("Failed to encode mask: %v", err)
		}
	}

	writeMask(filepath.Join(panoDir, "pano_100.png"), image.Pt(0, 0))
	writeMask(filepath.Join(panoDir, "pano_200", "0", "1.png"), image.Pt(1, 0))
	writeMask(filepath.Join(panoDir, "pano_200", "0", "2.png"), image.Pt(2, 0))

	mapping := `{"pano": {"static_masks": {"100": 1}, "sequence_masks": {"200": 2}}}`
	if err := os.WriteFile(filepath.Join(root, "data", "mask_mapping.json"), []byte(mapping), 0644); err != nil {
		t.Fatalf("Failed to write mapping: %v", err)
	}

	return root
}

func TestFullPipeline(t *testing.T) {
	root := makeProject(t)
	chdir(t, root)

	diag := diagnostic.New()
	if !diag.Run(root) {
		t.Fatalf("Diagnostics failed on a valid tree: %v", diag.Issues())
	}

	cfg := config.Load()
	cfg.DatabasePath = filepath.Join(root, "results.db")
	cfg.Watcher.Enabled = false

	sys, err := pipeline.Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Failed to bootstrap: %v", err)
	}
	defer sys.Stop()

	// No panorama was configured; the mapping's first entry wins.
	if cfg.PanoramaID != "pano" {
		t.Errorf("PanoramaID = %q, want pano", cfg.PanoramaID)
	}
	if sys.Root != root {
		t.Errorf("Root = %q, want %q", sys.Root, root)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}

	state := make([]int, config.MaxSequences)
	state[0] = 1

	if !sys.Worker.Enqueue(results.Job{
		Kind:     results.JobRender,
		State:    state,
		Priority: results.PriorityNormal,
	}) {
		t.Fatal("Failed to enqueue render job")
	}

	var rendered results.Result
	deadline := time.Now().Add(10 * time.Second)
	for {
		recent, err := sys.Store.RecentResults(1)
		if err != nil {
			t.Fatalf("Failed to list results: %v", err)
		}
		if len(recent) == 1 && recent[0].Status == results.StatusRendered {
			rendered = recent[0]
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for render, results: %v", recent)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if _, err := os.Stat(rendered.MaskPath); err != nil {
		t.Errorf("Composed mask missing: %v", err)
	}
	if filepath.Ext(rendered.MaskPath) != "."+config.DefaultImageType {
		t.Errorf("Mask path = %q, want a .%s file", rendered.MaskPath, config.DefaultImageType)
	}
	if _, err := os.Stat(rendered.OutputPath); err != nil {
		t.Errorf("Rendered output missing: %v", err)
	}
	if filepath.Ext(rendered.OutputPath) != ".jpg" {
		t.Errorf("Output path = %q, want a .jpg file", rendered.OutputPath)
	}

	history, err := sys.Store.StateHistory(sys.RunID)
	if err != nil {
		t.Fatalf("Failed to read state history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 logged state, got %d", len(history))
	}

	// The tracker's state log was initialized at the project root.
	if _, err := os.Stat(filepath.Join(root, config.LogFilename)); err != nil {
		t.Errorf("State log missing: %v", err)
	}
}

func TestBootstrapRejectsBrokenTree(t *testing.T) {
	root := makeProject(t)
	chdir(t, root)

	// Remove a mask the mapping references.
	os.Remove(filepath.Join(root, "data", "landscapes", "pano", "pano_100.png"))

	cfg := config.Load()
	cfg.DatabasePath = filepath.Join(root, "results.db")

	if _, err := pipeline.Bootstrap(cfg); err == nil {
		t.Error("Bootstrap should fail when diagnostics find issues")
	}
}

func TestBootstrapUnknownPanoramaFallsBackToScan(t *testing.T) {
	root := makeProject(t)
	chdir(t, root)

	// A second panorama exists on disk but not in the mapping.
	otherDir := filepath.Join(root, "data", "landscapes", "other")
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	if err := os.MkdirAll(otherDir, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	f, err := os.Create(filepath.Join(otherDir, "other_50.png"))
	if err != nil {
		t.Fatalf("Failed to create mask: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode mask: %v", err)
	}
	f.Close()

	cfg := config.Load()
	cfg.PanoramaID = "other"
	cfg.DatabasePath = filepath.Join(root, "results.db")
	cfg.Watcher.Enabled = false

	sys, err := pipeline.Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap should fall back to a directory scan: %v", err)
	}
	sys.Stop()
}
