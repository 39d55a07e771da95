package results

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/mask"
	"github.com/tmplworks/tmpl/internal/maskmap"
	"github.com/tmplworks/tmpl/internal/spade"
)

func makeTestMonitor(t *testing.T) (*mask.Monitor, string) {
	t.Helper()

	root := t.TempDir()
	paths := config.BasePathsIn(root, "pano")

	if err := os.MkdirAll(paths.Base, 0755); err != nil {
		t.Fatalf("Failed to create panorama dir: %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.SetGray(0, 0, color.Gray{Y: 255})

	f, err := os.Create(filepath.Join(paths.Base, "pano_100.png"))
	if err != nil {
		t.Fatalf("Failed to create mask: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode mask: %v", err)
	}
	f.Close()

	cfg := mask.FromMapping("test", maskmap.Panorama{
		StaticMasks: maskmap.GrayIndex{100: 1},
	})

	monitor, err := mask.NewMonitor("pano", []mask.Config{cfg}, paths)
	if err != nil {
		t.Fatalf("Failed to create monitor: %v", err)
	}
	if _, err := monitor.LoadAll(); err != nil {
		t.Fatalf("Failed to prime caches: %v", err)
	}

	return monitor, root
}

func newTestWorker(t *testing.T) (*Worker, *Store) {
	t.Helper()

	monitor, root := makeTestMonitor(t)

	store, err := NewStore(filepath.Join(root, "results.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	runID, err := store.CreateRun("pano")
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	gen, err := spade.New(spade.DefaultOptions(root))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	cfg := DefaultWorkerConfig(filepath.Join(root, "rendered"))
	return NewWorker(monitor, gen, store, runID, cfg), store
}

func TestWorkerRender(t *testing.T) {
	w, store := newTestWorker(t)

	state := make([]int, config.MaxSequences)
	state[0] = 1

	if err := w.render(state); err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	recent, err := store.RecentResults(1)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(recent))
	}

	r := recent[0]
	if r.Status != StatusRendered {
		t.Errorf("Status = %q (%s), want rendered", r.Status, r.ErrorMessage)
	}
	if _, err := os.Stat(r.OutputPath); err != nil {
		t.Errorf("Rendered output missing: %v", err)
	}

	history, err := store.StateHistory(w.runID)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 logged state, got %d", len(history))
	}

	if got := w.Stats().Rendered; got != 1 {
		t.Errorf("Rendered stat = %d, want 1", got)
	}
}

func TestWorkerRenderIdleStateSkips(t *testing.T) {
	w, store := newTestWorker(t)

	if err := w.render(make([]int, config.MaxSequences)); err != nil {
		t.Fatalf("Idle render should not error: %v", err)
	}

	recent, err := store.RecentResults(10)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Idle state should record nothing, got %v", recent)
	}
	if got := w.Stats().Skipped; got != 1 {
		t.Errorf("Skipped stat = %d, want 1", got)
	}
}

func TestWorkerEnqueue(t *testing.T) {
	monitor, root := makeTestMonitor(t)

	store, err := NewStore(filepath.Join(root, "results.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	gen, err := spade.New(spade.DefaultOptions(root))
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	cfg := DefaultWorkerConfig(filepath.Join(root, "rendered"))
	cfg.MaxQueueSize = 1
	w := NewWorker(monitor, gen, store, 1, cfg)

	// Worker not started: the normal queue holds exactly MaxQueueSize.
	if !w.Enqueue(Job{Kind: JobRender, Priority: PriorityNormal}) {
		t.Error("First enqueue should succeed")
	}
	if w.Enqueue(Job{Kind: JobRender, Priority: PriorityNormal}) {
		t.Error("Second enqueue should fail on a full queue")
	}

	if got := w.Stats().InQueue; got != 1 {
		t.Errorf("InQueue = %d, want 1", got)
	}

	t.Run("RescanSink", func(t *testing.T) {
		if !w.EnqueueRescan("/some/path", int(PriorityHigh)) {
			t.Error("Rescan enqueue should succeed")
		}
	})
}

func TestOutputPathFor(t *testing.T) {
	w := &Worker{config: WorkerConfig{OutputDir: "/out"}}

	got := w.outputPathFor("/results/7.bmp")
	if got != filepath.Join("/out", "7.jpg") {
		t.Errorf("outputPathFor = %q, want /out/7.jpg", got)
	}
}
