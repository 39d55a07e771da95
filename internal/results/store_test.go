package results

import (
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRunsAndResults(t *testing.T) {
	store := newTestStore(t)

	runID, err := store.CreateRun("pano")
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}
	if runID == 0 {
		t.Fatal("Expected non-zero run id")
	}

	t.Run("RecordDefaultsToPending", func(t *testing.T) {
		id, err := store.RecordResult(&Result{
			RunID:    runID,
			MaskPath: "/results/1.bmp",
			State:    "[1,0]",
		})
		if err != nil {
			t.Fatalf("Failed to record result: %v", err)
		}

		recent, err := store.RecentResults(1)
		if err != nil {
			t.Fatalf("Failed to list results: %v", err)
		}
		if len(recent) != 1 || recent[0].ID != id {
			t.Fatalf("Unexpected recent results: %v", recent)
		}
		if recent[0].Status != StatusPending {
			t.Errorf("Status = %q, want pending", recent[0].Status)
		}
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		id, err := store.RecordResult(&Result{RunID: runID, MaskPath: "/results/2.bmp"})
		if err != nil {
			t.Fatalf("Failed to record result: %v", err)
		}

		if err := store.UpdateResultStatus(id, StatusRendered, "/out/2.jpg", ""); err != nil {
			t.Fatalf("Failed to update status: %v", err)
		}

		recent, err := store.RecentResults(1)
		if err != nil {
			t.Fatalf("Failed to list results: %v", err)
		}
		if recent[0].Status != StatusRendered || recent[0].OutputPath != "/out/2.jpg" {
			t.Errorf("Unexpected result after update: %+v", recent[0])
		}
	})

	t.Run("RecentOrderAndLimit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if _, err := store.RecordResult(&Result{RunID: runID, MaskPath: "/results/x.bmp"}); err != nil {
				t.Fatalf("Failed to record result: %v", err)
			}
		}

		recent, err := store.RecentResults(3)
		if err != nil {
			t.Fatalf("Failed to list results: %v", err)
		}
		if len(recent) != 3 {
			t.Fatalf("Expected 3 results, got %d", len(recent))
		}
		if recent[0].ID < recent[1].ID || recent[1].ID < recent[2].ID {
			t.Errorf("Results not newest-first: %v", recent)
		}
	})
}

func TestStoreStateLog(t *testing.T) {
	store := newTestStore(t)

	runID, err := store.CreateRun("pano")
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	states := [][]int{
		{1, 0, 0},
		{1, 0, 0}, // duplicate, should be skipped
		{2, 0, 0},
		{2, 0, 0}, // duplicate
		{2, 1, 0},
	}
	for _, state := range states {
		if err := store.LogState(runID, state); err != nil {
			t.Fatalf("Failed to log state: %v", err)
		}
	}

	history, err := store.StateHistory(runID)
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}

	want := [][]int{{1, 0, 0}, {2, 0, 0}, {2, 1, 0}}
	if !reflect.DeepEqual(history, want) {
		t.Errorf("History = %v, want %v", history, want)
	}
}

func TestStoreStats(t *testing.T) {
	store := newTestStore(t)

	runID, err := store.CreateRun("pano")
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	rendered, _ := store.RecordResult(&Result{RunID: runID, MaskPath: "a"})
	store.UpdateResultStatus(rendered, StatusRendered, "/out/a.jpg", "")

	failed, _ := store.RecordResult(&Result{RunID: runID, MaskPath: "b"})
	store.UpdateResultStatus(failed, StatusFailed, "", "boom")

	store.RecordResult(&Result{RunID: runID, MaskPath: "c"})

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Failed to read stats: %v", err)
	}

	if stats.TotalRuns != 1 {
		t.Errorf("TotalRuns = %d, want 1", stats.TotalRuns)
	}
	if stats.TotalResults != 3 {
		t.Errorf("TotalResults = %d, want 3", stats.TotalResults)
	}
	if stats.RenderedResults != 1 || stats.FailedResults != 1 {
		t.Errorf("Rendered/Failed = %d/%d, want 1/1", stats.RenderedResults, stats.FailedResults)
	}
}
