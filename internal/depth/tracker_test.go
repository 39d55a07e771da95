package depth

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeClock drives a tracker deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestTracker(t *testing.T, logPath string) (*Tracker, *fakeClock) {
	t.Helper()

	tracker, err := NewTracker(Config{
		GridH:                    10,
		GridV:                    6,
		CounterIncrementInterval: 500 * time.Millisecond,
	}, logPath)
	if err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}

	clock := &fakeClock{t: time.Unix(1000, 0)}
	tracker.now = func() time.Time { return clock.t }
	return tracker, clock
}

func present(positions ...int) []int {
	presence := make([]int, maxSequences)
	for _, p := range positions {
		presence[p] = 1
	}
	return presence
}

func TestTrackerSustainedPresence(t *testing.T) {
	tracker, clock := newTestTracker(t, "")

	// Presence must hold for the full threshold before counting.
	tracker.Update(present(2))
	clock.advance(presenceThreshold - time.Millisecond)
	tracker.Update(present(2))

	if got := tracker.Counters()[2]; got != 0 {
		t.Errorf("Counter advanced before threshold: %d", got)
	}

	clock.advance(time.Millisecond)
	tracker.Update(present(2))

	if got := tracker.Counters()[2]; got != 1 {
		t.Errorf("Counter = %d after threshold, want 1", got)
	}

	// Within the increment interval nothing more happens.
	clock.advance(100 * time.Millisecond)
	tracker.Update(present(2))
	if got := tracker.Counters()[2]; got != 1 {
		t.Errorf("Counter = %d inside increment interval, want 1", got)
	}

	clock.advance(400 * time.Millisecond)
	tracker.Update(present(2))
	if got := tracker.Counters()[2]; got != 2 {
		t.Errorf("Counter = %d after increment interval, want 2", got)
	}
}

func TestTrackerVacancyResetsTimer(t *testing.T) {
	tracker, clock := newTestTracker(t, "")

	tracker.Update(present(0))
	clock.advance(2 * time.Second)

	// Position vacated: the timer resets, so presence has to build up
	// from scratch.
	tracker.Update(present())
	clock.advance(time.Second)
	tracker.Update(present(0))
	clock.advance(2 * time.Second)
	tracker.Update(present(0))

	if got := tracker.Counters()[0]; got != 0 {
		t.Errorf("Counter = %d after interrupted presence, want 0", got)
	}
}

func TestTrackerActivePositions(t *testing.T) {
	tracker, _ := newTestTracker(t, "")

	tracker.Update(present(5, 1))

	if got := tracker.ActivePositions(); !reflect.DeepEqual(got, []int{1, 5}) {
		t.Errorf("ActivePositions = %v, want [1 5]", got)
	}

	tracker.Update(present(1))
	if got := tracker.ActivePositions(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("ActivePositions = %v, want [1]", got)
	}
}

func TestTrackerStateLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "state.log")
	tracker, clock := newTestTracker(t, logPath)

	tracker.Update(present(0))
	clock.advance(presenceThreshold)
	tracker.Update(present(0))
	clock.advance(time.Second)
	tracker.Update(present(0))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read state log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "[1, 0, 0, 0, 0, 0, 0, 0, 0, 0]" {
		t.Errorf("Unexpected first log line: %q", lines[0])
	}
	if lines[1] != "[2, 0, 0, 0, 0, 0, 0, 0, 0, 0]" {
		t.Errorf("Unexpected second log line: %q", lines[1])
	}
}

func TestTrackerTruncatesLogOnStart(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "state.log")
	if err := os.WriteFile(logPath, []byte("stale\n"), 0644); err != nil {
		t.Fatalf("Failed to seed log: %v", err)
	}

	if _, err := NewTracker(DefaultConfig(), logPath); err != nil {
		t.Fatalf("Failed to create tracker: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty log after start, got %q", data)
	}
}
