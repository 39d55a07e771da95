package depth

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tmplworks/tmpl/internal/logger"
)

var log = logger.ForComponent("depth")

// maxSequences fixes the width of the counter state vector; it mirrors
// config.MaxSequences without importing the integrated config.
const maxSequences = 10

// presenceThreshold is how long a position must stay continuously
// occupied before its counter starts advancing.
const presenceThreshold = 3 * time.Second

// Tracker advances a per-position counter for every column that stays
// occupied, and appends deduplicated counter states to the state log.
type Tracker struct {
	cfg Config

	positionTimers    map[int]time.Time
	lastIncrementTime map[int]time.Time
	positionCounters  []int

	logPath      string
	lastLogState []int

	now func() time.Time
	mu  sync.Mutex
}

// NewTracker creates a tracker over MaxSequences positions. logPath
// may be empty to disable the state log; otherwise the file is
// truncated on start, matching a fresh installation run.
func NewTracker(cfg Config, logPath string) (*Tracker, error) {
	if logPath != "" {
		if err := os.WriteFile(logPath, nil, 0644); err != nil {
			return nil, fmt.Errorf("init state log: %w", err)
		}
	}

	return &Tracker{
		cfg:               cfg,
		positionTimers:    make(map[int]time.Time),
		lastIncrementTime: make(map[int]time.Time),
		positionCounters:  make([]int, maxSequences),
		logPath:           logPath,
		now:               time.Now,
	}, nil
}

// Update feeds one presence sample per position. Counters only move
// after presenceThreshold of continuous occupancy and then once per
// increment interval; a vacated position resets entirely.
func (t *Tracker) Update(columnPresence []int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.now()

	for i := 0; i < maxSequences; i++ {
		if i < len(columnPresence) && columnPresence[i] == 1 {
			started, active := t.positionTimers[i]
			if !active {
				t.positionTimers[i] = current
				t.lastIncrementTime[i] = current
				continue
			}

			if current.Sub(started) >= presenceThreshold &&
				current.Sub(t.lastIncrementTime[i]) >= t.cfg.CounterIncrementInterval {
				t.positionCounters[i]++
				t.lastIncrementTime[i] = current
				t.logStateLocked()
			}
		} else {
			delete(t.positionTimers, i)
			delete(t.lastIncrementTime, i)
		}
	}
}

// Counters returns a copy of the current counter state vector.
func (t *Tracker) Counters() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.positionCounters)
}

// ActivePositions lists positions currently being timed.
func (t *Tracker) ActivePositions() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	positions := make([]int, 0, len(t.positionTimers))
	for pos := range t.positionTimers {
		positions = append(positions, pos)
	}
	slices.Sort(positions)
	return positions
}

func (t *Tracker) logStateLocked() {
	if t.logPath == "" {
		return
	}
	if slices.Equal(t.positionCounters, t.lastLogState) {
		return
	}

	f, err := os.OpenFile(t.logPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Warn("cannot append state log", "path", t.logPath, "error", err)
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s\n", formatState(t.positionCounters))
	t.lastLogState = slices.Clone(t.positionCounters)
}

func formatState(counters []int) string {
	parts := make([]string, len(counters))
	for i, c := range counters {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
