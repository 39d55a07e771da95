package results

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tmplworks/tmpl/internal/logger"
	"github.com/tmplworks/tmpl/internal/mask"
	"github.com/tmplworks/tmpl/internal/spade"
)

var log = logger.ForComponent("render")

type WorkerConfig struct {
	WorkerCount  int
	MaxQueueSize int
	RateLimit    int
	OutputDir    string
}

func DefaultWorkerConfig(outputDir string) WorkerConfig {
	return WorkerConfig{
		WorkerCount:  2,
		MaxQueueSize: 1000,
		RateLimit:    100,
		OutputDir:    outputDir,
	}
}

type WorkerStats struct {
	Rendered     int64
	Failed       int64
	Skipped      int64
	InQueue      int64
	IsRunning    bool
	StartedAt    time.Time
	LastRendered time.Time
}

// Worker drains render and rescan jobs through the mask monitor and
// the synthesis generator, cataloguing every result.
type Worker struct {
	monitor *mask.Monitor
	gen     spade.Generator
	store   *Store
	runID   int64
	config  WorkerConfig

	highQueue   chan Job
	normalQueue chan Job
	lowQueue    chan Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	rateLimiter *time.Ticker

	stats   WorkerStats
	statsMu sync.RWMutex
}

func NewWorker(monitor *mask.Monitor, gen spade.Generator, store *Store, runID int64, config WorkerConfig) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		monitor:     monitor,
		gen:         gen,
		store:       store,
		runID:       runID,
		config:      config,
		highQueue:   make(chan Job, 100),
		normalQueue: make(chan Job, config.MaxQueueSize),
		lowQueue:    make(chan Job, config.MaxQueueSize*2),
		ctx:         ctx,
		cancel:      cancel,
	}

	if config.RateLimit > 0 {
		interval := time.Second / time.Duration(config.RateLimit)
		w.rateLimiter = time.NewTicker(interval)
	}

	return w
}

func (w *Worker) Start() {
	w.statsMu.Lock()
	w.stats.IsRunning = true
	w.stats.StartedAt = time.Now()
	w.statsMu.Unlock()

	log.Info("render worker started", "workers", w.config.WorkerCount)

	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}
}

func (w *Worker) Stop() {
	log.Info("render worker stopping")

	w.cancel()
	if w.rateLimiter != nil {
		w.rateLimiter.Stop()
	}
	w.wg.Wait()

	w.statsMu.Lock()
	w.stats.IsRunning = false
	w.statsMu.Unlock()

	log.Info("render worker stopped")
}

func (w *Worker) Enqueue(job Job) bool {
	var queue chan Job
	switch job.Priority {
	case PriorityHigh:
		queue = w.highQueue
	case PriorityNormal:
		queue = w.normalQueue
	case PriorityLow:
		queue = w.lowQueue
	default:
		queue = w.normalQueue
	}

	select {
	case queue <- job:
		atomic.AddInt64(&w.stats.InQueue, 1)
		return true
	default:
		log.Warn("job enqueue failed - queue full", "kind", job.Kind, "priority", job.Priority)
		return false
	}
}

// EnqueueRescan satisfies the watcher's job sink.
func (w *Worker) EnqueueRescan(path string, priority int) bool {
	_ = path
	return w.Enqueue(Job{Kind: JobRescan, Priority: JobPriority(priority)})
}

func (w *Worker) Stats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	stats := w.stats
	stats.InQueue = atomic.LoadInt64(&w.stats.InQueue)
	stats.Rendered = atomic.LoadInt64(&w.stats.Rendered)
	stats.Failed = atomic.LoadInt64(&w.stats.Failed)
	stats.Skipped = atomic.LoadInt64(&w.stats.Skipped)
	return stats
}

func (w *Worker) worker(id int) {
	defer w.wg.Done()

	for {
		var job Job
		var ok bool

		// Priority order: high, normal, low.
		select {
		case <-w.ctx.Done():
			return
		case job, ok = <-w.highQueue:
		default:
			select {
			case <-w.ctx.Done():
				return
			case job, ok = <-w.highQueue:
			case job, ok = <-w.normalQueue:
			case job, ok = <-w.lowQueue:
			}
		}

		if !ok {
			return
		}

		atomic.AddInt64(&w.stats.InQueue, -1)

		if w.rateLimiter != nil {
			select {
			case <-w.ctx.Done():
				return
			case <-w.rateLimiter.C:
			}
		}

		if err := w.process(job); err != nil {
			atomic.AddInt64(&w.stats.Failed, 1)
			log.Error("job failed", "worker", id, "kind", job.Kind, "error", err)
		}
	}
}

func (w *Worker) process(job Job) error {
	switch job.Kind {
	case JobRescan:
		frames, err := w.monitor.LoadAll()
		if err != nil {
			return fmt.Errorf("rescan: %w", err)
		}
		log.Info("caches rescanned", "frames", frames)
		return nil

	case JobRender:
		return w.render(job.State)

	default:
		atomic.AddInt64(&w.stats.Skipped, 1)
		return nil
	}
}

func (w *Worker) render(state []int) error {
	maskPaths, err := w.monitor.ProcessState(state)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	if len(maskPaths) == 0 {
		atomic.AddInt64(&w.stats.Skipped, 1)
		return nil
	}

	encodedState, _ := json.Marshal(state)

	if err := w.store.LogState(w.runID, state); err != nil {
		log.Warn("state log failed", "error", err)
	}

	for _, maskPath := range maskPaths {
		resultID, err := w.store.RecordResult(&Result{
			RunID:    w.runID,
			MaskPath: maskPath,
			State:    string(encodedState),
		})
		if err != nil {
			return err
		}

		outPath := w.outputPathFor(maskPath)
		if err := w.gen.ProcessMask(w.ctx, maskPath, outPath); err != nil {
			w.store.UpdateResultStatus(resultID, StatusFailed, "", err.Error())
			atomic.AddInt64(&w.stats.Failed, 1)
			continue
		}

		if err := w.store.UpdateResultStatus(resultID, StatusRendered, outPath, ""); err != nil {
			return err
		}

		atomic.AddInt64(&w.stats.Rendered, 1)
		w.statsMu.Lock()
		w.stats.LastRendered = time.Now()
		w.statsMu.Unlock()

		log.Debug("rendered", "mask", maskPath, "output", outPath)
	}

	return nil
}

func (w *Worker) outputPathFor(maskPath string) string {
	base := filepath.Base(maskPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.config.OutputDir, name+".jpg")
}
