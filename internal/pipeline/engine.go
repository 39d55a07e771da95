// Package pipeline runs the integrated loop: depth frames in, render
// jobs out.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/depth"
	"github.com/tmplworks/tmpl/internal/logger"
	"github.com/tmplworks/tmpl/internal/results"
	"github.com/tmplworks/tmpl/internal/stats"
)

var log = logger.ForComponent("pipeline")

// statsInterval paces the periodic playback summary line.
const statsInterval = 5 * time.Second

type Engine struct {
	cfg      *config.Config
	source   depth.Source
	analyzer *depth.Analyzer
	tracker  *depth.Tracker
	worker   *results.Worker
	playback *stats.Playback
}

func New(cfg *config.Config, source depth.Source, tracker *depth.Tracker, worker *results.Worker) *Engine {
	return &Engine{
		cfg:      cfg,
		source:   source,
		analyzer: depth.NewAnalyzer(cfg.ToDepth()),
		tracker:  tracker,
		worker:   worker,
		playback: stats.NewPlayback(),
	}
}

func (e *Engine) Playback() *stats.Playback {
	return e.playback
}

// Run consumes depth frames until the context is canceled or the
// source runs dry. Counter states are throttled into render jobs at
// the mask update interval.
func (e *Engine) Run(ctx context.Context) error {
	frames, err := e.source.Frames(ctx)
	if err != nil {
		return fmt.Errorf("open depth source: %w", err)
	}

	e.playback.Start()
	defer e.playback.Pause()

	log.Info("pipeline running",
		"panorama", e.cfg.PanoramaID,
		"mirror", e.cfg.Depth.MirrorMode,
		"mask_generation", e.cfg.Features.MaskGeneration)

	var lastMaskUpdate time.Time
	var lastStats time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame, ok := <-frames:
			if !ok {
				log.Info("depth source drained")
				return nil
			}

			e.playback.SourceFrame()

			if e.cfg.Features.DepthTracking {
				if err := e.step(frame, &lastMaskUpdate); err != nil {
					if e.cfg.Features.Debug {
						return err
					}
					log.Warn("frame dropped", "error", err)
				}
			}

			e.playback.DisplayFrame()

			if e.cfg.Depth.ShowStats && time.Since(lastStats) >= statsInterval {
				log.Info("playback", "stats", e.playback.Format())
				lastStats = time.Now()
			}
		}
	}
}

func (e *Engine) step(frame []float64, lastMaskUpdate *time.Time) error {
	presence, err := e.analyzer.AnalyzeColumns(frame, e.cfg.Depth.MirrorMode)
	if err != nil {
		return err
	}

	e.tracker.Update(presence)

	if !e.cfg.Features.MaskGeneration {
		return nil
	}

	counters := e.tracker.Counters()
	if !anyActive(counters) {
		return nil
	}

	if time.Since(*lastMaskUpdate) < e.cfg.Timing.MaskUpdateInterval {
		return nil
	}

	if e.worker.Enqueue(results.Job{Kind: results.JobRender, State: counters, Priority: results.PriorityNormal}) {
		*lastMaskUpdate = time.Now()
	}
	return nil
}

func anyActive(counters []int) bool {
	for _, c := range counters {
		if c > 0 {
			return true
		}
	}
	return false
}
