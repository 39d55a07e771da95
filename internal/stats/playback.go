// Package stats tracks playback pacing for the display stage.
package stats

import (
	"fmt"
	"sync"
	"time"
)

// Playback counts source and displayed frames against a wall clock
// and formats a one-line summary.
type Playback struct {
	startTime       time.Time
	sourceFrames    int64
	displayedFrames int64
	playing         bool

	now func() time.Time
	mu  sync.Mutex
}

func NewPlayback() *Playback {
	return &Playback{now: time.Now}
}

// SourceFrame records the arrival of a new source frame.
func (p *Playback) SourceFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sourceFrames++
}

// DisplayFrame records every displayed frame, source or interpolated.
func (p *Playback) DisplayFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.displayedFrames++
}

func (p *Playback) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startTime.IsZero() {
		p.startTime = p.now()
	}
	p.playing = true
}

func (p *Playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *Playback) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Format renders the elapsed clock and per-second rates.
func (p *Playback) Format() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startTime.IsZero() {
		return "00:00:00.00 | Source frames: 0 (0.0/s) | Total frames: 0 (0.0/s)"
	}

	elapsed := p.now().Sub(p.startTime).Seconds()
	hours := int(elapsed) / 3600
	minutes := (int(elapsed) % 3600) / 60
	seconds := elapsed - float64(hours*3600+minutes*60)

	divisor := elapsed
	if divisor < 0.001 {
		divisor = 0.001
	}
	sourceFPS := float64(p.sourceFrames) / divisor
	displayFPS := float64(p.displayedFrames) / divisor

	return fmt.Sprintf("%02d:%02d:%05.2f | Source frames: %d (%.1f/s) | Total frames: %d (%.1f/s)",
		hours, minutes, seconds,
		p.sourceFrames, sourceFPS,
		p.displayedFrames, displayFPS)
}
