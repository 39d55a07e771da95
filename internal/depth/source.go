package depth

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Source supplies distance grids. The stereo camera is an external
// collaborator behind this interface; development and tests use the
// replay source.
type Source interface {
	// Frames delivers row-major distance grids until the context is
	// canceled or the source runs dry, then closes the channel.
	Frames(ctx context.Context) (<-chan []float64, error)
	Close() error
}

// ReplaySource plays distance frames recorded as JSONL (one
// []float64 per line) at a fixed interval.
type ReplaySource struct {
	path     string
	interval time.Duration
	loop     bool
}

func NewReplaySource(path string, interval time.Duration, loop bool) *ReplaySource {
	return &ReplaySource{path: path, interval: interval, loop: loop}
}

func (r *ReplaySource) Frames(ctx context.Context) (<-chan []float64, error) {
	frames, err := readFrames(r.path)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("replay file %s contains no frames", r.path)
	}

	out := make(chan []float64)
	go func() {
		defer close(out)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- frames[i]:
				case <-ctx.Done():
					return
				}

				i++
				if i >= len(frames) {
					if !r.loop {
						return
					}
					i = 0
				}
			}
		}
	}()

	return out, nil
}

func (r *ReplaySource) Close() error {
	return nil
}

func readFrames(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	var frames [][]float64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var frame []float64
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("replay line %d: %w", line, err)
		}
		frames = append(frames, frame)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	return frames, nil
}
