package stats

import (
	"testing"
	"time"
)

func TestPlaybackFormat(t *testing.T) {
	t.Run("BeforeStart", func(t *testing.T) {
		p := NewPlayback()

		want := "00:00:00.00 | Source frames: 0 (0.0/s) | Total frames: 0 (0.0/s)"
		if got := p.Format(); got != want {
			t.Errorf("Format() = %q, want %q", got, want)
		}
	})

	t.Run("AfterFrames", func(t *testing.T) {
		p := NewPlayback()

		clock := time.Unix(1000, 0)
		p.now = func() time.Time { return clock }
		p.Start()

		for i := 0; i < 10; i++ {
			p.SourceFrame()
			p.DisplayFrame()
			p.DisplayFrame()
		}

		clock = clock.Add(10 * time.Second)

		want := "00:00:10.00 | Source frames: 10 (1.0/s) | Total frames: 20 (2.0/s)"
		if got := p.Format(); got != want {
			t.Errorf("Format() = %q, want %q", got, want)
		}
	})

	t.Run("HoursAndMinutes", func(t *testing.T) {
		p := NewPlayback()

		clock := time.Unix(1000, 0)
		p.now = func() time.Time { return clock }
		p.Start()

		clock = clock.Add(time.Hour + 2*time.Minute + 3*time.Second)

		want := "01:02:03.00 | Source frames: 0 (0.0/s) | Total frames: 0 (0.0/s)"
		if got := p.Format(); got != want {
			t.Errorf("Format() = %q, want %q", got, want)
		}
	})
}

func TestPlaybackStartPause(t *testing.T) {
	p := NewPlayback()

	if p.Playing() {
		t.Error("New playback should not be playing")
	}

	p.Start()
	if !p.Playing() {
		t.Error("Playback should be playing after Start")
	}

	started := p.startTime
	p.Pause()
	if p.Playing() {
		t.Error("Playback should not be playing after Pause")
	}

	// Restarting keeps the original clock origin.
	p.Start()
	if p.startTime != started {
		t.Error("Start should not reset the clock origin")
	}
}
