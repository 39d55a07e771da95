package config

// PlaybackConfig tunes how the display stage paces source frames and
// how many interpolated frames it inserts between them.
type PlaybackConfig struct {
	BufferSize          int
	FrameStep           int
	SourceFPS           float64
	FramesToInterpolate int
}

// TotalFPS is the effective display rate once interpolated frames are
// counted.
func (p PlaybackConfig) TotalFPS() float64 {
	return p.SourceFPS * float64(p.FramesToInterpolate+1)
}

// DefaultStandardConfig paces slow source frames with heavy
// interpolation, the normal installation mode.
var DefaultStandardConfig = PlaybackConfig{
	BufferSize:          12,
	FrameStep:           4,
	SourceFPS:           0.5,
	FramesToInterpolate: 30,
}

// DefaultSimplifiedConfig runs near-raw playback for development, with
// barely any interpolation.
var DefaultSimplifiedConfig = PlaybackConfig{
	BufferSize:          12,
	FrameStep:           1,
	SourceFPS:           12,
	FramesToInterpolate: 2,
}
