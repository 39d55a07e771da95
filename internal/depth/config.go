// Package depth turns grids of distance samples into per-column
// presence and sustained-presence counters.
package depth

import "time"

// Config is the standalone depth-tracking configuration; the
// integrated config converts into it.
type Config struct {
	// Distance thresholds in meters.
	MinThreshold float64
	MaxThreshold float64

	// Grid dimensions of the spatial sampler.
	GridH int
	GridV int

	MirrorMode bool

	CounterIncrementInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinThreshold:             0.4,
		MaxThreshold:             1.8,
		GridH:                    10,
		GridV:                    6,
		MirrorMode:               true,
		CounterIncrementInterval: 500 * time.Millisecond,
	}
}
