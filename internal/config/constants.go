package config

import (
	"path/filepath"
	"time"
)

// Composed masks are rendered at the panorama's native resolution.
const (
	TargetWidth  = 3840
	TargetHeight = 1280
)

// DefaultImageType is the output format for composed result masks.
const DefaultImageType = "bmp"

const (
	// MonitoringInterval is how often the result directory is polled
	// when the fsnotify watcher is disabled.
	MonitoringInterval = 10 * time.Millisecond

	// LogFilename receives the deduplicated counter-state log.
	LogFilename = "tmpl.log"

	// MaxSequences caps how many sequence directories are scanned per
	// gray value; it also fixes the width of the counter state vector.
	MaxSequences = 10
)

// Paths groups the directories a panorama works out of.
type Paths struct {
	Base      string
	Sequences string
	Output    string
	Results   string
}

// BasePaths resolves the working directories for a panorama relative
// to the project root.
func BasePaths(panoramaID string) (Paths, error) {
	root, err := ProjectRoot()
	if err != nil {
		return Paths{}, err
	}
	return BasePathsIn(root, panoramaID), nil
}

// BasePathsIn is BasePaths with an explicit root, for callers that
// already resolved it.
func BasePathsIn(root, panoramaID string) Paths {
	base := filepath.Join(root, "data", "landscapes", panoramaID)
	return Paths{
		Base:      base,
		Sequences: filepath.Join(base, "sequences"),
		Output:    base,
		Results:   filepath.Join(root, "results"),
	}
}
