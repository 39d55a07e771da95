// Package spade is the boundary to the image-synthesis model suite.
// The model itself (data/models/options/trainers/util) is an external
// collaborator; this package holds the options surface, the external
// invoker and the colormap bypass renderer.
package spade

import "path/filepath"

// Options mirrors the synthesis suite's test-time option surface.
type Options struct {
	// CheckpointsDir holds the trained model weights.
	CheckpointsDir string
	// Name selects the checkpoint subdirectory.
	Name string
	// Device is "auto", "cpu" or an accelerator name; it is passed
	// through to the external model runner.
	Device string
	// Colormap names the gradient used by the bypass renderer.
	Colormap string
	// Bypass skips the model entirely and colorizes masks directly.
	Bypass bool
	// ModelCommand is the external runner invoked when Bypass is off.
	ModelCommand string
}

func DefaultOptions(projectRoot string) Options {
	return Options{
		CheckpointsDir: filepath.Join(projectRoot, "checkpoints"),
		Name:           "tmpl",
		Device:         "auto",
		Colormap:       "viridis",
		Bypass:         true,
	}
}
