// Package mask composes panorama segmentation masks from static
// layers and animated sequence frames.
package mask

import (
	"github.com/tmplworks/tmpl/internal/maskmap"
)

// Config names one composition profile: which gray values it layers
// and which output index each gray value paints.
type Config struct {
	Name        string
	GrayValues  []int
	GrayIndexes map[int]int
}

// FromMapping builds a composition profile from a panorama's mapping
// entry, merging static and sequence gray values.
func FromMapping(name string, pan maskmap.Panorama) Config {
	merged := pan.Merged()
	return Config{
		Name:        name,
		GrayValues:  merged.Grays(),
		GrayIndexes: merged,
	}
}
