// Package tmpl is the public surface of the installation runtime.
// Embedders get the display constants, the path helpers and the
// startup checks without reaching into internal packages.
package tmpl

import (
	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/diagnostic"
	"github.com/tmplworks/tmpl/internal/maskmap"
)

// Output resolution of composed result masks.
const (
	TargetWidth  = config.TargetWidth
	TargetHeight = config.TargetHeight
)

// DefaultImageType is the file format composed masks are written in.
const DefaultImageType = config.DefaultImageType

const (
	MonitoringInterval = config.MonitoringInterval
	LogFilename        = config.LogFilename
	MaxSequences       = config.MaxSequences
)

// PlaybackConfig tunes display pacing and interpolation.
type PlaybackConfig = config.PlaybackConfig

// Display pacing presets: standard for the installation, simplified
// for development.
var (
	DefaultStandardConfig   = config.DefaultStandardConfig
	DefaultSimplifiedConfig = config.DefaultSimplifiedConfig
)

// Paths groups the directories a panorama works out of.
type Paths = config.Paths

// ScanResult inventories what a panorama directory contains on disk.
type ScanResult = config.ScanResult

// Mapping is the parsed mask_mapping.json content.
type Mapping = maskmap.Mapping

// Panorama is one mapping entry: gray value to layer index, for static
// and sequence masks.
type Panorama = maskmap.Panorama

// Diagnostic runs the startup checks and collects their issues.
type Diagnostic = diagnostic.Diagnostic

// NewDiagnostic returns a Diagnostic with no issues recorded.
func NewDiagnostic() *Diagnostic {
	return diagnostic.New()
}

// ProjectRoot walks up from the working directory to the first
// directory containing data/landscapes.
func ProjectRoot() (string, error) {
	return config.ProjectRoot()
}

// LandscapesDir resolves data/landscapes under the project root.
func LandscapesDir() (string, error) {
	return config.LandscapesDir()
}

// BasePaths resolves the working directories for a panorama.
func BasePaths(panoramaID string) (Paths, error) {
	return config.BasePaths(panoramaID)
}

// LoadMaskMapping strictly parses a mask_mapping.json file.
func LoadMaskMapping(path string) (Mapping, error) {
	return maskmap.Load(path)
}

// ScanDirectory inventories a panorama directory without consulting
// the mapping file.
func ScanDirectory(panoramaID string) (*ScanResult, error) {
	return config.ScanDirectory(panoramaID)
}

// CreateDynamicConfig synthesizes a mapping entry from what a panorama
// directory contains on disk.
func CreateDynamicConfig(panoramaID string) (Panorama, error) {
	return config.CreateDynamicConfig(panoramaID)
}
