package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tmplworks/tmpl/internal/maskmap"
)

// ErrProjectRootNotFound means no ancestor of the working directory
// contains a data/landscapes tree.
var ErrProjectRootNotFound = errors.New("project root not found (no data/landscapes directory in any parent)")

// ProjectRoot walks up from the working directory to the first
// directory containing data/landscapes.
func ProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return ProjectRootFrom(cwd)
}

// ProjectRootFrom is ProjectRoot with an explicit starting directory.
func ProjectRootFrom(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		marker := filepath.Join(dir, "data", "landscapes")
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrProjectRootNotFound
		}
		dir = parent
	}
}

// LandscapesDir resolves data/landscapes under the project root.
func LandscapesDir() (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "data", "landscapes"), nil
}

// ScanResult is what a panorama directory actually contains, before
// any mapping file is consulted.
type ScanResult struct {
	PanoramaID   string
	StaticMasks  []int // gray values with a <id>_<gray>.png mask
	SequenceDirs []int // gray values with a <id>_<gray>/ sequence tree
}

// ScanDirectory inventories a panorama directory: static mask files
// named <id>_<gray>.png and sequence directories named <id>_<gray>.
func ScanDirectory(panoramaID string) (*ScanResult, error) {
	landscapes, err := LandscapesDir()
	if err != nil {
		return nil, err
	}
	return scanPanoramaDir(filepath.Join(landscapes, panoramaID), panoramaID)
}

func scanPanoramaDir(dir, panoramaID string) (*ScanResult, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("panorama directory: %w", err)
	}

	result := &ScanResult{PanoramaID: panoramaID}
	prefix := panoramaID + "_"

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, prefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	for _, match := range matches {
		name := filepath.Base(match)
		rest := strings.TrimPrefix(name, prefix)

		info, err := os.Stat(match)
		if err != nil {
			continue
		}

		if info.IsDir() {
			gray, err := strconv.Atoi(rest)
			if err != nil {
				continue
			}
			result.SequenceDirs = append(result.SequenceDirs, gray)
			continue
		}

		ext := filepath.Ext(rest)
		if ext != ".png" {
			continue
		}
		gray, err := strconv.Atoi(strings.TrimSuffix(rest, ext))
		if err != nil {
			continue
		}
		result.StaticMasks = append(result.StaticMasks, gray)
	}

	sort.Ints(result.StaticMasks)
	sort.Ints(result.SequenceDirs)
	return result, nil
}

// CreateDynamicConfig synthesizes the mapping entry a hand-written
// mask_mapping.json would contain for a panorama, from what is on
// disk. Layer indexes are assigned by ascending gray value, static
// masks first.
func CreateDynamicConfig(panoramaID string) (maskmap.Panorama, error) {
	scan, err := ScanDirectory(panoramaID)
	if err != nil {
		return maskmap.Panorama{}, err
	}
	return dynamicConfigFromScan(scan), nil
}

func dynamicConfigFromScan(scan *ScanResult) maskmap.Panorama {
	pan := maskmap.Panorama{
		StaticMasks:   make(maskmap.GrayIndex),
		SequenceMasks: make(maskmap.GrayIndex),
	}

	index := 1
	for _, gray := range scan.StaticMasks {
		pan.StaticMasks[gray] = index
		index++
	}
	for _, gray := range scan.SequenceDirs {
		pan.SequenceMasks[gray] = index
		index++
	}
	return pan
}
