// Package diagnostic verifies that a project tree is ready for mask
// generation before the pipeline starts.
package diagnostic

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/logger"
	"github.com/tmplworks/tmpl/internal/maskmap"
)

var log = logger.ForComponent("diagnostic")

// Diagnostic runs initialization checks and accumulates every issue it
// finds across them.
type Diagnostic struct {
	issues []string
}

func New() *Diagnostic {
	return &Diagnostic{}
}

// Issues returns everything found so far, in check order.
func (d *Diagnostic) Issues() []string {
	return d.issues
}

func (d *Diagnostic) addIssue(format string, args ...any) {
	d.issues = append(d.issues, fmt.Sprintf(format, args...))
}

// CheckProjectStructure verifies the required paths exist under root.
func (d *Diagnostic) CheckProjectStructure(root string) bool {
	required := []string{
		filepath.Join(root, "data", "landscapes"),
		filepath.Join(root, "data", "mask_mapping.json"),
	}

	for _, path := range required {
		if _, err := os.Stat(path); err != nil {
			d.addIssue("missing required path: %s", path)
			return false
		}
	}
	return true
}

// ValidateMaskMapping parses and structurally validates the mapping
// file, returning nil when it is unusable.
func (d *Diagnostic) ValidateMaskMapping(path string) maskmap.Mapping {
	mapping, issues := maskmap.Validate(path)
	d.issues = append(d.issues, issues...)
	return mapping
}

// CheckPanoramaFiles verifies every mask file and sequence directory
// the mapping references actually exists.
func (d *Diagnostic) CheckPanoramaFiles(landscapesDir, panoramaID string, mapping maskmap.Mapping) bool {
	panoramaDir := filepath.Join(landscapesDir, panoramaID)
	if _, err := os.Stat(panoramaDir); err != nil {
		d.addIssue("panorama directory not found: %s", panoramaDir)
		return false
	}

	pan := mapping[panoramaID]
	before := len(d.issues)

	for _, gray := range pan.StaticMasks.Grays() {
		maskFile := filepath.Join(panoramaDir, fmt.Sprintf("%s_%d.png", panoramaID, gray))
		if _, err := os.Stat(maskFile); err != nil {
			d.addIssue("missing static mask file: %s", maskFile)
		}
	}

	for _, gray := range pan.SequenceMasks.Grays() {
		seqDir := filepath.Join(panoramaDir, fmt.Sprintf("%s_%d", panoramaID, gray))
		if info, err := os.Stat(seqDir); err != nil || !info.IsDir() {
			d.addIssue("missing sequence directory: %s", seqDir)
		}
	}

	return len(d.issues) == before
}

// Run executes every check against root. An empty root resolves the
// project root from the working directory.
func (d *Diagnostic) Run(root string) bool {
	if root == "" {
		resolved, err := config.ProjectRoot()
		if err != nil {
			log.Error("cannot resolve project root", "error", err)
			d.addIssue("cannot resolve project root: %v", err)
			return false
		}
		root = resolved
	}

	log.Info("running initialization diagnostics", "root", root)

	if !d.CheckProjectStructure(root) {
		log.Error("project structure check failed", "issues", len(d.issues))
		return false
	}

	mappingPath := filepath.Join(root, "data", "mask_mapping.json")
	mapping := d.ValidateMaskMapping(mappingPath)
	if mapping == nil {
		log.Error("mask mapping validation failed", "path", mappingPath)
		return false
	}

	landscapesDir := filepath.Join(root, "data", "landscapes")
	allValid := true
	for _, panoramaID := range mapping.PanoramaIDs() {
		if !d.CheckPanoramaFiles(landscapesDir, panoramaID, mapping) {
			allValid = false
		}
	}

	if !allValid || len(d.issues) > 0 {
		for _, issue := range d.issues {
			log.Warn("diagnostic issue", "issue", issue)
		}
		return false
	}

	log.Info("all initialization checks passed")
	return true
}
