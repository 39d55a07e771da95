package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/depth"
	"github.com/tmplworks/tmpl/internal/diagnostic"
	"github.com/tmplworks/tmpl/internal/mask"
	"github.com/tmplworks/tmpl/internal/maskmap"
	"github.com/tmplworks/tmpl/internal/results"
	"github.com/tmplworks/tmpl/internal/spade"
	"github.com/tmplworks/tmpl/internal/watcher"
)

// System is the assembled generator stack shared by the runner and
// the daemon.
type System struct {
	Config  *config.Config
	Root    string
	Paths   config.Paths
	Monitor *mask.Monitor
	Store   *results.Store
	Worker  *results.Worker
	Watcher *watcher.Watcher
	Tracker *depth.Tracker
	RunID   int64
}

// Bootstrap verifies the project tree and assembles the mask system
// for the configured panorama. The mapping file wins; a panorama
// missing from it falls back to a dynamic scan of its directory.
func Bootstrap(cfg *config.Config) (*System, error) {
	root, err := config.ProjectRoot()
	if err != nil {
		return nil, err
	}

	diag := diagnostic.New()
	if !diag.Run(root) {
		return nil, fmt.Errorf("initialization diagnostic failed: %d issue(s)", len(diag.Issues()))
	}

	mapping, err := maskmap.Load(filepath.Join(root, "data", "mask_mapping.json"))
	if err != nil {
		return nil, err
	}

	panoramaID := cfg.PanoramaID
	if panoramaID == "" {
		first, ok := mapping.First()
		if !ok {
			return nil, fmt.Errorf("mask mapping contains no panoramas")
		}
		panoramaID = first
		cfg.PanoramaID = panoramaID
	}

	pan, ok := mapping[panoramaID]
	if !ok {
		pan, err = config.CreateDynamicConfig(panoramaID)
		if err != nil {
			return nil, fmt.Errorf("panorama %s not in mapping and scan failed: %w", panoramaID, err)
		}
		log.Info("using dynamic configuration", "panorama", panoramaID)
	}

	paths := config.BasePathsIn(root, panoramaID)

	monitor, err := mask.NewMonitor(panoramaID, []mask.Config{mask.FromMapping("depth_generated", pan)}, paths)
	if err != nil {
		return nil, err
	}
	if _, err := monitor.LoadAll(); err != nil {
		return nil, err
	}

	store, err := results.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	runID, err := store.CreateRun(panoramaID)
	if err != nil {
		store.Close()
		return nil, err
	}

	gen, err := spade.New(spade.DefaultOptions(root))
	if err != nil {
		store.Close()
		return nil, err
	}

	worker := results.NewWorker(monitor, gen, store, runID,
		results.DefaultWorkerConfig(filepath.Join(paths.Output, "rendered")))

	tracker, err := depth.NewTracker(cfg.ToDepth(), filepath.Join(root, config.LogFilename))
	if err != nil {
		store.Close()
		return nil, err
	}

	sys := &System{
		Config:  cfg,
		Root:    root,
		Paths:   paths,
		Monitor: monitor,
		Store:   store,
		Worker:  worker,
		Tracker: tracker,
		RunID:   runID,
	}

	if cfg.Watcher.Enabled {
		w, err := watcher.New(cfg.Watcher, worker)
		if err != nil {
			store.Close()
			return nil, err
		}
		if err := w.AddRoot(paths.Base); err != nil {
			store.Close()
			return nil, err
		}
		sys.Watcher = w
	}

	return sys, nil
}

// Start launches the worker and watcher.
func (s *System) Start(ctx context.Context) error {
	s.Worker.Start()
	if s.Watcher != nil {
		return s.Watcher.Start(ctx)
	}
	return nil
}

// Stop tears the stack down in dependency order.
func (s *System) Stop() {
	if s.Watcher != nil {
		s.Watcher.Stop()
	}
	s.Worker.Stop()
	s.Store.Close()
}
