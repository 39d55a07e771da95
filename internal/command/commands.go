package command

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/diagnostic"
	"github.com/tmplworks/tmpl/internal/results"
	"github.com/tmplworks/tmpl/pkg/protocol"
)

// Runtime bundles the live state the commands operate on. Store and
// Worker may be nil when the daemon runs without a pipeline.
type Runtime struct {
	Config    *config.Config
	Store     *results.Store
	Worker    *results.Worker
	StartTime time.Time

	mu sync.Mutex
}

// snapshotConfig copies the live configuration so the result can be
// marshaled after mu is released. Callers must hold mu.
func (rt *Runtime) snapshotConfig() config.Config {
	cfg := *rt.Config
	cfg.Watcher.IgnorePatterns = append([]string(nil), cfg.Watcher.IgnorePatterns...)
	return cfg
}

// RegisterAll wires every control command into the registry.
func RegisterAll(registry *Registry, rt *Runtime) error {
	cmds := []Command{
		&StatusCommand{rt: rt},
		&DiagnoseCommand{},
		&ConfigGetCommand{rt: rt},
		&ConfigSetCommand{rt: rt},
		&ResultsCommand{rt: rt},
		&ScanCommand{},
	}

	for _, cmd := range cmds {
		if err := registry.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

type StatusCommand struct {
	rt *Runtime
}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Report daemon and pipeline status" }

func (c *StatusCommand) Execute(params json.RawMessage) (any, error) {
	result := protocol.StatusResult{
		Status:   "running",
		Uptime:   time.Since(c.rt.StartTime),
		Panorama: c.rt.Config.PanoramaID,
	}

	if c.rt.Worker != nil {
		stats := c.rt.Worker.Stats()
		result.WorkerRunning = stats.IsRunning
		result.JobsInQueue = stats.InQueue
	}

	if c.rt.Store != nil {
		stats, err := c.rt.Store.Stats()
		if err != nil {
			return nil, err
		}
		result.RunsTotal = stats.TotalRuns
		result.ResultsTotal = stats.TotalResults
		result.ResultsFailed = stats.FailedResults
		result.RenderedTotal = stats.RenderedResults
	}

	return result, nil
}

type DiagnoseCommand struct{}

func (c *DiagnoseCommand) Name() string        { return "diagnose" }
func (c *DiagnoseCommand) Description() string { return "Run initialization diagnostics" }

func (c *DiagnoseCommand) Execute(params json.RawMessage) (any, error) {
	var p protocol.DiagnoseParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewInvalidParamsError(c.Name(), err)
		}
	}

	diag := diagnostic.New()
	ok := diag.Run(p.Root)

	return protocol.DiagnoseResult{
		OK:     ok,
		Issues: diag.Issues(),
	}, nil
}

type ConfigGetCommand struct {
	rt *Runtime
}

func (c *ConfigGetCommand) Name() string        { return "config.get" }
func (c *ConfigGetCommand) Description() string { return "Return the active configuration" }

func (c *ConfigGetCommand) Execute(params json.RawMessage) (any, error) {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	return c.rt.snapshotConfig(), nil
}

type ConfigSetCommand struct {
	rt *Runtime
}

func (c *ConfigSetCommand) Name() string        { return "config.set" }
func (c *ConfigSetCommand) Description() string { return "Update runtime-tunable settings" }

func (c *ConfigSetCommand) Execute(params json.RawMessage) (any, error) {
	var p protocol.ConfigSetParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewInvalidParamsError(c.Name(), err)
	}

	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()

	cfg := c.rt.Config
	if p.MirrorMode != nil {
		cfg.Depth.MirrorMode = *p.MirrorMode
	}
	if p.ShowStats != nil {
		cfg.Depth.ShowStats = *p.ShowStats
	}
	if p.DisplayWindow != nil {
		cfg.Depth.DisplayWindow = *p.DisplayWindow
	}
	if p.Visualization != nil {
		cfg.Features.Visualization = *p.Visualization
	}
	if p.Debug != nil {
		cfg.Features.Debug = *p.Debug
	}
	if p.MaskGeneration != nil {
		cfg.Features.MaskGeneration = *p.MaskGeneration
	}

	return c.rt.snapshotConfig(), nil
}

type ResultsCommand struct {
	rt *Runtime
}

func (c *ResultsCommand) Name() string        { return "results.recent" }
func (c *ResultsCommand) Description() string { return "List recently generated results" }

func (c *ResultsCommand) Execute(params json.RawMessage) (any, error) {
	if c.rt.Store == nil {
		return protocol.ResultsResult{}, nil
	}

	var p protocol.ResultsParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewInvalidParamsError(c.Name(), err)
		}
	}

	recent, err := c.rt.Store.RecentResults(p.Limit)
	if err != nil {
		return nil, err
	}

	out := protocol.ResultsResult{Results: make([]protocol.ResultEntry, 0, len(recent))}
	for _, r := range recent {
		out.Results = append(out.Results, protocol.ResultEntry{
			ID:         r.ID,
			MaskPath:   r.MaskPath,
			OutputPath: r.OutputPath,
			State:      r.State,
			Status:     string(r.Status),
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

type ScanCommand struct{}

func (c *ScanCommand) Name() string        { return "scan" }
func (c *ScanCommand) Description() string { return "Inventory a panorama directory" }

func (c *ScanCommand) Execute(params json.RawMessage) (any, error) {
	var p protocol.ScanParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewInvalidParamsError(c.Name(), err)
	}

	scan, err := config.ScanDirectory(p.PanoramaID)
	if err != nil {
		return nil, err
	}

	return protocol.ScanResult{
		PanoramaID:   scan.PanoramaID,
		StaticMasks:  scan.StaticMasks,
		SequenceDirs: scan.SequenceDirs,
	}, nil
}
