package mask

import (
	"fmt"

	"github.com/tmplworks/tmpl/internal/config"
)

// Monitor fans one counter state out to every composition profile of a
// panorama.
type Monitor struct {
	panoramaID string
	managers   map[string]*Manager
}

func NewMonitor(panoramaID string, cfgs []Config, paths config.Paths) (*Monitor, error) {
	managers := make(map[string]*Manager, len(cfgs))
	for _, cfg := range cfgs {
		mgr, err := NewManager(cfg, panoramaID, paths)
		if err != nil {
			return nil, fmt.Errorf("manager %s: %w", cfg.Name, err)
		}
		managers[cfg.Name] = mgr
	}

	return &Monitor{
		panoramaID: panoramaID,
		managers:   managers,
	}, nil
}

func (m *Monitor) PanoramaID() string {
	return m.panoramaID
}

func (m *Monitor) Managers() map[string]*Manager {
	return m.managers
}

// LoadAll primes every manager's static mask and sequence caches,
// returning the total frame count.
func (m *Monitor) LoadAll() (int, error) {
	total := 0
	for name, mgr := range m.managers {
		if _, err := mgr.LoadStaticMasks(); err != nil {
			return total, fmt.Errorf("%s: %w", name, err)
		}
		frames, err := mgr.ScanSequences()
		if err != nil {
			return total, fmt.Errorf("%s: %w", name, err)
		}
		total += frames
	}

	log.Info("mask caches primed", "panorama", m.panoramaID, "frames", total)
	return total, nil
}

// ProcessState composes one result per profile from the counter state
// vector (frame number per sequence slot, zero meaning idle) and
// returns the written paths.
func (m *Monitor) ProcessState(counters []int) ([]string, error) {
	active := activeSequences(counters)
	if len(active) == 0 {
		return nil, nil
	}

	var paths []string
	for name, mgr := range m.managers {
		state := make(State, len(mgr.cfg.GrayValues))
		for _, gray := range mgr.cfg.GrayValues {
			state[gray] = active
		}

		path, err := mgr.ProcessAndSave(state)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", name, err)
		}
		if path != "" {
			paths = append(paths, path)
			log.Debug("generated result", "profile", name, "path", path)
		}
	}

	return paths, nil
}

func activeSequences(counters []int) []SequenceRef {
	var active []SequenceRef
	for seq, frame := range counters {
		if frame > 0 {
			active = append(active, SequenceRef{Seq: seq, Frame: frame})
		}
	}
	return active
}
