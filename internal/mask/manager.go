package mask

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/bmp"

	"github.com/tmplworks/tmpl/internal/config"
	"github.com/tmplworks/tmpl/internal/logger"
)

var log = logger.ForComponent("mask")

// SequenceRef addresses one frame of one sequence slot.
type SequenceRef struct {
	Seq   int
	Frame int
}

// State maps a gray value to the sequence frames currently active for
// it.
type State map[int][]SequenceRef

// Manager caches a panorama's static masks and sequence frames and
// composes them into numbered result masks.
type Manager struct {
	cfg        Config
	panoramaID string
	paths      config.Paths

	staticMasks  map[int]*image.Gray
	seqFrames    map[int]map[int]map[int]*image.Gray
	seqMaxFrames map[int]map[int]int

	resultsIndex int
	mu           sync.Mutex
}

func NewManager(cfg Config, panoramaID string, paths config.Paths) (*Manager, error) {
	if err := os.MkdirAll(paths.Results, 0755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	return &Manager{
		cfg:          cfg,
		panoramaID:   panoramaID,
		paths:        paths,
		staticMasks:  make(map[int]*image.Gray),
		seqFrames:    make(map[int]map[int]map[int]*image.Gray),
		seqMaxFrames: make(map[int]map[int]int),
	}, nil
}

func (m *Manager) Config() Config {
	return m.cfg
}

// LoadStaticMasks caches every <id>_<gray>.png present in the panorama
// directory. Gray values without a static mask are not an error.
func (m *Manager) LoadStaticMasks() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, gray := range m.cfg.GrayValues {
		path := filepath.Join(m.paths.Base, fmt.Sprintf("%s_%d.png", m.panoramaID, gray))
		if _, err := os.Stat(path); err != nil {
			continue
		}

		img, err := loadGray(path)
		if err != nil {
			return loaded, fmt.Errorf("static mask %d: %w", gray, err)
		}

		m.staticMasks[gray] = img
		loaded++
		log.Debug("loaded static mask", "gray", gray, "path", path)
	}

	return loaded, nil
}

// ScanSequences walks each gray value's <id>_<gray>/<seq>/ tree and
// caches the numbered frame images, up to MaxSequences sequence slots.
func (m *Manager) ScanSequences() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, gray := range m.cfg.GrayValues {
		seqRoot := filepath.Join(m.paths.Base, fmt.Sprintf("%s_%d", m.panoramaID, gray))
		entries, err := os.ReadDir(seqRoot)
		if err != nil {
			continue
		}

		frames := make(map[int]map[int]*image.Gray)
		maxFrames := make(map[int]int)

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			seqNum, err := strconv.Atoi(entry.Name())
			if err != nil || seqNum < 0 || seqNum >= config.MaxSequences {
				continue
			}

			seqFrames, maxFrame, err := m.loadSequence(filepath.Join(seqRoot, entry.Name()))
			if err != nil {
				return total, fmt.Errorf("sequence %d/%d: %w", gray, seqNum, err)
			}
			if maxFrame == 0 {
				continue
			}

			frames[seqNum] = seqFrames
			maxFrames[seqNum] = maxFrame
			total += len(seqFrames)
		}

		if len(frames) > 0 {
			m.seqFrames[gray] = frames
			m.seqMaxFrames[gray] = maxFrames
		}
	}

	return total, nil
}

func (m *Manager) loadSequence(dir string) (map[int]*image.Gray, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	frames := make(map[int]*image.Gray)
	maxFrame := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".png") {
			continue
		}
		frameNum, err := strconv.Atoi(strings.TrimSuffix(name, ".png"))
		if err != nil {
			continue
		}

		img, err := loadGray(filepath.Join(dir, name))
		if err != nil {
			return nil, 0, err
		}

		frames[frameNum] = img
		if frameNum > maxFrame {
			maxFrame = frameNum
		}
	}

	return frames, maxFrame, nil
}

// Frame returns the cached frame for a gray value and sequence slot,
// clamping past-the-end frame numbers to the last recorded frame.
func (m *Manager) Frame(gray, seq, frame int) *image.Gray {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameLocked(gray, seq, frame)
}

func (m *Manager) frameLocked(gray, seq, frame int) *image.Gray {
	seqs, ok := m.seqFrames[gray]
	if !ok {
		return nil
	}
	frames, ok := seqs[seq]
	if !ok {
		return nil
	}

	maxFrame := m.seqMaxFrames[gray][seq]
	if maxFrame == 0 {
		return nil
	}
	if frame > maxFrame {
		frame = maxFrame
	}
	return frames[frame]
}

// ProcessAndSave composes the current state into a result mask and
// writes it as results/<n>.bmp. An empty state produces nothing.
func (m *Manager) ProcessAndSave(state State) (string, error) {
	if len(state) == 0 {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	final := image.NewGray(image.Rect(0, 0, config.TargetWidth, config.TargetHeight))
	for i := range final.Pix {
		final.Pix[i] = 255
	}

	// Higher layer indexes paint first so lower ones overwrite them.
	grays := append([]int(nil), m.cfg.GrayValues...)
	sort.Slice(grays, func(i, j int) bool {
		return m.cfg.GrayIndexes[grays[i]] > m.cfg.GrayIndexes[grays[j]]
	})

	for _, gray := range grays {
		combined := m.combineActive(gray, state[gray])
		if combined == nil {
			continue
		}

		index, ok := m.cfg.GrayIndexes[gray]
		if !ok {
			continue
		}

		bounds := combined.Bounds().Intersect(final.Bounds())
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if combined.GrayAt(x, y).Y > 0 {
					final.SetGray(x, y, color.Gray{Y: uint8(index)})
				}
			}
		}
	}

	m.resultsIndex++
	resultPath := filepath.Join(m.paths.Results, fmt.Sprintf("%d.%s", m.resultsIndex, config.DefaultImageType))

	f, err := os.Create(resultPath)
	if err != nil {
		return "", fmt.Errorf("create result: %w", err)
	}
	defer f.Close()

	if err := bmp.Encode(f, final); err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	return resultPath, nil
}

// combineActive unions the static mask and the active sequence frames
// for one gray value, or nil when nothing is active.
func (m *Manager) combineActive(gray int, refs []SequenceRef) *image.Gray {
	var active []*image.Gray

	if static, ok := m.staticMasks[gray]; ok {
		active = append(active, static)
	}
	for _, ref := range refs {
		if frame := m.frameLocked(gray, ref.Seq, ref.Frame); frame != nil {
			active = append(active, frame)
		}
	}

	if len(active) == 0 {
		return nil
	}
	if len(active) == 1 {
		return active[0]
	}

	combined := image.NewGray(active[0].Bounds())
	copy(combined.Pix, active[0].Pix)
	for _, img := range active[1:] {
		unionInto(combined, img)
	}
	return combined
}

// ResultsIndex is the number of results written so far.
func (m *Manager) ResultsIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsIndex
}
