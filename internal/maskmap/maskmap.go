// Package maskmap loads and validates data/mask_mapping.json, the
// file that binds panorama gray values to composition layer indexes.
package maskmap

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// GrayIndex maps a mask's gray value to its composition layer index.
// The JSON form uses string keys ("128": 3).
type GrayIndex map[int]int

func (g *GrayIndex) UnmarshalJSON(data []byte) error {
	raw := map[string]int{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(GrayIndex, len(raw))
	for key, index := range raw {
		gray, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("gray value %q is not an integer", key)
		}
		out[gray] = index
	}
	*g = out
	return nil
}

func (g GrayIndex) MarshalJSON() ([]byte, error) {
	raw := make(map[string]int, len(g))
	for gray, index := range g {
		raw[strconv.Itoa(gray)] = index
	}
	return json.Marshal(raw)
}

// Grays returns the gray values in ascending order.
func (g GrayIndex) Grays() []int {
	grays := make([]int, 0, len(g))
	for gray := range g {
		grays = append(grays, gray)
	}
	sort.Ints(grays)
	return grays
}

// Panorama is one panorama's mapping entry.
type Panorama struct {
	StaticMasks   GrayIndex `json:"static_masks"`
	SequenceMasks GrayIndex `json:"sequence_masks"`
}

// Merged unions static and sequence gray values into one index map.
// Sequence indexes win on collision, matching how the adapters merge
// the two dicts.
func (p Panorama) Merged() GrayIndex {
	merged := make(GrayIndex, len(p.StaticMasks)+len(p.SequenceMasks))
	for gray, index := range p.StaticMasks {
		merged[gray] = index
	}
	for gray, index := range p.SequenceMasks {
		merged[gray] = index
	}
	return merged
}

// Mapping is the whole mask_mapping.json document.
type Mapping map[string]Panorama

// PanoramaIDs returns the panorama ids in ascending order.
func (m Mapping) PanoramaIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// First returns the first panorama id in sorted order, the default a
// runner picks when none was configured.
func (m Mapping) First() (string, bool) {
	ids := m.PanoramaIDs()
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}
