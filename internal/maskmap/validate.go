package maskmap

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Validate leniently parses a mapping file and collects every
// structural problem instead of stopping at the first. A nil mapping
// means the document was unusable.
func Validate(path string) (Mapping, []string) {
	var issues []string

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []string{fmt.Sprintf("error reading mask mapping: %v", err)}
	}

	decoded, err := decodeBOM(data)
	if err != nil {
		return nil, []string{fmt.Sprintf("error decoding mask mapping: %v", err)}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(decoded, &raw); err != nil {
		return nil, []string{fmt.Sprintf("invalid JSON in mask mapping file: %s", path)}
	}

	mapping := make(Mapping, len(raw))
	usable := true

	for id, rawEntry := range raw {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			issues = append(issues, fmt.Sprintf("invalid configuration for panorama %s", id))
			continue
		}

		pan := Panorama{}
		for _, key := range []string{"static_masks", "sequence_masks"} {
			rawMasks, ok := entry[key]
			if !ok {
				issues = append(issues, fmt.Sprintf("missing %s in configuration for %s", key, id))
				usable = false
				continue
			}

			masks, maskIssues := validateMasks(id, key, rawMasks)
			issues = append(issues, maskIssues...)

			if key == "static_masks" {
				pan.StaticMasks = masks
			} else {
				pan.SequenceMasks = masks
			}
		}
		mapping[id] = pan
	}

	if !usable {
		return nil, issues
	}
	return mapping, issues
}

func validateMasks(id, key string, raw json.RawMessage) (GrayIndex, []string) {
	var issues []string

	var entries map[string]json.Number
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, []string{fmt.Sprintf("invalid %s format for %s", key, id)}
	}

	masks := make(GrayIndex, len(entries))
	for grayStr, indexNum := range entries {
		gray, gerr := strconv.Atoi(grayStr)
		index, ierr := strconv.Atoi(indexNum.String())
		if gerr != nil || ierr != nil {
			issues = append(issues, fmt.Sprintf("invalid value in %s: %s -> %s", key, grayStr, indexNum))
			continue
		}
		masks[gray] = index
	}

	return masks, issues
}
