package maskmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
)

// Load reads and strictly decodes a mask mapping file. Files written
// by external tools may carry a UTF-8 or UTF-16 BOM; both are handled.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mask mapping: %w", err)
	}

	decoded, err := decodeBOM(data)
	if err != nil {
		return nil, fmt.Errorf("decode mask mapping %s: %w", path, err)
	}

	var mapping Mapping
	if err := json.Unmarshal(decoded, &mapping); err != nil {
		return nil, fmt.Errorf("parse mask mapping %s: %w", path, err)
	}

	return mapping, nil
}

func decodeBOM(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data)
	}
	return data, nil
}
