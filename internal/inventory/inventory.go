// Package inventory loads the static inventory data file rendered by the
// server. Records are opaque: they are decoded and handed to the view as is.
package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/prime-website/internal/errors"
)

// Record is one displayable item. Its attributes are never validated.
type Record map[string]any

// Inventory is the ordered collection of records found in a data file.
type Inventory []Record

// Load reads and decodes the data file at path. The format is picked from the
// extension: .yaml and .yml decode as YAML, anything else as JSON. Every
// failure, including a document that is not an array of records, is returned
// as an ErrInventoryLoad error.
func Load(path string) (Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrInventoryLoad(path, err)
	}

	inv, err := Decode(data, formatOf(path))
	if err != nil {
		return nil, errors.ErrInventoryLoad(path, err)
	}
	return inv, nil
}

// Format is a data file encoding.
type Format int

const (
	// FormatJSON decodes a JSON array. Any unrecognised extension uses it.
	FormatJSON Format = iota
	// FormatYAML decodes a YAML sequence from .yaml and .yml files.
	FormatYAML
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses data as an array of records.
func Decode(data []byte, format Format) (Inventory, error) {
	var inv Inventory

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &inv); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&inv); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("parse json: trailing data after array")
		}
	}

	// A bare null decodes to a nil slice without error; treat it as malformed.
	if inv == nil {
		return nil, fmt.Errorf("document is not an array of records")
	}
	return inv, nil
}
