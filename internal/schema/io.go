package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the schema as indented JSON, creating the directory if
// needed.
func (a *APISchema) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a schema file written by Save or by the extract command.
func Load(path string) (*APISchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var api APISchema
	if err := json.Unmarshal(data, &api); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return &api, nil
}
