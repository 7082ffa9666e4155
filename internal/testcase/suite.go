package testcase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EndpointInfo is the endpoint summary stored next to its generated cases.
type EndpointInfo struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description,omitempty"`
}

// Collection holds the generated battery for one endpoint.
type Collection struct {
	Endpoint EndpointInfo `json:"endpoint"`
	Cases    []*TestCase  `json:"test_cases"`
}

// Key returns the suite key for the collection, e.g. "POST /DescribeUDBInstance".
func (c *Collection) Key() string {
	return c.Endpoint.Method + " " + c.Endpoint.Path
}

// Suite maps "METHOD /path" keys to per-endpoint collections. The map form
// matches the on-disk test case file layout.
type Suite map[string]*Collection

// Add inserts a collection under its endpoint key.
func (s Suite) Add(c *Collection) {
	s[c.Key()] = c
}

// Keys returns the endpoint keys in sorted order so that iteration over a
// suite is deterministic.
func (s Suite) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total counts the cases across all collections.
func (s Suite) Total() int {
	n := 0
	for _, c := range s {
		n += len(c.Cases)
	}
	return n
}

// LoadSuite reads a test case file produced by Save or by the generate
// command.
func LoadSuite(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test case file: %w", err)
	}

	var suite Suite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test case file %s: %w", path, err)
	}
	return suite, nil
}

// Save writes the suite as indented JSON, creating the target directory if
// needed.
func (s Suite) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal test cases: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
