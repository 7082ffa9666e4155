package postman

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// Environment is a Postman environment file.
type Environment struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Values []Variable `json:"values"`
	Scope  string     `json:"_postman_variable_scope"`
}

// Variable is one environment entry.
type Variable struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

// defaultVariables seed a usable environment when the caller provides
// nothing. PublicKey and PrivateKey are deliberately left empty so real
// credentials never end up in a committed file.
var defaultVariables = map[string]string{
	"base_url":   "https://api.ucloud.cn",
	"Region":     "cn-bj2",
	"Zone":       "cn-bj2-04",
	"ProjectId":  "org-123456",
	"PublicKey":  "",
	"PrivateKey": "",
}

// NewEnvironment builds an environment document from a variable map.
// Defaults fill in any missing well-known keys.
func NewEnvironment(name string, vars map[string]string) *Environment {
	merged := make(map[string]string, len(defaultVariables)+len(vars))
	for k, v := range defaultVariables {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := &Environment{
		ID:    uuid.New().String(),
		Name:  name,
		Scope: "environment",
	}
	for _, k := range keys {
		env.Values = append(env.Values, Variable{
			Key:     k,
			Value:   merged[k],
			Type:    "default",
			Enabled: true,
		})
	}
	return env
}

// Vars flattens the enabled entries back into a map.
func (e *Environment) Vars() map[string]string {
	out := make(map[string]string, len(e.Values))
	for _, v := range e.Values {
		if !v.Enabled {
			continue
		}
		out[v.Key] = v.Value
	}
	return out
}

// Save writes the environment as indented JSON.
func (e *Environment) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal environment: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnvironment reads an environment file written by Save or exported
// from Postman.
func LoadEnvironment(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}
	var env Environment
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse environment file %s: %w", path, err)
	}
	return &env, nil
}
