package postman

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvironmentDefaults(t *testing.T) {
	env := NewEnvironment("API Test AI Environment", nil)

	assert.Equal(t, "API Test AI Environment", env.Name)
	assert.Equal(t, "environment", env.Scope)
	assert.NotEmpty(t, env.ID)

	vars := env.Vars()
	assert.Equal(t, "https://api.ucloud.cn", vars["base_url"])
	assert.Equal(t, "cn-bj2", vars["Region"])
	assert.Equal(t, "", vars["PublicKey"], "credentials ship empty")
	assert.Equal(t, "", vars["PrivateKey"])
}

func TestNewEnvironmentOverrides(t *testing.T) {
	env := NewEnvironment("staging", map[string]string{
		"base_url": "https://staging.example.com",
		"Region":   "cn-sh2",
		"Custom":   "42",
	})

	vars := env.Vars()
	assert.Equal(t, "https://staging.example.com", vars["base_url"])
	assert.Equal(t, "cn-sh2", vars["Region"])
	assert.Equal(t, "42", vars["Custom"])
	assert.Equal(t, "cn-bj2-04", vars["Zone"], "untouched defaults remain")
}

func TestEnvironmentValuesSorted(t *testing.T) {
	env := NewEnvironment("x", map[string]string{"zz_last": "1", "aa_first": "2"})

	keys := make([]string, 0, len(env.Values))
	for _, v := range env.Values {
		keys = append(keys, v.Key)
		assert.True(t, v.Enabled)
		assert.Equal(t, "default", v.Type)
	}
	assert.True(t, sort.StringsAreSorted(keys), "entries are emitted in sorted order: %v", keys)
}

func TestEnvironmentSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "postman_environment.json")

	env := NewEnvironment("roundtrip", map[string]string{"Region": "cn-gd"})
	require.NoError(t, env.Save(path))

	loaded, err := LoadEnvironment(path)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", loaded.Name)
	assert.Equal(t, env.ID, loaded.ID)
	assert.Equal(t, "cn-gd", loaded.Vars()["Region"])
}

func TestVarsSkipsDisabled(t *testing.T) {
	env := &Environment{Values: []Variable{
		{Key: "on", Value: "1", Enabled: true},
		{Key: "off", Value: "2", Enabled: false},
	}}

	vars := env.Vars()
	assert.Equal(t, "1", vars["on"])
	assert.NotContains(t, vars, "off")
}

func TestLoadEnvironmentMissing(t *testing.T) {
	_, err := LoadEnvironment(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
