package testcase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sampleSuite() Suite {
	s := Suite{}
	s.Add(&Collection{
		Endpoint: EndpointInfo{Path: "/DescribeUDBInstance", Method: "POST", Description: "List instances"},
		Cases: []*TestCase{
			baseCase(),
			baseCase().Named("DescribeUDBInstance_boundary_Limit_max", Boundary, "max"),
		},
	})
	s.Add(&Collection{
		Endpoint: EndpointInfo{Path: "/CreateUDBInstance", Method: "POST"},
		Cases:    []*TestCase{baseCase().Named("CreateUDBInstance_happy_path", HappyPath, "")},
	})
	return s
}

func TestSuiteKeysSorted(t *testing.T) {
	s := sampleSuite()

	keys := s.Keys()
	if len(keys) != 2 {
		t.Fatalf("got %d keys", len(keys))
	}
	if keys[0] != "POST /CreateUDBInstance" || keys[1] != "POST /DescribeUDBInstance" {
		t.Errorf("keys not sorted: %v", keys)
	}
}

func TestSuiteTotal(t *testing.T) {
	if got := sampleSuite().Total(); got != 3 {
		t.Errorf("Total = %d, want 3", got)
	}
}

func TestSuiteSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "test_cases.json")
	s := sampleSuite()

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite() error: %v", err)
	}

	if loaded.Total() != 3 {
		t.Errorf("Total = %d after round trip", loaded.Total())
	}
	collection, ok := loaded["POST /DescribeUDBInstance"]
	if !ok {
		t.Fatalf("endpoint key missing: %v", loaded.Keys())
	}
	if collection.Endpoint.Description != "List instances" {
		t.Errorf("Description = %q", collection.Endpoint.Description)
	}

	tc := collection.Cases[0]
	if tc.Name != "DescribeUDBInstance_happy_path" {
		t.Errorf("Name = %q", tc.Name)
	}
	if tc.Type != HappyPath {
		t.Errorf("Type = %q", tc.Type)
	}

	// The not-equal marker survives the JSON round trip.
	inner, ok := NotEqualValue(tc.Validations[1].Expected)
	if !ok {
		t.Fatal("marker lost in serialization")
	}
	if n, isFloat := inner.(float64); !isFloat || n != 0 {
		t.Errorf("marker inner = %v (%T)", inner, inner)
	}
}

func TestSuiteWireShape(t *testing.T) {
	data, err := json.Marshal(sampleSuite())
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	entry, ok := raw["POST /DescribeUDBInstance"]
	if !ok {
		t.Fatalf("endpoint key missing: %v", raw)
	}
	if _, ok := entry["endpoint"]; !ok {
		t.Error("endpoint key missing in collection")
	}
	if _, ok := entry["test_cases"]; !ok {
		t.Error("test_cases key missing in collection")
	}
}

func TestLoadSuiteMissingFile(t *testing.T) {
	if _, err := LoadSuite(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("missing file must fail")
	}
}

func TestLoadSuiteMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSuite(path); err == nil {
		t.Fatal("malformed JSON must fail")
	}
}
