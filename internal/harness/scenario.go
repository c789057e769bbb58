package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/motif/internal/engine"
	"github.com/roach88/motif/internal/graphfile"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// GraphFile is a graph document path, relative to the scenario file.
	GraphFile string `yaml:"graph_file,omitempty"`

	// Graph is an inline graph document, used when GraphFile is empty.
	Graph *graphfile.Document `yaml:"graph,omitempty"`

	// Filters are applied to the graph before the pattern runs.
	Filters *Filters `yaml:"filters,omitempty"`

	// Pattern is the motif pattern. The empty pattern is valid.
	Pattern string `yaml:"pattern"`

	// Engines lists the engines to run on. Default: all of them.
	Engines []string `yaml:"engines,omitempty"`

	// Expect is the expected outcome.
	Expect Expect `yaml:"expect"`

	// Assertions are additional checks on the result rows.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Filters preprocess the scenario graph.
type Filters struct {
	Vertices     string `yaml:"vertices,omitempty"`
	Edges        string `yaml:"edges,omitempty"`
	DropIsolated bool   `yaml:"drop_isolated,omitempty"`
}

// Expect specifies the expected result.
type Expect struct {
	// Columns is the exact, ordered list of output columns.
	Columns []string `yaml:"columns,omitempty"`

	// Rows is the expected multiset of row keys. Nil skips the check.
	Rows [][]any `yaml:"rows,omitempty"`

	// Error is the expected error code. When set, the pattern must fail.
	Error string `yaml:"error,omitempty"`
}

// Assertion checks a property of the result rows.
type Assertion struct {
	// Type is one of row_count, contains_row, excludes_row.
	Type string `yaml:"type"`

	// Count is the expected number of rows (row_count).
	Count int `yaml:"count,omitempty"`

	// Row maps columns to expected keys (contains_row, excludes_row).
	// Subset match: unlisted columns may hold anything.
	Row map[string]any `yaml:"row,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount    = "row_count"
	AssertContainsRow = "contains_row"
	AssertExcludesRow = "excludes_row"
)

// AllEngines are the engines a scenario runs on by default.
var AllEngines = []string{engine.NameMemory, engine.NameSQLite}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative graph_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so "expects:" is not silently ignored.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.GraphFile != "" && !filepath.IsAbs(scenario.GraphFile) {
		scenario.GraphFile = filepath.Join(filepath.Dir(path), scenario.GraphFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.GraphFile == "" && s.Graph == nil:
		return fmt.Errorf("graph_file or graph is required")
	case s.GraphFile != "" && s.Graph != nil:
		return fmt.Errorf("graph_file and graph are mutually exclusive")
	case s.GraphFile != "":
		if _, err := os.Stat(s.GraphFile); os.IsNotExist(err) {
			return fmt.Errorf("graph file not found: %s", s.GraphFile)
		}
	}

	for i, name := range s.Engines {
		if name != engine.NameMemory && name != engine.NameSQLite {
			return fmt.Errorf("engines[%d]: unknown engine %q", i, name)
		}
	}

	if s.Expect.Error != "" && (s.Expect.Columns != nil || s.Expect.Rows != nil || len(s.Assertions) > 0) {
		return fmt.Errorf("expect.error excludes columns, rows and assertions")
	}
	for i, row := range s.Expect.Rows {
		if s.Expect.Columns != nil && len(row) != len(s.Expect.Columns) {
			return fmt.Errorf("expect.rows[%d]: %d keys for %d columns", i, len(row), len(s.Expect.Columns))
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertContainsRow, AssertExcludesRow:
		if len(a.Row) == 0 {
			return fmt.Errorf("assertions[%d]: row is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// engines returns the engine names the scenario runs on.
func (s *Scenario) engines() []string {
	if len(s.Engines) == 0 {
		return AllEngines
	}
	return s.Engines
}
