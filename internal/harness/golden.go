package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/motif/internal/ir"
)

// Snapshot renders the reproducible part of a result as canonical JSON:
// scenario name, pattern, columns, sorted row keys and any error code.
func Snapshot(s *Scenario, result *Result) ([]byte, error) {
	columns := make([]any, len(result.Columns))
	for i, c := range result.Columns {
		columns[i] = c
	}
	rows := make([]any, len(result.Rows))
	for i, row := range result.Rows {
		keys := make([]any, len(row))
		for j, k := range row {
			keys[j] = k
		}
		rows[i] = keys
	}

	snapshot := map[string]any{
		"scenario_name": s.Name,
		"pattern":       s.Pattern,
		"columns":       columns,
		"rows":          rows,
	}
	if result.ErrorCode != "" {
		snapshot["error"] = result.ErrorCode
	}
	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
