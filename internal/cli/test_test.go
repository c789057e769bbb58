package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motif/internal/harness"
)

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, NewTestCommand, options("text", "memory", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, NewTestCommand, options("text", "memory", ""), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, _, err := execute(t, NewTestCommand, options("text", "memory", ""), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, _, err := execute(t, NewTestCommand, options("json", "memory", ""), t.TempDir())
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommandPassingScenarios(t *testing.T) {
	out, _, err := execute(t, NewTestCommand, options("text", "memory", ""), "testdata/scenarios")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ triangle")
	assert.Contains(t, out, "✓ negated_path")
	assert.Contains(t, out, "✓ role_conflict")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	out, _, err := execute(t, NewTestCommand, options("json", "memory", ""), "--filter", "tri*", "testdata/scenarios")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "triangle", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestTestCommandFailingScenario(t *testing.T) {
	out, _, err := execute(t, NewTestCommand, options("text", "memory", ""), "testdata/failing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "row_count")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	out, _, err := execute(t, NewTestCommand, options("json", "memory", ""), "testdata/failing")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

// writeTriangleScenario copies the triangle scenario into a fresh directory
// with an absolute graph path.
func writeTriangleScenario(t *testing.T) string {
	t.Helper()
	graphPath, err := filepath.Abs(cycleChordGraph)
	require.NoError(t, err)

	dir := t.TempDir()
	scenario := fmt.Sprintf(`name: triangle
description: "Directed triangles"
graph_file: %s
pattern: "%s"
expect:
  columns: [a, b, c]
`, graphPath, trianglePattern)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "triangle.yaml"), []byte(scenario), 0644))
	return dir
}

func TestTestCommandGoldenMismatchAndUpdate(t *testing.T) {
	dir := writeTriangleScenario(t)
	goldenPath := filepath.Join(dir, "golden", "triangle.golden")
	require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0755))
	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"stale":true}`), 0644))

	out, _, err := execute(t, NewTestCommand, options("text", "memory", ""), dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")

	out, _, err = execute(t, NewTestCommand, options("text", "memory", ""), "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ triangle (golden updated)")

	s, err := harness.LoadScenario(filepath.Join(dir, "triangle.yaml"))
	require.NoError(t, err)
	result, err := harness.Run(s)
	require.NoError(t, err)
	want, err := harness.Snapshot(s, result)
	require.NoError(t, err)

	got, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	_, _, err = execute(t, NewTestCommand, options("text", "memory", ""), dir)
	require.NoError(t, err)
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles("testdata", "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "failing", "wrong_count.yaml"),
		filepath.Join("testdata", "scenarios", "negated_path.yaml"),
		filepath.Join("testdata", "scenarios", "role_conflict.yaml"),
		filepath.Join("testdata", "scenarios", "triangle.yaml"),
	}, files)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	files, err := findScenarioFiles("testdata/scenarios", "*_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles("testdata/scenarios", "[")
	require.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "triangle.golden"),
		goldenFilePath(filepath.Join("scenarios", "triangle.yaml")))
}
