package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/motif/internal/pattern"
)

const negationPattern = "(a)-[e]->(b); !(b)-[]->(a)"

func TestExplainText(t *testing.T) {
	out, _, err := execute(t, NewExplainCommand, options("text", "memory", ""), negationPattern)
	require.NoError(t, err)

	assert.Contains(t, out, "Pattern: (a)-[e]->(b); !(b)-[]->(a)")
	assert.Contains(t, out, "Columns: [a e b]")
	assert.Contains(t, out, "AntiJoin ON")
	assert.Contains(t, out, "Project (a.row AS a, e.row AS e, b.row AS b)")
	assert.NotContains(t, out, "SELECT")
}

func TestExplainSQL(t *testing.T) {
	out, _, err := execute(t, NewExplainCommand, options("text", "memory", ""), "--sql", negationPattern)
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT")
	assert.Contains(t, out, "COLLATE BINARY")
}

func TestExplainJSON(t *testing.T) {
	out, _, err := execute(t, NewExplainCommand, options("json", "memory", ""), "--sql", negationPattern)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   ExplainResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"a", "e", "b"}, resp.Data.Columns)
	assert.Contains(t, resp.Data.Plan, "AntiJoin")
	assert.Contains(t, resp.Data.SQL, "SELECT")
}

func TestExplainOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.txt")
	out, _, err := execute(t, NewExplainCommand, options("text", "memory", ""), "-o", path, "(a)")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
	assert.Contains(t, string(data), "Pattern: (a)")
}

func TestExplainNeedsNoGraph(t *testing.T) {
	_, _, err := execute(t, NewExplainCommand, options("text", "memory", "testdata/graphs/nope.yaml"), "(a)")
	require.NoError(t, err)
}

func TestExplainParseError(t *testing.T) {
	out, _, err := execute(t, NewExplainCommand, options("text", "memory", ""), "(a")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error ["+pattern.ErrCodeUnmatchedBracket+"]")
}

func TestExplainMissingArgs(t *testing.T) {
	_, _, err := execute(t, NewExplainCommand, options("text", "memory", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
