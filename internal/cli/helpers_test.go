package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
)

const (
	canonicalGraph  = "testdata/graphs/canonical.yaml"
	cycleChordGraph = "testdata/graphs/cycle_chord.yaml"
	isolatedGraph   = "testdata/graphs/isolated.yaml"

	trianglePattern = "(a)-[]->(b); (b)-[]->(c); (c)-[]->(a)"
)

// execute runs a single command with its own output buffers.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, opts *RootOptions, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	out, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newCmd(opts)
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

func options(format, engineName, graphPath string) *RootOptions {
	return &RootOptions{Format: format, Engine: engineName, Graph: graphPath}
}
