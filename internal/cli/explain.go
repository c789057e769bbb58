package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/motif/internal/graphfile"
	"github.com/roach88/motif/internal/queryir"
	"github.com/roach88/motif/internal/querysql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	SQL    bool   // include the SQLite statement
	Output string // output file path
}

// ExplainResult is the compiled form of a pattern.
type ExplainResult struct {
	Pattern string   `json:"pattern"`
	Columns []string `json:"columns"`
	Plan    string   `json:"plan"`
	SQL     string   `json:"sql,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <pattern>",
		Short: "Show the logical plan of a pattern",
		Long: `Compile a pattern and print its logical plan without running it.

The plan is the tree both engines execute: scans of the vertex and edge
relations, joins on the shared bindings, anti-joins for negated clauses
and a final projection. --sql adds the statement the SQLite engine runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "include the SQLite statement")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runExplain(opts *ExplainOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.close(cmd)

	q, err := sess.finder.Compile(input)
	if err != nil {
		return formatter.Fail(err)
	}

	result := ExplainResult{
		Pattern: q.Pattern,
		Columns: q.Columns(),
		Plan:    queryir.Explain(q.Plan),
	}
	if opts.SQL {
		compiled, err := querysql.NewSQLCompiler().Compile(q.Plan)
		if err != nil {
			return formatter.Fail(err)
		}
		result.SQL = compiled.SQL
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(renderExplain(result)), 0644); err != nil {
			return formatter.Fail(&CommandError{
				Code:    graphfile.ErrCodeWriteFailed,
				Message: fmt.Sprintf("failed to write %s: %v", opts.Output, err),
			})
		}
		formatter.VerboseLog("Wrote plan to %s", opts.Output)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprint(formatter.Writer, renderExplain(result))
	return nil
}

func renderExplain(r ExplainResult) string {
	out := fmt.Sprintf("Pattern: %s\nColumns: %v\n\n%s", r.Pattern, r.Columns, r.Plan)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if r.SQL != "" {
		out += "\n" + r.SQL + "\n"
	}
	return out
}
