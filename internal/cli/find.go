package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/harness"
	"github.com/roach88/motif/internal/ir"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Bundles bool // print full attribute bundles in text mode
}

// FindResult is the JSON payload of the find command.
type FindResult struct {
	Pattern string         `json:"pattern"`
	Engine  string         `json:"engine"`
	Columns []string       `json:"columns"`
	Rows    [][]ir.IRValue `json:"rows"`
	Count   int            `json:"count"`
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <pattern>",
		Short: "Find every match of a motif",
		Long: `Find every assignment of the pattern's named vertices and edges that
satisfies all of its clauses.

Text output shows one row per match with vertex ids and [src,dst] edge
keys; --bundles prints every attribute instead. JSON output always
carries the full attribute bundles.

With --engine sqlite the graph is loaded into --db (or a private
in-memory database) before the query runs.

Examples:
  motif find -g graph.yaml "(a)-[]->(b); (b)-[]->(c); (c)-[]->(a)"
  motif find --db graph.db --engine sqlite "(u)-[e]->(v); !(v)-[]->(u)"
  motif find -g graph.cue --format json "(a)"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Bundles, "bundles", false, "print full attribute bundles in text output")

	return cmd
}

func runFind(opts *FindOptions, input string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.close(cmd)

	g, err := sess.graph(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}

	q, err := sess.finder.Compile(input)
	if err != nil {
		return formatter.Fail(err)
	}
	rel, err := sess.finder.Execute(cmd.Context(), g, q)
	if err != nil {
		return formatter.Fail(err)
	}

	if opts.Format == "json" {
		return formatter.Success(FindResult{
			Pattern: input,
			Engine:  sess.finder.Engine().Name(),
			Columns: rel.Columns(),
			Rows:    rows(rel),
			Count:   rel.Len(),
		})
	}

	var table [][]string
	if opts.Bundles {
		for _, row := range rows(rel) {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = ir.String(v)
			}
			table = append(table, cells)
		}
	} else {
		table = harness.RowKeys(rel, q.Kinds())
	}
	return writeTable(formatter, rel.Columns(), table)
}

func rows(rel *graph.Relation) [][]ir.IRValue {
	out := make([][]ir.IRValue, rel.Len())
	for i := range out {
		out[i] = rel.Row(i)
	}
	return out
}

// writeTable prints rows under a header, then a count line. A relation with
// no columns prints only the count.
func writeTable(formatter *OutputFormatter, columns []string, rows [][]string) error {
	if len(columns) > 0 {
		tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(columns, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(formatter.Writer, "(%d %s)\n", len(rows), plural(len(rows), "match", "matches"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
