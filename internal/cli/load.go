package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/motif/internal/store"
)

// LoadResult reports the graph held by the database after the command.
type LoadResult struct {
	DB     string          `json:"db"`
	Loaded bool            `json:"loaded"`
	Info   store.GraphInfo `json:"info"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Store a graph in a SQLite database",
		Long: `Load the --graph file into the --db database, replacing whatever graph
it held. Without --graph, print what the database currently holds.

Later commands can read the graph back with --db alone.

Examples:
  motif load -g graph.yaml --db graph.db
  motif load --db graph.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, cmd)
		},
	}
	return cmd
}

func runLoad(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if opts.DB == "" {
		return formatter.Fail(&CommandError{Code: ErrCodeGeneric, Message: "load needs --db"})
	}

	sess, err := newSession(opts, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.close(cmd)

	st, err := sess.openStore()
	if err != nil {
		return formatter.Fail(err)
	}

	ctx := cmd.Context()
	loaded := false
	if opts.Graph != "" {
		g, err := sess.graph(ctx)
		if err != nil {
			return formatter.Fail(err)
		}
		if err := st.LoadGraph(ctx, g); err != nil {
			return formatter.Fail(err)
		}
		loaded = true
		sess.logger.Info("graph stored", "db", opts.DB, "token", g.Token())
	}

	info, ok, err := st.Info(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	if !ok {
		return formatter.Fail(&CommandError{Code: ErrCodeNoGraph, Message: fmt.Sprintf("no graph loaded in %s", opts.DB)})
	}

	result := LoadResult{DB: opts.DB, Loaded: loaded, Info: info}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if loaded {
		fmt.Fprintf(w, "✓ Loaded %s into %s\n", opts.Graph, opts.DB)
	} else {
		fmt.Fprintf(w, "Graph in %s\n", opts.DB)
	}
	fmt.Fprintf(w, "  Token:    %s\n", info.Token)
	fmt.Fprintf(w, "  Vertices: %d\n", info.VertexCount)
	fmt.Fprintf(w, "  Edges:    %d\n", info.EdgeCount)
	return nil
}
