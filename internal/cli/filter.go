package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/graphfile"
)

// FilterOptions holds flags for the filter and drop-isolated commands.
type FilterOptions struct {
	*RootOptions
	Vertices     string // vertex predicate
	Edges        string // edge predicate
	DropIsolated bool   // drop vertices no edge touches, after filtering
	Output       string // output file path
}

// FilterResult summarises a filtered graph. Graph is set when no output
// file was given and the format is JSON.
type FilterResult struct {
	Vertices        int             `json:"vertices"`
	Edges           int             `json:"edges"`
	RemovedVertices int             `json:"removed_vertices"`
	RemovedEdges    int             `json:"removed_edges"`
	Output          string          `json:"output,omitempty"`
	Graph           json.RawMessage `json:"graph,omitempty"`
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep the vertices and edges matching a predicate",
		Long: `Filter the input graph with column predicates and write the result.

Predicates compare columns with literals:

  weight >= 3 AND label != 'skip'
  name IS NOT NULL OR (kind = 'hub' AND NOT retired)

Filtering vertices never removes edges; an edge whose endpoint was
removed dangles and simply stops matching named endpoints. Add
--drop-isolated to remove vertices that no remaining edge touches.

Without --output the graph is printed as JSON.

Examples:
  motif filter -g graph.yaml --edges "weight > 2" -o heavy.json
  motif filter -g graph.yaml --vertices "kind = 'user'" --drop-isolated`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Vertices, "vertices", "", "vertex predicate")
	cmd.Flags().StringVar(&opts.Edges, "edges", "", "edge predicate")
	cmd.Flags().BoolVar(&opts.DropIsolated, "drop-isolated", false, "drop vertices without incident edges")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

// NewDropIsolatedCommand creates the drop-isolated command.
func NewDropIsolatedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts, DropIsolated: true}

	cmd := &cobra.Command{
		Use:   "drop-isolated",
		Short: "Remove vertices that no edge touches",
		Long: `Remove every vertex that is neither the source nor the destination of
an edge. Edges are kept unchanged.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runFilter(opts *FilterOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.close(cmd)

	in, err := sess.graph(cmd.Context())
	if err != nil {
		return formatter.Fail(err)
	}

	out := in
	if opts.Vertices != "" {
		if out, err = sess.finder.FilterVertices(out, opts.Vertices); err != nil {
			return formatter.Fail(err)
		}
	}
	if opts.Edges != "" {
		if out, err = sess.finder.FilterEdges(out, opts.Edges); err != nil {
			return formatter.Fail(err)
		}
	}
	if opts.DropIsolated {
		out = out.DropIsolatedVertices()
	}

	result := FilterResult{
		Vertices:        out.Vertices().Len(),
		Edges:           out.Edges().Len(),
		RemovedVertices: in.Vertices().Len() - out.Vertices().Len(),
		RemovedEdges:    in.Edges().Len() - out.Edges().Len(),
	}
	formatter.VerboseLog("Kept %d of %d vertices and %d of %d edges",
		result.Vertices, in.Vertices().Len(), result.Edges, in.Edges().Len())

	if opts.Output != "" {
		if err := graphfile.WriteFile(opts.Output, out); err != nil {
			return formatter.Fail(err)
		}
		result.Output = opts.Output
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ Kept %d vertices, %d edges (removed %d vertices, %d edges)\n",
			result.Vertices, result.Edges, result.RemovedVertices, result.RemovedEdges)
		fmt.Fprintf(formatter.Writer, "Wrote graph to %s\n", opts.Output)
		return nil
	}

	if opts.Format == "json" {
		raw, err := encodeGraph(out)
		if err != nil {
			return formatter.Fail(err)
		}
		result.Graph = raw
		return formatter.Success(result)
	}
	if err := graphfile.Encode(formatter.Writer, out); err != nil {
		return formatter.Fail(err)
	}
	return nil
}

func encodeGraph(g *graph.Graph) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := graphfile.Encode(&buf, g); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimSpace(buf.Bytes())), nil
}
