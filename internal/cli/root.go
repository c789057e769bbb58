package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/motif/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Engine  string // "memory" | "sqlite"
	DB      string // SQLite database path
	Graph   string // graph file or CUE directory
	Metrics bool   // dump metrics to stderr when the command ends
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidEngines defines the allowed query engines.
var ValidEngines = []string{engine.NameMemory, engine.NameSQLite}

// NewRootCommand creates the root command for the motif CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "motif",
		Short: "motif - graph motif finding",
		Long: `Find structural patterns (motifs) in directed property graphs.

Patterns are written as clauses separated by semicolons:

  (a)-[e]->(b); (b)-[]->(c); !(c)-[]->(a)

Graphs are read from a YAML, JSON or CUE file (--graph) or from a
SQLite database populated with "motif load" (--db).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidEngines, opts.Engine) {
				return fmt.Errorf("invalid engine %q: must be one of %v", opts.Engine, ValidEngines)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Engine, "engine", engine.NameMemory, "query engine (memory|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "SQLite database path")
	cmd.PersistentFlags().StringVarP(&opts.Graph, "graph", "g", "", "graph file (.yaml, .json, .cue) or CUE directory")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print metrics to stderr on exit")

	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewDropIsolatedCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
