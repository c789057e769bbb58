package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/queryir"
)

// Engine runs a logical plan against a graph and materializes the result.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string
	// Execute evaluates plan over g. It returns the whole result or an
	// error, never a partial relation.
	Execute(ctx context.Context, g *graph.Graph, plan queryir.Plan) (*graph.Relation, error)
}

// Engine names.
const (
	NameMemory = "memory"
	NameSQLite = "sqlite"
)

type options struct {
	logger *slog.Logger
}

// Option configures an engine.
type Option func(*options)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// checkEvery is how many rows an engine processes between context checks.
const checkEvery = 4096
