package motif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/motif/internal/compiler"
	"github.com/roach88/motif/internal/engine"
	"github.com/roach88/motif/internal/expr"
	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/metrics"
	"github.com/roach88/motif/internal/pattern"
	"github.com/roach88/motif/internal/queryir"
)

// Finder runs motif queries on one engine.
//
// A Finder holds no per-query state and is safe for concurrent use when its
// engine is.
type Finder struct {
	engine  engine.Engine
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Finder.
type Option func(*Finder)

// WithEngine sets the execution engine. Default: engine.NewMemory().
func WithEngine(e engine.Engine) Option {
	return func(f *Finder) {
		f.engine = e
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = l
	}
}

// WithMetrics sets the instruments. Default: metrics.Default().
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Finder) {
		f.metrics = m
	}
}

// NewFinder creates a Finder.
func NewFinder(opts ...Option) *Finder {
	f := &Finder{}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.engine == nil {
		f.engine = engine.NewMemory(engine.WithLogger(f.logger))
	}
	if f.metrics == nil {
		f.metrics = metrics.Default()
	}
	return f
}

// Engine returns the engine queries run on.
func (f *Finder) Engine() engine.Engine { return f.engine }

// Query is a compiled pattern. It does not depend on any graph and can be
// executed any number of times.
type Query struct {
	Pattern    string
	Clauses    []pattern.Clause
	Resolution *compiler.Resolution
	Plan       queryir.Plan
}

// Columns returns the output columns, in order of first appearance.
func (q *Query) Columns() []string { return q.Resolution.Columns() }

// Kinds reports, per output column, whether it binds a vertex or an edge.
func (q *Query) Kinds() []compiler.Kind {
	kinds := make([]compiler.Kind, len(q.Resolution.Output))
	for i, b := range q.Resolution.Output {
		kinds[i] = b.Kind
	}
	return kinds
}

// Compile parses, resolves and compiles a pattern without touching a graph.
func (f *Finder) Compile(input string) (*Query, error) {
	start := time.Now()
	clauses, err := pattern.Parse(input)
	f.metrics.ObserveStage(metrics.StageParse, start)
	if err != nil {
		return nil, f.fail(err)
	}
	f.logger.Debug("pattern parsed",
		"pattern", input,
		"clauses", len(clauses))

	start = time.Now()
	res, err := compiler.Resolve(clauses)
	f.metrics.ObserveStage(metrics.StageResolve, start)
	if err != nil {
		return nil, f.fail(err)
	}
	f.logger.Debug("bindings resolved",
		"pattern", input,
		"bindings", len(res.Bindings),
		"columns", res.Columns())

	start = time.Now()
	plan, err := compiler.Compile(res)
	f.metrics.ObserveStage(metrics.StageCompile, start)
	if err != nil {
		return nil, f.fail(err)
	}
	f.logger.Debug("plan compiled", "pattern", input)

	return &Query{Pattern: input, Clauses: clauses, Resolution: res, Plan: plan}, nil
}

// Find returns every assignment of the named elements of the pattern to
// vertices and edges of g that satisfies all clauses. The result is all or
// nothing: on error no relation is returned.
func (f *Finder) Find(ctx context.Context, g *graph.Graph, input string) (*graph.Relation, error) {
	q, err := f.Compile(input)
	if err != nil {
		f.metrics.ObserveQuery(f.engine.Name(), 0, err)
		return nil, err
	}
	return f.Execute(ctx, g, q)
}

// Execute runs a compiled query on g.
func (f *Finder) Execute(ctx context.Context, g *graph.Graph, q *Query) (*graph.Relation, error) {
	if g == nil {
		err := errors.New("find: nil graph")
		f.metrics.ObserveQuery(f.engine.Name(), 0, err)
		return nil, err
	}

	start := time.Now()
	rel, err := f.engine.Execute(ctx, g, q.Plan)
	f.metrics.ObserveStage(metrics.StageExecute, start)
	if err != nil {
		f.metrics.ObserveQuery(f.engine.Name(), 0, err)
		return nil, f.fail(fmt.Errorf("find %q: %w", q.Pattern, err))
	}
	f.metrics.ObserveQuery(f.engine.Name(), rel.Len(), nil)

	f.logger.Debug("motif found",
		"pattern", q.Pattern,
		"engine", f.engine.Name(),
		"rows", rel.Len(),
		"duration", time.Since(start))
	return rel, nil
}

// Explain compiles a pattern and renders its logical plan.
func (f *Finder) Explain(input string) (string, error) {
	q, err := f.Compile(input)
	if err != nil {
		return "", err
	}
	return queryir.Explain(q.Plan), nil
}

// FilterVertices keeps the vertices for which predicate is true.
func (f *Finder) FilterVertices(g *graph.Graph, predicate string) (*graph.Graph, error) {
	return f.filter(predicate, g.FilterVerticesWhere)
}

// FilterEdges keeps the edges for which predicate is true.
func (f *Finder) FilterEdges(g *graph.Graph, predicate string) (*graph.Graph, error) {
	return f.filter(predicate, g.FilterEdgesWhere)
}

func (f *Finder) filter(predicate string, apply func(string) (*graph.Graph, error)) (*graph.Graph, error) {
	start := time.Now()
	out, err := apply(predicate)
	f.metrics.ObserveStage(metrics.StageFilter, start)
	if err != nil {
		return nil, f.fail(err)
	}
	f.logger.Debug("graph filtered",
		"predicate", predicate,
		"vertices", out.Vertices().Len(),
		"edges", out.Edges().Len())
	return out, nil
}

func (f *Finder) fail(err error) error {
	kind := ErrorKind(err)
	f.metrics.ObserveError(kind)
	f.logger.Debug("motif query failed", "kind", kind, "error", err)
	return err
}

// Error kinds reported by ErrorKind.
const (
	KindParse     = "parse"
	KindBinding   = "binding"
	KindCompile   = "compile"
	KindPredicate = "predicate"
	KindCanceled  = "canceled"
	KindExecution = "execution"
	KindInternal  = "internal"
)

// ErrorKind classifies an error returned by a Finder.
func ErrorKind(err error) string {
	var ee *engine.ExecutionError
	switch {
	case pattern.IsParseError(err):
		return KindParse
	case compiler.IsBindingError(err):
		return KindBinding
	case compiler.IsCompileError(err):
		return KindCompile
	case expr.IsPredicateError(err):
		return KindPredicate
	case engine.IsCanceled(err):
		return KindCanceled
	case errors.As(err, &ee):
		return KindExecution
	default:
		return KindInternal
	}
}

// ErrorCode returns the code carried by a typed error, or "" for errors
// without one.
func ErrorCode(err error) string {
	var (
		pe  *pattern.ParseError
		be  *compiler.BindingError
		ce  *compiler.CompileError
		pre *expr.PredicateError
		ee  *engine.ExecutionError
	)
	switch {
	case errors.As(err, &pe):
		return pe.Code
	case errors.As(err, &be):
		return be.Code
	case errors.As(err, &ce):
		return ce.Code
	case errors.As(err, &pre):
		return pre.Code
	case errors.As(err, &ee):
		return string(ee.Code)
	default:
		return ""
	}
}

var defaultFinder = sync.OnceValue(func() *Finder { return NewFinder() })

// Find runs a pattern on g with the in-memory engine.
func Find(ctx context.Context, g *graph.Graph, input string) (*graph.Relation, error) {
	return defaultFinder().Find(ctx, g, input)
}

// Explain renders the logical plan of a pattern.
func Explain(input string) (string, error) {
	return defaultFinder().Explain(input)
}
