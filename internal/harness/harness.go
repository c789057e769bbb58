package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/motif/internal/compiler"
	"github.com/roach88/motif/internal/engine"
	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/graphfile"
	"github.com/roach88/motif/internal/ir"
	"github.com/roach88/motif/internal/metrics"
	"github.com/roach88/motif/internal/motif"
	"github.com/roach88/motif/internal/queryir"
	"github.com/roach88/motif/internal/store"
)

// Harness runs scenarios. Each engine run gets a fresh finder, and SQLite
// runs get a fresh in-memory database.
type Harness struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Harness that logs to logger. A nil logger discards.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger, metrics: metrics.New(prometheus.NewRegistry())}
}

// Run executes a scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load the graph and apply filters
// 2. Compile the pattern (or check the expected error)
// 3. Execute the plan on every engine and compare the row keys
// 4. Check expectations and assertions
//
// An error is returned only when the scenario cannot be run at all; a
// failing scenario is a Result with Pass unset.
func (h *Harness) Run(ctx context.Context, s *Scenario) (*Result, error) {
	g, err := loadGraph(s)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	result := NewResult()
	f := motif.NewFinder(motif.WithLogger(h.logger), motif.WithMetrics(h.metrics))

	g, q, err := h.prepare(f, g, s)
	if err != nil {
		result.ErrorCode = motif.ErrorCode(err)
		switch {
		case s.Expect.Error == "":
			result.AddError(fmt.Sprintf("unexpected error: %v", err))
		case s.Expect.Error != result.ErrorCode:
			result.AddError(fmt.Sprintf("expected error %s, got %s: %v", s.Expect.Error, result.ErrorCode, err))
		}
		return result, nil
	}
	if s.Expect.Error != "" {
		result.AddError(fmt.Sprintf("expected error %s, pattern was accepted", s.Expect.Error))
		return result, nil
	}

	result.Columns = q.Columns()
	result.Plan = queryir.Explain(q.Plan)

	kinds := q.Kinds()

	for i, name := range s.engines() {
		rows, err := h.execute(ctx, name, g, q, kinds)
		if err != nil {
			return nil, fmt.Errorf("engine %s: %w", name, err)
		}
		result.Engines = append(result.Engines, name)
		if i == 0 {
			result.Rows = rows
			continue
		}
		if !slices.EqualFunc(result.Rows, rows, slices.Equal[[]string]) {
			result.AddError(fmt.Sprintf("engine %s disagrees with %s:\n  %s: %v\n  %s: %v",
				name, result.Engines[0], result.Engines[0], result.Rows, name, rows))
		}
	}

	h.checkExpect(s, result)
	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", s.Name,
		"pass", result.Pass,
		"rows", len(result.Rows))
	return result, nil
}

func loadGraph(s *Scenario) (*graph.Graph, error) {
	if s.GraphFile != "" {
		return graphfile.Load(s.GraphFile)
	}
	if s.Graph == nil {
		return nil, fmt.Errorf("scenario %s has no graph", s.Name)
	}
	return s.Graph.Graph()
}

// prepare applies the filters and compiles the pattern.
func (h *Harness) prepare(f *motif.Finder, g *graph.Graph, s *Scenario) (*graph.Graph, *motif.Query, error) {
	if fl := s.Filters; fl != nil {
		var err error
		if fl.Vertices != "" {
			if g, err = f.FilterVertices(g, fl.Vertices); err != nil {
				return nil, nil, err
			}
		}
		if fl.Edges != "" {
			if g, err = f.FilterEdges(g, fl.Edges); err != nil {
				return nil, nil, err
			}
		}
		if fl.DropIsolated {
			g = g.DropIsolatedVertices()
		}
	}

	q, err := f.Compile(s.Pattern)
	if err != nil {
		return nil, nil, err
	}
	return g, q, nil
}

func (h *Harness) execute(ctx context.Context, name string, g *graph.Graph, q *motif.Query, kinds []compiler.Kind) ([][]string, error) {
	var eng engine.Engine
	switch name {
	case engine.NameSQLite:
		st, err := store.OpenMemory()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
		eng = engine.NewSQLite(st, engine.WithLogger(h.logger))
	default:
		eng = engine.NewMemory(engine.WithLogger(h.logger))
	}

	f := motif.NewFinder(motif.WithEngine(eng), motif.WithLogger(h.logger), motif.WithMetrics(h.metrics))
	rel, err := f.Execute(ctx, g, q)
	if err != nil {
		return nil, err
	}
	return RowKeys(rel, kinds), nil
}

// RowKeys renders every row of rel as keys, sorted: a vertex bundle becomes
// the canonical JSON of its id, an edge bundle that of its [src, dst] pair.
func RowKeys(rel *graph.Relation, kinds []compiler.Kind) [][]string {
	out := make([][]string, rel.Len())
	for i := range out {
		row := rel.Row(i)
		keys := make([]string, len(row))
		for j, v := range row {
			obj, _ := v.(ir.IRObject)
			if kinds[j] == compiler.KindEdge {
				keys[j] = ir.String(ir.IRArray{obj[graph.ColumnSrc], obj[graph.ColumnDst]})
			} else {
				keys[j] = ir.String(obj[graph.ColumnID])
			}
		}
		out[i] = keys
	}
	slices.SortFunc(out, slices.Compare[[]string])
	return out
}

// ExpectedKeys converts scenario row values to keys, sorted.
func ExpectedKeys(rows [][]any) ([][]string, error) {
	out := make([][]string, len(rows))
	for i, row := range rows {
		keys := make([]string, len(row))
		for j, v := range row {
			key, err := keyOf(v)
			if err != nil {
				return nil, fmt.Errorf("rows[%d][%d]: %w", i, j, err)
			}
			keys[j] = key
		}
		out[i] = keys
	}
	slices.SortFunc(out, slices.Compare[[]string])
	return out, nil
}

func keyOf(v any) (string, error) {
	iv, err := ir.FromGo(v)
	if err != nil {
		return "", err
	}
	return ir.String(iv), nil
}

func (h *Harness) checkExpect(s *Scenario, result *Result) {
	if s.Expect.Columns != nil && !slices.Equal(s.Expect.Columns, result.Columns) {
		result.AddError(fmt.Sprintf("columns: expected %v, got %v", s.Expect.Columns, result.Columns))
	}
	if s.Expect.Rows == nil {
		return
	}
	want, err := ExpectedKeys(s.Expect.Rows)
	if err != nil {
		result.AddError(fmt.Sprintf("expect.%v", err))
		return
	}
	if !slices.EqualFunc(want, result.Rows, slices.Equal[[]string]) {
		result.AddError(fmt.Sprintf("rows: expected %v, got %v", want, result.Rows))
	}
}
