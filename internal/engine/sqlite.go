package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
	"github.com/roach88/motif/internal/queryir"
	"github.com/roach88/motif/internal/querysql"
	"github.com/roach88/motif/internal/store"
)

// SQLite runs plans as SQL against a store. The graph is (re)loaded into
// the store whenever a different graph is queried.
//
// Execute holds a lock for the load and the query, so concurrent callers
// querying different graphs never observe each other's relations.
type SQLite struct {
	store  *store.Store
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSQLite creates a SQLite engine over s. The caller keeps ownership of
// s and closes it.
func NewSQLite(s *store.Store, opts ...Option) *SQLite {
	o := buildOptions(opts)
	return &SQLite{store: s, logger: o.logger}
}

// Name implements Engine.
func (e *SQLite) Name() string { return NameSQLite }

// SQL returns the statement Execute would run for plan.
func (e *SQLite) SQL(plan queryir.Plan) (string, error) {
	q, err := querysql.NewSQLCompiler().Compile(plan)
	if err != nil {
		return "", newInvalidPlan(NameSQLite, err)
	}
	return q.SQL, nil
}

// Execute implements Engine.
func (e *SQLite) Execute(ctx context.Context, g *graph.Graph, plan queryir.Plan) (*graph.Relation, error) {
	q, err := querysql.NewSQLCompiler().Compile(plan)
	if err != nil {
		return nil, newInvalidPlan(NameSQLite, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.LoadGraph(ctx, g); err != nil {
		return nil, e.wrap(ctx, "load graph", err)
	}

	rows, err := e.store.Query(ctx, q.SQL)
	if err != nil {
		return nil, e.wrap(ctx, "execute query", err)
	}
	defer rows.Close()

	var out [][]ir.IRValue
	for rows.Next() {
		row, err := scanRow(rows, q)
		if err != nil {
			return nil, newBackend(NameSQLite, "scan row", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.wrap(ctx, "rows iteration", err)
	}

	rel, err := graph.NewRelation(q.Columns, out)
	if err != nil {
		return nil, newBackend(NameSQLite, "build result", err)
	}

	e.logger.Debug("plan executed",
		"engine", NameSQLite,
		"columns", q.Columns,
		"rows", rel.Len())
	return rel, nil
}

func (e *SQLite) wrap(ctx context.Context, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if ctxErr == nil {
			ctxErr = err
		}
		return newCanceled(NameSQLite, ctxErr)
	}
	return newBackend(NameSQLite, message, err)
}

// scanRow converts one result row. A query without output columns selects
// a placeholder, which is read and dropped.
func scanRow(rows *sql.Rows, q *querysql.Query) ([]ir.IRValue, error) {
	width := len(q.Columns)
	if width == 0 {
		width = 1
	}

	values := make([]any, width)
	valuePtrs := make([]any, width)
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make([]ir.IRValue, len(q.Columns))
	for i, name := range q.Columns {
		var (
			v   ir.IRValue
			err error
		)
		if q.Bundles[i] {
			v, err = store.DecodeBundle(values[i])
		} else {
			v, err = store.DecodeKey(values[i])
		}
		if err != nil {
			return nil, fmt.Errorf("convert column %s: %w", name, err)
		}
		row[i] = v
	}
	return row, nil
}
