package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/querysql"
)

// Keys of the graph_meta table.
const (
	metaToken       = "token"
	metaVertexCount = "vertex_count"
	metaEdgeCount   = "edge_count"
	metaVertexHash  = "vertex_hash"
	metaEdgeHash    = "edge_hash"
)

// LoadGraph replaces the stored relations with g in one transaction.
// It is a no-op when g is already loaded (same token).
//
// Edge rows get rid = their position in the edge relation.
func (s *Store) LoadGraph(ctx context.Context, g *graph.Graph) error {
	token, err := s.LoadedToken(ctx)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	if token == g.Token() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("load graph: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM vertices", "DELETE FROM edges", "DELETE FROM graph_meta"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("load graph: clear: %w", err)
		}
	}

	if err := insertVertices(ctx, tx, g.Vertices()); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	if err := insertEdges(ctx, tx, g.Edges()); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	vhash, err := g.Vertices().Hash()
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	ehash, err := g.Edges().Hash()
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	meta := map[string]string{
		metaToken:       g.Token(),
		metaVertexCount: strconv.Itoa(g.Vertices().Len()),
		metaEdgeCount:   strconv.Itoa(g.Edges().Len()),
		metaVertexHash:  vhash,
		metaEdgeHash:    ehash,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO graph_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("load graph: meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("load graph: commit: %w", err)
	}
	return nil
}

func insertVertices(ctx context.Context, tx *sql.Tx, r *graph.Relation) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vertices (id, attrs) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vertex insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < r.Len(); i++ {
		id, _ := r.Value(i, graph.ColumnID)
		param, err := querysql.ParamOf(id)
		if err != nil {
			return fmt.Errorf("vertex row %d: %w", i, err)
		}
		attrs, err := marshalAttrs(r.Object(i))
		if err != nil {
			return fmt.Errorf("vertex row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, param, attrs); err != nil {
			return fmt.Errorf("insert vertex row %d: %w", i, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, r *graph.Relation) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (rid, src, dst, attrs) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < r.Len(); i++ {
		src, _ := r.Value(i, graph.ColumnSrc)
		dst, _ := r.Value(i, graph.ColumnDst)
		srcParam, err := querysql.ParamOf(src)
		if err != nil {
			return fmt.Errorf("edge row %d: src: %w", i, err)
		}
		dstParam, err := querysql.ParamOf(dst)
		if err != nil {
			return fmt.Errorf("edge row %d: dst: %w", i, err)
		}
		attrs, err := marshalAttrs(r.Object(i))
		if err != nil {
			return fmt.Errorf("edge row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, int64(i), srcParam, dstParam, attrs); err != nil {
			return fmt.Errorf("insert edge row %d: %w", i, err)
		}
	}
	return nil
}
