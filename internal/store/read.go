package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
)

// GraphInfo describes the graph currently loaded in a store.
type GraphInfo struct {
	Token       string `json:"token"`
	VertexCount int    `json:"vertex_count"`
	EdgeCount   int    `json:"edge_count"`
	VertexHash  string `json:"vertex_hash"`
	EdgeHash    string `json:"edge_hash"`
}

// LoadedToken returns the token of the loaded graph, or "" when the store
// is empty.
func (s *Store) LoadedToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM graph_meta WHERE key = ?`, metaToken).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read loaded token: %w", err)
	}
	return token, nil
}

// Info returns the metadata of the loaded graph. ok is false when nothing
// has been loaded.
func (s *Store) Info(ctx context.Context) (info GraphInfo, ok bool, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM graph_meta ORDER BY key COLLATE BINARY`)
	if err != nil {
		return info, false, fmt.Errorf("read graph info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return info, false, fmt.Errorf("scan graph info: %w", err)
		}
		ok = true
		switch k {
		case metaToken:
			info.Token = v
		case metaVertexCount:
			info.VertexCount, err = strconv.Atoi(v)
		case metaEdgeCount:
			info.EdgeCount, err = strconv.Atoi(v)
		case metaVertexHash:
			info.VertexHash = v
		case metaEdgeHash:
			info.EdgeHash = v
		}
		if err != nil {
			return info, false, fmt.Errorf("graph info %s: %w", k, err)
		}
	}
	if err := rows.Err(); err != nil {
		return info, false, fmt.Errorf("iterate graph info: %w", err)
	}
	return info, ok, nil
}

// ReadGraph rebuilds a Graph from the stored relations. Vertices come back
// in insertion order, edges in rid order. Attribute columns follow the
// reserved columns in sorted order, since attrs does not record the
// original column order.
func (s *Store) ReadGraph(ctx context.Context) (*graph.Graph, error) {
	vertices, err := s.readRelation(ctx,
		`SELECT attrs FROM vertices ORDER BY rowid ASC`,
		[]string{graph.ColumnID})
	if err != nil {
		return nil, fmt.Errorf("read vertices: %w", err)
	}
	edges, err := s.readRelation(ctx,
		`SELECT attrs FROM edges ORDER BY rid ASC`,
		[]string{graph.ColumnSrc, graph.ColumnDst})
	if err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	return graph.New(vertices, edges)
}

func (s *Store) readRelation(ctx context.Context, query string, leading []string) (*graph.Relation, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objects := []ir.IRObject{}
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		obj, err := DecodeBundle(raw)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return graph.RelationFromObjects(leading, objects)
}
