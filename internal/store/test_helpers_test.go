package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/motif/internal/graph"
	"github.com/roach88/motif/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestGraph returns 0->1, 1->2, 2->"x" plus a null-src edge. Vertex
// "1" is a string and differs from vertex 1.
func createTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	vertices := graph.MustRelation([]string{"id", "name", "tags"},
		[]ir.IRValue{ir.IRInt(0), ir.IRString("zero"), ir.IRArray{ir.IRString("a")}},
		[]ir.IRValue{ir.IRInt(1), ir.IRString("one"), ir.IRNull{}},
		[]ir.IRValue{ir.IRInt(2), ir.IRString("two"), ir.IRArray{}},
		[]ir.IRValue{ir.IRString("1"), ir.IRString("string one"), ir.IRNull{}},
	)
	edges := graph.MustRelation([]string{"src", "dst", "weight"},
		[]ir.IRValue{ir.IRInt(0), ir.IRInt(1), ir.IRInt(9007199254740993)},
		[]ir.IRValue{ir.IRInt(1), ir.IRInt(2), ir.IRInt(2)},
		[]ir.IRValue{ir.IRInt(2), ir.IRString("x"), ir.IRBool(true)},
		[]ir.IRValue{ir.IRNull{}, ir.IRInt(0), ir.IRNull{}},
	)
	g, err := graph.New(vertices, edges)
	if err != nil {
		t.Fatalf("graph.New() failed: %v", err)
	}
	return g
}
