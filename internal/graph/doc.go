// Package graph holds the immutable data model the motif engine queries:
// relations, the vertex/edge relation pair, and the relation-level graph
// operations (vertex and edge filtering, isolated vertex removal).
package graph
