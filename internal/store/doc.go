// Package store provides the SQLite database a graph is loaded into before
// plans run against it.
//
// # Layout
//
//   - vertices(id, attrs): one row per vertex, id untyped so 1 and "1" differ
//   - edges(rid, src, dst, attrs): rid is the edge row identity
//   - graph_meta(key, value): token and fingerprints of the loaded graph
//
// attrs is the full relation row as RFC 8785 canonical JSON, which keeps the
// value kinds of every attribute intact.
//
// # Loading
//
// A store holds one graph at a time. LoadGraph replaces the relations in a
// single transaction and is a no-op when the graph's token is already loaded.
//
// # Database Configuration
//
//   - WAL mode for file databases
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - a single connection, which also keeps in-memory databases alive
package store
