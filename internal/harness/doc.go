// Package harness runs conformance scenarios for motif queries.
//
// A scenario pairs a graph with a pattern and the expected result. Every
// scenario runs on each engine, and the engines must agree with each other
// as well as with the expectation.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: negated_path
//	description: "Two-step paths whose ends are not adjacent"
//	graph_file: ../graphs/canonical.yaml
//	pattern: "(u)-[e]->(v); (v)-[]->(w); !(u)-[]->(w); !(w)-[]->(u)"
//	expect:
//	  columns: [u, e, v, w]
//	  rows:
//	    - [1, [1, 2], 2, 3]
//	assertions:
//	  - type: row_count
//	    count: 1
//
// The graph is either a file (graph_file, relative to the scenario) or an
// inline document under graph. An optional filters section applies
// vertex and edge predicates, then drops isolated vertices, before the
// pattern runs.
//
// # Row Keys
//
// Expected rows name each matched element by its key rather than its full
// bundle: a vertex by its id, an edge by its [src, dst] pair. Rows are
// compared as a multiset.
//
// # Assertion Types
//
//   - row_count: the result has exactly count rows
//   - contains_row: some row matches every listed column key
//   - excludes_row: no row matches every listed column key
//
// A scenario whose pattern must be rejected sets expect.error to the
// error code instead.
package harness
