// Package motif finds motif patterns in property graphs.
//
// A pattern is a semicolon-separated list of clauses over named or
// anonymous vertices and edges:
//
//	(a)-[e]->(b); (b)-[]->(c); !(c)-[]->(a)
//
// A Finder parses the pattern, resolves its names, compiles a logical plan
// and runs the plan on an engine. The result is a relation with one column
// per named element, in order of first appearance, each holding the full
// attribute bundle of the matched vertex or edge.
package motif
