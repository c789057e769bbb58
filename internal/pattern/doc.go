// Package pattern parses motif patterns such as
//
//	(u)-[e]->(v); (v)-[]->(w); !(u)-[]->(w)
//
// into an ordered list of vertex and edge clauses. Parsing is purely
// syntactic: name resolution and role checks happen in the compiler.
package pattern
