// Package engine executes logical plans against a graph.
//
// Two engines implement the Engine contract:
//
//   - Memory evaluates plans directly over the graph's relations, with hash
//     joins indexed by a B-tree. It is the reference implementation.
//   - SQLite loads the graph into a store and runs the plan as one SQL
//     statement compiled by querysql.
//
// Both follow standard relational semantics: joins and anti-joins are
// multiset operations and a null key never equals anything. Row order is
// not part of the contract; compare results as multisets.
//
// Engines are safe for concurrent use. Graphs and plans are never mutated.
package engine
