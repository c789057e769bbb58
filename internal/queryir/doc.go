// Package queryir defines the logical plan handed to a relational engine.
//
// A plan is a tree over two base relations, the vertex relation and the edge
// relation:
//
//	Project
//	  AntiJoin
//	    Join
//	      Scan edges
//	      Scan vertices
//	    Scan edges
//
// Plan is a sealed interface (marker method pattern). Only Scan, Join,
// AntiJoin, Project and Empty implement it, so engines can switch over the
// node types exhaustively.
//
// COLUMN FLOW:
//
// Every node produces an ordered list of column names. Scan introduces
// columns by aliasing relation fields, Join concatenates the columns of its
// children (which must be disjoint), AntiJoin passes its left columns
// through, Project renames and narrows, and Empty produces nothing.
// Validate walks a plan and checks that every referenced column exists where
// it is used.
//
// FIELDS:
//
// Scans read fields, not raw relation columns. The vertex relation exposes
// "id" and "row"; the edge relation exposes "rid", "src", "dst" and "row".
// "row" is the whole relation row as an object bundle and "rid" is an
// engine-assigned edge row identity.
//
// Plans are immutable once built and are never shared between two parents.
package queryir
