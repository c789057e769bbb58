// Package compiler turns parsed motif clauses into a logical plan.
//
// Resolve walks the clauses in textual order and binds every name slot,
// producing the output column order. Compile folds the resolved clauses into
// a queryir plan: joins for positive clauses, anti-joins for negated ones and
// a final projection of the visible bindings.
package compiler
