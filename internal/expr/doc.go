// Package expr implements the boolean predicates accepted by the graph
// filter operations.
//
// A predicate is either written as text and parsed with Parse, or built
// directly from the AST constructors (Col, Lit, Eq, AllOf, ...). Both
// forms produce the same sealed node types and are evaluated by the same
// code, so equivalent conditions always select the same rows.
//
// Evaluation follows SQL three-valued logic: a comparison with a null
// operand is unknown, and Matches only accepts rows that evaluate to true.
package expr
