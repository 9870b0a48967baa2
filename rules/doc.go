// SPDX-License-Identifier: MIT

// Package rules parses production rules and compiles them into a lookup
// table for the stepper.
//
// Grammar:
//
//	[P(<prob>) |] [<backward> <] <core>[(p1, p2)] [> <forward>] [: <cond>] -> [<replacement>]
//
//   - P(...) is a constant expression, evaluated once when parsed.
//   - The core is exactly one symbol. Contexts are symbol series; the
//     forward context may branch with the branch symbols, the backward one
//     may not.
//   - Expression parameters are ordered: globals, then the names declared in
//     the backward context, the core and the forward context.
//   - The replacement is a series of symbols; parameter lists hold
//     comma-separated expressions. An empty replacement deletes the symbol.
//
// Compilation:
//
//   - Two non-stochastic rules with the same core, contexts and conditional
//     are rejected (ErrDuplicateRule).
//   - Stochastic rules sharing a signature form a group whose probabilities
//     must sum to 1 within ProbabilityTolerance (ErrProbability); the group
//     becomes one Rule with several Outcomes.
//   - Candidates for a symbol are ordered by context length, longest first,
//     ties in declaration order.
//
// All parse errors are *expr.SyntaxError positioned in the rule text.
package rules
