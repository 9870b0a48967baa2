// SPDX-License-Identifier: MIT

// Package expr compiles the small arithmetic/boolean language used by rule
// conditionals and replacement parameters into an evaluable tree, and
// flattens that tree into a contiguous operator buffer.
//
// What:
//
//   - Tokenize splits a formula on the delimiter set ()*/%+-^><=!&| and
//     merges the two-character operators >= <= == != && ||.
//   - Compile builds a tree from a fully parenthesised formula:
//     unary prefix operators first (- and !), then binary operators by
//     precedence tier, ties resolved left to right.
//   - Expression.Flatten lays the tree out breadth-first into []OperatorDef,
//     where every child index is greater than its parent's index.
//   - EvalFlat evaluates a flattened slice without the tree.
//
// Precedence tiers (lower binds tighter):
//
//	0  * / %
//	1  ^
//	2  + -
//	3  > < >= <=
//	4  == !=
//	5  &&
//	6  ||
//
// Semantics:
//
//   - Every value is a float64. Comparisons yield 1 or 0.
//   - a && b is 1 when both operands exceed 0.1, else 0. a || b is a + b.
//   - !a is 0 when a exceeds 0.1, else 1.
//   - % is math.Mod, ^ is math.Pow.
//   - A conditional passes when its value is greater than 0.
//
// Complexity:
//
//   - Tokenize:  O(n) in the formula length.
//   - Compile:   O(t log t) in the token count (stable operator sort).
//   - Eval:      O(k) in the node count.
//
// Errors:
//
//   - *SyntaxError   positioned error; errors.Is(err, ErrSyntax) holds.
//     Reposition shifts it into the coordinate space of an enclosing text.
package expr
