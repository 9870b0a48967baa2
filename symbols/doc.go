// SPDX-License-Identifier: MIT

// Package symbols holds the symbol-string data model and the branch-aware
// context matchers that rule matching runs on.
//
// What:
//
//   - String: flat []int symbol codes with a jagged []float64 parameter store
//     (Index[i] addresses symbol i's run). Parse and Render convert to and
//     from text such as "A(1, 2)B[C]".
//   - Remapper: rune ↔ code translation. Identity uses code points; Table is
//     an explicit binding used when several files share one code space.
//   - BranchCache: one pass pairs every branch open with its close and then
//     answers backward and forward context queries.
//   - Pattern: a forward context compiled into a tree by its branch symbols,
//     with a pre-order DFS cursor that can step both ways.
//
// Matching:
//
//   - MatchBackward walks left from the anchor. Opens and ignored symbols are
//     skipped, a close jumps to the symbol before its open, so "A[B]C" sees A
//     directly before C.
//   - MatchForward walks right from the origin, entering and leaving target
//     branches and rewinding the pattern cursor when a target branch is
//     abandoned. Sibling branches must appear in pattern order.
//   - MatchForwardUnordered binds pattern children to target child branches
//     in any order, backtracking over assignments.
//
// A failed match is a normal outcome (ok == false), never an error. Errors are
// reserved for unbalanced strings or patterns (ErrUnbalancedBranches) and
// unknown symbols in a Remapper (ErrUnknownSymbol).
//
// Complexity:
//
//   - NewBranchCache: O(n).
//   - MatchBackward:  O(n) worst case, usually O(len(pattern)).
//   - MatchForward:   O(n · d) where d is the pattern depth (cursor rewinds).
package symbols
