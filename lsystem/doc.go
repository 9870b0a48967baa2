// SPDX-License-Identifier: MIT

// Package lsystem steps a compiled rule set over a symbol string, one
// generation at a time.
//
// A System bundles a rules.Set with the branch symbols, the ignore sets and
// the number of global parameters. Each step runs as a staged pipeline:
//
//  1. StageSizeCounting: balance branches, reserve scratch for captured
//     parameters (prefix sum of the per-symbol bound).
//  2. StageMatching: parallel batches pick the first candidate rule whose
//     contexts, arity and conditional pass, and draw the outcome.
//  3. StageReplacementSizing: sequential prefix sums give every symbol its
//     output region.
//  4. StageReplacing: parallel batches copy trivial symbols and evaluate
//     replacement parameters against globals followed by captured values.
//
// Every item writes only its own region, and its random sample is derived
// from the step seed and its index, so results do not depend on the worker
// count or batch size.
//
// Cancellation is checked at every stage boundary and between batches; a
// cancelled step returns an error matching both ErrCancelled and the
// context's error.
package lsystem
