// SPDX-License-Identifier: MIT

// Package lindenmayer is a parallel rewriting engine for parametric,
// stochastic, context-sensitive L-systems with branching.
//
// The module is organized in layers, each usable on its own:
//
//	expr/      arithmetic and boolean formulas over named parameters
//	symbols/   integer symbol strings, rune remapping, branch-aware context matching
//	rules/     rule parsing ("P(0.5) | A < B(x) > [C] : x > 1 -> B(x + 1)") and rule sets
//	lsystem/   the staged, cancellable, parallel step over a symbol string
//	lsysfile/  the .lsystem/.lsyslib file format and the multi-file linker
//	cmd/lsys   command line runner: run, check, watch
//
// Quick example:
//
//	set, _ := rules.CompileText([]string{"A -> AB", "B -> A"})
//	sys, _ := lsystem.NewSystem(set)
//	state, _ := lsystem.NewState("A", symbols.Identity, 1)
//	state, _ = sys.Iterate(ctx, state, 3, nil) // ABAAB
//
// Every step is deterministic for a given state: the state's seed drives all
// stochastic choices, regardless of how many workers share the passes.
//
//	go get github.com/katalvlaran/lindenmayer
package lindenmayer
