// SPDX-License-Identifier: MIT

package rules

import (
	"fmt"
	"math"
	"sort"
)

// Set is a compiled, read-only rule table indexed by core symbol.
type Set struct {
	rules    []*Rule
	bySymbol map[int][]*Rule
	scratch  map[int]int
	globals  []string
}

// CompileOptions configures Compile.
type CompileOptions struct {
	// Globals, when set, must equal the globals every rule was parsed with.
	Globals []string
}

// CompileOption mutates CompileOptions.
type CompileOption func(*CompileOptions)

// WithDeclaredGlobals pins the global parameter names of the set.
func WithDeclaredGlobals(names ...string) CompileOption {
	return func(o *CompileOptions) {
		o.Globals = append([]string(nil), names...)
	}
}

// Compile validates parsed rules and builds the lookup table.
//
// Steps:
//  1. Agree on the global parameter names.
//  2. Reject pairwise duplicate non-stochastic rules.
//  3. Group stochastic rules by signature; each group must sum to 1 and
//     becomes one Rule with one Outcome per member.
//  4. Index by core symbol, most specific first, ties in declaration order.
//  5. Precompute the scratch bound per symbol.
func Compile(parsed []*Rule, opts ...CompileOption) (*Set, error) {
	var co CompileOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}

	// 1) Globals.
	globals := co.Globals
	if globals == nil && len(parsed) > 0 {
		globals = parsed[0].globals
	}
	for _, r := range parsed {
		if !equalNames(r.globals, globals) {
			return nil, fmt.Errorf("%w: %q uses %v, expected %v", ErrGlobalsMismatch, r.source, r.globals, globals)
		}
	}

	// 2) Duplicates.
	for i, a := range parsed {
		if a.Stochastic {
			continue
		}
		for _, b := range parsed[i+1:] {
			if !b.Stochastic && sameSignature(a, b) {
				return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateRule, a, b)
			}
		}
	}

	// 3) Stochastic groups, kept at the position of their first member.
	var ordered []*Rule
	var groups []*Rule
	for _, r := range parsed {
		if !r.Stochastic {
			ordered = append(ordered, r)
			continue
		}
		var merged *Rule
		for _, g := range groups {
			if sameSignature(g, r) {
				merged = g
				break
			}
		}
		if merged == nil {
			clone := *r
			clone.Outcomes = append([]Outcome(nil), r.Outcomes...)
			merged = &clone
			groups = append(groups, merged)
			ordered = append(ordered, merged)
			continue
		}
		merged.Outcomes = append(merged.Outcomes, r.Outcomes...)
	}
	for _, g := range groups {
		sum := 0.0
		for _, o := range g.Outcomes {
			sum += o.Probability
		}
		if deviation := math.Abs(sum - 1); deviation > ProbabilityTolerance {
			return nil, fmt.Errorf("%w: group for %s has probability %g away from 1",
				ErrProbability, g.TargetString(), deviation)
		}
	}

	// 4) Index.
	set := &Set{
		rules:    ordered,
		bySymbol: make(map[int][]*Rule),
		scratch:  make(map[int]int),
		globals:  append([]string(nil), globals...),
	}
	for _, r := range ordered {
		set.bySymbol[r.Core.Symbol] = append(set.bySymbol[r.Core.Symbol], r)
	}
	for sym, list := range set.bySymbol {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Specificity() > list[j].Specificity()
		})

		// 5) Scratch bound: the largest capture of any candidate.
		need := 0
		for _, r := range list {
			if c := r.CapturedCount(); c > need {
				need = c
			}
		}
		set.scratch[sym] = need
	}

	return set, nil
}

// CompileText parses every line with opts and compiles the result. Blank
// lines are skipped.
func CompileText(lines []string, opts ...Option) (*Set, error) {
	parsed := make([]*Rule, 0, len(lines))
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		r, err := Parse(line, opts...)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, r)
	}

	return Compile(parsed, WithDeclaredGlobals(gatherOptions(opts).Globals...))
}

// RulesFor returns the candidates for symbol in priority order.
func (s *Set) RulesFor(symbol int) []*Rule { return s.bySymbol[symbol] }

// ScratchFor returns the maximum number of parameters any candidate for
// symbol captures.
func (s *Set) ScratchFor(symbol int) int { return s.scratch[symbol] }

// Rules returns every compiled rule in declaration order.
func (s *Set) Rules() []*Rule { return s.rules }

// Globals returns the global parameter names shared by all rules.
func (s *Set) Globals() []string { return s.globals }

// MaxScratch returns the largest per-symbol scratch bound.
func (s *Set) MaxScratch() int {
	m := 0
	for _, v := range s.scratch {
		if v > m {
			m = v
		}
	}

	return m
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
			return false
		}
	}

	return true
}
