// SPDX-License-Identifier: MIT

package rules

import (
	"strings"

	"github.com/katalvlaran/lindenmayer/expr"
	"github.com/katalvlaran/lindenmayer/symbols"
)

// Rule is one production. A parsed rule has a single Outcome; Compile folds a
// stochastic group into one Rule carrying every member's Outcome.
type Rule struct {
	Core     InputSymbol
	Backward []InputSymbol
	Forward  []InputSymbol

	// Conditional is nil when the rule has none. ConditionalText is its
	// canonical form and takes part in duplicate detection.
	Conditional     *expr.Expression
	ConditionalText string

	// Stochastic is set for rules declared with P(...).
	Stochastic bool
	Outcomes   []Outcome

	// Group is the rule-group index (the source file when linked).
	Group int

	globals  []string
	params   []string
	source   string
	remapper symbols.Remapper

	backward []symbols.Matcher
	forward  *symbols.Pattern
}

// Source returns the rule text the rule was parsed from.
func (r *Rule) Source() string { return r.source }

// Globals returns the global parameter names the rule was parsed against.
func (r *Rule) Globals() []string { return r.globals }

// ParamNames returns every name visible to the rule's expressions:
// globals, then backward, core and forward parameters.
func (r *Rule) ParamNames() []string { return r.params }

// CapturedCount returns the number of parameters matching captures from the
// target string.
func (r *Rule) CapturedCount() int { return len(r.params) - len(r.globals) }

// BackwardMatchers returns the backward context in matcher form.
func (r *Rule) BackwardMatchers() []symbols.Matcher { return r.backward }

// ForwardPattern returns the compiled forward context; nil when empty.
func (r *Rule) ForwardPattern() *symbols.Pattern { return r.forward }

// HasContext reports whether either context is non-empty.
func (r *Rule) HasContext() bool { return len(r.Backward) > 0 || len(r.Forward) > 0 }

// Specificity orders candidates: longer contexts are tried first.
func (r *Rule) Specificity() int { return len(r.Backward) + len(r.Forward) }

// Probability returns the weight of a parsed rule's only outcome.
func (r *Rule) Probability() float64 {
	if len(r.Outcomes) == 0 {
		return 1
	}

	return r.Outcomes[0].Probability
}

// TargetString renders "B < A(x) > C".
func (r *Rule) TargetString() string {
	var b strings.Builder
	if len(r.Backward) > 0 {
		for _, s := range r.Backward {
			s.render(&b, r.remapper)
		}
		b.WriteString(" < ")
	}
	r.Core.render(&b, r.remapper)
	if len(r.Forward) > 0 {
		b.WriteString(" > ")
		for _, s := range r.Forward {
			s.render(&b, r.remapper)
		}
	}

	return b.String()
}

// ReplacementString renders the replacement of outcome i.
func (r *Rule) ReplacementString(i int) string {
	var b strings.Builder
	for _, g := range r.Outcomes[i].Replacement {
		g.render(&b, r.remapper)
	}

	return b.String()
}

// String renders the rule in a canonical form; stochastic groups render one
// alternative per line.
func (r *Rule) String() string {
	var lines []string
	for i, o := range r.Outcomes {
		var b strings.Builder
		if r.Stochastic {
			b.WriteString("P(")
			b.WriteString(formatFloat(o.Probability))
			b.WriteString(") | ")
		}
		b.WriteString(r.TargetString())
		if r.Conditional != nil {
			b.WriteString(" : ")
			b.WriteString(r.ConditionalText)
		}
		b.WriteString(" -> ")
		b.WriteString(r.ReplacementString(i))
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n")
}

// sameSignature reports whether a and b match exactly the same situations.
func sameSignature(a, b *Rule) bool {
	return a.Core.Equal(b.Core) &&
		equalSeries(a.Backward, b.Backward) &&
		equalSeries(a.Forward, b.Forward) &&
		a.ConditionalText == b.ConditionalText
}
