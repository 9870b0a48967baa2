// SPDX-License-Identifier: MIT

package rules

import (
	"errors"
	"strings"

	"github.com/katalvlaran/lindenmayer/expr"
	"github.com/katalvlaran/lindenmayer/symbols"
)

// Sentinel errors for rule-set compilation.
var (
	// ErrDuplicateRule indicates two non-stochastic rules with the same
	// core, contexts and conditional.
	ErrDuplicateRule = errors.New("rules: cannot have two non-stochastic rules matching the same symbols")

	// ErrProbability indicates a stochastic group whose weights do not sum to 1.
	ErrProbability = errors.New("rules: stochastic group probabilities must sum to 1")

	// ErrGlobalsMismatch indicates rules parsed against different global names.
	ErrGlobalsMismatch = errors.New("rules: rules declare different global parameters")
)

// ProbabilityTolerance bounds |Σp − 1| for a stochastic group.
const ProbabilityTolerance = 1e-5

// InputSymbol is one matcher in a rule's core or contexts: a symbol code
// and the names bound to its parameters.
type InputSymbol struct {
	Symbol int
	Params []string
}

// Arity returns the number of parameters the symbol must carry.
func (s InputSymbol) Arity() int { return len(s.Params) }

// Equal compares symbol and arity; parameter names do not matter.
func (s InputSymbol) Equal(o InputSymbol) bool {
	return s.Symbol == o.Symbol && len(s.Params) == len(o.Params)
}

// Matcher converts to the form used by the symbols matchers.
func (s InputSymbol) Matcher() symbols.Matcher {
	return symbols.Matcher{Symbol: s.Symbol, Arity: len(s.Params)}
}

func (s InputSymbol) render(b *strings.Builder, remapper symbols.Remapper) {
	writeSymbol(b, s.Symbol, remapper)
	if len(s.Params) > 0 {
		b.WriteByte('(')
		b.WriteString(strings.Join(s.Params, ", "))
		b.WriteByte(')')
	}
}

func equalSeries(a, b []InputSymbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

// Generator produces one output symbol; each parameter expression is
// evaluated over globals followed by the captured parameters.
type Generator struct {
	Symbol int
	Params []*expr.Expression
}

// Arity returns the number of parameters the generated symbol carries.
func (g Generator) Arity() int { return len(g.Params) }

func (g Generator) render(b *strings.Builder, remapper symbols.Remapper) {
	writeSymbol(b, g.Symbol, remapper)
	if len(g.Params) == 0 {
		return
	}
	b.WriteByte('(')
	for i, p := range g.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
}

// Outcome is one weighted replacement of a rule.
type Outcome struct {
	Probability float64
	Replacement []Generator
}

// SymbolCount returns how many symbols the outcome emits.
func (o Outcome) SymbolCount() int { return len(o.Replacement) }

// ParamCount returns how many parameters the outcome emits in total.
func (o Outcome) ParamCount() int {
	n := 0
	for _, g := range o.Replacement {
		n += len(g.Params)
	}

	return n
}

func writeSymbol(b *strings.Builder, code int, remapper symbols.Remapper) {
	if remapper == nil {
		remapper = symbols.Identity
	}
	r, err := remapper.Rune(code)
	if err != nil {
		r = '?'
	}
	b.WriteRune(r)
}
