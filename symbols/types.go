// SPDX-License-Identifier: MIT

package symbols

import "errors"

// Sentinel errors for symbol strings and patterns.
var (
	// ErrUnbalancedBranches indicates a string whose branch open/close symbols do not pair up.
	ErrUnbalancedBranches = errors.New("symbols: unbalanced branch symbols")

	// ErrUnknownSymbol indicates a rune or code with no binding in a Remapper.
	ErrUnknownSymbol = errors.New("symbols: unknown symbol")

	// ErrSymbolConflict indicates an attempt to bind a rune or code twice.
	ErrSymbolConflict = errors.New("symbols: conflicting symbol binding")
)

// Default branch symbols.
const (
	DefaultBranchOpen  = int('[')
	DefaultBranchClose = int(']')
)

// Jagged addresses one symbol's run of parameters inside String.Params.
type Jagged struct {
	Offset int
	Length int
}

// End returns the exclusive end of the run.
func (j Jagged) End() int { return j.Offset + j.Length }

// Matcher is a pattern element: a symbol code and the parameter count it requires.
type Matcher struct {
	Symbol int
	Arity  int
}

// Ignore reports symbols that context matching walks over as if absent.
// A nil Ignore skips nothing.
type Ignore func(symbol int) bool

// Has is the nil-safe form of ig(symbol).
func (ig Ignore) Has(symbol int) bool { return ig != nil && ig(symbol) }

// IgnoreSet builds an Ignore over a fixed set of codes.
func IgnoreSet(codes ...int) Ignore {
	if len(codes) == 0 {
		return nil
	}
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}

	return func(symbol int) bool {
		_, ok := set[symbol]

		return ok
	}
}

// Union returns an Ignore matching any of parts. Nil parts are dropped.
func Union(parts ...Ignore) Ignore {
	var live []Ignore
	for _, p := range parts {
		if p != nil {
			live = append(live, p)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}

	return func(symbol int) bool {
		for _, p := range live {
			if p(symbol) {
				return true
			}
		}

		return false
	}
}
