// SPDX-License-Identifier: MIT

package symbols

import (
	"fmt"
	"sort"
)

// Remapper translates between the runes written in rule and axiom text and
// the integer codes stored in a String.
type Remapper interface {
	Symbol(r rune) (int, error)
	Rune(code int) (rune, error)
}

type identity struct{}

func (identity) Symbol(r rune) (int, error) { return int(r), nil }
func (identity) Rune(code int) (rune, error) { return rune(code), nil }

// Identity maps every rune to its own code point.
var Identity Remapper = identity{}

// Table is an explicit bidirectional rune/code binding, as produced by the
// file linker where every file owns its own alphabet.
type Table struct {
	codes map[rune]int
	runes map[int]rune
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{codes: make(map[rune]int), runes: make(map[int]rune)}
}

// Bind associates r with code. Rebinding the same pair is a no-op; binding
// either side to something else fails with ErrSymbolConflict.
func (t *Table) Bind(r rune, code int) error {
	if c, ok := t.codes[r]; ok {
		if c == code {
			return nil
		}

		return fmt.Errorf("%w: %q already bound to %d", ErrSymbolConflict, r, c)
	}
	if existing, ok := t.runes[code]; ok {
		return fmt.Errorf("%w: code %d already bound to %q", ErrSymbolConflict, code, existing)
	}
	t.codes[r] = code
	t.runes[code] = r

	return nil
}

// Symbol implements Remapper.
func (t *Table) Symbol(r rune) (int, error) {
	c, ok := t.codes[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, r)
	}

	return c, nil
}

// Rune implements Remapper.
func (t *Table) Rune(code int) (rune, error) {
	r, ok := t.runes[code]
	if !ok {
		return 0, fmt.Errorf("%w: code %d", ErrUnknownSymbol, code)
	}

	return r, nil
}

// Has reports whether r is bound.
func (t *Table) Has(r rune) bool {
	_, ok := t.codes[r]

	return ok
}

// Len returns the number of bindings.
func (t *Table) Len() int { return len(t.codes) }

// Codes returns the bound codes in ascending order.
func (t *Table) Codes() []int {
	out := make([]int, 0, len(t.runes))
	for c := range t.runes {
		out = append(out, c)
	}
	sort.Ints(out)

	return out
}
