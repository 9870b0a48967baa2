// SPDX-License-Identifier: MIT

package symbols

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/katalvlaran/lindenmayer/expr"
)

// String is a flat symbol sequence with a jagged parameter store.
// Invariants: len(Index) == len(Symbols) and len(Params) == Σ Index[i].Length,
// with runs laid out contiguously in symbol order.
type String struct {
	Symbols []int
	Params  []float64
	Index   []Jagged
}

// New returns an empty String with the given capacities.
func New(capacitySymbols, capacityParams int) *String {
	return &String{
		Symbols: make([]int, 0, capacitySymbols),
		Params:  make([]float64, 0, capacityParams),
		Index:   make([]Jagged, 0, capacitySymbols),
	}
}

// Len returns the number of symbols.
func (s *String) Len() int { return len(s.Symbols) }

// Symbol returns the code at i.
func (s *String) Symbol(i int) int { return s.Symbols[i] }

// Arity returns the parameter count of the symbol at i.
func (s *String) Arity(i int) int { return s.Index[i].Length }

// ParamsOf returns the parameters of the symbol at i. The slice aliases the
// String's storage.
func (s *String) ParamsOf(i int) []float64 {
	j := s.Index[i]

	return s.Params[j.Offset:j.End():j.End()]
}

// Append adds one symbol with its parameters.
func (s *String) Append(symbol int, params ...float64) {
	s.Symbols = append(s.Symbols, symbol)
	s.Index = append(s.Index, Jagged{Offset: len(s.Params), Length: len(params)})
	s.Params = append(s.Params, params...)
}

// Clone returns a deep copy.
func (s *String) Clone() *String {
	out := &String{
		Symbols: make([]int, len(s.Symbols)),
		Params:  make([]float64, len(s.Params)),
		Index:   make([]Jagged, len(s.Index)),
	}
	copy(out.Symbols, s.Symbols)
	copy(out.Params, s.Params)
	copy(out.Index, s.Index)

	return out
}

// Equal compares symbols and per-symbol parameters. Parameter run offsets
// are not compared, only their contents.
func (s *String) Equal(other *String) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Symbols) != len(other.Symbols) {
		return false
	}
	for i := range s.Symbols {
		if s.Symbols[i] != other.Symbols[i] || s.Index[i].Length != other.Index[i].Length {
			return false
		}
		a, b := s.ParamsOf(i), other.ParamsOf(i)
		for k := range a {
			if a[k] != b[k] {
				return false
			}
		}
	}

	return true
}

// Render writes the string as text: parameterised symbols as A(1, 2.5).
// Codes unknown to remapper render as U+FFFD.
func (s *String) Render(remapper Remapper) string {
	if remapper == nil {
		remapper = Identity
	}
	var b strings.Builder
	b.Grow(len(s.Symbols) + 4*len(s.Params))
	for i, code := range s.Symbols {
		r, err := remapper.Rune(code)
		if err != nil {
			r = utf8.RuneError
		}
		b.WriteRune(r)
		j := s.Index[i]
		if j.Length == 0 {
			continue
		}
		b.WriteByte('(')
		for k := 0; k < j.Length; k++ {
			if k > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(s.Params[j.Offset+k], 'g', -1, 64))
		}
		b.WriteByte(')')
	}

	return b.String()
}

// String renders with the Identity remapper.
func (s *String) String() string { return s.Render(Identity) }

// Parse reads text such as "A(1, 1)B[C]" into a String. Whitespace between
// symbols is skipped. Parameter values are numeric literals or constant
// expressions. Syntax problems are *expr.SyntaxError values positioned in text.
func Parse(text string, remapper Remapper) (*String, error) {
	if remapper == nil {
		remapper = Identity
	}
	out := New(len(text), 0)

	i := 0
	for i < len(text) {
		r, w := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += w
			continue
		}
		if r == '(' || r == ')' {
			return nil, syntaxAt(text, "Cannot use parentheses as a symbol", i, i+w)
		}
		code, err := remapper.Symbol(r)
		if err != nil {
			return nil, fmt.Errorf("symbols: parse %q at %d: %w", text, i, err)
		}
		i += w

		var params []float64
		if i < len(text) && text[i] == '(' {
			args, next, serr := splitParams(text, i)
			if serr != nil {
				return nil, serr
			}
			for _, a := range args {
				v, perr := parseValue(text, a)
				if perr != nil {
					return nil, perr
				}
				params = append(params, v)
			}
			i = next
		}
		out.Append(code, params...)
	}

	return out, nil
}

// MustParse is Parse for literals known to be valid; it panics on error.
func MustParse(text string) *String {
	s, err := Parse(text, Identity)
	if err != nil {
		panic(err)
	}

	return s
}

// span is a [start, end) slice of some text.
type span struct{ start, end int }

// splitParams reads the parenthesised list opening at text[open] and splits
// it on top-level commas. It returns the argument spans and the index after
// the closing paren.
func splitParams(text string, open int) ([]span, int, error) {
	depth := 0
	argStart := open + 1
	var args []span
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				if strings.TrimSpace(text[argStart:i]) != "" || len(args) > 0 {
					args = append(args, span{argStart, i})
				}

				return args, i + 1, nil
			}
			depth--
		case ',':
			if depth == 0 {
				args = append(args, span{argStart, i})
				argStart = i + 1
			}
		}
	}

	return nil, 0, syntaxAt(text, "Unexpected end of input. Are you missing a parentheses?", len(text), len(text))
}

func parseValue(text string, sp span) (float64, error) {
	raw := text[sp.start:sp.end]
	trimmed := strings.TrimSpace(raw)
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v, nil
	}
	e, err := expr.Compile("(" + raw + ")")
	if err != nil {
		se, ok := expr.AsSyntaxError(err)
		if !ok {
			return 0, err
		}
		se.Reposition(sp.start-1, text)

		return 0, se
	}

	return e.Eval(nil), nil
}

func syntaxAt(text, description string, start, end int) error {
	se := expr.NewSyntaxError(description, start, end)
	se.Reposition(0, text)

	return se
}
