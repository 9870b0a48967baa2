// SPDX-License-Identifier: MIT

package lsysfile

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/katalvlaran/lindenmayer/lsystem"
	"github.com/katalvlaran/lindenmayer/rules"
	"github.com/katalvlaran/lindenmayer/symbols"
)

// LinkedSet is a linked origin file with its libraries.
type LinkedSet struct {
	origin   string
	order    []string
	files    map[string]*linkedFile
	defines  []Define
	runtimes []Runtime
	logger   *zap.Logger
}

// Origin returns the origin file identifier.
func (ls *LinkedSet) Origin() string { return ls.origin }

// Files returns every file identifier, leaf first. A file's index is its
// rule group.
func (ls *LinkedSet) Files() []string { return append([]string(nil), ls.order...) }

// File returns the parsed file with identifier id.
func (ls *LinkedSet) File(id string) (*File, bool) {
	lf, ok := ls.files[id]
	if !ok {
		return nil, false
	}

	return lf.file, true
}

// Symbol returns the code the character r has in file id.
func (ls *LinkedSet) Symbol(id string, r rune) (int, error) {
	lf, ok := ls.files[id]
	if !ok {
		return 0, fmt.Errorf("lsysfile: unknown file %q", id)
	}
	code, err := lf.table.Symbol(r)
	if err != nil {
		return 0, fmt.Errorf("lsysfile: %s: %w", id, err)
	}

	return code, nil
}

// Remapper renders codes with the origin file's characters, falling back to
// the leaf-most file that defines a code.
func (ls *LinkedSet) Remapper() symbols.Remapper {
	tables := make([]*symbols.Table, 0, len(ls.order))
	tables = append(tables, ls.files[ls.origin].table)
	for _, id := range ls.order {
		if id != ls.origin {
			tables = append(tables, ls.files[id].table)
		}
	}

	return setRemapper(tables)
}

type setRemapper []*symbols.Table

func (s setRemapper) Symbol(r rune) (int, error) { return s[0].Symbol(r) }

func (s setRemapper) Rune(code int) (rune, error) {
	for _, t := range s {
		if r, err := t.Rune(code); err == nil {
			return r, nil
		}
	}

	return 0, fmt.Errorf("%w: code %d", symbols.ErrUnknownSymbol, code)
}

// AxiomText returns the origin's #axiom as written.
func (ls *LinkedSet) AxiomText() string { return ls.files[ls.origin].file.Axiom }

// Axiom parses the origin's #axiom with the origin's symbol table.
func (ls *LinkedSet) Axiom() (*symbols.String, error) {
	s, err := symbols.Parse(ls.AxiomText(), ls.files[ls.origin].table)
	if err != nil {
		return nil, fmt.Errorf("lsysfile: %s: axiom: %w", ls.origin, err)
	}

	return s, nil
}

// Iterations returns the origin's #iterations, or -1 when unset.
func (ls *LinkedSet) Iterations() int { return ls.files[ls.origin].file.Iterations }

// RuntimeNames returns every #runtime name, leaf-first declaration order.
// Steps take global values in this order.
func (ls *LinkedSet) RuntimeNames() []string {
	out := make([]string, len(ls.runtimes))
	for i, r := range ls.runtimes {
		out[i] = r.Name
	}

	return out
}

// RuntimeDefaults returns the declared defaults in RuntimeNames order.
func (ls *LinkedSet) RuntimeDefaults() []float64 {
	out := make([]float64, len(ls.runtimes))
	for i, r := range ls.runtimes {
		out[i] = r.Default
	}

	return out
}

// Defines returns every #define with overrides applied. Overrides for names
// that no file declares are ignored.
func (ls *LinkedSet) Defines(overrides map[string]string) []Define {
	out := make([]Define, len(ls.defines))
	for i, d := range ls.defines {
		if v, ok := overrides[d.Name]; ok {
			d.Replacement = v
		}
		out[i] = d
	}

	return out
}

// Compile substitutes defines into every rule, parses each file's rules in
// its own rule group and builds the System. opts are applied after the
// options derived from the files.
func (ls *LinkedSet) Compile(overrides map[string]string, opts ...lsystem.Option) (*lsystem.System, error) {
	names := ls.RuntimeNames()
	subst := newSubstituter(ls.Defines(overrides))
	origin := ls.files[ls.origin].table
	open, _ := origin.Symbol('[')
	close, _ := origin.Symbol(']')

	sysOpts := []lsystem.Option{
		lsystem.WithBranchSymbols(open, close),
		lsystem.WithLogger(ls.logger),
	}
	var parsed []*rules.Rule
	for group, id := range ls.order {
		lf := ls.files[id]
		for _, line := range lf.file.Rules {
			r, err := rules.Parse(subst.apply(line.Text),
				rules.WithGlobals(names...),
				rules.WithRemapper(lf.table),
				rules.WithGroup(group),
				rules.WithBranchSymbols(open, close))
			if err != nil {
				return nil, fmt.Errorf("lsysfile: %s:%d: %w", id, line.Line, err)
			}
			parsed = append(parsed, r)
		}

		ignored, err := codesOf(lf, lf.file.Ignore)
		if err != nil {
			return nil, fmt.Errorf("lsysfile: %s: #ignore: %w", id, err)
		}
		visible := lf.table.Codes()
		if lf.file.HasMatches() {
			if visible, err = codesOf(lf, lf.file.Matches); err != nil {
				return nil, fmt.Errorf("lsysfile: %s: #matches: %w", id, err)
			}
		}
		sysOpts = append(sysOpts,
			lsystem.WithIgnore(ignored...),
			lsystem.WithGroupSymbols(group, visible...))
	}

	set, err := rules.Compile(parsed, rules.WithDeclaredGlobals(names...))
	if err != nil {
		return nil, fmt.Errorf("lsysfile: %w", err)
	}

	return lsystem.NewSystem(set, append(sysOpts, opts...)...)
}

func codesOf(lf *linkedFile, chars string) ([]int, error) {
	out := make([]int, 0, len(chars))
	for _, r := range chars {
		code, err := lf.table.Symbol(r)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}

	return out, nil
}

// substituter replaces whole-word occurrences of define names.
type substituter struct {
	patterns     []*regexp.Regexp
	replacements []string
}

func newSubstituter(defines []Define) substituter {
	var s substituter
	for _, d := range defines {
		s.patterns = append(s.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(d.Name)+`\b`))
		s.replacements = append(s.replacements, d.Replacement)
	}

	return s
}

func (s substituter) apply(text string) string {
	for i, p := range s.patterns {
		text = p.ReplaceAllLiteralString(text, s.replacements[i])
	}

	return text
}
