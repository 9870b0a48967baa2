// SPDX-License-Identifier: MIT

package lsysfile

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"go.uber.org/zap"

	"github.com/katalvlaran/lindenmayer/symbols"
)

// Linker resolves an origin file and everything it includes.
type Linker struct {
	provider FileProvider
	logger   *zap.Logger
}

// LinkerOption configures a Linker.
type LinkerOption func(*Linker)

// WithLogger sets the logger; file resolution is logged at Debug. A nil
// logger is ignored.
func WithLogger(l *zap.Logger) LinkerOption {
	return func(k *Linker) {
		if l != nil {
			k.logger = l
		}
	}
}

// NewLinker returns a Linker reading through provider. Panics on nil.
func NewLinker(provider FileProvider, opts ...LinkerOption) *Linker {
	if provider == nil {
		panic("lsysfile: NewLinker(nil)")
	}
	l := &Linker{provider: provider, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

// linkedFile is a parsed file with its resolved includes and symbol table.
type linkedFile struct {
	file     *File
	includes []string
	table    *symbols.Table
	group    int
}

// Link loads origin and its include tree, then assigns symbol codes.
//
// Steps:
//  1. Load every reachable file; includes resolve relative to the including file.
//  2. Reject a library as origin.
//  3. Sort leaf first, failing on include cycles.
//  4. Assign symbol codes file by file.
//  5. Collect #define and #runtime declarations, rejecting duplicates.
func (l *Linker) Link(origin string) (*LinkedSet, error) {
	origin = path.Clean(origin)

	// 1) Load.
	files, err := l.load(origin)
	if err != nil {
		return nil, err
	}

	// 2) Origin.
	if files[origin].file.Library {
		return nil, newLinkError(KindOriginIsLibrary, []string{origin},
			"origin file %q is a library, origin must be a .lsystem file", origin)
	}

	// 3) Order.
	order, err := sortLeafFirst(origin, files)
	if err != nil {
		return nil, err
	}

	// 4) Codes.
	if err := assignSymbols(order, files); err != nil {
		return nil, err
	}

	// 5) Declarations.
	set := &LinkedSet{origin: origin, order: order, files: files, logger: l.logger}
	defines := make(map[string]string)
	runtimes := make(map[string]string)
	for i, id := range order {
		lf := files[id]
		lf.group = i
		for _, d := range lf.file.Defines {
			if first, ok := defines[d.Name]; ok {
				return nil, newLinkError(KindDuplicateDefine, []string{first, id},
					"compile time variable %q declared twice", d.Name)
			}
			defines[d.Name] = id
			set.defines = append(set.defines, d)
		}
		for _, r := range lf.file.Runtimes {
			if first, ok := runtimes[r.Name]; ok {
				return nil, newLinkError(KindDuplicateRuntime, []string{first, id},
					"runtime variable %q declared twice", r.Name)
			}
			runtimes[r.Name] = id
			set.runtimes = append(set.runtimes, r)
		}
	}
	l.logger.Debug("linked file set",
		zap.String("origin", origin),
		zap.Strings("files", order))

	return set, nil
}

func (l *Linker) load(origin string) (map[string]*linkedFile, error) {
	files := make(map[string]*linkedFile)
	pending := []string{origin}
	includedBy := map[string]string{}
	for len(pending) > 0 {
		id := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if _, ok := files[id]; ok {
			continue
		}

		data, err := l.provider.ReadFile(id)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				involved := []string{id}
				if from, ok := includedBy[id]; ok {
					involved = []string{from, id}
				}

				return nil, newLinkError(KindMissingFile, involved, "tried to import %s, but file does not exist", id)
			}

			return nil, fmt.Errorf("lsysfile: read %s: %w", id, err)
		}
		f, err := Parse(id, string(data))
		if err != nil {
			return nil, err
		}

		lf := &linkedFile{file: f}
		for _, inc := range f.Includes {
			target := resolve(id, inc.Path)
			lf.includes = append(lf.includes, target)
			if _, ok := includedBy[target]; !ok {
				includedBy[target] = id
			}
			pending = append(pending, target)
		}
		files[id] = lf
		l.logger.Debug("file resolved",
			zap.String("file", id),
			zap.Bool("library", f.Library),
			zap.Int("rules", len(f.Rules)),
			zap.Int("includes", len(f.Includes)))
	}

	return files, nil
}

// resolve interprets an include path relative to the including file.
func resolve(from, include string) string {
	return path.Clean(path.Join(path.Dir(from), include))
}

// Visit states for sortLeafFirst.
const (
	white = iota
	gray
	black
)

type includeSorter struct {
	files   map[string]*linkedFile
	state   map[string]int
	lineage []string
	order   []string
}

// sortLeafFirst orders files so every file follows everything it includes.
func sortLeafFirst(origin string, files map[string]*linkedFile) ([]string, error) {
	s := &includeSorter{files: files, state: make(map[string]int, len(files))}
	if err := s.visit(origin); err != nil {
		return nil, err
	}

	return s.order, nil
}

func (s *includeSorter) visit(id string) error {
	s.state[id] = gray
	s.lineage = append(s.lineage, id)
	for _, next := range s.files[id].includes {
		switch s.state[next] {
		case gray:
			at := slices.Index(s.lineage, next)
			cycle := append(slices.Clone(s.lineage[at:]), next)

			return newLinkError(KindCyclicInclude, cycle, "file includes itself")
		case white:
			if err := s.visit(next); err != nil {
				return err
			}
		}
	}
	s.lineage = s.lineage[:len(s.lineage)-1]
	s.state[id] = black
	s.order = append(s.order, id)

	return nil
}

// assignSymbols builds every file's table in leaf-first order: globals
// first, then imports, then the rest of the alphabet.
func assignSymbols(order []string, files map[string]*linkedFile) error {
	shared := make(map[rune]int)
	next := 0
	for _, id := range order {
		lf := files[id]
		table := symbols.NewTable()

		for _, r := range lf.file.globals() {
			code, ok := shared[r]
			if !ok {
				code = next
				shared[r] = code
				next++
			}
			if err := table.Bind(r, code); err != nil {
				return fmt.Errorf("lsysfile: %s: %w", id, err)
			}
		}

		for i, inc := range lf.file.Includes {
			libID := lf.includes[i]
			lib := files[libID]
			for _, im := range inc.Imports {
				exported, ok := lib.file.exported(im.Name)
				if !ok {
					return newLinkError(KindMissingExport, []string{id, libID},
						"%s does not export %q", libID, im.Name)
				}
				code, err := lib.table.Symbol(exported)
				if err != nil {
					return newLinkError(KindMissingExport, []string{id, libID},
						"%s exports %q as undeclared symbol %q", libID, im.Name, exported)
				}

				if existing, err := table.Symbol(im.Symbol); err == nil {
					if existing != code {
						return newLinkError(KindImportCollision, []string{id, libID},
							"import of %s from %s would conflict with a previous definition of %q", im.Name, libID, im.Symbol)
					}
					continue
				}
				if other, err := table.Rune(code); err == nil {
					return newLinkError(KindImportDissonance, []string{id, libID},
						"import of %s from %s as %q would re-import the symbol already defined as %q", im.Name, libID, im.Symbol, other)
				}
				if err := table.Bind(im.Symbol, code); err != nil {
					return fmt.Errorf("lsysfile: %s: %w", id, err)
				}
			}
		}

		for _, r := range lf.file.alphabet() {
			if table.Has(r) {
				continue
			}
			if err := table.Bind(r, next); err != nil {
				return fmt.Errorf("lsysfile: %s: %w", id, err)
			}
			next++
		}
		lf.table = table
	}

	return nil
}
