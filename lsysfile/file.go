// SPDX-License-Identifier: MIT

package lsysfile

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/katalvlaran/lindenmayer/expr"
)

// LibraryExt marks library files.
const LibraryExt = ".lsyslib"

var (
	directivePattern = regexp.MustCompile(`^(\S+)\s+(.+)$`)
	pairPattern      = regexp.MustCompile(`^(\S+)\s+(\S+)`)
	definePattern    = regexp.MustCompile(`^(\S+)\s+(.+)$`)
	importPattern    = regexp.MustCompile(`\((\w+)->(\w)\)`)
)

// Define is a #define directive.
type Define struct {
	Name        string
	Replacement string
}

// Runtime is a #runtime directive.
type Runtime struct {
	Name    string
	Default float64
}

// Import binds an exported name of a library to a local character.
type Import struct {
	Name   string
	Symbol rune
}

// Include is an #include directive.
type Include struct {
	Path    string
	Imports []Import
}

// Export is an #export directive.
type Export struct {
	Name   string
	Symbol rune
}

// RuleLine is a rule with its 1-based line number.
type RuleLine struct {
	Text string
	Line int
}

// File is one parsed .lsystem or .lsyslib file.
type File struct {
	Path    string
	Library bool

	Axiom string
	// Iterations is -1 when the file does not set it.
	Iterations int

	Symbols string
	Matches string
	Globals string
	Ignore  string

	Defines  []Define
	Runtimes []Runtime
	Includes []Include
	Exports  []Export
	Rules    []RuleLine
}

// HasMatches reports whether the file restricts the symbols its contexts see.
func (f *File) HasMatches() bool { return f.Matches != "" }

// Parse reads a file. Library status follows the path's extension. The
// first malformed directive fails the parse with an *expr.SyntaxError
// positioned in its line.
func Parse(filePath, text string) (*File, error) {
	f := &File{
		Path:       filePath,
		Library:    path.Ext(filePath) == LibraryExt,
		Iterations: -1,
	}
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if line[0] != '#' {
			f.Rules = append(f.Rules, RuleLine{Text: line, Line: n + 1})
			continue
		}
		if err := f.parseDirective(line); err != nil {
			return nil, fmt.Errorf("lsysfile: %s:%d: %w", filePath, n+1, err)
		}
	}

	return f, nil
}

// parseDirective handles one "#..." line; positions are in line coordinates.
func (f *File) parseDirective(line string) error {
	body := line[1:]
	if strings.HasPrefix(body, "#") {
		return nil
	}
	m := directivePattern.FindStringSubmatchIndex(body)
	if m == nil {
		return syntaxAt(line, "missing directive after hash", 0, len(line))
	}
	name, nameStart, nameEnd := body[m[2]:m[3]], m[2]+1, m[3]+1
	param, paramStart := body[m[4]:m[5]], m[4]+1
	paramEnd := paramStart + len(param)

	switch name {
	case "axiom":
		if f.Library {
			return syntaxAt(line, "axiom cannot be defined in a library file", nameStart, nameEnd)
		}
		f.Axiom = param
	case "iterations":
		if f.Library {
			return syntaxAt(line, "iterations cannot be defined in a library file", nameStart, nameEnd)
		}
		n, err := strconv.Atoi(param)
		if err != nil {
			return syntaxAt(line, "iterations must be an integer", paramStart, paramEnd)
		}
		f.Iterations = n
	case "runtime":
		pm := pairPattern.FindStringSubmatchIndex(param)
		if pm == nil {
			return syntaxAt(line, "runtime directive requires 2 parameters", paramStart, paramEnd)
		}
		v, err := strconv.ParseFloat(param[pm[4]:pm[5]], 64)
		if err != nil {
			return syntaxAt(line, "runtime parameter must default to a number", paramStart+pm[4], paramStart+pm[5])
		}
		f.Runtimes = append(f.Runtimes, Runtime{Name: param[pm[2]:pm[3]], Default: v})
	case "define":
		dm := definePattern.FindStringSubmatch(param)
		if dm == nil {
			return syntaxAt(line, "define directive requires 2 parameters", paramStart, paramEnd)
		}
		f.Defines = append(f.Defines, Define{Name: dm[1], Replacement: dm[2]})
	case "symbols":
		f.Symbols += strings.Join(strings.Fields(param), "")
	case "matches":
		f.Matches += strings.Join(strings.Fields(param), "")
	case "ignore":
		f.Ignore = strings.Join(strings.Fields(param), "")
	case "global":
		f.Globals = strings.Join(strings.Fields(param), "")
	case "export":
		if !f.Library {
			return syntaxAt(line, "export can only be defined in a library file", nameStart, nameEnd)
		}
		em := pairPattern.FindStringSubmatch(param)
		if em == nil || utf8.RuneCountInString(em[2]) != 1 {
			return syntaxAt(line, "export directive requires a name and a single symbol", paramStart, paramEnd)
		}
		r, _ := utf8.DecodeRuneInString(em[2])
		f.Exports = append(f.Exports, Export{Name: em[1], Symbol: r})
	case "include":
		fields := strings.Fields(param)
		inc := Include{Path: fields[0]}
		for _, im := range importPattern.FindAllStringSubmatch(param[len(fields[0]):], -1) {
			r, _ := utf8.DecodeRuneInString(im[2])
			inc.Imports = append(inc.Imports, Import{Name: im[1], Symbol: r})
		}
		f.Includes = append(f.Includes, inc)
	default:
		return syntaxAt(line, fmt.Sprintf("unrecognized directive name %q", name), nameStart, nameEnd)
	}

	return nil
}

func syntaxAt(line, description string, start, end int) error {
	se := expr.NewSyntaxError(description, start, end)
	se.Reposition(0, line)

	return se
}

// alphabet lists the file's characters: branch symbols, then #symbols and
// #global characters, each once.
func (f *File) alphabet() []rune {
	seen := make(map[rune]bool)
	var out []rune
	for _, r := range "[]" + f.Symbols + f.Globals {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	return out
}

// globals lists the shared characters, branch symbols first.
func (f *File) globals() []rune {
	seen := make(map[rune]bool)
	var out []rune
	for _, r := range "[]" + f.Globals {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	return out
}

// exported returns the character exported as name.
func (f *File) exported(name string) (rune, bool) {
	for _, e := range f.Exports {
		if e.Name == name {
			return e.Symbol, true
		}
	}

	return 0, false
}
