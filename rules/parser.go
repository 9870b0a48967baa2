// SPDX-License-Identifier: MIT

package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/katalvlaran/lindenmayer/expr"
	"github.com/katalvlaran/lindenmayer/symbols"
)

var (
	probabilityPrefix = regexp.MustCompile(`^\s*P\s*(\([^:|]+\))\s*\|`)
	parameterName     = regexp.MustCompile(`^\w+$`)
)

// Parse reads one rule:
//
//	[P(<prob>) |] [<backward> <] <core>[(params)] [> <forward>] [: <cond>] -> [<replacement>]
//
// Every syntax problem is an *expr.SyntaxError positioned in text.
func Parse(text string, opts ...Option) (*Rule, error) {
	p := &ruleParser{text: text, opts: gatherOptions(opts)}
	r, err := p.parse()
	if err != nil {
		return nil, err
	}

	return r, nil
}

// ruleParser holds the full rule text so every nested error lands in its
// coordinates.
type ruleParser struct {
	text string
	opts Options

	backwardNames []nameAt
	coreNames     []nameAt
	forwardNames  []nameAt
}

// nameAt is a parameter name with its start offset in the rule text.
type nameAt struct {
	name  string
	start int
}

func (p *ruleParser) errorAt(description string, start, end int) error {
	se := expr.NewSyntaxError(description, start, end)
	se.Reposition(0, p.text)

	return se
}

// reposition moves an expression error from the wrapped "(" + sub + ")" text
// into rule coordinates, given the offset of the wrapper's "(".
func (p *ruleParser) reposition(err error, offset int) error {
	se, ok := expr.AsSyntaxError(err)
	if !ok {
		return err
	}
	se.Reposition(offset, p.text)

	return se
}

// parse runs the steps:
//  1. split on "->";
//  2. optional P(...) | prefix, evaluated once;
//  3. optional ": conditional";
//  4. "backward < core > forward";
//  5. parameter names: globals, backward, core, forward;
//  6. conditional, replacement, matcher structures.
func (p *ruleParser) parse() (*Rule, error) {
	text := p.text

	// 1) Central delimiter.
	arrow := strings.Index(text, "->")
	if arrow < 0 {
		return nil, p.errorAt("Rule must follow pattern: <Target symbols> -> <replacement symbols>", 0, len(text))
	}

	rule := &Rule{
		Group:    p.opts.Group,
		globals:  append([]string(nil), p.opts.Globals...),
		source:   text,
		remapper: p.opts.Remapper,
	}
	probability := 1.0

	// 2) Probability.
	cursor := 0
	if m := probabilityPrefix.FindStringSubmatchIndex(text[:arrow]); m != nil {
		e, err := expr.Compile(text[m[2]:m[3]])
		if err != nil {
			return nil, p.reposition(err, m[2])
		}
		probability = e.Eval(nil)
		rule.Stochastic = true
		cursor = m[1]
	}

	// 3) Conditional.
	contextEnd, condStart := arrow, -1
	if colon := strings.IndexByte(text[cursor:arrow], ':'); colon >= 0 {
		contextEnd = cursor + colon
		condStart = contextEnd + 1
	}

	// 4) Contexts.
	if err := p.parseContexts(rule, cursor, contextEnd); err != nil {
		return nil, err
	}

	// 5) Names.
	names, err := p.collectNames()
	if err != nil {
		return nil, err
	}
	rule.params = names

	// 6) Conditional, replacement, matchers.
	if condStart >= 0 {
		cond, err := expr.Compile("("+text[condStart:arrow]+")", names...)
		if err != nil {
			return nil, p.reposition(err, condStart-1)
		}
		rule.Conditional = cond
		rule.ConditionalText = cond.String()
	}

	replacement, err := p.parseReplacement(arrow+2, len(text), names)
	if err != nil {
		return nil, err
	}
	rule.Outcomes = []Outcome{{Probability: probability, Replacement: replacement}}

	for _, s := range rule.Backward {
		rule.backward = append(rule.backward, s.Matcher())
	}
	if len(rule.Forward) > 0 {
		ms := make([]symbols.Matcher, len(rule.Forward))
		for i, s := range rule.Forward {
			ms[i] = s.Matcher()
		}
		pattern, perr := symbols.NewPattern(ms, p.opts.BranchOpen, p.opts.BranchClose)
		if perr != nil {
			return nil, p.errorAt(fmt.Sprintf("malformed forward context: %v", perr), cursor, contextEnd)
		}
		rule.forward = pattern
	}

	return rule, nil
}

func (p *ruleParser) parseContexts(rule *Rule, start, end int) error {
	segment := p.text[start:end]
	if strings.Count(segment, "<") > 1 || strings.Count(segment, ">") > 1 {
		return p.errorAt("at most one backward and one forward context are allowed", start, end)
	}

	coreStart, coreEnd := start, end
	lt := strings.IndexByte(segment, '<')
	gt := strings.IndexByte(segment, '>')
	if lt >= 0 && gt >= 0 && gt < lt {
		return p.errorAt("forward context must follow the backward context", start, end)
	}
	if lt >= 0 {
		coreStart = start + lt + 1
		backward, names, err := p.parseInputs(start, start+lt, true)
		if err != nil {
			return err
		}
		rule.Backward, p.backwardNames = backward, names
	}
	if gt >= 0 {
		coreEnd = start + gt
		forward, names, err := p.parseInputs(start+gt+1, end, false)
		if err != nil {
			return err
		}
		rule.Forward, p.forwardNames = forward, names
	}

	core, names, err := p.parseInputs(coreStart, coreEnd, false)
	if err != nil {
		return err
	}
	p.coreNames = names
	switch len(core) {
	case 0:
		return p.errorAt("Must specify a single target symbol", coreStart, coreEnd)
	case 1:
		rule.Core = core[0]
	default:
		return p.errorAt("Multi match target symbols are not supported. Convert this rule into multiple context-sensitive rules.", coreStart, coreEnd)
	}

	return nil
}

// collectNames lists globals then every captured name in backward, core,
// forward order, rejecting a duplicate at its second declaration.
func (p *ruleParser) collectNames() ([]string, error) {
	names := append([]string(nil), p.opts.Globals...)
	seen := make(map[string]bool, len(names))
	for _, g := range names {
		if seen[g] {
			return nil, p.errorAt(fmt.Sprintf("attempted to declare the same parameter twice: '%s'", g), 0, 0)
		}
		seen[g] = true
	}

	for _, list := range [][]nameAt{p.backwardNames, p.coreNames, p.forwardNames} {
		for _, n := range list {
			if seen[n.name] {
				return nil, p.errorAt(
					fmt.Sprintf("attempted to declare the same parameter twice: '%s'", n.name), n.start, n.start+len(n.name))
			}
			seen[n.name] = true
			names = append(names, n.name)
		}
	}

	return names, nil
}

// parseInputs reads matcher symbols such as "B(x, y)E(x)[C]" from
// text[start:end].
func (p *ruleParser) parseInputs(start, end int, backward bool) ([]InputSymbol, []nameAt, error) {
	var (
		out   []InputSymbol
		names []nameAt
	)
	i := start
	for i < end {
		r, w := utf8.DecodeRuneInString(p.text[i:])
		if unicode.IsSpace(r) {
			i += w
			continue
		}
		if r == '(' || r == ')' {
			return nil, nil, p.errorAt("Cannot use parentheses as a symbol", i, i+w)
		}
		code, err := p.opts.Remapper.Symbol(r)
		if err != nil {
			return nil, nil, p.errorAt(fmt.Sprintf("error when remapping a symbol '%c': %v", r, err), i, i+w)
		}
		if backward && (code == p.opts.BranchOpen || code == p.opts.BranchClose) {
			return nil, nil, p.errorAt("Backward context cannot contain branch symbols", i, i+w)
		}
		i += w

		sym := InputSymbol{Symbol: code}
		if i < end && p.text[i] == '(' {
			closing := strings.IndexByte(p.text[i:end], ')')
			if closing < 0 {
				return nil, nil, p.errorAt("Unexpected end of input. Are you missing a parentheses?", end, end)
			}
			argStart := i + 1
			inner := p.text[argStart : i+closing]
			if strings.TrimSpace(inner) == "" {
				inner = ""
			}
			for _, part := range splitNonEmpty(inner) {
				trimmed := strings.TrimSpace(part)
				at := argStart + strings.Index(part, trimmed)
				if !parameterName.MatchString(trimmed) {
					return nil, nil, p.errorAt(fmt.Sprintf("invalid parameter name %q", trimmed), at, at+len(trimmed))
				}
				sym.Params = append(sym.Params, trimmed)
				names = append(names, nameAt{name: trimmed, start: at})
				argStart += len(part) + 1
			}
			i += closing + 1
		}
		out = append(out, sym)
	}

	return out, names, nil
}

// parseReplacement reads generators such as "B(x + 1, y)[C]" from
// text[start:end]. Each parameter is compiled as "(" + arg + ")".
func (p *ruleParser) parseReplacement(start, end int, names []string) ([]Generator, error) {
	var out []Generator
	i := skipSpace(p.text, start, end)
	for i < end {
		r, w := utf8.DecodeRuneInString(p.text[i:])
		if r == '(' || r == ')' {
			return nil, p.errorAt("Cannot use parentheses as a symbol", i, i+w)
		}
		code, err := p.opts.Remapper.Symbol(r)
		if err != nil {
			return nil, p.errorAt(fmt.Sprintf("error when remapping a symbol '%c': %v", r, err), i, i+w)
		}
		gen := Generator{Symbol: code}
		i = skipSpace(p.text, i+w, end)

		if i < end && p.text[i] == '(' {
			for {
				// i sits on '(' or ','.
				argStart := i + 1
				depth := 0
				j := argStart
				for ; j < end; j++ {
					c := p.text[j]
					if c == '(' {
						depth++
					} else if c == ')' {
						depth--
						if depth < 0 {
							break
						}
					} else if c == ',' && depth == 0 {
						break
					}
				}
				if j >= end {
					return nil, p.errorAt("Unexpected end of input. Are you missing a parentheses?", end, end)
				}
				e, cerr := expr.Compile("("+p.text[argStart:j]+")", names...)
				if cerr != nil {
					return nil, p.reposition(cerr, argStart-1)
				}
				gen.Params = append(gen.Params, e)
				i = j
				if p.text[j] == ')' {
					break
				}
			}
			i = skipSpace(p.text, i+1, end)
		}
		out = append(out, gen)
	}

	return out, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}

func skipSpace(text string, i, end int) int {
	for i < end {
		r, w := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += w
	}

	return i
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
