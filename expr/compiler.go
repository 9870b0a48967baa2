// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"sort"
)

// group is one parenthesised level of the token hierarchy.
type group struct {
	open, close Token
	items       []groupItem
}

// groupItem is either a plain token or a nested group.
type groupItem struct {
	token Token
	sub   *group
}

// entry is a working cell of the operator-resolution list: either a resolved
// operand (node != nil) or a pending operator token.
type entry struct {
	node  *Node
	token Token
	unary bool

	prev, next *entry
}

func (e *entry) isOperand() bool { return e.node != nil }

// Compile parses a fully parenthesised formula such as "(x + 2 * y)" into an
// Expression. variables fixes both the accepted names and the parameter
// order used by Eval.
//
// Steps:
//  1. Reject duplicate variable names.
//  2. Tokenize.
//  3. Build the parenthesis hierarchy; exactly one top-level group.
//  4. Compile each group bottom-up: unary operators, then binary tiers.
func Compile(text string, variables ...string) (*Expression, error) {
	// 1) Duplicate names would make parameter indexes ambiguous.
	seen := make(map[string]bool, len(variables))
	for _, v := range variables {
		if seen[v] {
			return nil, withText(errorAt(
				fmt.Sprintf("attempted to declare the same parameter twice: '%s'", v), 0, 0), text)
		}
		seen[v] = true
	}

	// 2) Lexing.
	tokens, err := Tokenize(text, variables)
	if err != nil {
		return nil, withText(err.(*SyntaxError), text)
	}

	// 3) Hierarchy.
	if len(tokens) == 0 || tokens[0].Type != TokenLeftParen {
		end := 0
		if len(tokens) > 0 {
			end = tokens[0].End
		}

		return nil, withText(errorAt("token string must begin with an open paren", 0, end), text)
	}
	root, next, serr := buildGroup(tokens, 0, len(text))
	if serr != nil {
		return nil, withText(serr, text)
	}
	if next < len(tokens) {
		return nil, withText(errorAt("unexpected tokens after the closing paren",
			tokens[next].Start, tokens[len(tokens)-1].End), text)
	}

	// 4) Tree.
	index := make(map[string]int, len(variables))
	for i, v := range variables {
		index[v] = i
	}
	node, serr := compileGroup(root, index)
	if serr != nil {
		return nil, withText(serr, text)
	}

	vars := make([]string, len(variables))
	copy(vars, variables)

	return &Expression{root: node, variables: vars}, nil
}

// MustCompile is Compile for formulas known to be valid; it panics on error.
func MustCompile(text string, variables ...string) *Expression {
	e, err := Compile(text, variables...)
	if err != nil {
		panic(err)
	}

	return e
}

func withText(e *SyntaxError, text string) *SyntaxError {
	e.Text = text

	return e
}

// buildGroup consumes tokens[at] (an open paren) through its matching close.
// It returns the group and the index of the first unconsumed token.
func buildGroup(tokens []Token, at, textLen int) (*group, int, *SyntaxError) {
	g := &group{open: tokens[at]}
	i := at + 1
	for i < len(tokens) {
		t := tokens[i]
		switch t.Type {
		case TokenLeftParen:
			sub, next, err := buildGroup(tokens, i, textLen)
			if err != nil {
				return nil, 0, err
			}
			g.items = append(g.items, groupItem{sub: sub})
			i = next
		case TokenRightParen:
			g.close = t

			return g, i + 1, nil
		default:
			g.items = append(g.items, groupItem{token: t})
			i++
		}
	}

	return nil, 0, errorAt("Unexpected end of input. Are you missing a parentheses?", textLen, textLen)
}

// compileGroup reduces one group to a single node.
func compileGroup(g *group, index map[string]int) (*Node, *SyntaxError) {
	if len(g.items) == 0 {
		return nil, errorAt("Empty expression is not allowed", g.open.Start, g.close.End)
	}

	// Build the working list; nested groups collapse to operand nodes first.
	var head, tail *entry
	push := func(e *entry) {
		if tail == nil {
			head = e
		} else {
			tail.next = e
			e.prev = tail
		}
		tail = e
	}

	var (
		unaries   []*entry
		operators []*entry
		run       = 1 // a group start behaves like a preceding operator
	)
	for _, it := range g.items {
		if it.sub != nil {
			n, err := compileGroup(it.sub, index)
			if err != nil {
				return nil, err
			}
			push(&entry{node: n})
			run = 0
			continue
		}

		t := it.token
		switch t.Type {
		case TokenConstant:
			push(&entry{node: &Node{Op: OpConstant, Value: t.Value}})
			run = 0
		case TokenVariable:
			push(&entry{node: &Node{Op: OpParameter, Param: index[t.Name]}})
			run = 0
		default:
			run++
			if run > 2 {
				return nil, errorAt(fmt.Sprintf("%d consecutive operators detected", run), t.Start, t.End)
			}
			e := &entry{token: t, unary: run == 2}
			push(e)
			if e.unary {
				unaries = append(unaries, e)
			} else {
				operators = append(operators, e)
			}
		}
	}

	// Unary operators bind to the operand on their right; innermost first.
	for i := len(unaries) - 1; i >= 0; i-- {
		u := unaries[i]
		operand := u.next
		if operand == nil || !operand.isOperand() {
			return nil, errorAt("Stranded Operator", u.token.Start, u.token.End)
		}
		var op OpCode
		switch u.token.Type {
		case TokenSubtract:
			op = OpNegate
		case TokenNot:
			op = OpNot
		default:
			return nil, errorAt("Unsupported unary operator", u.token.Start, u.token.End)
		}
		u.node = &Node{Op: op, Right: operand.node}
		unlink(operand, &head, &tail)
	}

	// Binary operators by ascending tier, ties left to right.
	sort.SliceStable(operators, func(a, b int) bool {
		return precedence[operators[a].token.Type] < precedence[operators[b].token.Type]
	})
	for _, o := range operators {
		if o.token.Type == TokenNot {
			return nil, errorAt("Invalid binary operator symbol", o.token.Start, o.token.End)
		}
		l, r := o.prev, o.next
		if l == nil || r == nil || !l.isOperand() || !r.isOperand() {
			return nil, errorAt("Stranded Operator", o.token.Start, o.token.End)
		}
		o.node = &Node{Op: binaryOps[o.token.Type], Left: l.node, Right: r.node}
		unlink(l, &head, &tail)
		unlink(r, &head, &tail)
	}

	if head != tail {
		return nil, errorAt("token string could not compile to one expression", g.open.Start, g.close.End)
	}

	return head.node, nil
}

func unlink(e *entry, head, tail **entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		*head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		*tail = e.prev
	}
	e.prev, e.next = nil, nil
}
