// SPDX-License-Identifier: MIT

package symbols

import "fmt"

// Parent markers in Pattern.Parent.
const (
	// RootParent marks nodes attached directly to the match origin.
	RootParent = -1
	// BracketNode marks the branch open/close entries, which are not graph nodes.
	BracketNode = -2
)

// Pattern is a forward context compiled into a tree. Entries keep their
// position in the source sequence; branch symbols stay in place but are not
// graph nodes. A branch opening directly inside another branch hangs off the
// same parent, so "A[[E]B]" gives E and B the parent A.
type Pattern struct {
	elems         []Matcher
	parent        []int
	children      [][]int
	roots         []int
	indexInParent []int
	nodes         int
}

// NewPattern builds the tree for elems, where open and close are the branch
// symbol codes.
//
// Steps:
//  1. Walk elems keeping the current parent; an open pushes it, a close pops it.
//  2. Every other entry takes the current parent and becomes the new current.
//  3. Record children lists (ascending) and each node's index among its siblings.
func NewPattern(elems []Matcher, open, close int) (*Pattern, error) {
	p := &Pattern{
		elems:         append([]Matcher(nil), elems...),
		parent:        make([]int, len(elems)),
		children:      make([][]int, len(elems)),
		indexInParent: make([]int, len(elems)),
	}

	// 1-2) Parent assignment.
	current := RootParent
	var stack []int
	for i, m := range elems {
		switch m.Symbol {
		case open:
			stack = append(stack, current)
			p.parent[i] = BracketNode
		case close:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: too many closing branch symbols in pattern", ErrUnbalancedBranches)
			}
			current = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.parent[i] = BracketNode
		default:
			p.parent[i] = current
			current = i
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: too many opening branch symbols in pattern", ErrUnbalancedBranches)
	}

	// 3) Children, in source order.
	for i, par := range p.parent {
		p.indexInParent[i] = -1
		switch par {
		case BracketNode:
			continue
		case RootParent:
			p.indexInParent[i] = len(p.roots)
			p.roots = append(p.roots, i)
		default:
			p.indexInParent[i] = len(p.children[par])
			p.children[par] = append(p.children[par], i)
		}
		p.nodes++
	}

	return p, nil
}

// Len returns the number of entries, branch symbols included.
func (p *Pattern) Len() int { return len(p.elems) }

// NodeCount returns the number of graph nodes (entries minus branch symbols).
func (p *Pattern) NodeCount() int { return p.nodes }

// At returns entry i.
func (p *Pattern) At(i int) Matcher { return p.elems[i] }

// Parent returns the parent of entry i: a node index, RootParent or BracketNode.
func (p *Pattern) Parent(i int) int { return p.parent[i] }

// Children returns the children of node i in source order; RootParent yields
// the roots.
func (p *Pattern) Children(i int) []int {
	if i == RootParent {
		return p.roots
	}

	return p.children[i]
}

// IsNode reports whether entry i is a graph node.
func (p *Pattern) IsNode(i int) bool { return p.parent[i] != BracketNode }

// DFS returns a depth-first cursor positioned on the virtual origin.
func (p *Pattern) DFS() DFS { return DFS{p: p, current: RootParent} }

// DFS is an immutable-by-value pre-order cursor over a Pattern. The value
// RootParent as Current means "before the first node".
type DFS struct {
	p       *Pattern
	current int
}

// Current returns the node under the cursor.
func (d DFS) Current() int { return d.current }

// Parent returns the parent of the current node.
func (d DFS) Parent() int {
	if d.current == RootParent {
		return BracketNode
	}

	return d.p.parent[d.current]
}

// Next advances to the pre-order successor.
func (d *DFS) Next() bool {
	node := d.current
	kids := d.p.Children(node)
	at := 0
	for at >= len(kids) && node >= 0 {
		at = d.p.indexInParent[node] + 1
		node = d.p.parent[node]
		kids = d.p.Children(node)
	}
	if at < len(kids) {
		d.current = kids[at]

		return true
	}

	return false
}

// Previous steps to the pre-order predecessor: the last leaf of the previous
// sibling, or else the parent. It may land on the virtual origin.
func (d *DFS) Previous() bool {
	node := d.current
	if node < 0 {
		return false
	}
	at := d.p.indexInParent[node] - 1
	node = d.p.parent[node]
	for at >= 0 {
		kids := d.p.Children(node)
		node = kids[at]
		at = len(d.p.Children(node)) - 1
	}
	d.current = node

	return true
}

// FindPreviousWithParent walks backwards from the cursor (itself included)
// to the nearest node whose parent is parent. The receiver is not moved.
func (d DFS) FindPreviousWithParent(parent int) (DFS, bool) {
	found := d
	for {
		if found.current >= 0 && found.Parent() == parent {
			return found, true
		}
		if !found.Previous() || found.current < 0 {
			return d, false
		}
	}
}
