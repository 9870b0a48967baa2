// SPDX-License-Identifier: MIT

package symbols

import "fmt"

// BranchCache pairs every branch open symbol of a String with its close and
// answers context-match queries over that String. It is read-only after
// construction and safe for concurrent use.
type BranchCache struct {
	s       *String
	open    int
	close   int
	partner []int // partner[i] is the matching bracket index, -1 for non-brackets
}

// NewBranchCache scans s once with a stack of open positions.
func NewBranchCache(s *String, open, close int) (*BranchCache, error) {
	b := &BranchCache{s: s, open: open, close: close, partner: make([]int, s.Len())}
	var stack []int
	for i, sym := range s.Symbols {
		b.partner[i] = -1
		switch sym {
		case open:
			stack = append(stack, i)
		case close:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: too many closing branch symbols (index %d)", ErrUnbalancedBranches, i)
			}
			o := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			b.partner[i] = o
			b.partner[o] = i
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: too many opening branch symbols (index %d)", ErrUnbalancedBranches, stack[len(stack)-1])
	}

	return b, nil
}

// String returns the cached string.
func (b *BranchCache) String() *String { return b.s }

// OpenOf returns the open index paired with the close at closeIndex, or -1.
func (b *BranchCache) OpenOf(closeIndex int) int {
	if b.s.Symbols[closeIndex] != b.close {
		return -1
	}

	return b.partner[closeIndex]
}

// CloseOf returns the close index paired with the open at openIndex, or -1.
func (b *BranchCache) CloseOf(openIndex int) int {
	if b.s.Symbols[openIndex] != b.open {
		return -1
	}

	return b.partner[openIndex]
}

func (b *BranchCache) matches(m Matcher, t int) bool {
	return b.s.Symbols[t] == m.Symbol && b.s.Index[t].Length == m.Arity
}

// MatchBackward matches pattern against the symbols preceding anchor, walking
// leftwards. Ignored symbols and branch opens are skipped; a branch close
// jumps over its whole branch. On success mapping[k] is the target index
// bound to pattern[k].
func (b *BranchCache) MatchBackward(anchor int, pattern []Matcher, ignore Ignore) ([]int, bool) {
	mapping := make([]int, len(pattern))
	k := len(pattern) - 1
	t := anchor - 1
	for k >= 0 && t >= 0 {
		sym := b.s.Symbols[t]
		switch {
		case ignore.Has(sym) || sym == b.open:
			t--
		case sym == b.close:
			t = b.partner[t] - 1
		case b.matches(pattern[k], t):
			mapping[k] = t
			k--
			t--
		default:
			return nil, false
		}
	}
	if k >= 0 {
		return nil, false
	}

	return mapping, true
}

// branchEvent records the target parent in effect when a branch opened.
type branchEvent struct {
	parent int
	open   int
}

// MatchForward matches a branching forward context starting after origin.
// Siblings must appear in the target in the same order as in the pattern.
// The result maps every pattern node to its target index; branch entries map
// to -1.
//
// Steps:
//  1. Bind the origin to the pattern's virtual root and advance the DFS cursor.
//  2. Walk the target; opens push the current parent, closes pop it.
//  3. For a symbol, rewind the cursor to a node sharing the target parent's
//     match, then compare symbol, arity and parent.
//  4. A mismatch abandons the innermost target branch; outside any branch it fails.
func (b *BranchCache) MatchForward(origin int, p *Pattern, ignore Ignore) ([]int, bool) {
	mapping := make([]int, p.Len())
	for i := range mapping {
		mapping[i] = -1
	}

	// 1) Origin ↔ virtual root.
	targetToPattern := map[int]int{origin: RootParent}
	cursor := p.DFS()
	if !cursor.Next() {
		return mapping, true
	}

	var stack []branchEvent
	currentParent := origin
	for t := origin + 1; t < b.s.Len(); t++ {
		sym := b.s.Symbols[t]

		// 2) Structure.
		switch {
		case ignore.Has(sym):
			continue
		case sym == b.open:
			stack = append(stack, branchEvent{parent: currentParent, open: t})
			continue
		case sym == b.close:
			if len(stack) == 0 {
				return nil, false
			}
			currentParent = stack[len(stack)-1].parent
			stack = stack[:len(stack)-1]
			continue
		}

		// 3) Symbol.
		parentInMatch := targetToPattern[currentParent]
		if rewound, ok := cursor.FindPreviousWithParent(parentInMatch); ok {
			cursor = rewound
		}
		node := cursor.Current()
		nodeParent := p.Parent(node)
		if b.matches(p.At(node), t) && (nodeParent == RootParent || nodeParent == parentInMatch) {
			targetToPattern[t] = node
			mapping[node] = t
			currentParent = t
			if !cursor.Next() {
				return mapping, true
			}
			continue
		}

		// 4) Skip the rest of this target branch.
		if len(stack) == 0 {
			return nil, false
		}
		ev := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		currentParent = ev.parent
		t = b.partner[ev.open]
	}

	return nil, false
}

// MatchForwardUnordered matches a branching forward context where the
// children of each pattern node may bind to the target's child branches in
// any order, each target child used at most once.
func (b *BranchCache) MatchForwardUnordered(origin int, p *Pattern, ignore Ignore) ([]int, bool) {
	mapping := make([]int, p.Len())
	for i := range mapping {
		mapping[i] = -1
	}
	if !b.matchChildren(RootParent, origin, p, ignore, mapping) {
		return nil, false
	}

	return mapping, true
}

func (b *BranchCache) matchChildren(node, target int, p *Pattern, ignore Ignore, mapping []int) bool {
	want := p.Children(node)
	if len(want) == 0 {
		return true
	}
	have := b.targetChildren(target+1, ignore)
	used := make([]bool, len(have))

	var assign func(k int) bool
	assign = func(k int) bool {
		if k == len(want) {
			return true
		}
		pn := want[k]
		for i, t := range have {
			if used[i] || !b.matches(p.At(pn), t) {
				continue
			}
			used[i] = true
			mapping[pn] = t
			if b.matchChildren(pn, t, p, ignore, mapping) && assign(k+1) {
				return true
			}
			used[i] = false
			mapping[pn] = -1
		}

		return false
	}

	return assign(0)
}

// targetChildren lists the structural children reachable from index from:
// the head of every branch opening there (recursively for nested opens)
// followed by the continuation symbol, if any.
func (b *BranchCache) targetChildren(from int, ignore Ignore) []int {
	var out []int
	for i := from; i < b.s.Len(); i++ {
		sym := b.s.Symbols[i]
		switch {
		case ignore.Has(sym):
			continue
		case sym == b.open:
			out = append(out, b.targetChildren(i+1, ignore)...)
			i = b.partner[i]
		case sym == b.close:
			return out
		default:
			return append(out, i)
		}
	}

	return out
}
