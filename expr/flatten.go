// SPDX-License-Identifier: MIT

package expr

// OperatorDef is one node of a flattened expression. LHS and RHS are indexes
// relative to the start of the expression's own slice, -1 when unused.
type OperatorDef struct {
	Op    OpCode
	Value float64
	Param int
	LHS   int
	RHS   int
}

// Flatten appends a breadth-first layout of the expression to into and
// returns the extended slice. The root lands at the old len(into); every
// child index is strictly greater than its parent's.
func (e *Expression) Flatten(into []OperatorDef) []OperatorDef {
	base := len(into)
	queue := []*Node{e.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		def := OperatorDef{Op: n.Op, Value: n.Value, Param: n.Param, LHS: -1, RHS: -1}
		// Position the next free slot will take once every queued node is written.
		next := (len(into) - base) + len(queue) + 1
		switch {
		case n.Op.IsUnary():
			def.RHS = next
			queue = append(queue, n.Right)
		case n.Op.IsBinary():
			def.LHS = next
			def.RHS = next + 1
			queue = append(queue, n.Left, n.Right)
		}
		into = append(into, def)
	}

	return into
}

// Size returns the number of OperatorDefs Flatten appends.
func (e *Expression) Size() int { return e.root.size() }

func (n *Node) size() int {
	switch {
	case n.Op.IsUnary():
		return 1 + n.Right.size()
	case n.Op.IsBinary():
		return 1 + n.Left.size() + n.Right.size()
	default:
		return 1
	}
}

// EvalFlat evaluates a slice produced by Flatten; defs[0] is the root.
func EvalFlat(defs []OperatorDef, params []float64) float64 {
	return evalFlatAt(defs, 0, params)
}

func evalFlatAt(defs []OperatorDef, i int, params []float64) float64 {
	d := defs[i]
	switch {
	case d.Op == OpConstant:
		return d.Value
	case d.Op == OpParameter:
		return params[d.Param]
	case d.Op.IsUnary():
		return apply(d.Op, 0, 0, evalFlatAt(defs, d.RHS, params))
	default:
		return apply(d.Op, 0, evalFlatAt(defs, d.LHS, params), evalFlatAt(defs, d.RHS, params))
	}
}
