// SPDX-License-Identifier: MIT

package expr

import (
	"math"
	"strconv"
)

// OpCode identifies the operation performed by a Node or OperatorDef.
type OpCode int

const (
	OpConstant OpCode = iota
	OpParameter
	OpNegate
	OpNot
	OpMultiply
	OpDivide
	OpRemainder
	OpExponent
	OpAdd
	OpSubtract
	OpGreaterThan
	OpLessThan
	OpGreaterOrEqual
	OpLessOrEqual
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
)

// IsUnary reports whether op takes a single (right-hand) operand.
func (op OpCode) IsUnary() bool { return op == OpNegate || op == OpNot }

// IsBinary reports whether op takes two operands.
func (op OpCode) IsBinary() bool { return op >= OpMultiply }

var opSymbols = map[OpCode]string{
	OpNegate:         "-",
	OpNot:            "!",
	OpMultiply:       "*",
	OpDivide:         "/",
	OpRemainder:      "%",
	OpExponent:       "^",
	OpAdd:            "+",
	OpSubtract:       "-",
	OpGreaterThan:    ">",
	OpLessThan:       "<",
	OpGreaterOrEqual: ">=",
	OpLessOrEqual:    "<=",
	OpEqual:          "==",
	OpNotEqual:       "!=",
	OpAnd:            "&&",
	OpOr:             "||",
}

var binaryOps = map[TokenType]OpCode{
	TokenMultiply:       OpMultiply,
	TokenDivide:         OpDivide,
	TokenRemainder:      OpRemainder,
	TokenExponent:       OpExponent,
	TokenAdd:            OpAdd,
	TokenSubtract:       OpSubtract,
	TokenGreaterThan:    OpGreaterThan,
	TokenLessThan:       OpLessThan,
	TokenGreaterOrEqual: OpGreaterOrEqual,
	TokenLessOrEqual:    OpLessOrEqual,
	TokenEqual:          OpEqual,
	TokenNotEqual:       OpNotEqual,
	TokenAnd:            OpAnd,
	TokenOr:             OpOr,
}

// Node is one vertex of a compiled expression tree. Unary nodes keep their
// operand in Right.
type Node struct {
	Op    OpCode
	Value float64 // OpConstant
	Param int     // OpParameter: index into the parameter slice
	Left  *Node
	Right *Node
}

func truthy(v float64) bool { return v > 0.1 }

func boolValue(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

// apply computes a single operator over already-evaluated operands.
func apply(op OpCode, value, l, r float64) float64 {
	switch op {
	case OpConstant:
		return value
	case OpNegate:
		return -r
	case OpNot:
		return boolValue(!truthy(r))
	case OpMultiply:
		return l * r
	case OpDivide:
		return l / r
	case OpRemainder:
		return math.Mod(l, r)
	case OpExponent:
		return math.Pow(l, r)
	case OpAdd:
		return l + r
	case OpSubtract:
		return l - r
	case OpGreaterThan:
		return boolValue(l > r)
	case OpLessThan:
		return boolValue(l < r)
	case OpGreaterOrEqual:
		return boolValue(l >= r)
	case OpLessOrEqual:
		return boolValue(l <= r)
	case OpEqual:
		return boolValue(l == r)
	case OpNotEqual:
		return boolValue(l != r)
	case OpAnd:
		return boolValue(truthy(l) && truthy(r))
	case OpOr:
		return l + r
	}

	return math.NaN()
}

// Eval evaluates the subtree rooted at n.
func (n *Node) Eval(params []float64) float64 {
	switch {
	case n.Op == OpConstant:
		return n.Value
	case n.Op == OpParameter:
		return params[n.Param]
	case n.Op.IsUnary():
		return apply(n.Op, 0, 0, n.Right.Eval(params))
	default:
		return apply(n.Op, 0, n.Left.Eval(params), n.Right.Eval(params))
	}
}

func (n *Node) write(buf []byte, names []string) []byte {
	switch {
	case n.Op == OpConstant:
		return strconv.AppendFloat(buf, n.Value, 'g', -1, 64)
	case n.Op == OpParameter:
		if n.Param < len(names) {
			return append(buf, names[n.Param]...)
		}

		return append(append(buf, '$'), strconv.Itoa(n.Param)...)
	case n.Op.IsUnary():
		buf = append(buf, opSymbols[n.Op]...)

		return n.Right.write(buf, names)
	default:
		buf = append(buf, '(')
		buf = n.Left.write(buf, names)
		buf = append(buf, ' ')
		buf = append(buf, opSymbols[n.Op]...)
		buf = append(buf, ' ')
		buf = n.Right.write(buf, names)

		return append(buf, ')')
	}
}

func (n *Node) constant() bool {
	switch {
	case n.Op == OpConstant:
		return true
	case n.Op == OpParameter:
		return false
	case n.Op.IsUnary():
		return n.Right.constant()
	default:
		return n.Left.constant() && n.Right.constant()
	}
}

// Expression is a compiled formula bound to an ordered list of variable names.
// It is immutable and safe for concurrent Eval calls.
type Expression struct {
	root      *Node
	variables []string
}

// Root exposes the tree root.
func (e *Expression) Root() *Node { return e.root }

// Variables returns a copy of the declared variable names in parameter order.
func (e *Expression) Variables() []string {
	out := make([]string, len(e.variables))
	copy(out, e.variables)

	return out
}

// Eval evaluates the expression. params[i] is the value of Variables()[i].
func (e *Expression) Eval(params []float64) float64 { return e.root.Eval(params) }

// IsConstant reports whether the expression references no variables.
func (e *Expression) IsConstant() bool { return e.root.constant() }

// String renders the canonical fully-parenthesised text. Two expressions over
// the same variable names render identically iff their trees are identical.
func (e *Expression) String() string {
	return string(e.root.write(nil, e.variables))
}
