// SPDX-License-Identifier: MIT

package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lindenmayer/expr"
)

func TestFlatten_BreadthFirstLayout(t *testing.T) {
	e := expr.MustCompile("(a + b * -c)", "a", "b", "c")
	defs := e.Flatten(nil)
	require.Len(t, defs, e.Size())

	// + ; a, * ; b, neg ; c
	assert.Equal(t, expr.OpAdd, defs[0].Op)
	assert.Equal(t, 1, defs[0].LHS)
	assert.Equal(t, 2, defs[0].RHS)
	assert.Equal(t, expr.OpParameter, defs[1].Op)
	assert.Equal(t, expr.OpMultiply, defs[2].Op)
	assert.Equal(t, 3, defs[2].LHS)
	assert.Equal(t, 4, defs[2].RHS)
	assert.Equal(t, expr.OpNegate, defs[4].Op)
	assert.Equal(t, -1, defs[4].LHS)
	assert.Equal(t, 5, defs[4].RHS)
	assert.Equal(t, 2, defs[5].Param)

	for i, d := range defs {
		if d.LHS >= 0 {
			assert.Greater(t, d.LHS, i)
		}
		if d.RHS >= 0 {
			assert.Greater(t, d.RHS, i)
		}
	}
}

func TestFlatten_AppendsRelativeToOwnStart(t *testing.T) {
	first := expr.MustCompile("(1 + 2)")
	second := expr.MustCompile("(x * (y - 1))", "x", "y")

	buf := first.Flatten(nil)
	start := len(buf)
	buf = second.Flatten(buf)

	params := []float64{4, 3}
	assert.Equal(t, 3.0, expr.EvalFlat(buf[:start], nil))
	assert.Equal(t, second.Eval(params), expr.EvalFlat(buf[start:], params))
}

func TestEvalFlat_MatchesTree(t *testing.T) {
	texts := []string{
		"(2^pow + add)",
		"(!(pow > 1) || add % 3 == 1)",
		"(-pow * -(add - 2) / 4)",
	}
	inputs := [][]float64{{0, 1}, {2, 7}, {0.5, 10}, {-3, 4}}
	for _, text := range texts {
		e := expr.MustCompile(text, "pow", "add")
		defs := e.Flatten(nil)
		for _, in := range inputs {
			assert.Equal(t, e.Eval(in), expr.EvalFlat(defs, in), text)
		}
	}
}
