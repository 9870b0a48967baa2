// SPDX-License-Identifier: MIT

package rules_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lindenmayer/expr"
	"github.com/katalvlaran/lindenmayer/rules"
	"github.com/katalvlaran/lindenmayer/symbols"
)

func TestParse_Basic(t *testing.T) {
	r, err := rules.Parse("A -> AB")
	require.NoError(t, err)
	assert.Equal(t, int('A'), r.Core.Symbol)
	assert.Empty(t, r.Backward)
	assert.Empty(t, r.Forward)
	assert.Nil(t, r.Conditional)
	assert.False(t, r.Stochastic)
	require.Len(t, r.Outcomes, 1)
	assert.Equal(t, 1.0, r.Outcomes[0].Probability)
	assert.Equal(t, "AB", r.ReplacementString(0))
}

func TestParse_Probability(t *testing.T) {
	r, err := rules.Parse("P(0.5 - 0.3) | A -> AB")
	require.NoError(t, err)
	assert.True(t, r.Stochastic)
	assert.InDelta(t, 0.2, r.Probability(), 1e-12)

	r, err = rules.Parse("P(0.8 - (1/2)) | A < B > C(y) : y < global -> A", rules.WithGlobals("global"))
	require.NoError(t, err)
	assert.InDelta(t, 0.3, r.Probability(), 1e-12)
	assert.Equal(t, []string{"global", "y"}, r.ParamNames())
	require.NotNil(t, r.Conditional)
	assert.Equal(t, 1.0, r.Conditional.Eval([]float64{5, 2}))
	assert.Equal(t, 0.0, r.Conditional.Eval([]float64{1, 2}))
}

func TestParse_ContextsAndParameters(t *testing.T) {
	r, err := rules.Parse("C(x) < K(y) > A(z) -> D((timeToFruit - x) / (y -z))", rules.WithGlobals("timeToFruit"))
	require.NoError(t, err)
	assert.Equal(t, int('K'), r.Core.Symbol)
	require.Len(t, r.Backward, 1)
	require.Len(t, r.Forward, 1)
	assert.Equal(t, []string{"timeToFruit", "x", "y", "z"}, r.ParamNames())
	assert.Equal(t, 3, r.CapturedCount())

	gen := r.Outcomes[0].Replacement
	require.Len(t, gen, 1)
	require.Len(t, gen[0].Params, 1)
	g, x, y, z := 10.0, 2.0, 7.0, 3.0
	assert.Equal(t, (g-x)/(y-z), gen[0].Params[0].Eval([]float64{g, x, y, z}))
}

func TestParse_MultipleGenerators(t *testing.T) {
	r, err := rules.Parse("A(x, y) -> B(y + (y - x) * y)C(x)A(y, x)")
	require.NoError(t, err)
	gen := r.Outcomes[0].Replacement
	require.Len(t, gen, 3)
	assert.Equal(t, int('B'), gen[0].Symbol)
	assert.Equal(t, int('C'), gen[1].Symbol)
	assert.Equal(t, int('A'), gen[2].Symbol)
	assert.Equal(t, 2, gen[2].Arity())
	assert.Equal(t, 2.0+(2.0-1.0)*2.0, gen[0].Params[0].Eval([]float64{1, 2}))
	assert.Equal(t, 2.0, gen[2].Params[0].Eval([]float64{1, 2}))
}

func TestParse_Shapes(t *testing.T) {
	r, err := rules.Parse("A(x) -> A((x + 1))")
	require.NoError(t, err)
	assert.Equal(t, 4.0, r.Outcomes[0].Replacement[0].Params[0].Eval([]float64{3}))

	r, err = rules.Parse("A(x) ->")
	require.NoError(t, err)
	assert.Empty(t, r.Outcomes[0].Replacement)

	r, err = rules.Parse("- -> AB")
	require.NoError(t, err)
	assert.Equal(t, int('-'), r.Core.Symbol)

	r, err = rules.Parse("A -> F-[[X]+X]+F[+FX]-X")
	require.NoError(t, err)
	assert.Equal(t, "F-[[X]+X]+F[+FX]-X", r.ReplacementString(0))

	r, err = rules.Parse("A > B[C]D -> A")
	require.NoError(t, err)
	require.NotNil(t, r.ForwardPattern())
	assert.Equal(t, 5, r.ForwardPattern().Len())
	assert.Equal(t, 5, r.Specificity())
}

func TestParse_Strings(t *testing.T) {
	r, err := rules.Parse("A(x)<B(y) > C : x<y -> D(x+1) E")
	require.NoError(t, err)
	assert.Equal(t, "A(x) < B(y) > C", r.TargetString())
	assert.Equal(t, "A(x) < B(y) > C : (x < y) -> D((x + 1))E", r.String())
}

func TestParse_Remapper(t *testing.T) {
	tb := symbols.NewTable()
	require.NoError(t, tb.Bind('A', 0))
	require.NoError(t, tb.Bind('B', 1))
	r, err := rules.Parse("A -> BA", rules.WithRemapper(tb))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Core.Symbol)
	assert.Equal(t, "BA", r.ReplacementString(0))

	_, err = rules.Parse("A -> C", rules.WithRemapper(tb))
	require.Error(t, err)
	se, ok := expr.AsSyntaxError(err)
	require.True(t, ok)
	assert.Equal(t, 5, se.Start)
}

func TestParse_ErrorPositions(t *testing.T) {
	cases := []struct {
		text       string
		start, end int
		contains   string
	}{
		{"A(x) -> B(x, yeet)", 13, 17, "yeet"},
		{"A(x) -> B(x + (y)", 17, 17, "Unexpected end of input"},
		{"A(x, y) -> B(x + / * y)", 19, 20, "3 consecutive operators"},
		{"A(x, y) -> B(x + / y)", 17, 18, "Unsupported unary operator"},
		{"A(x, y) -> B(+)", 13, 14, "Stranded Operator"},
		{"A(x, y) -> B()", 12, 14, "Empty expression is not allowed"},
		{"A(x, y) -> B(x))", 15, 16, "Cannot use parentheses as a symbol"},
		{"A(x, y) : x >= e -> B(x)", 15, 16, `"e"`},
		{"AB -> C", 0, 3, "Multi match target symbols are not supported"},
		{"A[B] < C -> C", 1, 2, "Backward context cannot contain branch symbols"},
		{"A(x) < B(x) -> C", 9, 10, "attempted to declare the same parameter twice: 'x'"},
		{"P(0.5 + y) | A -> B", 8, 9, `"y"`},
		{"A B", 0, 3, "Rule must follow pattern"},
	}
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			_, err := rules.Parse(c.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, expr.ErrSyntax))
			se, ok := expr.AsSyntaxError(err)
			require.True(t, ok)
			assert.Equal(t, c.start, se.Start, se.Error())
			assert.Equal(t, c.end, se.End(), se.Error())
			assert.Equal(t, c.text, se.Text)
			assert.Contains(t, se.Error(), c.contains)
		})
	}
}
