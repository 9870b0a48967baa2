// SPDX-License-Identifier: MIT

package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lindenmayer/rules"
)

func TestCompile_DuplicateRules(t *testing.T) {
	cases := [][]string{
		{"A -> AB", "A -> CA"},
		{"C < A > B[C][D] -> AB", "C < A > B[C][D] -> CA"},
		{"A(x) : x > 1 -> B", "A(x) : x>1 -> C"},
	}
	for _, lines := range cases {
		_, err := rules.CompileText(lines)
		assert.ErrorIs(t, err, rules.ErrDuplicateRule, "%v", lines)
	}
}

func TestCompile_DistinctSignatures(t *testing.T) {
	_, err := rules.CompileText([]string{
		"A -> AB",
		"A(x) -> CA",
		"B < A -> C",
		"A > B -> D",
		"A(x) : x > 1 -> B",
		"A(x) : x > 2 -> B",
	})
	assert.NoError(t, err)
}

func TestCompile_ConditionalTextUsesNames(t *testing.T) {
	// Different parameter names render different canonical conditionals.
	_, err := rules.CompileText([]string{"A(x) : x > 1 -> B", "A(y) : y > 1 -> C"})
	assert.NoError(t, err)
}

func TestCompile_StochasticGroups(t *testing.T) {
	set, err := rules.CompileText([]string{
		"A -> AC",
		"P(0.5) | C -> A",
		"P(0.5) | C -> AB",
	})
	require.NoError(t, err)
	list := set.RulesFor('C')
	require.Len(t, list, 1)
	assert.True(t, list[0].Stochastic)
	require.Len(t, list[0].Outcomes, 2)
	assert.Equal(t, "A", list[0].ReplacementString(0))
	assert.Equal(t, "AB", list[0].ReplacementString(1))
	assert.Len(t, set.Rules(), 2)
}

func TestCompile_ProbabilitySums(t *testing.T) {
	_, err := rules.CompileText([]string{"P(0.5) | A > B -> AB", "P(0.5) | A > BC -> CA"})
	assert.ErrorIs(t, err, rules.ErrProbability)
	assert.Contains(t, err.Error(), "away from 1")

	_, err = rules.CompileText([]string{"P(0.3) | A -> B", "P(0.3) | A -> C", "P(0.4000001) | A -> D"})
	assert.NoError(t, err)

	_, err = rules.CompileText([]string{"P(0.3) | A -> B", "P(0.3) | A -> C"})
	assert.ErrorIs(t, err, rules.ErrProbability)
}

func TestCompile_OrderingAndScratch(t *testing.T) {
	set, err := rules.CompileText([]string{
		"A -> B",
		"A > A -> C",
		"A > ABCD -> F",
		"A > ABC -> E",
		"A > AB -> D",
		"X(a) < A(b, c) > Y(d) -> Z",
	})
	require.NoError(t, err)

	var order []string
	for _, r := range set.RulesFor('A') {
		order = append(order, r.ReplacementString(0))
	}
	assert.Equal(t, []string{"F", "E", "D", "Z", "C", "B"}, order)
	assert.Equal(t, 4, set.ScratchFor('A'))
	assert.Equal(t, 0, set.ScratchFor('Q'))
	assert.Equal(t, 4, set.MaxScratch())
}

func TestCompile_DeclarationOrderBreaksTies(t *testing.T) {
	set, err := rules.CompileText([]string{"A > A -> B", "A < A -> C"})
	require.NoError(t, err)
	list := set.RulesFor('A')
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ReplacementString(0))
	assert.Equal(t, "C", list[1].ReplacementString(0))
}

func TestCompile_Globals(t *testing.T) {
	a, err := rules.Parse("A -> B", rules.WithGlobals("g"))
	require.NoError(t, err)
	b, err := rules.Parse("B -> A")
	require.NoError(t, err)

	_, err = rules.Compile([]*rules.Rule{a, b})
	assert.ErrorIs(t, err, rules.ErrGlobalsMismatch)

	set, err := rules.Compile([]*rules.Rule{a}, rules.WithDeclaredGlobals("g"))
	require.NoError(t, err)
	assert.Equal(t, []string{"g"}, set.Globals())
}
