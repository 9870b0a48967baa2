// SPDX-License-Identifier: MIT

package lsysfile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lindenmayer/lsysfile"
	"github.com/katalvlaran/lindenmayer/lsystem"
)

// run compiles set and renders the first n generations after the axiom.
func run(t *testing.T, set *lsysfile.LinkedSet, overrides map[string]string, n int, globals []float64) []string {
	t.Helper()
	sys, err := set.Compile(overrides, lsystem.WithWorkers(2), lsystem.WithBatchSize(2))
	require.NoError(t, err)

	axiom, err := set.Axiom()
	require.NoError(t, err)
	state := lsystem.State{Symbols: axiom, Seed: 7}
	remap := set.Remapper()

	out := make([]string, 0, n+1)
	out = append(out, axiom.Render(remap))
	for i := 0; i < n; i++ {
		state, err = sys.Step(context.Background(), state, globals)
		require.NoError(t, err)
		out = append(out, state.Symbols.Render(remap))
	}

	return out
}

func TestCompile_AcrossFiles(t *testing.T) {
	set := link(t, lsysfile.MapProvider{
		"root.lsystem": `
#axiom Y
#symbols XY
#include lib.lsyslib (Exported->X)
Y -> YX`,
		"lib.lsyslib": `
#symbols AB
#export Exported B
B -> AB`,
	}, "root.lsystem")

	assert.Equal(t, []string{"Y", "YX", "YXAX", "YXAXAAX", "YXAXAAXAAAX"}, run(t, set, nil, 4, nil))
}

func TestCompile_BranchesAcrossFiles(t *testing.T) {
	set := link(t, lsysfile.MapProvider{
		"root.lsystem": `
#axiom Y
#symbols XY
#include lib.lsyslib (Node->X)
Y -> Y[X]`,
		"lib.lsyslib": `
#symbols AB
#export Node B
B -> [A]B`,
	}, "root.lsystem")

	assert.Equal(t, []string{
		"Y",
		"Y[X]",
		"Y[X][[A]X]",
		"Y[X][[A]X][[A][A]X]",
	}, run(t, set, nil, 3, nil))
}

func TestCompile_MatchesRestrictsContext(t *testing.T) {
	set := link(t, lsysfile.MapProvider{
		"root.lsystem": `
#axiom AF[FB]
#symbols AFBCD
#matches AB
A > [B] -> C
A < B -> D`,
	}, "root.lsystem")

	assert.Equal(t, []string{"AF[FB]", "CF[FD]"}, run(t, set, nil, 1, nil))
}

func TestCompile_IgnoreSkipsSymbols(t *testing.T) {
	set := link(t, lsysfile.MapProvider{
		"root.lsystem": `
#axiom AxB
#symbols ABCx
#ignore x
A > B -> C`,
	}, "root.lsystem")

	assert.Equal(t, []string{"AxB", "CxB"}, run(t, set, nil, 1, nil))
}

func TestCompile_DefinesAndRuntimes(t *testing.T) {
	files := lsysfile.MapProvider{
		"root.lsystem": `
#axiom A(0)
#symbols A
#define step 2
#runtime limit 6
A(x) : x < limit -> A(x + step)`,
	}
	set := link(t, files, "root.lsystem")

	assert.Equal(t, []string{"limit"}, set.RuntimeNames())
	assert.Equal(t, []float64{6}, set.RuntimeDefaults())
	assert.Equal(t, []lsysfile.Define{{Name: "step", Replacement: "2"}}, set.Defines(nil))
	assert.Equal(t, []lsysfile.Define{{Name: "step", Replacement: "3"}},
		set.Defines(map[string]string{"step": "3", "unknown": "1"}))

	assert.Equal(t, []string{"A(0)", "A(2)", "A(4)", "A(6)", "A(6)"},
		run(t, set, nil, 4, set.RuntimeDefaults()))
	assert.Equal(t, []string{"A(0)", "A(3)", "A(6)", "A(6)"},
		run(t, set, map[string]string{"step": "3"}, 3, set.RuntimeDefaults()))
	assert.Equal(t, []string{"A(0)", "A(2)", "A(2)"},
		run(t, set, nil, 2, []float64{1}))
}

func TestCompile_DefineWholeWordOnly(t *testing.T) {
	set := link(t, lsysfile.MapProvider{
		"root.lsystem": `
#axiom A(1)
#symbols A
#define grow 1
A(grower) -> A(grower + grow)`,
	}, "root.lsystem")

	assert.Equal(t, []string{"A(1)", "A(2)", "A(3)"}, run(t, set, nil, 2, nil))
}

func TestCompile_RuleErrorCarriesLine(t *testing.T) {
	set := link(t, lsysfile.MapProvider{
		"root.lsystem": "#axiom A\n#symbols A\n\nA -> Q",
	}, "root.lsystem")

	_, err := set.Compile(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root.lsystem:4:")
}

func TestCompile_MissingGlobals(t *testing.T) {
	set := link(t, lsysfile.MapProvider{
		"root.lsystem": "#axiom A(0)\n#symbols A\n#runtime limit 6\nA(x) : x < limit -> A(x + 1)",
	}, "root.lsystem")
	sys, err := set.Compile(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"limit"}, sys.GlobalNames())

	axiom, err := set.Axiom()
	require.NoError(t, err)
	_, err = sys.Step(context.Background(), lsystem.State{Symbols: axiom}, nil)
	assert.ErrorIs(t, err, lsystem.ErrGlobalCount)
}

func TestAxiom_UndeclaredSymbol(t *testing.T) {
	set := link(t, lsysfile.MapProvider{"root.lsystem": "#axiom AQ\n#symbols A"}, "root.lsystem")
	_, err := set.Axiom()
	assert.Error(t, err)
}
