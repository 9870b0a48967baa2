// SPDX-License-Identifier: MIT

package lsysfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lindenmayer/expr"
	"github.com/katalvlaran/lindenmayer/lsysfile"
)

func TestParse_OriginFile(t *testing.T) {
	f, err := lsysfile.Parse("root.lsystem", `
#axiom /(20)S(1)R(0)
#iterations 1000
#symbols ZXCQWE/SRABCK
#symbols Lx
#global ZXC
#ignore QWE
#define compileTime ABC
#runtime runTimeParam 92.4
## comment
##line2
#include std.lsyslib (Key->K) (Segment->L) (Signal->x)
#include stdNoRemap.lsyslib
A -> AB`)
	require.NoError(t, err)

	assert.False(t, f.Library)
	assert.Equal(t, "/(20)S(1)R(0)", f.Axiom)
	assert.Equal(t, 1000, f.Iterations)
	assert.Equal(t, "ZXCQWE/SRABCKLx", f.Symbols)
	assert.Equal(t, "ZXC", f.Globals)
	assert.Equal(t, "QWE", f.Ignore)
	assert.False(t, f.HasMatches())
	assert.Equal(t, []lsysfile.Define{{Name: "compileTime", Replacement: "ABC"}}, f.Defines)
	assert.Equal(t, []lsysfile.Runtime{{Name: "runTimeParam", Default: 92.4}}, f.Runtimes)

	require.Len(t, f.Includes, 2)
	assert.Equal(t, lsysfile.Include{
		Path: "std.lsyslib",
		Imports: []lsysfile.Import{
			{Name: "Key", Symbol: 'K'},
			{Name: "Segment", Symbol: 'L'},
			{Name: "Signal", Symbol: 'x'},
		},
	}, f.Includes[0])
	assert.Equal(t, "stdNoRemap.lsyslib", f.Includes[1].Path)
	assert.Empty(t, f.Includes[1].Imports)

	assert.Equal(t, []lsysfile.RuleLine{{Text: "A -> AB", Line: 14}}, f.Rules)
}

func TestParse_LibraryFile(t *testing.T) {
	f, err := lsysfile.Parse("lib/root.lsyslib", `
#export Key W
#export Signal O
#symbols ZXCQWEABCKLxO
#matches AB
#include std.lsyslib (Key->K)
A -> AB`)
	require.NoError(t, err)

	assert.True(t, f.Library)
	assert.Equal(t, -1, f.Iterations)
	assert.Equal(t, []lsysfile.Export{{Name: "Key", Symbol: 'W'}, {Name: "Signal", Symbol: 'O'}}, f.Exports)
	assert.True(t, f.HasMatches())
	assert.Equal(t, "AB", f.Matches)
	require.Len(t, f.Rules, 1)
}

func TestParse_DirectiveErrors(t *testing.T) {
	cases := []struct {
		path       string
		line       string
		start, end int
		contains   string
	}{
		{"a.lsyslib", "#axiom A", 1, 6, "axiom cannot be defined in a library file"},
		{"a.lsyslib", "#iterations 3", 1, 11, "iterations cannot be defined in a library file"},
		{"a.lsystem", "#iterations many", 12, 16, "iterations must be an integer"},
		{"a.lsystem", "#runtime speed", 9, 14, "runtime directive requires 2 parameters"},
		{"a.lsystem", "#runtime speed fast", 15, 19, "runtime parameter must default to a number"},
		{"a.lsystem", "#export Key W", 1, 7, "export can only be defined in a library file"},
		{"a.lsyslib", "#export Key WW", 8, 14, "export directive requires a name and a single symbol"},
		{"a.lsystem", "#frobnicate x", 1, 11, `unrecognized directive name "frobnicate"`},
		{"a.lsystem", "#axiom", 0, 6, "missing directive after hash"},
	}
	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			_, err := lsysfile.Parse(c.path, "A -> B\n"+c.line)
			require.Error(t, err)
			assert.ErrorIs(t, err, expr.ErrSyntax)
			assert.Contains(t, err.Error(), c.path+":2:")

			se, ok := expr.AsSyntaxError(err)
			require.True(t, ok)
			assert.Equal(t, c.start, se.Start, se.Error())
			assert.Equal(t, c.end, se.End(), se.Error())
			assert.Equal(t, c.line, se.Text)
			assert.Contains(t, se.Description, c.contains)
		})
	}
}
