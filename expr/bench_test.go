// SPDX-License-Identifier: MIT

package expr_test

import (
	"testing"

	"github.com/katalvlaran/lindenmayer/expr"
)

const benchFormula = "((timeToFruit - x) / (y - z) * 2^x + !(x > y) && z != 0)"

func BenchmarkCompile(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := expr.Compile(benchFormula, "timeToFruit", "x", "y", "z"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEval(b *testing.B) {
	// 1) Compile once outside the timed loop.
	e := expr.MustCompile(benchFormula, "timeToFruit", "x", "y", "z")
	params := []float64{10, 1.5, 4, 2}
	b.ResetTimer()

	// 2) Measure tree evaluation only.
	for i := 0; i < b.N; i++ {
		_ = e.Eval(params)
	}
}

func BenchmarkEvalFlat(b *testing.B) {
	e := expr.MustCompile(benchFormula, "timeToFruit", "x", "y", "z")
	defs := e.Flatten(nil)
	params := []float64{10, 1.5, 4, 2}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = expr.EvalFlat(defs, params)
	}
}
