// SPDX-License-Identifier: MIT

package lsystem_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/lindenmayer/lsystem"
	"github.com/katalvlaran/lindenmayer/symbols"
)

// BenchmarkStep measures one step of a bracketed, context-sensitive system
// over a few thousand symbols.
func BenchmarkStep(b *testing.B) {
	// 1) Grow a realistic generation.
	sys := build(b, []string{
		"F(x) > [F(y)] -> F(x + y)",
		"X(x) : x < 8 -> F(x)[+X(x + 1)][-X(x + 1)]F(x)X(x + 1)",
	}, nil)
	state, err := lsystem.NewState("X(0)", symbols.Identity, 1)
	if err != nil {
		b.Fatal(err)
	}
	state, err = sys.Iterate(context.Background(), state, 6, nil)
	if err != nil {
		b.Fatal(err)
	}

	// 2) Step it repeatedly from the same input.
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sys.Step(context.Background(), state, nil); err != nil {
			b.Fatal(err)
		}
	}
}
