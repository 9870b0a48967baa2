// SPDX-License-Identifier: MIT

package expr_test

import (
	"fmt"

	"github.com/katalvlaran/lindenmayer/expr"
)

// ExampleCompile compiles a conditional and evaluates it for two parameter sets.
func ExampleCompile() {
	cond, err := expr.Compile("(x < limit && y >= 1)", "limit", "x", "y")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cond)
	fmt.Println(cond.Eval([]float64{5, 2, 1}) > 0)
	fmt.Println(cond.Eval([]float64{5, 7, 1}) > 0)
	// Output:
	// ((x < limit) && (y >= 1))
	// true
	// false
}

// ExampleSyntaxError shows how a positioned error marks the offending span.
func ExampleSyntaxError() {
	_, err := expr.Compile("(x + yeet)", "x")
	fmt.Println(err)
	// Output:
	// (x + >>yeet<<) : Token "yeet" is neither a numeric value, a variable, nor a syntactical token
}
