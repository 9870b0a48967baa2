// SPDX-License-Identifier: MIT

package rules_test

import (
	"fmt"

	"github.com/katalvlaran/lindenmayer/rules"
)

// ExampleParse parses a context-sensitive parametric rule with a global.
func ExampleParse() {
	r, err := rules.Parse("A(x) < B(y) : y < limit -> B(x + y)", rules.WithGlobals("limit"))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(r.TargetString())
	fmt.Println(r.ParamNames())
	fmt.Println(r.ConditionalText)
	// Output:
	// A(x) < B(y)
	// [limit x y]
	// (y < limit)
}

// ExampleCompile shows a syntax error surfacing from rule-set compilation.
func ExampleCompile() {
	_, err := rules.CompileText([]string{"A -> AB", "A(x) -> B(x, yeet)"})
	fmt.Println(err)
	// Output:
	// A(x) -> B(x, >>yeet<<) : Token "yeet" is neither a numeric value, a variable, nor a syntactical token
}
