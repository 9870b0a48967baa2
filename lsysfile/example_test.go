// SPDX-License-Identifier: MIT

package lsysfile_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/lindenmayer/lsysfile"
	"github.com/katalvlaran/lindenmayer/lsystem"
)

// ExampleLinker_Link links a plant against a library that grows its stems.
func ExampleLinker_Link() {
	files := lsysfile.MapProvider{
		"plant.lsystem": `
#axiom A
#iterations 3
#symbols ASL
#include stem.lsyslib (Stem->S)
A -> S[L]A`,
		"stem.lsyslib": `
#symbols I
#export Stem I
I -> II`,
	}

	set, err := lsysfile.NewLinker(files).Link("plant.lsystem")
	if err != nil {
		fmt.Println(err)
		return
	}
	sys, err := set.Compile(nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	axiom, err := set.Axiom()
	if err != nil {
		fmt.Println(err)
		return
	}

	state, err := sys.Iterate(context.Background(), lsystem.State{Symbols: axiom}, set.Iterations(), set.RuntimeDefaults())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(set.Files())
	fmt.Println(state.Symbols.Render(set.Remapper()))
	// Output:
	// [stem.lsyslib plant.lsystem]
	// SSSS[L]SS[L]S[L]A
}
