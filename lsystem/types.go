// SPDX-License-Identifier: MIT

package lsystem

import (
	"errors"

	"github.com/katalvlaran/lindenmayer/symbols"
)

var (
	// ErrCancelled is returned when a step is abandoned because its context ended.
	ErrCancelled = errors.New("lsystem: step cancelled")

	// ErrGlobalCount indicates a globals slice of the wrong length.
	ErrGlobalCount = errors.New("lsystem: incomplete parameters provided")

	// ErrScratchOverflow indicates a rule captured more parameters than the
	// bound reserved for its symbol.
	ErrScratchOverflow = errors.New("lsystem: captured parameters exceed the reserved scratch")

	// ErrNilSet is returned by NewSystem for a nil rule set.
	ErrNilSet = errors.New("lsystem: rule set is nil")

	// ErrNilState is returned when a state carries no symbol string.
	ErrNilState = errors.New("lsystem: state has no symbols")

	// ErrStepDone is returned by Advance once the step has finished.
	ErrStepDone = errors.New("lsystem: step already completed")
)

// State is one generation. Seed drives every stochastic choice of the next
// step; Step derives the following seed from it, so a copied State replays
// the same sequence of generations.
type State struct {
	Symbols    *symbols.String
	Seed       uint64
	Generation int
}

// NewState parses an axiom with remapper into a generation-zero State.
func NewState(axiom string, remapper symbols.Remapper, seed uint64) (State, error) {
	s, err := symbols.Parse(axiom, remapper)
	if err != nil {
		return State{}, err
	}

	return State{Symbols: s, Seed: seed}, nil
}

// Stage is the position of a Stepper in its pipeline.
type Stage int

const (
	StageSizeCounting Stage = iota
	StageMatching
	StageReplacementSizing
	StageReplacing
	StageDone
)

var stageNames = [...]string{
	StageSizeCounting:      "size-counting",
	StageMatching:          "matching",
	StageReplacementSizing: "replacement-sizing",
	StageReplacing:         "replacing",
	StageDone:              "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}

	return stageNames[s]
}
