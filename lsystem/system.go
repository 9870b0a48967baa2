// SPDX-License-Identifier: MIT

package lsystem

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/katalvlaran/lindenmayer/rules"
	"github.com/katalvlaran/lindenmayer/symbols"
)

// System is a compiled rule set ready to step states. It is read-only after
// NewSystem and safe for concurrent use.
type System struct {
	set         *rules.Set
	opts        Options
	open, close int
	ignore      symbols.Ignore
	groupIgnore map[int]symbols.Ignore
	fingerprint [32]byte
}

// NewSystem wraps set with the given options.
//
// Steps:
//  1. Gather options.
//  2. Build the system ignore set and, per declared group, an ignore that
//     also hides every symbol outside the group's visible set.
//  3. Fingerprint the rules and options that affect stepping.
func NewSystem(set *rules.Set, opts ...Option) (*System, error) {
	if set == nil {
		return nil, ErrNilSet
	}
	o := gatherOptions(opts)

	sys := &System{
		set:         set,
		opts:        o,
		open:        o.BranchOpen,
		close:       o.BranchClose,
		groupIgnore: make(map[int]symbols.Ignore, len(o.GroupSymbols)),
	}

	sys.ignore = symbols.IgnoreSet(o.Ignore...)
	for group, codes := range o.GroupSymbols {
		visible := make(map[int]struct{}, len(codes))
		for _, c := range codes {
			visible[c] = struct{}{}
		}
		open, close := sys.open, sys.close
		hidden := func(symbol int) bool {
			if symbol == open || symbol == close {
				return false
			}
			_, ok := visible[symbol]

			return !ok
		}
		sys.groupIgnore[group] = symbols.Union(sys.ignore, hidden)
	}

	sys.fingerprint = sys.computeFingerprint()

	return sys, nil
}

// Set returns the compiled rules.
func (s *System) Set() *rules.Set { return s.set }

// GlobalNames returns the global parameter names every step expects values for.
func (s *System) GlobalNames() []string { return s.set.Globals() }

// Logger returns the configured logger.
func (s *System) Logger() *zap.Logger { return s.opts.Logger }

// Fingerprint is a BLAKE3 digest of the rules and the matching options.
// Two systems with equal fingerprints step every state identically.
func (s *System) Fingerprint() [32]byte { return s.fingerprint }

// FingerprintHex returns Fingerprint as lowercase hex.
func (s *System) FingerprintHex() string { return hex.EncodeToString(s.fingerprint[:]) }

func (s *System) ignoreFor(group int) symbols.Ignore {
	if ig, ok := s.groupIgnore[group]; ok {
		return ig
	}

	return s.ignore
}

func (s *System) computeFingerprint() [32]byte {
	h := blake3.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	writeString := func(v string) {
		writeInt(len(v))
		_, _ = h.Write([]byte(v))
	}

	for _, g := range s.set.Globals() {
		writeString(g)
	}
	for _, r := range s.set.Rules() {
		writeInt(r.Group)
		writeString(r.String())
		// Rendering hides codes behind the remapper; hash them too.
		writeInt(r.Core.Symbol)
		for _, in := range r.Backward {
			writeInt(in.Symbol)
		}
		for _, in := range r.Forward {
			writeInt(in.Symbol)
		}
	}
	writeInt(s.open)
	writeInt(s.close)

	ignore := append([]int(nil), s.opts.Ignore...)
	sort.Ints(ignore)
	writeInt(len(ignore))
	for _, c := range ignore {
		writeInt(c)
	}

	groups := make([]int, 0, len(s.opts.GroupSymbols))
	for g := range s.opts.GroupSymbols {
		groups = append(groups, g)
	}
	sort.Ints(groups)
	for _, g := range groups {
		codes := append([]int(nil), s.opts.GroupSymbols[g]...)
		sort.Ints(codes)
		writeInt(g)
		writeInt(len(codes))
		for _, c := range codes {
			writeInt(c)
		}
	}
	if s.opts.Unordered {
		writeInt(1)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))

	return out
}

// NewStepper prepares one step of state. globals must hold one value per
// global name, in order.
func (s *System) NewStepper(state State, globals []float64) (*Stepper, error) {
	if state.Symbols == nil {
		return nil, ErrNilState
	}
	if want := len(s.set.Globals()); len(globals) != want {
		return nil, fmt.Errorf("%w. expected %d parameters but got %d", ErrGlobalCount, want, len(globals))
	}

	return &Stepper{
		sys:      s,
		state:    state,
		globals:  append([]float64(nil), globals...),
		stepSeed: deriveSeed(state.Seed, streamStep),
		logger:   s.opts.Logger,
	}, nil
}

// Step produces the next generation of state. The returned State owns a new
// symbol string; state is left untouched.
func (s *System) Step(ctx context.Context, state State, globals []float64) (State, error) {
	st, err := s.NewStepper(state, globals)
	if err != nil {
		return State{}, err
	}

	return st.Run(ctx)
}

// Iterate steps state n times and returns the final generation.
func (s *System) Iterate(ctx context.Context, state State, n int, globals []float64) (State, error) {
	for i := 0; i < n; i++ {
		next, err := s.Step(ctx, state, globals)
		if err != nil {
			return state, err
		}
		state = next
	}

	return state, nil
}
