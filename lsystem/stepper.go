// SPDX-License-Identifier: MIT

package lsystem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lindenmayer/rules"
	"github.com/katalvlaran/lindenmayer/symbols"
)

// matchRecord is the per-symbol result of one step. A nil rule means the
// symbol is copied verbatim.
type matchRecord struct {
	rule    *rules.Rule
	outcome int

	scratchOffset int
	captured      int

	symOffset   int
	symCount    int
	paramOffset int
	paramCount  int
}

// Stepper runs one step as a sequence of stages. Advance runs the next
// stage; Run drives it to completion. A Stepper is not safe for concurrent
// use; the parallelism lives inside each stage.
type Stepper struct {
	sys      *System
	state    State
	globals  []float64
	stepSeed uint64
	logger   *zap.Logger

	stage     Stage
	err       error
	cache     *symbols.BranchCache
	records   []matchRecord
	scratch   []float64
	out       *symbols.String
	rewritten int
	next      State
}

// Stage reports the stage Advance will run next.
func (st *Stepper) Stage() Stage { return st.stage }

// Result returns the next generation once the stepper is done.
func (st *Stepper) Result() (State, bool) {
	if st.stage != StageDone || st.err != nil {
		return State{}, false
	}

	return st.next, true
}

// Advance runs the current stage. The context is checked before the stage
// and between batches. After an error the stepper keeps returning it.
func (st *Stepper) Advance(ctx context.Context) error {
	if st.err != nil {
		return st.err
	}
	if st.stage == StageDone {
		return ErrStepDone
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cancelled(ctx); err != nil {
		return st.fail(err)
	}

	stage := st.stage
	started := time.Now()
	var err error
	switch stage {
	case StageSizeCounting:
		err = st.countSizes()
	case StageMatching:
		err = st.forEachBatch(ctx, len(st.records), st.matchRange)
	case StageReplacementSizing:
		st.sizeReplacements()
	case StageReplacing:
		err = st.forEachBatch(ctx, len(st.records), st.replaceRange)
	}
	if err != nil {
		return st.fail(err)
	}
	st.sys.opts.Metrics.observeStage(stage, time.Since(started).Seconds())

	st.stage++
	st.logger.Debug("stage complete",
		zap.Int("generation", st.state.Generation),
		zap.String("stage", stage.String()),
		zap.Int("symbols", st.state.Symbols.Len()))
	if st.stage == StageDone {
		st.finish()
	}

	return nil
}

// Run advances through every remaining stage and returns the next generation.
func (st *Stepper) Run(ctx context.Context) (State, error) {
	for st.stage != StageDone {
		if err := st.Advance(ctx); err != nil {
			return State{}, err
		}
	}
	if st.err != nil {
		return State{}, st.err
	}

	return st.next, nil
}

func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	default:
		return nil
	}
}

func (st *Stepper) fail(err error) error {
	st.err = err
	st.release()
	if errors.Is(err, ErrCancelled) {
		st.sys.opts.Metrics.recordCancel()
		st.logger.Info("step cancelled",
			zap.Int("generation", st.state.Generation),
			zap.String("stage", st.stage.String()))
	}

	return err
}

func (st *Stepper) release() {
	st.cache = nil
	st.records = nil
	st.scratch = nil
	st.out = nil
}

// forEachBatch splits [0, n) into batches and runs fn over them, on the
// calling goroutine when synchronous or when one batch suffices, otherwise
// on at most Workers goroutines.
func (st *Stepper) forEachBatch(ctx context.Context, n int, fn func(from, to int) error) error {
	opts := st.sys.opts
	size := opts.BatchSize
	if opts.Synchronous || opts.Workers <= 1 || n <= size {
		for from := 0; from < n; from += size {
			if err := cancelled(ctx); err != nil {
				return err
			}
			if err := fn(from, min(from+size, n)); err != nil {
				return err
			}
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for from := 0; from < n; from += size {
		if cancelled(gctx) != nil {
			break
		}
		from, to := from, min(from+size, n)
		g.Go(func() error {
			if err := cancelled(gctx); err != nil {
				return err
			}

			return fn(from, to)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// A break above leaves batches undone; only the parent context causes one.
	return cancelled(ctx)
}

// countSizes balances branches and reserves scratch per symbol.
func (st *Stepper) countSizes() error {
	s := st.state.Symbols
	cache, err := symbols.NewBranchCache(s, st.sys.open, st.sys.close)
	if err != nil {
		return fmt.Errorf("lsystem: %w", err)
	}
	st.cache = cache

	st.records = make([]matchRecord, s.Len())
	total := 0
	for i := range st.records {
		st.records[i].scratchOffset = total
		total += st.sys.set.ScratchFor(s.Symbol(i))
	}
	st.scratch = make([]float64, total)

	return nil
}

func (st *Stepper) parameterBuffer() []float64 {
	buf := make([]float64, len(st.globals), len(st.globals)+st.sys.set.MaxScratch())
	copy(buf, st.globals)

	return buf
}

func (st *Stepper) matchRange(from, to int) error {
	buf := st.parameterBuffer()
	for i := from; i < to; i++ {
		if err := st.matchOne(i, buf); err != nil {
			return err
		}
	}

	return nil
}

// matchOne tries the candidates of symbol i in priority order. The first
// rule whose contexts, arity and conditional pass is recorded together with
// its outcome and captured parameters.
func (st *Stepper) matchOne(i int, buf []float64) error {
	s := st.state.Symbols
	sym := s.Symbol(i)
	candidates := st.sys.set.RulesFor(sym)
	if len(candidates) == 0 {
		return nil
	}
	bound := st.sys.set.ScratchFor(sym)
	globals := len(st.globals)

	for _, r := range candidates {
		args, ok := st.capture(i, r, buf[:globals])
		if !ok {
			continue
		}
		captured := len(args) - globals
		if captured > bound {
			return fmt.Errorf("%w: %s captures %d, reserved %d", ErrScratchOverflow, r, captured, bound)
		}
		if r.Conditional != nil && r.Conditional.Eval(args) <= 0 {
			continue
		}

		rec := &st.records[i]
		rec.rule = r
		rec.outcome = st.pickOutcome(r, i)
		rec.captured = captured
		copy(st.scratch[rec.scratchOffset:rec.scratchOffset+captured], args[globals:])

		return nil
	}

	return nil
}

// capture matches r at i and appends the captured parameters to args in
// backward, core, forward order.
func (st *Stepper) capture(i int, r *rules.Rule, args []float64) ([]float64, bool) {
	s := st.state.Symbols
	ignore := st.sys.ignoreFor(r.Group)

	var backward []int
	if m := r.BackwardMatchers(); len(m) > 0 {
		mapping, ok := st.cache.MatchBackward(i, m, ignore)
		if !ok {
			return nil, false
		}
		backward = mapping
	}
	if s.Arity(i) != r.Core.Arity() {
		return nil, false
	}
	var forward []int
	if p := r.ForwardPattern(); p != nil {
		var ok bool
		if st.sys.opts.Unordered {
			forward, ok = st.cache.MatchForwardUnordered(i, p, ignore)
		} else {
			forward, ok = st.cache.MatchForward(i, p, ignore)
		}
		if !ok {
			return nil, false
		}
	}

	for _, t := range backward {
		args = append(args, s.ParamsOf(t)...)
	}
	args = append(args, s.ParamsOf(i)...)
	for k, in := range r.Forward {
		if in.Arity() > 0 && forward[k] >= 0 {
			args = append(args, s.ParamsOf(forward[k])...)
		}
	}

	return args, true
}

// pickOutcome draws from cumulative probabilities: the first outcome whose
// running sum reaches the item's sample wins.
func (st *Stepper) pickOutcome(r *rules.Rule, i int) int {
	if len(r.Outcomes) == 1 {
		return 0
	}
	sample := itemSample(st.stepSeed, i)
	partition := 0.0
	for k, o := range r.Outcomes {
		partition += o.Probability
		if sample <= partition {
			return k
		}
	}

	return len(r.Outcomes) - 1
}

// sizeReplacements assigns output regions by prefix sum and allocates the
// next string.
func (st *Stepper) sizeReplacements() {
	s := st.state.Symbols
	symbolTotal, paramTotal := 0, 0
	for i := range st.records {
		rec := &st.records[i]
		if rec.rule == nil {
			rec.symCount, rec.paramCount = 1, s.Arity(i)
		} else {
			o := rec.rule.Outcomes[rec.outcome]
			rec.symCount, rec.paramCount = o.SymbolCount(), o.ParamCount()
			st.rewritten++
		}
		rec.symOffset, rec.paramOffset = symbolTotal, paramTotal
		symbolTotal += rec.symCount
		paramTotal += rec.paramCount
	}

	st.out = &symbols.String{
		Symbols: make([]int, symbolTotal),
		Params:  make([]float64, paramTotal),
		Index:   make([]symbols.Jagged, symbolTotal),
	}
}

func (st *Stepper) replaceRange(from, to int) error {
	s, out := st.state.Symbols, st.out
	buf := st.parameterBuffer()
	globals := len(st.globals)

	for i := from; i < to; i++ {
		rec := &st.records[i]
		if rec.rule == nil {
			out.Symbols[rec.symOffset] = s.Symbol(i)
			out.Index[rec.symOffset] = symbols.Jagged{Offset: rec.paramOffset, Length: rec.paramCount}
			copy(out.Params[rec.paramOffset:rec.paramOffset+rec.paramCount], s.ParamsOf(i))
			continue
		}

		args := append(buf[:globals], st.scratch[rec.scratchOffset:rec.scratchOffset+rec.captured]...)
		at, p := rec.symOffset, rec.paramOffset
		for _, g := range rec.rule.Outcomes[rec.outcome].Replacement {
			out.Symbols[at] = g.Symbol
			out.Index[at] = symbols.Jagged{Offset: p, Length: g.Arity()}
			for _, e := range g.Params {
				out.Params[p] = e.Eval(args)
				p++
			}
			at++
		}
	}

	return nil
}

func (st *Stepper) finish() {
	st.next = State{
		Symbols:    st.out,
		Seed:       deriveSeed(st.state.Seed, streamNextState),
		Generation: st.state.Generation + 1,
	}
	st.sys.opts.Metrics.recordStep(st.out.Len(), st.rewritten)
	st.logger.Debug("step complete",
		zap.Int("generation", st.next.Generation),
		zap.Int("symbols", st.out.Len()),
		zap.Int("params", len(st.out.Params)),
		zap.Int("rewritten", st.rewritten))
	st.cache, st.records, st.scratch = nil, nil, nil
}
