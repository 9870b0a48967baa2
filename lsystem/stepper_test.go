// SPDX-License-Identifier: MIT

package lsystem_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/lindenmayer/lsystem"
	"github.com/katalvlaran/lindenmayer/rules"
	"github.com/katalvlaran/lindenmayer/symbols"
)

func TestStepper_Stages(t *testing.T) {
	sys := build(t, []string{"A -> AB", "B -> A"}, nil)
	state, err := lsystem.NewState("AB", symbols.Identity, 0)
	require.NoError(t, err)

	st, err := sys.NewStepper(state, nil)
	require.NoError(t, err)

	want := []lsystem.Stage{
		lsystem.StageMatching,
		lsystem.StageReplacementSizing,
		lsystem.StageReplacing,
		lsystem.StageDone,
	}
	assert.Equal(t, lsystem.StageSizeCounting, st.Stage())
	for _, stage := range want {
		_, ok := st.Result()
		assert.False(t, ok)
		require.NoError(t, st.Advance(context.Background()))
		assert.Equal(t, stage, st.Stage())
	}

	next, ok := st.Result()
	require.True(t, ok)
	assert.Equal(t, "ABA", next.Symbols.String())
	assert.Equal(t, 1, next.Generation)
	assert.ErrorIs(t, st.Advance(context.Background()), lsystem.ErrStepDone)
}

func TestStepper_CancelBetweenStages(t *testing.T) {
	sys := build(t, []string{"A -> AB"}, nil)
	state, err := lsystem.NewState("A", symbols.Identity, 0)
	require.NoError(t, err)
	st, err := sys.NewStepper(state, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, st.Advance(ctx))
	cancel()

	err = st.Advance(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, lsystem.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	// The failure sticks.
	assert.Equal(t, err, st.Advance(context.Background()))
	_, ok := st.Result()
	assert.False(t, ok)
}

func TestStep_CancelledContext(t *testing.T) {
	sys := build(t, []string{"A -> AB"}, nil, lsystem.WithWorkers(4), lsystem.WithBatchSize(2))
	state, err := lsystem.NewState(strings.Repeat("A", 64), symbols.Identity, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sys.Step(ctx, state, nil)
	assert.ErrorIs(t, err, lsystem.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, lsystem.ErrGlobalCount))
}

func TestStep_GlobalCount(t *testing.T) {
	sys := build(t, []string{"A(x) : x < global -> A(x + 1)"}, []string{"global"})
	state, err := lsystem.NewState("A(0)", symbols.Identity, 0)
	require.NoError(t, err)

	_, err = sys.Step(context.Background(), state, nil)
	require.ErrorIs(t, err, lsystem.ErrGlobalCount)
	assert.Contains(t, err.Error(), "incomplete parameters provided. expected 1 parameters but got 0")
	assert.Equal(t, []string{"global"}, sys.GlobalNames())
}

func TestStep_Errors(t *testing.T) {
	sys := build(t, []string{"A -> AB"}, nil)

	_, err := sys.Step(context.Background(), lsystem.State{}, nil)
	assert.ErrorIs(t, err, lsystem.ErrNilState)

	state, err := lsystem.NewState("A[B", symbols.Identity, 0)
	require.NoError(t, err)
	_, err = sys.Step(context.Background(), state, nil)
	assert.ErrorIs(t, err, symbols.ErrUnbalancedBranches)

	_, err = lsystem.NewSystem(nil)
	assert.ErrorIs(t, err, lsystem.ErrNilSet)

	_, err = lsystem.NewState("A(", symbols.Identity, 0)
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := lsystem.NewMetrics(reg)
	sys := build(t, []string{"A -> AB"}, nil, lsystem.WithMetrics(m))

	state, err := lsystem.NewState("AC", symbols.Identity, 0)
	require.NoError(t, err)
	_, err = sys.Step(context.Background(), state, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SymbolsProducedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RewrittenTotal))
	assert.Equal(t, 4, testutil.CollectAndCount(m.StageDurationSeconds))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sys.Step(ctx, state, nil)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CancellationsTotal))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestStep_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sys := build(t, []string{"A -> AB"}, nil, lsystem.WithLogger(zap.New(core)))
	state, err := lsystem.NewState("A", symbols.Identity, 0)
	require.NoError(t, err)

	_, err = sys.Step(context.Background(), state, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, logs.FilterMessage("stage complete").Len())
	require.Equal(t, 1, logs.FilterMessage("step complete").Len())
	assert.Equal(t, int64(2), logs.FilterMessage("step complete").All()[0].ContextMap()["symbols"])
}

func TestSystem_Fingerprint(t *testing.T) {
	a := build(t, []string{"A -> AB", "B -> A"}, nil)
	b := build(t, []string{"A -> AB", "B -> A"}, nil)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.FingerprintHex(), 64)

	c := build(t, []string{"A -> AB", "B -> AA"}, nil)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	d := build(t, []string{"A -> AB", "B -> A"}, nil, lsystem.WithIgnore('+'))
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())

	set, err := rules.CompileText([]string{"A -> AB", "B -> A"})
	require.NoError(t, err)
	e, err := lsystem.NewSystem(set, lsystem.WithWorkers(3), lsystem.WithBatchSize(7))
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), e.Fingerprint())
	assert.Same(t, set, e.Set())
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "matching", lsystem.StageMatching.String())
	assert.Equal(t, "done", lsystem.StageDone.String())
	assert.Equal(t, "unknown", lsystem.Stage(42).String())
}
