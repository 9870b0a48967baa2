// SPDX-License-Identifier: MIT

package lsystem

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/katalvlaran/lindenmayer/symbols"
)

// DefaultBatchSize is the number of symbols one parallel task handles.
const DefaultBatchSize = 256

// Options configures a System.
type Options struct {
	// Logger receives stage transitions at Debug. Defaults to zap.NewNop().
	Logger *zap.Logger
	// Workers bounds the goroutines of one parallel pass.
	Workers int
	// BatchSize is the number of symbols per task.
	BatchSize int
	// Synchronous runs every batch on the calling goroutine.
	Synchronous bool
	// Ignore lists symbols that context matching walks over.
	Ignore []int
	// GroupSymbols restricts, per rule group, the symbols its contexts can
	// see; every other non-branch symbol is ignored for that group.
	GroupSymbols map[int][]int
	// Unordered selects the order-agnostic forward matcher.
	Unordered bool
	// BranchOpen and BranchClose must match the codes the rules were
	// parsed with.
	BranchOpen  int
	BranchClose int
	// Metrics, when set, records step counters and stage timings.
	Metrics *Metrics
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns a no-op logger, GOMAXPROCS workers and
// DefaultBatchSize.
func DefaultOptions() Options {
	return Options{
		Logger:      zap.NewNop(),
		Workers:     runtime.GOMAXPROCS(0),
		BatchSize:   DefaultBatchSize,
		BranchOpen:  symbols.DefaultBranchOpen,
		BranchClose: symbols.DefaultBranchClose,
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithWorkers bounds parallelism. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithBatchSize sets the number of symbols per task. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithSynchronous runs every pass on the calling goroutine.
func WithSynchronous() Option {
	return func(o *Options) {
		o.Synchronous = true
	}
}

// WithIgnore adds symbols skipped by context matching.
func WithIgnore(codes ...int) Option {
	return func(o *Options) {
		o.Ignore = append(o.Ignore, codes...)
	}
}

// WithGroupSymbols declares the symbols visible to contexts of rules in group.
func WithGroupSymbols(group int, codes ...int) Option {
	return func(o *Options) {
		if o.GroupSymbols == nil {
			o.GroupSymbols = make(map[int][]int)
		}
		o.GroupSymbols[group] = append([]int(nil), codes...)
	}
}

// WithUnorderedContext matches forward contexts regardless of sibling order.
// The matcher binds every pattern branch to a distinct target branch by
// backtracking and is slower on wide branchings.
func WithUnorderedContext() Option {
	return func(o *Options) {
		o.Unordered = true
	}
}

// WithBranchSymbols overrides the branch open/close codes.
func WithBranchSymbols(open, close int) Option {
	return func(o *Options) {
		o.BranchOpen = open
		o.BranchClose = close
	}
}

// WithMetrics records step metrics. A nil value is ignored.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		if m != nil {
			o.Metrics = m
		}
	}
}

func gatherOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
