// SPDX-License-Identifier: MIT

package rules

import "github.com/katalvlaran/lindenmayer/symbols"

// Options configures Parse.
type Options struct {
	// Globals are prepended to every expression's parameter list.
	Globals []string
	// Remapper turns rule runes into symbol codes.
	Remapper symbols.Remapper
	// Group is the rule-group index stamped on the parsed rule.
	Group int
	// BranchOpen and BranchClose are the branch symbol codes.
	BranchOpen  int
	BranchClose int
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns identity remapping, no globals, group 0 and '[' ']'.
func DefaultOptions() Options {
	return Options{
		Remapper:    symbols.Identity,
		BranchOpen:  symbols.DefaultBranchOpen,
		BranchClose: symbols.DefaultBranchClose,
	}
}

// WithGlobals declares global parameter names, in order.
func WithGlobals(names ...string) Option {
	return func(o *Options) {
		o.Globals = append([]string(nil), names...)
	}
}

// WithRemapper sets the rune ↔ code mapping. Panics on nil.
func WithRemapper(r symbols.Remapper) Option {
	if r == nil {
		panic("rules: WithRemapper(nil)")
	}

	return func(o *Options) {
		o.Remapper = r
	}
}

// WithGroup stamps parsed rules with a rule-group index.
func WithGroup(group int) Option {
	return func(o *Options) {
		o.Group = group
	}
}

// WithBranchSymbols overrides the branch open/close codes.
func WithBranchSymbols(open, close int) Option {
	return func(o *Options) {
		o.BranchOpen = open
		o.BranchClose = close
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
