// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lindenmayer/lsysfile"
	"github.com/katalvlaran/lindenmayer/lsystem"
)

// ErrNoIterations indicates neither the file nor the config says how many
// generations to run.
var ErrNoIterations = errors.New("lsys: no iteration count, set #iterations or --iterations")

// program is a linked, compiled file.
type program struct {
	set     *lsysfile.LinkedSet
	sys     *lsystem.System
	globals []float64
}

// load links cfg.File from its directory and compiles it. A nil reg leaves
// the System without metrics.
func load(cfg Config, reg prometheus.Registerer) (*program, error) {
	abs, err := filepath.Abs(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("lsys: %w", err)
	}
	linker := lsysfile.NewLinker(lsysfile.DirProvider{Root: filepath.Dir(abs)}, lsysfile.WithLogger(logger))
	set, err := linker.Link(filepath.Base(abs))
	if err != nil {
		return nil, err
	}

	opts := []lsystem.Option{
		lsystem.WithLogger(logger),
		lsystem.WithWorkers(cfg.Workers),
		lsystem.WithBatchSize(cfg.BatchSize),
	}
	if reg != nil {
		opts = append(opts, lsystem.WithMetrics(lsystem.NewMetrics(reg)))
	}
	sys, err := set.Compile(cfg.Defines, opts...)
	if err != nil {
		return nil, err
	}
	globals, err := globalsFor(set, cfg.Runtime)
	if err != nil {
		return nil, err
	}

	return &program{set: set, sys: sys, globals: globals}, nil
}

// globalsFor returns the runtime defaults with overrides applied by name.
func globalsFor(set *lsysfile.LinkedSet, overrides map[string]float64) ([]float64, error) {
	names := set.RuntimeNames()
	values := set.RuntimeDefaults()
	for name, v := range overrides {
		i := indexOf(names, name)
		if i < 0 {
			return nil, fmt.Errorf("lsys: unknown runtime variable %q", name)
		}
		values[i] = v
	}

	return values, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}

	return -1
}

// iterations resolves the generation count: config first, then the file.
func (p *program) iterations(cfg Config) (int, error) {
	if cfg.Iterations >= 0 {
		return cfg.Iterations, nil
	}
	if n := p.set.Iterations(); n >= 0 {
		return n, nil
	}

	return 0, ErrNoIterations
}

// execute steps the axiom and writes the final generation to out.
func execute(ctx context.Context, cfg Config, out io.Writer) error {
	reg := prometheus.NewRegistry()
	p, err := load(cfg, reg)
	if err != nil {
		return err
	}

	return p.emit(ctx, cfg, out, reg)
}

// emit runs p and writes it in cfg.Output format. reg may be nil.
func (p *program) emit(ctx context.Context, cfg Config, out io.Writer, reg *prometheus.Registry) error {
	n, err := p.iterations(cfg)
	if err != nil {
		return err
	}
	axiom, err := p.set.Axiom()
	if err != nil {
		return err
	}

	logger.Info("running",
		zap.String("file", cfg.File),
		zap.Int("iterations", n),
		zap.String("fingerprint", p.sys.FingerprintHex()))
	state, err := p.sys.Iterate(ctx, lsystem.State{Symbols: axiom, Seed: cfg.Seed}, n, p.globals)
	if err != nil {
		return err
	}

	if cfg.Output == OutputSummary {
		return writeSummary(out, cfg, p, state, reg)
	}
	_, err = fmt.Fprintln(out, state.Symbols.Render(p.set.Remapper()))

	return err
}

func writeSummary(out io.Writer, cfg Config, p *program, state lsystem.State, reg *prometheus.Registry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "file: %s\n", cfg.File)
	fmt.Fprintf(&b, "generation: %d\n", state.Generation)
	fmt.Fprintf(&b, "symbols: %d\n", state.Symbols.Len())
	fmt.Fprintf(&b, "fingerprint: %s\n", p.sys.FingerprintHex())

	var families []*dto.MetricFamily
	if reg != nil {
		var err error
		if families, err = reg.Gather(); err != nil {
			return fmt.Errorf("lsys: gather metrics: %w", err)
		}
	}
	for _, mf := range families {
		if !strings.HasSuffix(mf.GetName(), "_total") {
			continue
		}
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(&b, "%s: %g\n", mf.GetName(), m.GetCounter().GetValue())
		}
	}
	_, err := io.WriteString(out, b.String())

	return err
}

func runFile(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args)
	if err != nil {
		return err
	}

	return execute(cmd.Context(), cfg, cmd.OutOrStdout())
}
