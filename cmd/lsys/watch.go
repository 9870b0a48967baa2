// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lindenmayer/lsysfile"
)

// defaultSettle batches the bursts of events editors emit on save.
const defaultSettle = 200 * time.Millisecond

// fileWatcher re-runs a file when it or any file it links changes. Reloads
// whose rules, axiom, iteration count and globals are unchanged are skipped.
type fileWatcher struct {
	cfg    Config
	out    io.Writer
	settle time.Duration
	root   string

	fs      *fsnotify.Watcher
	watched map[string]bool
	last    string
}

func newFileWatcher(cfg Config, out io.Writer, settle time.Duration) (*fileWatcher, error) {
	abs, err := filepath.Abs(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("lsys: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("lsys: watch: %w", err)
	}
	w := &fileWatcher{
		cfg:     cfg,
		out:     out,
		settle:  settle,
		root:    filepath.Dir(abs),
		fs:      fsw,
		watched: make(map[string]bool),
	}
	if err := w.watch(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

func (w *fileWatcher) watch(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("lsys: watch %s: %w", dir, err)
	}
	w.watched[dir] = true
	logger.Debug("watching directory", zap.String("dir", dir))

	return nil
}

// Run reloads once, then on every settled change until ctx ends.
func (w *fileWatcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	w.reload(ctx)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("file event", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload(ctx)
		}
	}
}

// reload links and runs the file. Failures are reported to out and the
// watch continues.
func (w *fileWatcher) reload(ctx context.Context) {
	p, err := load(w.cfg, nil)
	if err != nil {
		w.report(err)
		return
	}
	for _, id := range p.set.Files() {
		dir := filepath.Dir(lsysfile.DirProvider{Root: w.root}.Path(id))
		if err := w.watch(dir); err != nil {
			logger.Warn("cannot watch include", zap.String("dir", dir), zap.Error(err))
		}
	}

	key := fmt.Sprint(p.sys.FingerprintHex(), p.set.AxiomText(), p.set.Iterations(), p.globals)
	if key == w.last {
		logger.Info("unchanged, skipped", zap.String("fingerprint", p.sys.FingerprintHex()))
		return
	}
	if err := p.emit(ctx, w.cfg, w.out, nil); err != nil {
		w.report(err)
		return
	}
	w.last = key
}

func (w *fileWatcher) report(err error) {
	w.last = ""
	logger.Warn("reload failed", zap.Error(err))
	fmt.Fprintf(w.out, "error: %v\n", err)
}

func relevant(ev fsnotify.Event) bool {
	ext := strings.ToLower(filepath.Ext(ev.Name))
	if ext != ".lsystem" && ext != lsysfile.LibraryExt {
		return false
	}

	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func watchFile(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args)
	if err != nil {
		return err
	}
	w, err := newFileWatcher(cfg, cmd.OutOrStdout(), defaultSettle)
	if err != nil {
		return err
	}

	return w.Run(cmd.Context())
}
