// SPDX-License-Identifier: MIT

// Command lsys runs, checks and watches .lsystem files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string
	flagValues Config

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lsys",
	Short: "Run parametric, stochastic, context-sensitive L-systems",
	Long: `lsys links an .lsystem file with the .lsyslib libraries it includes,
compiles every rule and steps the axiom through the requested generations.

Settings come from lsys.yaml when present; flags override the file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Step a file's axiom and print the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFile,
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Link and compile a file, print its files and rule fingerprint",
	Args:  cobra.MaximumNArgs(1),
	RunE:  checkFile,
}

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-run a file whenever it or an included library changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  watchFile,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	pf.StringVarP(&configPath, "config", "c", defaultConfigFile, "run configuration file")
	bindFlags(pf, &flagValues)

	rootCmd.AddCommand(runCmd, checkCmd, watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
