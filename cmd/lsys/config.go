// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "lsys.yaml"

// Output formats.
const (
	OutputText    = "text"
	OutputSummary = "summary"
)

// Config is one run of a file. Unset Iterations is -1 and defers to the
// file's #iterations.
type Config struct {
	File       string             `yaml:"file" validate:"required"`
	Iterations int                `yaml:"iterations" validate:"gte=-1"`
	Seed       uint64             `yaml:"seed"`
	Workers    int                `yaml:"workers" validate:"gte=0"`
	BatchSize  int                `yaml:"batch_size" validate:"gte=0"`
	Runtime    map[string]float64 `yaml:"runtime"`
	Defines    map[string]string  `yaml:"defines" validate:"dive,keys,required,endkeys,required"`
	Output     string             `yaml:"output" validate:"oneof=text summary"`

	// RuntimeText holds --runtime flag values before they are parsed.
	RuntimeText map[string]string `yaml:"-"`
}

var configValidate = validator.New()

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("lsys: invalid config: %w", err)
	}

	return nil
}

// loadConfig reads path. A missing file yields defaults unless required.
func loadConfig(path string, required bool) (Config, error) {
	cfg := Config{Iterations: -1, Output: OutputText}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}

		return cfg, fmt.Errorf("lsys: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("lsys: parse config %s: %w", path, err)
	}

	return cfg, nil
}

// bindFlags registers the run settings on fs, writing into dst.
func bindFlags(fs *pflag.FlagSet, dst *Config) {
	fs.IntVarP(&dst.Iterations, "iterations", "n", -1, "generations to run (overrides #iterations)")
	fs.Uint64Var(&dst.Seed, "seed", 0, "random seed of the axiom state")
	fs.IntVar(&dst.Workers, "workers", 0, "parallel workers per pass (0 for GOMAXPROCS)")
	fs.IntVar(&dst.BatchSize, "batch-size", 0, "symbols per parallel batch (0 for the default)")
	fs.StringToStringVarP(&dst.Defines, "define", "D", nil, "override a #define, name=replacement")
	fs.StringToStringVarP(&dst.RuntimeText, "runtime", "r", nil, "override a #runtime, name=value")
	fs.StringVarP(&dst.Output, "output", "o", OutputText, "output format: text or summary")
}

// overlay copies every flag the user set from flagged onto c; a positional
// file argument wins over both.
func (c *Config) overlay(flags *pflag.FlagSet, flagged Config, args []string) error {
	if flags.Changed("iterations") {
		c.Iterations = flagged.Iterations
	}
	if flags.Changed("seed") {
		c.Seed = flagged.Seed
	}
	if flags.Changed("workers") {
		c.Workers = flagged.Workers
	}
	if flags.Changed("batch-size") {
		c.BatchSize = flagged.BatchSize
	}
	if flags.Changed("output") {
		c.Output = flagged.Output
	}
	for name, value := range flagged.Defines {
		if c.Defines == nil {
			c.Defines = make(map[string]string)
		}
		c.Defines[name] = value
	}
	for name, text := range flagged.RuntimeText {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("lsys: --runtime %s: %q is not a number", name, text)
		}
		if c.Runtime == nil {
			c.Runtime = make(map[string]float64)
		}
		c.Runtime[name] = v
	}
	if len(args) > 0 {
		c.File = args[0]
	}

	return nil
}

// resolveConfig merges the config file and the command's flags, then
// validates.
func resolveConfig(flags *pflag.FlagSet, args []string) (Config, error) {
	cfg, err := loadConfig(configPath, flags.Changed("config"))
	if err != nil {
		return cfg, err
	}
	if err := cfg.overlay(flags, flagValues, args); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
