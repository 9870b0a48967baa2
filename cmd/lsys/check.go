// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// check links and compiles cfg.File and describes the result.
func check(cfg Config, out io.Writer) error {
	p, err := load(cfg, nil)
	if err != nil {
		return err
	}
	if _, err := p.set.Axiom(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "files: %s\n", strings.Join(p.set.Files(), ", "))
	fmt.Fprintf(&b, "rules: %d\n", len(p.sys.Set().Rules()))
	if names := p.set.RuntimeNames(); len(names) > 0 {
		fmt.Fprintf(&b, "runtime: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "fingerprint: %s\n", p.sys.FingerprintHex())
	_, err = io.WriteString(out, b.String())

	return err
}

func checkFile(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd.Flags(), args)
	if err != nil {
		return err
	}

	return check(cfg, cmd.OutOrStdout())
}
