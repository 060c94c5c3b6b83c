// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// control-init is the PID-1 binary: mount the early filesystems, start
// the controller, and reap the whole system until shutdown. Invoked as
// "halt" or "reboot" (via argv[0] or a first argument with that name) it
// instead just signals the running PID 1 and exits.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/opsctl/control/pkg/control1"
)

func main() {
	switch mode() {
	case "halt":
		exitOn(control1.Halt())
	case "reboot":
		exitOn(control1.Reboot())
	default:
		exitOn(control1.Run(control1.DefaultConfig()))
	}
}

// mode inspects argv[0]'s basename first, then a literal first argument,
// matching the original binary's dual invocation styles (a symlink named
// halt/reboot, or a single combined binary taking a mode argument).
func mode() string {
	candidates := []string{filepath.Base(os.Args[0])}
	if len(os.Args) > 1 {
		candidates = append(candidates, os.Args[1])
	}
	for _, c := range candidates {
		if c == "halt" || c == "reboot" {
			return c
		}
	}
	return "init"
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "control-init: %v\n", err)
		os.Exit(1)
	}
}
