// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"syscall"

	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
)

// Restart applies a service's in-place restart mechanism: a restart_cmd is
// spawned detached, or failing that restart_sig is delivered to the
// running process. Neither mechanism changes which processes the
// supervisor is tracking, so Restart needs no child table access. When a
// descriptor declares neither, Restart reports ErrNotFound and leaves the
// kill-then-start fallback to the caller, which must coordinate it through
// the running supervisor's control socket (§4.7, §9).
func Restart(p paths.Policy, name string) error {
	meta := svc.GetMeta(p, name)
	if !meta.Exists {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if !meta.Valid {
		return fmt.Errorf("%s: %w", name, meta.ParseErr)
	}
	d := meta.Descriptor

	if len(d.Process.RestartCmd) > 0 {
		_, err := spawn(d, d.Process.RestartCmd)
		return err
	}

	if d.Process.RestartSig != nil {
		if !meta.Running {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		if err := syscall.Kill(-meta.PID, syscall.Signal(*d.Process.RestartSig)); err != nil {
			return fmt.Errorf("%s: %w: %v", name, ErrCannotKill, err)
		}
		return nil
	}

	return fmt.Errorf("%s: %w", name, ErrNotFound)
}
