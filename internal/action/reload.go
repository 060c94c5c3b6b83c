// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"syscall"

	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
)

// Reload spawns a reload_cmd detached if declared, otherwise delivers
// reload_sig (SIGHUP by default) to the running process (§4.7).
func Reload(p paths.Policy, name string) error {
	meta := svc.GetMeta(p, name)
	if !meta.Exists {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if !meta.Valid {
		return fmt.Errorf("%s: %w", name, meta.ParseErr)
	}
	d := meta.Descriptor

	if len(d.Process.ReloadCmd) > 0 {
		_, err := spawn(d, d.Process.ReloadCmd)
		return err
	}

	if !meta.Running {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err := syscall.Kill(-meta.PID, syscall.Signal(d.Process.ReloadSig)); err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrCannotKill, err)
	}
	return nil
}
