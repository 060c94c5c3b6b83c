// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"syscall"

	"github.com/opsctl/control/internal/childtable"
	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
)

// Stop brings down a running service. When a stop_cmd is declared it is
// spawned detached and is solely responsible for the child actually
// exiting; otherwise Stop signals the process group with stop_sig. Either
// way the child table entry is rewritten with both restart flags cleared
// first, so the reaper does not race a legitimate stop with a restart
// (§5, §4.7).
func Stop(p paths.Policy, tbl *childtable.Table, name string) error {
	meta := svc.GetMeta(p, name)
	if !meta.Running {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	d := meta.Descriptor

	tbl.Insert(meta.PID, childtable.Record{ServiceName: name})

	if len(d.Process.StopCmd) > 0 {
		_, err := spawn(d, d.Process.StopCmd)
		return err
	}

	sig := syscall.Signal(d.Process.StopSig)
	if err := syscall.Kill(-meta.PID, sig); err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrCannotKill, err)
	}
	return nil
}
