// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"

	"github.com/opsctl/control/internal/childtable"
	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
)

// Start brings up name. If it is already running, Start is a no-op and
// returns the existing PID. A one-time service runs to completion
// synchronously and leaves nothing to track, reporting ErrNotFound so
// callers don't mistake it for a long-running process (§4.5, §9).
func Start(p paths.Policy, tbl *childtable.Table, name string) (pid int, err error) {
	meta := svc.GetMeta(p, name)
	if !meta.Exists {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if !meta.Valid {
		return 0, fmt.Errorf("%s: %w", name, meta.ParseErr)
	}
	if meta.Running {
		return meta.PID, nil
	}

	d := meta.Descriptor

	if d.Control.OneTime {
		if err := spawnAndWait(d, d.Process.StartCmd); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	pid, err = spawn(d, d.Process.StartCmd)
	if err != nil {
		return 0, err
	}

	if err := svc.PutPID(p, name, pid); err != nil {
		return pid, fmt.Errorf("write pid-file for %s: %w", name, err)
	}

	tbl.Insert(pid, childtable.Record{
		ServiceName:   name,
		RestartOnFail: d.Control.Restart,
		RestartAlways: d.Control.RestartAlways,
	})

	return pid, nil
}
