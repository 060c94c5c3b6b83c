// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package svc

import (
	"os"

	gops "github.com/mitchellh/go-ps"

	"github.com/opsctl/control/internal/paths"
)

// GetMeta computes the pure, point-in-time view of a service: whether its
// descriptor exists, parses, is enabled, and is running. Enabled and
// Running are only looked up for a descriptor that parses; otherwise they
// stay false. It never caches and never mutates anything on disk.
func GetMeta(p paths.Policy, name string) Meta {
	m := Meta{Name: name}

	descPath := p.ServiceFile(name)
	if _, err := os.Stat(descPath); err == nil {
		m.Exists = true
	} else {
		return m
	}

	d, err := Load(descPath)
	if err != nil {
		m.ParseErr = err
		return m
	}
	m.Valid = true
	m.Descriptor = d

	if _, err := os.Lstat(p.EnabledFile(name)); err == nil {
		m.Enabled = true
	}

	if pid, running := GetPID(p, name); running {
		m.Running = true
		m.PID = pid
		m.Stale = !processLive(pid)
	}

	return m
}

// processLive cross-checks a PID-file's PID against the live process
// table. It never drives a control decision — a stale PID-file is still
// "running" per the PID-file-existence rule (§7) — it only lets status
// flag the discrepancy for a human to notice.
func processLive(pid int) bool {
	proc, err := gops.FindProcess(pid)
	return err == nil && proc != nil
}
