// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package action implements the service-level lifecycle operations:
// spawn, start, stop, restart, reload (spec §4.5, §4.7).
package action

import "errors"

// Error kinds surfaced by the service layer (spec §7). They are used for
// control flow (the restart fallback chain) and for user-facing status;
// they are never persisted.
var (
	// ErrCannotSpawn means exec.Start (or the underlying Command) failed.
	ErrCannotSpawn = errors.New("cannot spawn")
	// ErrCannotKill means sending a signal to a PID failed.
	ErrCannotKill = errors.New("cannot kill")
	// ErrNotFound means no applicable mechanism exists, or (for a
	// one-time service) there is nothing left to track after a
	// synchronous run.
	ErrNotFound = errors.New("not found")
	// ErrNoDaemon means the control socket could not be reached.
	ErrNoDaemon = errors.New("daemon not running")
)
