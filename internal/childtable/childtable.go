// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package childtable is the process-wide mapping from child PID to
// restart policy. It is the single piece of shared mutable state between
// the supervisor's main thread (sole remover, on reap) and the code that
// inserts: every start (initial, restart on reap, control socket,
// enabled-set watch) and the control socket's stop handler — see spec §5.
package childtable

import "sync"

// Record is the child-table value: which service a PID belongs to, and
// whether it should be restarted on dirty exit or on any exit.
type Record struct {
	ServiceName   string
	RestartOnFail bool
	RestartAlways bool
}

// Table is a mutex-guarded map from child PID to Record. The zero value
// is not usable; use New.
type Table struct {
	mu sync.Mutex
	m  map[int]Record
}

// New returns an empty table.
func New() *Table {
	return &Table{m: make(map[int]Record)}
}

// Insert records a child PID's restart policy. Called by the spawner
// after the PID-file has been written, and by the control socket's stop
// handler (with both restart flags false, so the reaper won't restart
// it).
func (t *Table) Insert(pid int, rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[pid] = rec
}

// Remove deletes and returns the record for pid, reporting whether it
// was present. Called exactly once per PID, by the reaper.
func (t *Table) Remove(pid int) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.m[pid]
	if ok {
		delete(t.m, pid)
	}
	return rec, ok
}

// Len reports the number of tracked children. Used by tests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
