// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package svc

import (
	"os"
	"strconv"
	"strings"

	"github.com/opsctl/control/internal/paths"
)

// PutPID writes a service's PID-file. Called by the spawner immediately
// after a successful spawn, before the child record is inserted into the
// child table (§5 ordering guarantee).
func PutPID(p paths.Policy, name string, pid int) error {
	return os.WriteFile(p.PIDFile(name), []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// GetPID reads a service's PID-file. A missing file or unparsable
// contents both mean "not running"; GetPID does not distinguish them.
func GetPID(p paths.Policy, name string) (pid int, running bool) {
	data, err := os.ReadFile(p.PIDFile(name))
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// DelPID removes a service's PID-file. Called by the reaper.
func DelPID(p paths.Policy, name string) error {
	err := os.Remove(p.PIDFile(name))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ListNamed lists the service names present as <name>.<ext> files
// directly under dir (no recursion). Used to enumerate the enabled-set
// and the PID-file directory.
func ListNamed(dir, ext string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	suffix := "." + ext
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := e.Name()
		if strings.HasSuffix(base, suffix) {
			names = append(names, strings.TrimSuffix(base, suffix))
		}
	}
	return names
}
