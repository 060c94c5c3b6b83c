// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package paths maps the effective UID to the configuration root, the
// enabled-set directory, and the runtime directory, and derives the
// well-known file paths underneath them. Nothing is cached: a change in
// privileges between calls is reflected immediately.
package paths

import (
	"os"
	"path/filepath"
)

// Policy is a snapshot of the path layout for the current effective UID.
type Policy struct {
	ConfDir    string
	EnabledDir string
	RunDir     string
}

// Current derives the path policy for the process's current effective
// UID. Root gets /etc/control and /run/control; everyone else gets
// ~/.control and ~/.control/run.
func Current() Policy {
	if os.Geteuid() == 0 {
		return Policy{
			ConfDir:    "/etc/control",
			EnabledDir: "/etc/control/enabled",
			RunDir:     "/run/control",
		}
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	confDir := filepath.Join(home, ".control")
	return Policy{
		ConfDir:    confDir,
		EnabledDir: filepath.Join(confDir, "enabled"),
		RunDir:     filepath.Join(confDir, "run"),
	}
}

// ServiceFile returns the path to a service's descriptor, e.g.
// /etc/control/nginx.toml.
func (p Policy) ServiceFile(name string) string {
	return filepath.Join(p.ConfDir, name+".toml")
}

// EnabledFile returns the path to a service's enabled-set symlink.
func (p Policy) EnabledFile(name string) string {
	return filepath.Join(p.EnabledDir, name+".toml")
}

// LockFile returns the path to the supervisor's singleton lock.
func (p Policy) LockFile() string {
	return filepath.Join(p.RunDir, "control.lock")
}

// SockFile returns the path to the control socket.
func (p Policy) SockFile() string {
	return filepath.Join(p.RunDir, "control.sock")
}

// PIDFile returns the path to a service's PID-file.
func (p Policy) PIDFile(name string) string {
	return filepath.Join(p.RunDir, name+".pid")
}
