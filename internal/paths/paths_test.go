// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent_Root(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("test must run as root")
	}

	p := Current()
	assert.Equal(t, "/etc/control", p.ConfDir)
	assert.Equal(t, "/etc/control/enabled", p.EnabledDir)
	assert.Equal(t, "/run/control", p.RunDir)
}

func TestCurrent_NonRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("test must run as non-root")
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}

	p := Current()
	assert.Equal(t, filepath.Join(home, ".control"), p.ConfDir)
	assert.Equal(t, filepath.Join(home, ".control", "enabled"), p.EnabledDir)
	assert.Equal(t, filepath.Join(home, ".control", "run"), p.RunDir)
}

func TestPolicy_FilePaths(t *testing.T) {
	p := Policy{
		ConfDir:    "/etc/control",
		EnabledDir: "/etc/control/enabled",
		RunDir:     "/run/control",
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ServiceFile", p.ServiceFile("nginx"), "/etc/control/nginx.toml"},
		{"EnabledFile", p.EnabledFile("nginx"), "/etc/control/enabled/nginx.toml"},
		{"LockFile", p.LockFile(), "/run/control/control.lock"},
		{"SockFile", p.SockFile(), "/run/control/control.sock"},
		{"PIDFile", p.PIDFile("nginx"), "/run/control/nginx.pid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
