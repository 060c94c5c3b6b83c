// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package svc

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidDescriptor(t *testing.T) {
	path := writeDescriptorFile(t, `{
		control: {
			descr: "nginx"
			depends: ["network"]
			restart: true
		}
		process: {
			start_cmd: ["/usr/sbin/nginx", "-g", "daemon off;"]
			stop_sig: 15
		}
	}`)

	d, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nginx", d.Control.Descr)
	assert.Equal(t, []string{"network"}, d.Control.Depends)
	assert.True(t, d.Control.Restart)
	assert.Equal(t, []string{"/usr/sbin/nginx", "-g", "daemon off;"}, d.Process.StartCmd)
	assert.Equal(t, int(syscall.SIGTERM), d.Process.StopSig)
}

func TestLoad_HJSONFeatures(t *testing.T) {
	// comments, unquoted keys, and a trailing comma are all HJSON, not JSON.
	// A quoteless string runs to the end of its line, so those items carry
	// no comma of their own.
	path := writeDescriptorFile(t, `{
		// this is a comment
		control: {
			descr: nginx
		}
		process: {
			start_cmd: [
				/usr/sbin/nginx
				-g
				"daemon off;",
			]
		}
	}`)

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nginx", d.Control.Descr)
	assert.Equal(t, []string{"/usr/sbin/nginx", "-g", "daemon off;"}, d.Process.StartCmd)
}

func TestLoad_DashCaseProcessKeysNormalized(t *testing.T) {
	path := writeDescriptorFile(t, `{
		control: { descr: "nginx", one-time: true, restart-always: true }
		process: {
			start-cmd: ["/usr/sbin/nginx"]
			stop-cmd: ["/usr/sbin/nginx", "-s", "quit"]
			restart-sig: 12
		}
	}`)

	d, err := Load(path)
	require.NoError(t, err)

	assert.True(t, d.Control.OneTime)
	assert.True(t, d.Control.RestartAlways)
	assert.Equal(t, []string{"/usr/sbin/nginx"}, d.Process.StartCmd)
	assert.Equal(t, []string{"/usr/sbin/nginx", "-s", "quit"}, d.Process.StopCmd)
	require.NotNil(t, d.Process.RestartSig)
	assert.Equal(t, 12, *d.Process.RestartSig)
}

func TestLoad_SnakeCaseTakesPrecedenceOverDashCase(t *testing.T) {
	// when both spellings are present, the already-snake_case value wins
	// and the dash-case one is dropped rather than overwriting it.
	path := writeDescriptorFile(t, `{
		control: { descr: "nginx" }
		process: {
			start_cmd: ["/usr/sbin/nginx"]
			start-cmd: ["/bin/true"]
		}
	}`)

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/sbin/nginx"}, d.Process.StartCmd)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeDescriptorFile(t, `{
		control: { descr: "nginx" }
		process: { start_cmd: ["/usr/sbin/nginx"] }
	}`)

	d, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int(syscall.SIGTERM), d.Process.StopSig)
	assert.Equal(t, int(syscall.SIGHUP), d.Process.ReloadSig)
	assert.Nil(t, d.Process.RestartSig)
	assert.False(t, d.Control.OneTime)
	assert.False(t, d.Control.Restart)
}

func TestLoad_SystemAndEnv(t *testing.T) {
	path := writeDescriptorFile(t, `{
		control: { descr: "worker" }
		process: { start_cmd: ["/bin/worker"] }
		system: { user: "nobody", group: "nogroup", workdir: "/var/lib/worker" }
		env: { LOG_LEVEL: "debug" }
	}`)

	d, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, d.System)
	assert.Equal(t, "nobody", d.System.User)
	assert.Equal(t, "nogroup", d.System.Group)
	assert.Equal(t, "/var/lib/worker", d.System.WorkDir)
	assert.Equal(t, "debug", d.Env["LOG_LEVEL"])
}

func TestLoad_MissingStartCmdIsError(t *testing.T) {
	path := writeDescriptorFile(t, `{ control: { descr: "nginx" } }`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "process.start_cmd is required")
}

func TestLoad_InvalidHJSONIsError(t *testing.T) {
	path := writeDescriptorFile(t, `{ control: { descr: "nginx" unterminated`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorContains(t, err, "read")
}

func writeDescriptorFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svc.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
