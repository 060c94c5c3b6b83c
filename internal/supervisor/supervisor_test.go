// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsctl/control/internal/childtable"
	"github.com/opsctl/control/internal/paths"
)

func newPolicy(t *testing.T) paths.Policy {
	t.Helper()
	dir := t.TempDir()
	p := paths.Policy{
		ConfDir:    filepath.Join(dir, "conf"),
		EnabledDir: filepath.Join(dir, "conf", "enabled"),
		RunDir:     filepath.Join(dir, "run"),
	}
	require.NoError(t, os.MkdirAll(p.ConfDir, 0o755))
	require.NoError(t, os.MkdirAll(p.EnabledDir, 0o755))
	require.NoError(t, os.MkdirAll(p.RunDir, 0o755))
	return p
}

func TestStopAll_NothingToStopReturnsImmediately(t *testing.T) {
	p := newPolicy(t)
	require.NoError(t, StopAll(p))
}

func TestWatchEnabled_StartsServiceOnSymlinkCreation(t *testing.T) {
	p := newPolicy(t)
	require.NoError(t, os.WriteFile(p.ServiceFile("sleeper"),
		[]byte(`control:{descr:"sleeper"} process:{start_cmd:["/bin/sleep","5"]}`), 0o644))

	tbl := childtable.New()
	stop := watchEnabled(p, tbl)
	defer stop()

	require.NoError(t, os.Symlink("../sleeper.toml", p.EnabledFile("sleeper")))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if tbl.Len() == 1 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.Equal(t, 1, tbl.Len())

	data, err := os.ReadFile(p.PIDFile("sleeper"))
	if err == nil {
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr == nil {
			_ = syscall.Kill(-pid, syscall.SIGKILL)
		}
	}
}
