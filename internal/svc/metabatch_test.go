// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package svc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsctl/control/internal/paths"
)

func TestGetMetaBatch_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	p := paths.Policy{
		ConfDir:    dir,
		EnabledDir: filepath.Join(dir, "enabled"),
		RunDir:     filepath.Join(dir, "run"),
	}
	require.NoError(t, os.MkdirAll(p.EnabledDir, 0o755))
	require.NoError(t, os.MkdirAll(p.RunDir, 0o755))

	names := []string{"c", "a", "b"}
	for _, n := range names {
		require.NoError(t, os.WriteFile(p.ServiceFile(n),
			[]byte(`control:{descr:"`+n+`"} process:{start_cmd:["/bin/true"]}`), 0o644))
	}

	metas := GetMetaBatch(p, names)
	require.Len(t, metas, 3)
	for i, n := range names {
		assert.Equal(t, n, metas[i].Name)
		assert.True(t, metas[i].Valid)
	}
}

func TestGetMetaBatch_Empty(t *testing.T) {
	p := paths.Policy{ConfDir: t.TempDir()}
	assert.Empty(t, GetMetaBatch(p, nil))
}
