// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package order

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsctl/control/internal/paths"
)

func writeService(t *testing.T, dir, name, depends string) {
	t.Helper()
	body := "control: {\n  descr: \"" + name + "\"\n"
	if depends != "" {
		body += "  depends: [" + depends + "]\n"
	}
	body += "}\nprocess: {\n  start_cmd: [\"/bin/true\"]\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".toml"), []byte(body), 0o644))
}

func TestOrder_LinearDependency(t *testing.T) {
	dir := t.TempDir()
	writeService(t, dir, "A", `"B"`)
	writeService(t, dir, "B", `"C"`)
	writeService(t, dir, "C", "")

	p := paths.Policy{ConfDir: dir}
	got := Order(p, []string{"A", "B", "C"})

	assert.Equal(t, []string{"C", "B", "A"}, got)
	assert.Equal(t, []string{"A", "B", "C"}, Reverse(got))
}

func TestOrder_IgnoresMissingDependency(t *testing.T) {
	dir := t.TempDir()
	writeService(t, dir, "A", `"Z"`)
	writeService(t, dir, "B", "")

	p := paths.Policy{ConfDir: dir}
	got := Order(p, []string{"A", "B"})

	assert.ElementsMatch(t, []string{"A", "B"}, got)
	assert.Len(t, got, 2)
}

func TestOrder_DropsUnparsableDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeService(t, dir, "A", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.toml"), []byte("not valid {{{"), 0o644))

	p := paths.Policy{ConfDir: dir}
	got := Order(p, []string{"A", "bad"})

	assert.Equal(t, []string{"A"}, got)
}

func TestOrder_CycleTerminates(t *testing.T) {
	dir := t.TempDir()
	writeService(t, dir, "A", `"B"`)
	writeService(t, dir, "B", `"A"`)

	p := paths.Policy{ConfDir: dir}
	got := Order(p, []string{"A", "B"})

	assert.ElementsMatch(t, []string{"A", "B"}, got)
}
