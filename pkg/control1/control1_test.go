// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package control1

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_RefusesWhenNotPID1(t *testing.T) {
	if os.Getpid() == 1 {
		t.Skip("test is running as PID 1")
	}
	err := Run(DefaultConfig())
	assert.ErrorIs(t, err, ErrNotPID1)
}

func TestParseMounts(t *testing.T) {
	sample := "proc /proc proc rw,nosuid,nodev,noexec 0 0\n" +
		"devtmpfs /dev devtmpfs rw,nosuid 0 0\n" +
		"tmpfs /run tmpfs rw,nosuid,nodev 0 0\n"

	mounted := parseMounts(strings.NewReader(sample))
	assert.True(t, mounted["/proc"])
	assert.True(t, mounted["/dev"])
	assert.True(t, mounted["/run"])
	assert.False(t, mounted["/dev/pts"])
}

func TestParseMounts_Empty(t *testing.T) {
	mounted := parseMounts(strings.NewReader(""))
	assert.Empty(t, mounted)
}
