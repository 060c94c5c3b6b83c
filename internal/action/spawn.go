// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"github.com/opsctl/control/internal/svc"
)

// spawn launches argv as a detached, process-group-leader child and returns
// its PID without waiting for it to exit. The system.user/group/workdir and
// env declarations from d apply; user/group are only honored when the
// caller is effectively root, matching the kernel's own setuid/setgid
// restriction. The child is reaped by the supervisor's own Wait4(-1, ...)
// loop, tracked or not (§5) — spawn must never wait on it itself, or the
// two reapers race for the same exit status.
func spawn(d *svc.Descriptor, argv []string) (pid int, err error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("%w: empty command", ErrCannotSpawn)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	cmd.Env = os.Environ()
	for k, v := range d.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if d.System != nil {
		if d.System.WorkDir != "" {
			cmd.Dir = d.System.WorkDir
		}
		if os.Geteuid() == 0 && (d.System.User != "" || d.System.Group != "") {
			cred, credErr := credentialFor(d.System.User, d.System.Group)
			if credErr != nil {
				return 0, fmt.Errorf("%w: %v", ErrCannotSpawn, credErr)
			}
			cmd.SysProcAttr.Credential = cred
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCannotSpawn, err)
	}

	return cmd.Process.Pid, nil
}

// spawnAndWait runs argv to completion, for one-time services only: the
// caller blocks until the descriptor's own work is done and there is
// nothing left to track. Only a failure to start the command is an error;
// the command's own exit status is not reported.
func spawnAndWait(d *svc.Descriptor, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty command", ErrCannotSpawn)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = os.Environ()
	for k, v := range d.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	if d.System != nil && d.System.WorkDir != "" {
		cmd.Dir = d.System.WorkDir
	}
	if d.System != nil && os.Geteuid() == 0 && (d.System.User != "" || d.System.Group != "") {
		cred, credErr := credentialFor(d.System.User, d.System.Group)
		if credErr != nil {
			return fmt.Errorf("%w: %v", ErrCannotSpawn, credErr)
		}
		cmd.SysProcAttr.Credential = cred
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrCannotSpawn, err)
	}
	_ = cmd.Wait()
	return nil
}

func credentialFor(userName, groupName string) (*syscall.Credential, error) {
	cred := &syscall.Credential{}

	if userName != "" {
		u, err := user.Lookup(userName)
		if err != nil {
			return nil, fmt.Errorf("lookup user %q: %w", userName, err)
		}
		uid, err := strconv.Atoi(u.Uid)
		if err != nil {
			return nil, fmt.Errorf("user %q has non-numeric uid %q", userName, u.Uid)
		}
		cred.Uid = uint32(uid)
		if groupName == "" {
			gid, err := strconv.Atoi(u.Gid)
			if err == nil {
				cred.Gid = uint32(gid)
			}
		}
	}

	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return nil, fmt.Errorf("lookup group %q: %w", groupName, err)
		}
		gid, err := strconv.Atoi(g.Gid)
		if err != nil {
			return nil, fmt.Errorf("group %q has non-numeric gid %q", groupName, g.Gid)
		}
		cred.Gid = uint32(gid)
	}

	return cred, nil
}
