// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package control1 implements the PID-1 half of the supervisor: mounting
// the early filesystems, spawning the controller, and reaping every
// orphan on the system until a reboot or power-off signal arrives.
package control1

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrNotPID1 is returned by Run when the calling process is not the
// kernel's PID 1, matching the original "definite" binary's own check.
var ErrNotPID1 = fmt.Errorf("process id is not 1")

// Config points Run at the controller binary to spawn once the early
// filesystems are mounted.
type Config struct {
	ControllerPath string
	ControllerArgs []string
}

// DefaultConfig returns the conventional /bin/control start-all wiring.
func DefaultConfig() Config {
	return Config{
		ControllerPath: "/bin/control",
		ControllerArgs: []string{"start-all"},
	}
}

type mountSpec struct {
	source string
	target string
	fstype string
	flags  uintptr
	data   string
}

// earlyMounts is the fixed mount table applied after /proc and /dev, which
// need the remount-aware handling in mountEarlyFilesystems.
var earlyMounts = []mountSpec{
	{"devpts", "/dev/pts", "devpts", 0, "gid=5,mode=620"},
	{"tmpfs", "/dev/shm", "tmpfs", 0, "mode=0777"},
	{"sysfs", "/sys", "sysfs", unix.MS_NODEV, ""},
	{"tmpfs", "/run", "tmpfs", unix.MS_NODEV, "mode=0755"},
	{"tmpfs", "/tmp", "tmpfs", unix.MS_NODEV, "mode=1777"},
}

// Run performs the PID-1 lifecycle: mount early filesystems, spawn the
// controller, block reaping every child until a terminal signal arrives,
// sync, unmount, and reboot or power off. It never returns under normal
// operation; it returns ErrNotPID1 immediately if called from any other
// process.
func Run(cfg Config) error {
	if os.Getpid() != 1 {
		return ErrNotPID1
	}

	mountEarlyFilesystems()

	cmd := exec.Command(cfg.ControllerPath, cfg.ControllerArgs...)
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "control-init: start controller: %v\n", err)
	}

	var rebootCmd atomic.Int32
	rebootCmd.Store(unix.LINUX_REBOOT_CMD_RESTART)

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGALRM)

	go handleSignals(sigCh, &rebootCmd, cfg)

	reapForever()

	unix.Sync()
	unmountFilesystems()
	unix.Reboot(int(rebootCmd.Load()))

	return nil
}

// handleSignals mirrors the original shutdown sequence: SIGTERM means
// power off, SIGUSR1 means restart. Either one runs "control stop-all" to
// completion (bounded by a 30s alarm), then sends SIGTERM to every
// process so the blocking reap loop in Run drains to empty.
func handleSignals(sigCh <-chan os.Signal, rebootCmd *atomic.Int32, cfg Config) {
	for sig := range sigCh {
		switch sig {
		case syscall.SIGALRM:
			syscall.Kill(-1, syscall.SIGKILL)
			continue
		case syscall.SIGTERM:
			rebootCmd.Store(unix.LINUX_REBOOT_CMD_POWER_OFF)
		case syscall.SIGUSR1:
			rebootCmd.Store(unix.LINUX_REBOOT_CMD_RESTART)
		default:
			continue
		}

		unix.Alarm(30)

		// stop-all runs off this loop so a SIGALRM arriving while it is
		// still running is handled.
		go func() {
			stopAll := exec.Command(controlBinary(cfg), "stop-all")
			if err := stopAll.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "control-init: stop-all: %v\n", err)
			}

			syscall.Kill(-1, syscall.SIGTERM)
		}()
	}
}

func controlBinary(cfg Config) string {
	if cfg.ControllerPath != "" {
		return cfg.ControllerPath
	}
	return "/bin/control"
}

// reapForever blocks in wait(2) until the kernel reports there are no
// more children (ECHILD), which only happens once every process on the
// system, reparented to PID 1, has exited.
func reapForever() {
	for {
		var status unix.WaitStatus
		_, err := unix.Wait4(-1, &status, 0, nil)
		if err == unix.ECHILD {
			return
		}
	}
}

func mountEarlyFilesystems() {
	mounted := mountedPaths()

	unix.Mount("proc", "/proc", "proc", unix.MS_NOEXEC|unix.MS_NOSUID|unix.MS_NODEV, "")

	if mounted["/dev"] {
		unix.Mount("devtmpfs", "/dev", "devtmpfs", unix.MS_NOEXEC|unix.MS_NOSUID|unix.MS_REMOUNT, "")
	} else {
		unix.Mount("devtmpfs", "/dev", "devtmpfs", unix.MS_NOEXEC|unix.MS_NOSUID, "")
	}

	os.MkdirAll("/dev/pts", 0o755)
	os.MkdirAll("/dev/shm", 0o1777)

	for _, m := range earlyMounts {
		unix.Mount(m.source, m.target, m.fstype, unix.MS_NOEXEC|unix.MS_NOSUID|m.flags, m.data)
	}
}

// mountedPaths reads /proc/mounts and returns the set of current mount
// points, used to decide whether /dev needs a fresh mount or a remount.
func mountedPaths() map[string]bool {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil
	}
	defer f.Close()
	return parseMounts(f)
}

// parseMounts extracts the mount-point column (field two) of fstab-style
// mount table lines, as found in /proc/mounts.
func parseMounts(r io.Reader) map[string]bool {
	mounted := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 {
			mounted[fields[1]] = true
		}
	}
	return mounted
}

// unmountFilesystems unmounts everything /proc/mounts lists, falling back
// to a read-only remount for anything that refuses to unmount (typically
// the root filesystem itself).
func unmountFilesystems() {
	for target := range mountedPaths() {
		if err := unix.Unmount(target, 0); err != nil {
			unix.Mount("", target, "", unix.MS_REMOUNT|unix.MS_RDONLY, "")
		}
	}
}

// reboot is used by the halt/reboot argv[0] aliases: send PID 1 the
// signal that asks it to power off or restart, without being PID 1
// itself.
func reboot(sig syscall.Signal) error {
	return syscall.Kill(1, sig)
}

// Halt asks the running PID-1 process to power off the system.
func Halt() error {
	return reboot(syscall.SIGTERM)
}

// Reboot asks the running PID-1 process to restart the system.
func Reboot() error {
	return reboot(syscall.SIGUSR1)
}
