// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package supervisor implements the control daemon's main loop: start the
// enabled set in dependency order, serve the control socket, and reap
// children forever, restarting the ones whose policy calls for it (§4.2,
// §4.5, §4.6).
package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sys/unix"

	"github.com/opsctl/control/internal/action"
	"github.com/opsctl/control/internal/childtable"
	"github.com/opsctl/control/internal/ctlsock"
	"github.com/opsctl/control/internal/order"
	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
	"github.com/opsctl/control/internal/table"
)

// childEnv marks a process as the already-detached supervisor child, so
// Daemonize doesn't re-exec a second time.
const childEnv = "CONTROL_SUPERVISOR_CHILD"

// Daemonize re-execs the current binary with argv unchanged, detached into
// its own session, and returns as soon as the child has been started. Go's
// runtime cannot safely fork(2) once goroutines and the scheduler are
// running, so this stands in for the traditional fork-then-exit-parent
// daemonization a C supervisor would use.
func Daemonize() error {
	if os.Getenv(childEnv) == "1" {
		return Run(paths.Current())
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable for daemonization: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), childEnv+"=1")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err == nil {
		cmd.Stdout = devnull
		cmd.Stderr = devnull
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start supervisor: %w", err)
	}
	return nil
}

// Run acquires the singleton lock, starts the enabled set, serves the
// control socket, and blocks reaping children until it receives SIGTERM.
// It is only meant to be called from the detached child Daemonize starts.
func Run(p paths.Policy) error {
	if err := os.MkdirAll(p.RunDir, 0o755); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}

	lockFile, err := os.OpenFile(p.LockFile(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		table.PrintErr("control", "Already running")
		return nil
	}
	defer unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	defer os.Remove(p.LockFile())

	if err := lockFile.Truncate(0); err != nil {
		return err
	}
	if _, err := lockFile.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}

	// Claim subreaper status so a service's grandchildren reparent to the
	// supervisor, not to PID 1, when their immediate parent exits first —
	// otherwise they'd escape reap() and never factor into restart policy.
	if err := unix.Prctl(unix.PR_SET_CHILD_SUBREAPER, 1, 0, 0, 0); err != nil {
		fmt.Fprintf(os.Stderr, "control: set subreaper: %v\n", err)
	}

	var stopping atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		stopping.Store(true)
	}()

	tbl := childtable.New()

	names := svc.ListNamed(p.EnabledDir, "toml")
	for _, name := range order.Order(p, names) {
		table.LogBold("Starting", name)
		if _, err := action.Start(p, tbl, name); err != nil && !errors.Is(err, action.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "control: start %s: %v\n", name, err)
		}
	}

	ln, err := ctlsock.Serve(p, tbl)
	if err != nil {
		return err
	}
	defer ln.Close()
	defer os.Remove(p.SockFile())

	stopWatch := watchEnabled(p, tbl)
	defer stopWatch()

	reap(p, tbl, &stopping)

	return nil
}

// watchEnabled starts a services that get enabled while the supervisor is
// already running: a new symlink appearing under the enabled-set directory
// is started immediately, without waiting for the next start-all. It
// returns a function that stops the watch. Watch setup failures are
// logged and otherwise ignored — enable still works, it just requires a
// restart to take effect until the next one.
func watchEnabled(p paths.Policy, tbl *childtable.Table) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "control: enabled-set watch disabled: %v\n", err)
		return func() {}
	}
	if err := watcher.Add(p.EnabledDir); err != nil {
		fmt.Fprintf(os.Stderr, "control: enabled-set watch disabled: %v\n", err)
		watcher.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create) == 0 {
					continue
				}
				name := strings.TrimSuffix(filepath.Base(event.Name), ".toml")
				if name == "" || !strings.HasSuffix(event.Name, ".toml") {
					continue
				}
				table.LogBold("Starting", name)
				if _, err := action.Start(p, tbl, name); err != nil && !errors.Is(err, action.ErrNotFound) {
					fmt.Fprintf(os.Stderr, "control: start %s: %v\n", name, err)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }
}

// reap blocks in wait(2) until stopping is set and either wait returns an
// error (ECHILD/EINTR) or the last tracked child has been reaped. A child that
// exited dirty (nonzero status, or a signal with a core dump) is
// restarted when its descriptor asked for restart on failure; one that
// asked for restart_always is restarted regardless of how it exited.
func reap(p paths.Policy, tbl *childtable.Table, stopping *atomic.Bool) {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, 0, nil)
		if err != nil {
			if stopping.Load() {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		rec, ok := tbl.Remove(pid)
		if !ok {
			continue
		}
		svc.DelPID(p, rec.ServiceName)

		dirty := false
		switch {
		case status.Exited():
			dirty = status.ExitStatus() != 0
		case status.Signaled():
			dirty = coreDumped(status)
		}

		if (dirty && rec.RestartOnFail) || rec.RestartAlways {
			if _, err := action.Start(p, tbl, rec.ServiceName); err != nil && !errors.Is(err, action.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "control: restart %s: %v\n", rec.ServiceName, err)
			}
		}

		if stopping.Load() && tbl.Len() == 0 {
			return
		}
	}
}

// StopAll stops every enabled or currently-running service, in reverse
// start order, via the running daemon's control socket, then terminates
// the daemon itself and waits for its lock file to disappear.
func StopAll(p paths.Policy) error {
	enabled := svc.ListNamed(p.EnabledDir, "toml")
	running := svc.ListNamed(p.RunDir, "pid")

	seen := make(map[string]bool, len(enabled)+len(running))
	all := make([]string, 0, len(enabled)+len(running))
	for _, name := range enabled {
		if !seen[name] {
			seen[name] = true
			all = append(all, name)
		}
	}
	for _, name := range running {
		if !seen[name] {
			seen[name] = true
			all = append(all, name)
		}
	}

	for _, name := range order.Reverse(order.Order(p, all)) {
		meta := svc.GetMeta(p, name)
		if meta.Descriptor == nil || !(meta.Descriptor.Control.OneTime || meta.Running) {
			continue
		}
		table.LogBold("Stopping", name)
		if _, err := ctlsock.Chat(p, "stop", name); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	data, err := os.ReadFile(p.LockFile())
	if err == nil {
		if pid, convErr := strconv.Atoi(strings.TrimSpace(string(data))); convErr == nil {
			syscall.Kill(pid, syscall.SIGTERM)
		}
	}

	for {
		if _, err := os.Stat(p.LockFile()); os.IsNotExist(err) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// RestartAll stops the running daemon (if any) and starts a fresh one.
func RestartAll(p paths.Policy) error {
	if _, err := os.Stat(p.LockFile()); err == nil {
		if err := StopAll(p); err != nil {
			return err
		}
	}
	return Daemonize()
}

func coreDumped(status unix.WaitStatus) bool {
	return status.CoreDump()
}
