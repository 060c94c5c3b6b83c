// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// control is the supervisor's command-line front end: it starts and
// stops the daemon, and talks to a running one to manage individual
// services.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/opsctl/control/internal/action"
	"github.com/opsctl/control/internal/ctlsock"
	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
	"github.com/opsctl/control/internal/supervisor"
	"github.com/opsctl/control/internal/table"
)

func main() {
	p := paths.Current()
	args := os.Args[1:]

	if len(args) == 0 {
		cmdStatus(p, nil)
		return
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "start-all":
		err = supervisor.Daemonize()
	case "stop-all":
		err = supervisor.StopAll(p)
	case "restart-all":
		err = supervisor.RestartAll(p)
	case "start":
		cmdStart(p, rest)
	case "stop":
		cmdStop(p, rest)
	case "restart":
		cmdRestart(p, rest)
	case "reload":
		cmdReload(p, rest)
	case "enable":
		cmdEnable(p, rest)
	case "disable":
		cmdDisable(p, rest)
	case "status":
		cmdStatus(p, rest)
	case "check":
		cmdCheck(p, rest)
	case "version", "-v", "--version":
		fmt.Println("control 1.0")
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "control: unknown command %q\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "control: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: control <command> [service ...]

commands:
  start-all                start the supervisor and the enabled services
  stop-all                  stop all services and the supervisor
  restart-all               restart the supervisor
  start <name...>           start service(s)
  stop <name...>            stop service(s)
  restart <name...>         restart service(s)
  reload <name...>          reload service(s)
  enable <name...>          enable service(s) at start-all
  disable <name...>         disable service(s)
  status [name]             show service status
  check [name]              validate service descriptor syntax
`)
}

func cmdStart(p paths.Policy, names []string) {
	t := table.New()
	for _, name := range names {
		t.First(name)
		meta := svc.GetMeta(p, name)

		switch {
		case !meta.Exists:
			t.Field("Service not exists", table.Red)
		case !meta.Valid:
			t.Field("Invalid service", table.Red)
		case meta.Running:
			t.Field("Already running", table.Yellow)
		default:
			pid, err := ctlsock.Chat(p, "start", name)
			switch {
			case errors.Is(err, action.ErrNoDaemon):
				table.PrintErr("control", "Daemon is not running")
				return
			case err != nil || pid == 0:
				t.Field("Cannot start", table.Red)
			default:
				t.Field("Started", table.Green)
			}
		}
	}
	t.Print()
}

func cmdStop(p paths.Policy, names []string) {
	t := table.New()
	for _, name := range names {
		t.First(name)
		meta := svc.GetMeta(p, name)

		switch {
		case !meta.Exists:
			t.Field("Service not exists", table.Red)
		case !meta.Valid:
			t.Field("Invalid service", table.Red)
		case !meta.Descriptor.Control.OneTime && !meta.Running:
			t.Field("Not running", table.Yellow)
		default:
			pid, err := ctlsock.Chat(p, "stop", name)
			switch {
			case errors.Is(err, action.ErrNoDaemon):
				table.PrintErr("control", "Daemon is not running")
				return
			case err != nil || pid == 0:
				t.Field("Cannot stop", table.Red)
			default:
				t.Field("Stopped", table.Green)
			}
		}
	}
	t.Print()
}

func cmdRestart(p paths.Policy, names []string) {
	t := table.New()
	for _, name := range names {
		t.First(name)
		meta := svc.GetMeta(p, name)

		switch {
		case !meta.Exists:
			t.Field("Service not exists", table.Red)
		case !meta.Valid:
			t.Field("Invalid service", table.Red)
		case !meta.Running:
			t.Field("Not running", table.Yellow)
		default:
			restartViaFallback(p, t, name)
		}
	}
	t.Print()
}

// restartViaFallback tries the in-place restart mechanisms first; when a
// descriptor declares neither, it stops the old process and starts a new
// one through the supervisor's control socket, so the replacement lands
// in the daemon's child table.
func restartViaFallback(p paths.Policy, t *table.Table, name string) {
	err := action.Restart(p, name)
	if err == nil {
		t.Field("Restarted", table.Green)
		return
	}
	if !errors.Is(err, action.ErrNotFound) {
		t.Field("Cannot restart", table.Red)
		return
	}

	stopPID, err := ctlsock.Chat(p, "stop", name)
	if errors.Is(err, action.ErrNoDaemon) {
		table.PrintErr("control", "Daemon is not running")
		return
	}
	if err != nil || stopPID == 0 {
		t.Field("Cannot stop", table.Red)
		return
	}

	for i := 0; i < 200; i++ {
		if _, running := svc.GetPID(p, name); !running {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	startPID, err := ctlsock.Chat(p, "start", name)
	if err != nil || startPID == 0 {
		t.Field("Cannot start", table.Red)
		return
	}
	t.Field("Restarted", table.Green)
}

func cmdReload(p paths.Policy, names []string) {
	t := table.New()
	for _, name := range names {
		t.First(name)
		meta := svc.GetMeta(p, name)

		switch {
		case !meta.Exists:
			t.Field("Service not exists", table.Red)
		case !meta.Valid:
			t.Field("Invalid service", table.Red)
		case !meta.Running:
			t.Field("Not running", table.Yellow)
		default:
			if err := action.Reload(p, name); err != nil {
				t.Field("Cannot reload", table.Red)
			} else {
				t.Field("Reloaded", table.Green)
			}
		}
	}
	t.Print()
}

func cmdEnable(p paths.Policy, names []string) {
	t := table.New()
	for _, name := range names {
		t.First(name)
		meta := svc.GetMeta(p, name)

		switch {
		case !meta.Exists:
			t.Field("Service not exists", table.Red)
		case !meta.Valid:
			t.Field("Invalid service", table.Red)
		case meta.Enabled:
			t.Field("Already enabled", table.Yellow)
		default:
			if err := os.MkdirAll(p.EnabledDir, 0o755); err != nil {
				t.Field(err.Error(), table.Red)
				continue
			}
			if err := os.Symlink("../"+name+".toml", p.EnabledFile(name)); err != nil {
				t.Field(err.Error(), table.Red)
				continue
			}
			t.Field("Enabled", table.Green)
		}
	}
	t.Print()
}

func cmdDisable(p paths.Policy, names []string) {
	t := table.New()
	for _, name := range names {
		t.First(name)
		meta := svc.GetMeta(p, name)

		switch {
		case !meta.Exists:
			t.Field("Service not exists", table.Red)
		case !meta.Enabled:
			t.Field("Already disabled", table.Yellow)
		default:
			if err := os.Remove(p.EnabledFile(name)); err != nil {
				t.Field(err.Error(), table.Red)
				continue
			}
			t.Field("Disabled", table.Green)
		}
	}
	t.Print()
}

func cmdStatus(p paths.Policy, names []string) {
	if len(names) == 0 {
		names = svc.ListNamed(p.ConfDir, "toml")
		sort.Strings(names)
	}

	t := table.New()
	for i, meta := range svc.GetMetaBatch(p, names) {
		t.First(names[i])

		if !meta.Exists {
			t.Field("Not exists", table.Red).Empty(1)
			continue
		}
		if !meta.Valid {
			t.Field("Invalid", table.Red).Empty(1)
			continue
		}

		if meta.Enabled {
			t.Field("Enabled", table.Green)
		} else {
			t.Field("Disabled", table.Yellow)
		}

		switch {
		case meta.Descriptor.Control.OneTime:
			t.Field("One time", table.Green)
		case meta.Running && meta.Stale:
			t.Field("Running (stale pid)", table.Yellow)
		case meta.Running:
			t.Field("Running", table.Green)
		default:
			t.Field("Not running", table.Yellow)
		}
	}
	t.Print()
}

func cmdCheck(p paths.Policy, names []string) {
	if len(names) == 1 {
		meta := svc.GetMeta(p, names[0])
		if !meta.Exists {
			table.PrintErr(names[0], "Not exists")
			return
		}
		if meta.ParseErr != nil {
			fmt.Printf("\n  %s\n", meta.ParseErr)
			return
		}
		fmt.Printf("\n  %+v\n", *meta.Descriptor)
		return
	}

	allNames := svc.ListNamed(p.ConfDir, "toml")
	sort.Strings(allNames)

	t := table.New()
	for i, meta := range svc.GetMetaBatch(p, allNames) {
		t.PPFirst(p.ConfDir+"/", allNames[i], ".toml")
		if meta.Valid {
			t.Field("OK", table.Green)
		} else {
			t.Field("Invalid", table.Red)
		}
	}
	t.Print()
}
