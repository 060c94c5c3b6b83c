// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ctlsock implements the supervisor's control socket: a UNIX
// domain socket that serializes "start" and "stop" requests from the CLI
// into the supervisor's single child table, so starting a service and
// reaping one never race (§4.6).
package ctlsock

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/opsctl/control/internal/action"
	"github.com/opsctl/control/internal/childtable"
	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
)

const (
	requestBufSize  = 100
	responseBufSize = 20
)

// Serve removes any stale socket file, binds a new listener, and accepts
// connections until the listener is closed (typically by the caller,
// after the supervisor decides to shut down). It never returns an error
// for a single bad request; malformed or unknown commands just answer 0.
func Serve(p paths.Policy, tbl *childtable.Table) (net.Listener, error) {
	sockPath := p.SockFile()
	if _, err := os.Lstat(sockPath); err == nil {
		if err := os.Remove(sockPath); err != nil {
			return nil, fmt.Errorf("remove stale control socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("bind control socket: %w", err)
	}

	go acceptLoop(ln, p, tbl)

	return ln, nil
}

func acceptLoop(ln net.Listener, p paths.Policy, tbl *childtable.Table) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handle(conn, p, tbl)
	}
}

func handle(conn net.Conn, p paths.Policy, tbl *childtable.Table) {
	defer conn.Close()

	buf := make([]byte, requestBufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}

	fields := strings.SplitN(strings.TrimSpace(string(buf[:n])), " ", 2)
	if len(fields) < 2 {
		conn.Write([]byte("0"))
		return
	}
	verb, name := fields[0], fields[1]

	pid := dispatch(verb, name, p, tbl)
	conn.Write([]byte(strconv.Itoa(pid)))
}

// dispatch applies verb to name and returns the resulting PID, or 0 when
// the verb is unknown or the operation failed. It runs on the accept
// goroutine, one connection at a time, so two control-socket requests for
// the same service cannot both find it stopped and start it twice.
func dispatch(verb, name string, p paths.Policy, tbl *childtable.Table) int {
	switch verb {
	case "start":
		pid, err := action.Start(p, tbl, name)
		if err != nil {
			return 0
		}
		return pid
	case "stop":
		pid, running := svc.GetPID(p, name)
		if !running {
			return 0
		}
		if err := action.Stop(p, tbl, name); err != nil {
			return 0
		}
		return pid
	default:
		return 0
	}
}
