// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ctlsock

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/opsctl/control/internal/action"
	"github.com/opsctl/control/internal/paths"
)

// Chat sends "<verb> <name>" to the running supervisor's control socket
// and returns the PID it reports. A connection failure means no
// supervisor is listening and is reported as action.ErrNoDaemon.
func Chat(p paths.Policy, verb, name string) (int, error) {
	conn, err := net.Dial("unix", p.SockFile())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", action.ErrNoDaemon, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(verb + " " + name)); err != nil {
		return 0, fmt.Errorf("%w: %v", action.ErrNoDaemon, err)
	}

	buf := make([]byte, responseBufSize)
	n, err := conn.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", action.ErrNoDaemon, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		return 0, fmt.Errorf("malformed control socket response: %w", err)
	}
	return pid, nil
}
