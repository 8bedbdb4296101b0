// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bufio"
	"net"
	"strings"
	"time"
)

// ReadLine reads one '\n'-terminated line from reader, failing the test
// if none arrives within timeout. The trailing newline is stripped.
// conn supplies the read deadline and is usually the connection
// underlying reader.
func ReadLine(t T, conn net.Conn, reader *bufio.Reader, timeout time.Duration) string {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil { //nolint:realclock socket deadline
		t.Fatalf("SetReadDeadline: %v", err)
	}
	defer conn.SetReadDeadline(time.Time{})

	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("reading line: %v (partial %q)", err, line)
	}
	return strings.TrimSuffix(line, "\n")
}
