// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestIsExpectedCloseError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("reading: %w", io.EOF), true},
		{"closed", net.ErrClosed, true},
		{"epipe", &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}, true},
		{"econnreset", &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, true},
		{"other errno", syscall.EACCES, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsExpectedCloseError(tc.err); got != tc.want {
				t.Errorf("IsExpectedCloseError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	if IsTimeout(errors.New("boom")) {
		t.Error("plain error reported as timeout")
	}
	if !IsTimeout(fmt.Errorf("writing: %w", os.ErrDeadlineExceeded)) {
		t.Error("deadline exceeded not reported as timeout")
	}
}

func TestListenConfigSetsSocketOptions(t *testing.T) {
	listener, err := ListenConfig().Listen(context.Background(), "tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	raw, err := listener.(*net.TCPListener).SyscallConn()
	if err != nil {
		t.Fatalf("SyscallConn: %v", err)
	}
	var reuse, noDelay int
	var optionErr error
	raw.Control(func(fd uintptr) {
		reuse, optionErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR)
		if optionErr != nil {
			return
		}
		noDelay, optionErr = unix.GetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY)
	})
	if optionErr != nil {
		t.Fatalf("getsockopt: %v", optionErr)
	}
	if reuse == 0 {
		t.Error("SO_REUSEADDR not set on listener")
	}
	if noDelay == 0 {
		t.Error("TCP_NODELAY not set on listener")
	}
}

func TestShutdownUnblocksRead(t *testing.T) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	client, err := net.Dial("tcp4", listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(5 * time.Second): //nolint:realclock test hang prevention
		t.Fatal("accept timed out")
	}
	defer server.Close()

	if err := TuneConn(server); err != nil {
		t.Fatalf("TuneConn: %v", err)
	}

	readDone := make(chan error, 1)
	go func() {
		buffer := make([]byte, 16)
		_, err := server.Read(buffer)
		readDone <- err
	}()

	if err := Shutdown(server); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-readDone:
		if err == nil {
			t.Fatal("Read returned nil error after shutdown")
		}
	case <-time.After(5 * time.Second): //nolint:realclock test hang prevention
		t.Fatal("Read still blocked after Shutdown")
	}
}

func TestShutdownPipeIsNoop(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	if err := Shutdown(a); err != nil {
		t.Fatalf("Shutdown(pipe) = %v, want nil", err)
	}
}
