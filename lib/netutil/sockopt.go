// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// ListenConfig returns a net.ListenConfig whose Control hook sets
// SO_REUSEADDR and TCP_NODELAY on the listening socket before bind.
// Linux copies TCP_NODELAY to accepted sockets; TuneConn sets it again
// on each accepted connection regardless.
func ListenConfig() *net.ListenConfig {
	return &net.ListenConfig{Control: controlListener}
}

func controlListener(network, address string, raw syscall.RawConn) error {
	var optionErr error
	err := raw.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			optionErr = fmt.Errorf("setting SO_REUSEADDR: %w", err)
			return
		}
		if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
			optionErr = fmt.Errorf("setting TCP_NODELAY: %w", err)
		}
	})
	if err != nil {
		return err
	}
	return optionErr
}

// TuneConn disables Nagle batching on an accepted TCP connection.
// Non-TCP connections (net.Pipe in tests) are left alone.
func TuneConn(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	return tcpConn.SetNoDelay(true)
}

// Shutdown issues shutdown(SHUT_RDWR) on conn's descriptor. For
// connections without a descriptor it falls back to CloseRead and
// CloseWrite when available. Errors from a peer that already went away
// (ENOTCONN) are not reported.
func Shutdown(conn net.Conn) error {
	syscallConn, ok := conn.(syscall.Conn)
	if !ok {
		return halfClose(conn)
	}
	raw, err := syscallConn.SyscallConn()
	if err != nil {
		return halfClose(conn)
	}

	var shutdownErr error
	if err := raw.Control(func(fd uintptr) {
		shutdownErr = unix.Shutdown(int(fd), unix.SHUT_RDWR)
	}); err != nil {
		return err
	}
	if errors.Is(shutdownErr, unix.ENOTCONN) {
		return nil
	}
	return shutdownErr
}

func halfClose(conn net.Conn) error {
	type halfCloser interface {
		CloseRead() error
		CloseWrite() error
	}
	closer, ok := conn.(halfCloser)
	if !ok {
		return nil
	}
	return errors.Join(closer.CloseRead(), closer.CloseWrite())
}
