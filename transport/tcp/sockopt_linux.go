//go:build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - Linux socket options for listener binding.

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddr lets a run rebind its fixed base ports immediately after a
// previous run released them, instead of waiting out TIME_WAIT.
func reuseAddr(network, address string, c syscall.RawConn) error {
	var soErr error
	if err := c.Control(func(fd uintptr) {
		soErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return soErr
}
