//go:build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp - portable no-op socket option hook.

package tcp

import "syscall"

func reuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
