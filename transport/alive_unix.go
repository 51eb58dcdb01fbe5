//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"errors"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-netclient/api"
)

// peerAlive polls the socket for readability without waiting. A readable
// socket whose peeked receive queue is empty has seen the peer's FIN.
func peerAlive(conn net.Conn) (bool, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return false, api.ErrNotSupported
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return false, err
	}
	var (
		alive bool
		perr  error
	)
	err = raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 0)
		switch {
		case errors.Is(err, unix.EINTR):
			alive = true
			return
		case err != nil:
			perr = err
			return
		case n == 0:
			alive = true
			return
		case fds[0].Revents&unix.POLLNVAL != 0:
			perr = unix.EBADF
			return
		}
		var b [1]byte
		// the runtime keeps the descriptor non-blocking
		m, _, err := unix.Recvfrom(int(fd), b[:], unix.MSG_PEEK)
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EINTR):
			alive = true
		case err != nil:
			perr = err
		default:
			alive = m > 0
		}
	})
	if err != nil {
		return false, err
	}
	return alive, perr
}
