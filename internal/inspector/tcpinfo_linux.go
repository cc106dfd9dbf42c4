//go:build linux

package inspector

import (
	"errors"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

var errNotTCP = errors.New("inspector: not a tcp connection")

// tcpRTT returns the kernel's smoothed round trip time of conn.
func tcpRTT(conn net.Conn) (time.Duration, error) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return 0, errNotTCP
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return 0, err
	}

	var info *unix.TCPInfo
	ctrlErr := raw.Control(func(fd uintptr) {
		info, err = unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
	})
	switch {
	case ctrlErr != nil:
		return 0, ctrlErr
	case err != nil:
		return 0, err
	}
	return time.Duration(info.Rtt) * time.Microsecond, nil
}
