//go:build !linux

package inspector

import (
	"errors"
	"net"
	"time"
)

func tcpRTT(net.Conn) (time.Duration, error) {
	return 0, errors.New("inspector: round trip time unavailable")
}
