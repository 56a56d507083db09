//go:build linux

package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Kernel Bluetooth socket option identifiers not exported by x/sys/unix.
const (
	solL2CAP     = 6
	l2capOptions = 0x01

	// struct bt_security option on SOL_BLUETOOTH.
	btSecurity       = 4
	btSecurityLow    = 1
	btSecurityMedium = 2
	btSecurityHigh   = 3

	acceptorBacklog = 5
)

// L2CAPConnector implements Connector over Linux AF_BLUETOOTH sockets.
type L2CAPConnector struct{}

// NewL2CAPConnector returns a Connector backed by kernel L2CAP sockets.
func NewL2CAPConnector() *L2CAPConnector {
	return &L2CAPConnector{}
}

func securityLevel(sec SecurityLevel) byte {
	switch sec {
	case SecurityLow:
		return btSecurityLow
	case SecurityHigh:
		return btSecurityHigh
	default:
		return btSecurityMedium
	}
}

func newL2CAPSocket(local Addr, psm uint16, sec SecurityLevel) (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, unix.BTPROTO_L2CAP)
	if err != nil {
		return -1, fmt.Errorf("l2cap socket: %w", err)
	}

	// struct bt_security { uint8 level; uint8 key_size; }
	secOpt := string([]byte{securityLevel(sec), 0})
	if err := unix.SetsockoptString(fd, unix.SOL_BLUETOOTH, btSecurity, secOpt); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("l2cap set security: %w", err)
	}

	sa := &unix.SockaddrL2{Addr: local.wire(), PSM: psm}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("l2cap bind %s psm 0x%04X: %w", local, psm, err)
	}

	return fd, nil
}

// Connect opens an outbound L2CAP channel. The blocking kernel connect runs
// on its own goroutine and completes through cb.
func (c *L2CAPConnector) Connect(local, remote Addr, psm uint16, sec SecurityLevel, cb ConnectFunc) error {
	fd, err := newL2CAPSocket(local, 0, sec)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Connect",
		"remote":   remote.String(),
		"psm":      psm,
	}).Debug("Initiating L2CAP connect")

	go func() {
		sa := &unix.SockaddrL2{Addr: remote.wire(), PSM: psm}
		if err := unix.Connect(fd, sa); err != nil {
			unix.Close(fd)
			cb(nil, fmt.Errorf("l2cap connect %s: %w", remote, err))
			return
		}
		cb(newL2CAPChannel(fd), nil)
	}()

	return nil
}

// Listen accepts inbound L2CAP channels on the given PSM.
func (c *L2CAPConnector) Listen(local Addr, psm uint16, sec SecurityLevel, cb ConnectFunc) (Listener, error) {
	fd, err := newL2CAPSocket(local, psm, sec)
	if err != nil {
		return nil, err
	}
	if err := unix.Listen(fd, acceptorBacklog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("l2cap listen psm 0x%04X: %w", psm, err)
	}

	l := &l2capListener{fd: fd, addr: local, done: make(chan struct{})}

	logrus.WithFields(logrus.Fields{
		"function": "Listen",
		"local":    local.String(),
		"psm":      psm,
	}).Info("Listening for L2CAP connections")

	go l.acceptLoop(cb)

	return l, nil
}

type l2capListener struct {
	fd   int
	addr Addr

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (l *l2capListener) acceptLoop(cb ConnectFunc) {
	defer close(l.done)
	for {
		nfd, _, err := unix.Accept(l.fd)
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()
			if closed {
				return
			}
			if err == unix.EINTR {
				continue
			}
			cb(nil, fmt.Errorf("l2cap accept: %w", err))
			return
		}
		cb(newL2CAPChannel(nfd), nil)
	}
}

func (l *l2capListener) Addr() Addr {
	return l.addr
}

func (l *l2capListener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	err := unix.Close(l.fd)
	<-l.done
	return err
}

// l2capChannel wraps one connected L2CAP socket.
type l2capChannel struct {
	fd   int
	file *os.File

	mu             sync.Mutex
	closeOnRelease bool
}

func newL2CAPChannel(fd int) *l2capChannel {
	return &l2capChannel{
		fd:             fd,
		file:           os.NewFile(uintptr(fd), "l2cap"),
		closeOnRelease: true,
	}
}

func (ch *l2capChannel) Conn() io.ReadWriteCloser {
	return ch.file
}

func (ch *l2capChannel) LocalAddr() Addr {
	sa, err := unix.Getsockname(ch.fd)
	if err != nil {
		return AnyAddr
	}
	if l2, ok := sa.(*unix.SockaddrL2); ok {
		return addrFromWire(l2.Addr)
	}
	return AnyAddr
}

func (ch *l2capChannel) RemoteAddr() Addr {
	sa, err := unix.Getpeername(ch.fd)
	if err != nil {
		return AnyAddr
	}
	if l2, ok := sa.(*unix.SockaddrL2); ok {
		return addrFromWire(l2.Addr)
	}
	return AnyAddr
}

// MTU reads the negotiated MTUs from the kernel's l2cap_options, which
// starts with { omtu uint16; imtu uint16 } in host order.
func (ch *l2capChannel) MTU() (in, out uint16, err error) {
	opts, err := unix.GetsockoptString(ch.fd, solL2CAP, l2capOptions)
	if err != nil {
		return 0, 0, fmt.Errorf("l2cap options: %w", err)
	}
	if len(opts) < 4 {
		return 0, 0, fmt.Errorf("l2cap options: short read (%d bytes)", len(opts))
	}
	b := []byte(opts)
	out = binary.LittleEndian.Uint16(b[0:2])
	in = binary.LittleEndian.Uint16(b[2:4])
	return in, out, nil
}

func (ch *l2capChannel) SetCloseOnRelease(close bool) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.closeOnRelease = close
}

func (ch *l2capChannel) Release() error {
	ch.mu.Lock()
	shouldClose := ch.closeOnRelease
	ch.mu.Unlock()
	if shouldClose {
		return ch.file.Close()
	}
	return nil
}

func (ch *l2capChannel) Shutdown() error {
	return ch.file.Close()
}
