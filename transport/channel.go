package transport

import "io"

// PSMAVDTP is the L2CAP protocol/service multiplexer AVDTP signaling and
// media channels use.
const PSMAVDTP uint16 = 0x0019

// SecurityLevel is the link security required for a channel.
type SecurityLevel uint8

const (
	// SecurityLow requires no authentication.
	SecurityLow SecurityLevel = iota
	// SecurityMedium requires authentication; A2DP's default.
	SecurityMedium
	// SecurityHigh additionally requires an encrypted link.
	SecurityHigh
)

// Channel is one established connection-oriented Bluetooth channel.
type Channel interface {
	// Conn exposes the channel's byte stream. Ownership stays with the
	// channel unless SetCloseOnRelease(false) has been called.
	Conn() io.ReadWriteCloser

	// LocalAddr returns the local adapter address.
	LocalAddr() Addr

	// RemoteAddr returns the remote device address.
	RemoteAddr() Addr

	// MTU returns the negotiated receive and transmit MTUs.
	MTU() (in, out uint16, err error)

	// SetCloseOnRelease controls whether Release closes the underlying
	// socket. Disabled once a protocol engine takes over its lifetime.
	SetCloseOnRelease(close bool)

	// Release drops the channel wrapper, closing the socket unless
	// close-on-release has been suppressed.
	Release() error

	// Shutdown closes the underlying socket regardless of the
	// close-on-release setting.
	Shutdown() error
}

// ConnectFunc receives the outcome of an asynchronous connect or accept.
// On failure ch is nil.
type ConnectFunc func(ch Channel, err error)

// Listener is an open inbound channel acceptor.
type Listener interface {
	// Addr returns the local address the listener is bound to.
	Addr() Addr

	// Close stops accepting; pending accept callbacks are not delivered
	// after Close returns.
	Close() error
}

// Connector creates Bluetooth channels. Both operations are asynchronous:
// they return once the attempt is underway and deliver the result through
// cb from a separate goroutine.
type Connector interface {
	// Connect opens an outbound channel from the local adapter to the
	// remote device on the given PSM.
	Connect(local, remote Addr, psm uint16, sec SecurityLevel, cb ConnectFunc) error

	// Listen accepts inbound channels on the given PSM. Every accepted
	// channel is delivered through cb until the listener is closed.
	Listen(local Addr, psm uint16, sec SecurityLevel, cb ConnectFunc) (Listener, error)
}
