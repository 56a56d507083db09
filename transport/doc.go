// Package transport abstracts the connection-oriented Bluetooth transport
// the A2DP profile runs on.
//
// The profile needs two things from the transport: an outbound connect and
// an inbound listen on the AVDTP L2CAP PSM, both completing asynchronously
// through a callback, and per-channel attribute access (negotiated MTUs,
// addresses). Channels support suppressing the close-on-release behavior so
// that a protocol engine can take over the underlying socket's lifetime.
//
// A Linux implementation over AF_BLUETOOTH/BTPROTO_L2CAP sockets is
// provided; other platforms, and tests, supply their own Connector.
package transport
