package avdtp

import (
	"io"

	"github.com/opd-ai/a2dp/codec"
)

// LocalSEP is the engine's handle for a registered local stream endpoint.
// The profile treats it as opaque.
type LocalSEP interface {
	// SEID returns the stream endpoint identifier assigned by the engine.
	SEID() uint8
}

// RemoteSEP is the engine's record of a stream endpoint discovered on the
// remote device.
type RemoteSEP interface {
	// SEID returns the remote stream endpoint identifier.
	SEID() uint8

	// Codec returns the endpoint's advertised media codec capability.
	Codec() (*MediaCodecCapability, error)
}

// Stream is the engine's handle for one configured stream. The profile
// treats it as opaque and only passes it back into Session primitives.
type Stream interface{}

// DiscoverFunc receives the result of a Session.Discover request.
type DiscoverFunc func(seps []RemoteSEP, err error)

// Session is one AVDTP signaling session with a remote device.
//
// All request primitives are asynchronous: they return an error only when
// the request could not be issued, and complete later through the
// ConfirmationHandler of the local endpoint involved.
type Session interface {
	// Discover requests the remote endpoint list.
	Discover(cb DiscoverFunc) error

	// FindRemoteSEP returns a discovered remote endpoint compatible with
	// the given local one, or nil when none matches.
	FindRemoteSEP(local LocalSEP) RemoteSEP

	// SetConfiguration proposes a configuration for a stream between the
	// two endpoints and returns the engine's handle for the nascent
	// stream. The outcome arrives via SetConfigurationCfm.
	SetConfiguration(remote RemoteSEP, local LocalSEP, caps []ServiceCapability) (Stream, error)

	// Open requests the stream be opened; confirmed via OpenCfm.
	Open(stream Stream) error

	// Start requests streaming; confirmed via StartCfm.
	Start(stream Stream) error

	// Suspend requests streaming pause; confirmed via SuspendCfm.
	Suspend(stream Stream) error

	// Close requests stream teardown; confirmed via CloseCfm. When
	// immediate is set the engine aborts rather than closes.
	Close(stream Stream, immediate bool) error

	// SetStreamTransport binds an established transport connection, with
	// its negotiated receive and transmit MTUs, as the stream's media
	// leg. The engine owns the connection from this point.
	SetStreamTransport(stream Stream, conn io.ReadWriteCloser, inMTU, outMTU uint16) error

	// OnDisconnect registers the session-loss callback. The engine calls
	// it once, when the session goes down for any reason.
	OnDisconnect(cb func())

	// Shutdown requests session teardown; completion is signaled through
	// the OnDisconnect callback.
	Shutdown() error

	// Release drops the profile's reference to the session. The engine
	// frees the session, and the underlying socket, once all references
	// are gone.
	Release()
}

// IndicationHandler receives remote-initiated requests for one local
// endpoint. Returning a non-nil *Error rejects the indication with that
// protocol error; returning nil accepts it.
type IndicationHandler interface {
	// GetCapability answers a remote capability query.
	GetCapability(s Session, sep LocalSEP) ([]ServiceCapability, *Error)

	// SetConfiguration handles a remote configuration proposal for the
	// stream the engine has begun tracking.
	SetConfiguration(s Session, sep LocalSEP, stream Stream, caps []ServiceCapability) *Error

	// Open handles a remote stream open request.
	Open(s Session, sep LocalSEP, stream Stream) *Error

	// Close handles a remote stream close request.
	Close(s Session, sep LocalSEP, stream Stream) *Error

	// Start handles a remote stream start request.
	Start(s Session, sep LocalSEP, stream Stream) *Error

	// Suspend handles a remote stream suspend request.
	Suspend(s Session, sep LocalSEP, stream Stream) *Error
}

// ConfirmationHandler receives the outcomes of requests the profile issued
// for one local endpoint. A nil err means the request was accepted.
type ConfirmationHandler interface {
	SetConfigurationCfm(s Session, sep LocalSEP, stream Stream, err *Error)
	OpenCfm(s Session, sep LocalSEP, stream Stream, err *Error)
	StartCfm(s Session, sep LocalSEP, stream Stream, err *Error)
	SuspendCfm(s Session, sep LocalSEP, stream Stream, err *Error)
	CloseCfm(s Session, sep LocalSEP, stream Stream, err *Error)
	AbortCfm(s Session, sep LocalSEP, stream Stream, err *Error)
}

// Engine is the AVDTP protocol engine the profile drives.
type Engine interface {
	// NewSession wraps an established signaling connection, with its
	// negotiated receive and transmit MTUs, in a protocol session. The
	// engine owns the connection from this point.
	NewSession(conn io.ReadWriteCloser, inMTU, outMTU uint16, version uint16) (Session, error)

	// RegisterSEP registers a local stream endpoint and its handler pair.
	RegisterSEP(st SEPType, mt MediaType, ct codec.Type, delayReporting bool,
		ind IndicationHandler, cfm ConfirmationHandler) (LocalSEP, error)

	// UnregisterSEP removes a previously registered endpoint.
	UnregisterSEP(sep LocalSEP) error
}
