// Package avdtp defines the interface between the A2DP profile and an AVDTP
// protocol engine.
//
// The engine itself — signaling wire format, message parsing, stream state
// tracking — is an external collaborator. This package declares only what
// the profile consumes: registration of local stream endpoints, session and
// stream primitives (discover, set-configuration, open, start, suspend,
// close, abort, shutdown), and the typed indication/confirmation handler
// interfaces through which the engine calls back into the profile.
//
// Handlers are dispatched per local endpoint: the handler pair passed to
// Engine.RegisterSEP receives every indication and confirmation addressed to
// that endpoint. Engines must deliver callbacks asynchronously, from their
// own event loop, never from within a profile-initiated call.
//
// Capability lists are sequences of ServiceCapability values. The profile
// only constructs and inspects the media transport, media codec, and delay
// reporting categories; everything else passes through opaque.
package avdtp
