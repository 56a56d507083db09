// Package codec implements A2DP codec capability handling for the source
// profile.
//
// The package provides the Preset value type (an immutable codec parameter
// blob), the codec type identifiers carried in AVDTP media codec
// capabilities, and the capability matching used during stream negotiation:
//
//   - Validate checks a proposed configuration against a capability
//     (acceptor side).
//   - Select picks the first acceptable preset matching a remote capability
//     (initiator side).
//
// Validation is codec specific and modeled as a closed set of strategies
// keyed by codec type. Only the SBC family is implemented; proposals for any
// other codec type are rejected with ErrUnsupportedCodec. The SBC check
// follows the A2DP convention: a configuration is acceptable when each of
// its four selector bitmasks (sampling frequency, channel mode, block
// length, allocation method) intersects the corresponding capability
// bitmask.
package codec
