package avdtp

import "fmt"

// ErrorCode is an AVDTP protocol error, per the assigned error codes.
// These values travel in signaling reject responses.
type ErrorCode uint8

const (
	ErrBadHeaderFormat          ErrorCode = 0x01
	ErrBadLength                ErrorCode = 0x11
	ErrBadACPSEID               ErrorCode = 0x12
	ErrSEPInUse                 ErrorCode = 0x13
	ErrSEPNotInUse              ErrorCode = 0x14
	ErrBadServCategory          ErrorCode = 0x17
	ErrBadPayloadFormat         ErrorCode = 0x18
	ErrNotSupportedCommand      ErrorCode = 0x19
	ErrInvalidCapabilities      ErrorCode = 0x1A
	ErrBadRecoveryType          ErrorCode = 0x22
	ErrBadMediaTransportFormat  ErrorCode = 0x23
	ErrBadRecoveryFormat        ErrorCode = 0x25
	ErrBadHeaderCompression     ErrorCode = 0x26
	ErrBadContentProtection     ErrorCode = 0x27
	ErrBadMultiplexingFormat    ErrorCode = 0x28
	ErrUnsupportedConfiguration ErrorCode = 0x29
	ErrBadState                 ErrorCode = 0x31
)

// String returns the conventional name of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrBadHeaderFormat:
		return "bad header format"
	case ErrBadLength:
		return "bad length"
	case ErrBadACPSEID:
		return "bad ACP SEID"
	case ErrSEPInUse:
		return "SEP in use"
	case ErrSEPNotInUse:
		return "SEP not in use"
	case ErrBadServCategory:
		return "bad service category"
	case ErrBadPayloadFormat:
		return "bad payload format"
	case ErrNotSupportedCommand:
		return "not supported command"
	case ErrInvalidCapabilities:
		return "invalid capabilities"
	case ErrUnsupportedConfiguration:
		return "unsupported configuration"
	case ErrBadState:
		return "bad state"
	default:
		return fmt.Sprintf("error 0x%02X", uint8(c))
	}
}

// Error is a protocol-level failure reported by the engine or returned by
// the profile's indication handlers to reject a request.
type Error struct {
	Code ErrorCode
}

// NewError wraps an error code.
func NewError(code ErrorCode) *Error {
	return &Error{Code: code}
}

func (e *Error) Error() string {
	return fmt.Sprintf("avdtp: %s", e.Code)
}
