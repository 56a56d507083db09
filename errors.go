package a2dp

import "errors"

// Sentinel errors for profile operations.
// These errors enable reliable classification using errors.Is().

// Lifecycle errors.
var (
	// ErrNotStarted indicates the profile has not been started.
	ErrNotStarted = errors.New("profile is not started")

	// ErrAlreadyStarted indicates the profile is already running.
	ErrAlreadyStarted = errors.New("profile is already started")
)

// Device errors.
var (
	// ErrDeviceExists indicates a device is already known for the address.
	ErrDeviceExists = errors.New("device already exists")

	// ErrDeviceNotFound indicates no device is known for the address.
	ErrDeviceNotFound = errors.New("device not found")
)

// Endpoint errors.
var (
	// ErrNoCapability indicates a missing capability preset.
	ErrNoCapability = errors.New("no capability preset provided")

	// ErrNoPresets indicates an empty acceptable-preset list.
	ErrNoPresets = errors.New("no codec presets provided")

	// ErrEndpointNotFound indicates an unknown endpoint id.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrEndpointIDsExhausted indicates the endpoint id space is used up.
	// Ids are never reused within a process lifetime.
	ErrEndpointIDsExhausted = errors.New("endpoint ids exhausted")
)

// Stream errors.
var (
	// ErrEndpointBusy indicates the endpoint already has a stream setup,
	// in flight or active. One setup per endpoint at a time.
	ErrEndpointBusy = errors.New("endpoint already has a stream setup")

	// ErrSetupNotFound indicates no stream setup exists for the endpoint.
	ErrSetupNotFound = errors.New("no stream setup for endpoint")
)
