package codec

import "errors"

// Sentinel errors for codec capability handling.
// These errors enable reliable classification using errors.Is().

// Preset construction errors.
var (
	// ErrEmptyPreset indicates an empty codec parameter blob.
	ErrEmptyPreset = errors.New("empty codec preset")

	// ErrPresetTooLarge indicates a parameter blob above MaxPresetSize.
	ErrPresetTooLarge = errors.New("codec preset too large")
)

// Capability matching errors.
var (
	// ErrUnsupportedCodec indicates a codec family with no validator.
	ErrUnsupportedCodec = errors.New("unsupported codec type")

	// ErrInvalidConfigSize indicates a configuration blob whose length does
	// not match the codec's fixed parameter structure.
	ErrInvalidConfigSize = errors.New("invalid configuration size")

	// ErrInvalidConfig indicates a configuration rejected by the capability
	// it was checked against.
	ErrInvalidConfig = errors.New("configuration not supported by capability")

	// ErrNoMatchingPreset indicates that no acceptable preset matched the
	// remote capability during selection.
	ErrNoMatchingPreset = errors.New("no matching codec preset")
)
