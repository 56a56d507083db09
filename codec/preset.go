package codec

import (
	"bytes"
	"fmt"
)

// Type identifies a codec family as carried in an AVDTP media codec
// capability. Values follow the A2DP codec identifier assignments.
type Type uint8

const (
	// TypeSBC is the mandatory low-complexity subband codec.
	TypeSBC Type = 0x00
	// TypeMPEG12 is MPEG-1,2 Audio (MP3).
	TypeMPEG12 Type = 0x01
	// TypeMPEG24 is MPEG-2,4 AAC.
	TypeMPEG24 Type = 0x02
	// TypeATRAC is ATRAC family.
	TypeATRAC Type = 0x04
	// TypeVendor is a vendor specific codec.
	TypeVendor Type = 0xFF
)

// String returns a human readable codec family name.
func (t Type) String() string {
	switch t {
	case TypeSBC:
		return "SBC"
	case TypeMPEG12:
		return "MPEG-1,2 Audio"
	case TypeMPEG24:
		return "MPEG-2,4 AAC"
	case TypeATRAC:
		return "ATRAC"
	case TypeVendor:
		return "vendor specific"
	default:
		return fmt.Sprintf("unknown (0x%02X)", uint8(t))
	}
}

// MaxPresetSize bounds the length of a codec parameter blob. AVDTP carries
// capability payloads with a single-octet length, so larger presets cannot
// be represented on the wire.
const MaxPresetSize = 255

// Preset is an immutable codec parameter blob.
//
// A preset either describes a capability (the broadest parameter set an
// endpoint accepts, with multiple selector bits set per field) or one
// concrete configuration choice within such a set. The profile layer treats
// presets as opaque; only the codec validators interpret their contents.
type Preset struct {
	data []byte
}

// NewPreset copies data into a new Preset. The blob must be non-empty and
// no longer than MaxPresetSize.
func NewPreset(data []byte) (*Preset, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPreset
	}
	if len(data) > MaxPresetSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPresetTooLarge, len(data))
	}
	return &Preset{data: append([]byte(nil), data...)}, nil
}

// MustPreset is NewPreset for statically known blobs; it panics on error.
// Intended for test fixtures and compiled-in default presets.
func MustPreset(data []byte) *Preset {
	p, err := NewPreset(data)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a copy of the parameter blob.
func (p *Preset) Bytes() []byte {
	return append([]byte(nil), p.data...)
}

// Len returns the blob length in bytes.
func (p *Preset) Len() int {
	return len(p.data)
}

// Equal reports whether two presets carry byte-identical parameter blobs.
func (p *Preset) Equal(other *Preset) bool {
	if p == nil || other == nil {
		return p == other
	}
	return bytes.Equal(p.data, other.data)
}
