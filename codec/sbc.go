package codec

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SBC capability bitmasks, as laid out in the A2DP SBC codec information
// element. Capabilities may set several bits per field; a concrete
// configuration sets exactly one.

// Sampling frequency selectors (octet 0, high nibble).
const (
	SBCSamplingFreq48000 uint8 = 1 << 0
	SBCSamplingFreq44100 uint8 = 1 << 1
	SBCSamplingFreq32000 uint8 = 1 << 2
	SBCSamplingFreq16000 uint8 = 1 << 3
)

// Channel mode selectors (octet 0, low nibble).
const (
	SBCChannelModeJointStereo uint8 = 1 << 0
	SBCChannelModeStereo      uint8 = 1 << 1
	SBCChannelModeDualChannel uint8 = 1 << 2
	SBCChannelModeMono        uint8 = 1 << 3
)

// Block length selectors (octet 1, high nibble).
const (
	SBCBlockLength16 uint8 = 1 << 0
	SBCBlockLength12 uint8 = 1 << 1
	SBCBlockLength8  uint8 = 1 << 2
	SBCBlockLength4  uint8 = 1 << 3
)

// Subband count selectors (octet 1, bits 2-3).
const (
	SBCSubbands8 uint8 = 1 << 0
	SBCSubbands4 uint8 = 1 << 1
)

// Allocation method selectors (octet 1, bits 0-1).
const (
	SBCAllocationLoudness uint8 = 1 << 0
	SBCAllocationSNR      uint8 = 1 << 1
)

// Bitpool bounds (octets 2 and 3).
const (
	SBCMinBitpool uint8 = 2
	SBCMaxBitpool uint8 = 250
)

// SBCConfigSize is the fixed size of the SBC parameter structure.
const SBCConfigSize = 4

// SBCConfig is the decoded view of an SBC parameter blob. Each selector
// field is a bitmask over the SBC* constants above.
type SBCConfig struct {
	SamplingFrequency uint8
	ChannelMode       uint8
	BlockLength       uint8
	Subbands          uint8
	AllocationMethod  uint8
	MinBitpool        uint8
	MaxBitpool        uint8
}

// ParseSBC decodes an SBC parameter blob. The blob must be exactly
// SBCConfigSize bytes.
func ParseSBC(data []byte) (SBCConfig, error) {
	if len(data) != SBCConfigSize {
		return SBCConfig{}, fmt.Errorf("%w: %d bytes", ErrInvalidConfigSize, len(data))
	}
	return SBCConfig{
		SamplingFrequency: data[0] >> 4,
		ChannelMode:       data[0] & 0x0F,
		BlockLength:       data[1] >> 4,
		Subbands:          (data[1] >> 2) & 0x03,
		AllocationMethod:  data[1] & 0x03,
		MinBitpool:        data[2],
		MaxBitpool:        data[3],
	}, nil
}

// Marshal encodes the configuration back into the 4-octet wire layout.
func (c SBCConfig) Marshal() []byte {
	return []byte{
		c.SamplingFrequency<<4 | c.ChannelMode&0x0F,
		c.BlockLength<<4 | (c.Subbands&0x03)<<2 | c.AllocationMethod&0x03,
		c.MinBitpool,
		c.MaxBitpool,
	}
}

// sbcValidator implements the Validator strategy for the SBC family.
type sbcValidator struct{}

func (sbcValidator) Type() Type {
	return TypeSBC
}

// Validate checks a proposed SBC configuration against a capability.
// Both blobs must be exactly SBCConfigSize bytes; each of the four selector
// fields of the proposal must intersect the capability's field.
func (sbcValidator) Validate(capability, proposed *Preset) error {
	if proposed.Len() != capability.Len() || proposed.Len() != SBCConfigSize {
		logrus.WithFields(logrus.Fields{
			"function":      "sbcValidator.Validate",
			"proposed_size": proposed.Len(),
		}).Error("SBC: invalid configuration size")
		return fmt.Errorf("%w: %d bytes", ErrInvalidConfigSize, proposed.Len())
	}

	cap, err := ParseSBC(capability.data)
	if err != nil {
		return err
	}
	conf, err := ParseSBC(proposed.data)
	if err != nil {
		return err
	}

	if cap.SamplingFrequency&conf.SamplingFrequency == 0 {
		logrus.WithFields(logrus.Fields{
			"function":  "sbcValidator.Validate",
			"frequency": conf.SamplingFrequency,
		}).Error("SBC: unsupported sampling frequency")
		return fmt.Errorf("%w: sampling frequency 0x%X", ErrInvalidConfig, conf.SamplingFrequency)
	}
	if cap.ChannelMode&conf.ChannelMode == 0 {
		logrus.WithFields(logrus.Fields{
			"function":     "sbcValidator.Validate",
			"channel_mode": conf.ChannelMode,
		}).Error("SBC: unsupported channel mode")
		return fmt.Errorf("%w: channel mode 0x%X", ErrInvalidConfig, conf.ChannelMode)
	}
	if cap.BlockLength&conf.BlockLength == 0 {
		logrus.WithFields(logrus.Fields{
			"function":     "sbcValidator.Validate",
			"block_length": conf.BlockLength,
		}).Error("SBC: unsupported block length")
		return fmt.Errorf("%w: block length 0x%X", ErrInvalidConfig, conf.BlockLength)
	}
	if cap.AllocationMethod&conf.AllocationMethod == 0 {
		logrus.WithFields(logrus.Fields{
			"function":          "sbcValidator.Validate",
			"allocation_method": conf.AllocationMethod,
		}).Error("SBC: unsupported allocation method")
		return fmt.Errorf("%w: allocation method 0x%X", ErrInvalidConfig, conf.AllocationMethod)
	}

	return nil
}
