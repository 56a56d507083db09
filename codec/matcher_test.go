package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorFor(t *testing.T) {
	v, err := ValidatorFor(TypeSBC)
	require.NoError(t, err)
	assert.Equal(t, TypeSBC, v.Type())

	_, err = ValidatorFor(TypeMPEG24)
	assert.ErrorIs(t, err, ErrUnsupportedCodec)

	_, err = ValidatorFor(TypeVendor)
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}

func TestSelectPreservesOrder(t *testing.T) {
	// Remote supports 44.1 kHz joint stereo only.
	remote := MustPreset(SBCConfig{
		SamplingFrequency: SBCSamplingFreq44100,
		ChannelMode:       SBCChannelModeJointStereo,
		BlockLength:       SBCBlockLength16,
		Subbands:          SBCSubbands8,
		AllocationMethod:  SBCAllocationLoudness,
		MinBitpool:        SBCMinBitpool,
		MaxBitpool:        SBCMaxBitpool,
	}.Marshal())

	incompatible := SBCConfig{
		SamplingFrequency: SBCSamplingFreq16000,
		ChannelMode:       SBCChannelModeMono,
		BlockLength:       SBCBlockLength4,
		Subbands:          SBCSubbands4,
		AllocationMethod:  SBCAllocationSNR,
		MinBitpool:        SBCMinBitpool,
		MaxBitpool:        32,
	}
	first := sbcStereo44100()
	second := first
	second.MaxBitpool = 32

	presets := []*Preset{
		MustPreset(incompatible.Marshal()),
		MustPreset(first.Marshal()),
		MustPreset(second.Marshal()),
	}

	// The first compatible preset wins, not the last.
	selected, err := Select(TypeSBC, presets, remote)
	require.NoError(t, err)
	assert.True(t, selected.Equal(presets[1]))
}

func TestSelectNoMatch(t *testing.T) {
	remote := MustPreset(SBCConfig{
		SamplingFrequency: SBCSamplingFreq16000,
		ChannelMode:       SBCChannelModeMono,
		BlockLength:       SBCBlockLength4,
		Subbands:          SBCSubbands4,
		AllocationMethod:  SBCAllocationSNR,
		MinBitpool:        SBCMinBitpool,
		MaxBitpool:        SBCMaxBitpool,
	}.Marshal())

	presets := []*Preset{MustPreset(sbcStereo44100().Marshal())}

	_, err := Select(TypeSBC, presets, remote)
	assert.ErrorIs(t, err, ErrNoMatchingPreset)
}

func TestSelectUnsupportedCodec(t *testing.T) {
	presets := []*Preset{MustPreset([]byte{0x01})}
	_, err := Select(TypeATRAC, presets, MustPreset([]byte{0x01}))
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}

func TestValidateUnsupportedCodec(t *testing.T) {
	p := MustPreset([]byte{0x01})
	err := Validate(TypeMPEG12, p, p)
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}
