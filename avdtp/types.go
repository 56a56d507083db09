package avdtp

import (
	"fmt"

	"github.com/opd-ai/a2dp/codec"
)

// Version is the AVDTP protocol version advertised when creating sessions.
const Version uint16 = 0x0100

// SEPType is the direction of a stream endpoint.
type SEPType uint8

const (
	// SEPTypeSource produces media.
	SEPTypeSource SEPType = 0x00
	// SEPTypeSink consumes media.
	SEPTypeSink SEPType = 0x01
)

// MediaType is the media category of a stream endpoint.
type MediaType uint8

const (
	MediaTypeAudio      MediaType = 0x00
	MediaTypeVideo      MediaType = 0x01
	MediaTypeMultimedia MediaType = 0x02
)

// Category identifies a service capability, per the AVDTP assigned numbers.
type Category uint8

const (
	CategoryMediaTransport    Category = 0x01
	CategoryReporting         Category = 0x02
	CategoryRecovery          Category = 0x03
	CategoryContentProtection Category = 0x04
	CategoryHeaderCompression Category = 0x05
	CategoryMultiplexing      Category = 0x06
	CategoryMediaCodec        Category = 0x07
	CategoryDelayReporting    Category = 0x08
)

// ServiceCapability is one element of an AVDTP capability list.
//
// Data holds the category-specific payload; it is empty for categories that
// carry none (such as media transport).
type ServiceCapability struct {
	Category Category
	Data     []byte
}

// MediaTransport returns the bare media transport capability every
// configuration must include.
func MediaTransport() ServiceCapability {
	return ServiceCapability{Category: CategoryMediaTransport}
}

// MediaCodecCapability is the decoded payload of a media codec capability.
type MediaCodecCapability struct {
	MediaType MediaType
	CodecType codec.Type
	// Parameters is the codec-specific information element.
	Parameters []byte
}

// MediaCodec builds a media codec service capability from its parts.
func MediaCodec(mt MediaType, ct codec.Type, parameters []byte) ServiceCapability {
	payload := make([]byte, 2+len(parameters))
	payload[0] = uint8(mt) << 4
	payload[1] = uint8(ct)
	copy(payload[2:], parameters)
	return ServiceCapability{Category: CategoryMediaCodec, Data: payload}
}

// ParseMediaCodec decodes a media codec capability payload.
func ParseMediaCodec(cap ServiceCapability) (*MediaCodecCapability, error) {
	if cap.Category != CategoryMediaCodec {
		return nil, fmt.Errorf("not a media codec capability (category 0x%02X)", uint8(cap.Category))
	}
	if len(cap.Data) < 2 {
		return nil, fmt.Errorf("media codec capability too short (%d bytes)", len(cap.Data))
	}
	return &MediaCodecCapability{
		MediaType: MediaType(cap.Data[0] >> 4),
		CodecType: codec.Type(cap.Data[1]),
		Parameters: append([]byte(nil), cap.Data[2:]...),
	}, nil
}
