package sdp

import "fmt"

// Assigned numbers for the record content.
const (
	// UUIDAudioSource is the AudioSource service class UUID.
	UUIDAudioSource = "0000110a-0000-1000-8000-00805f9b34fb"

	// ClassAudioSource is the 16-bit AudioSource service class.
	ClassAudioSource uint16 = 0x110A

	// ProfileAdvancedAudio is the 16-bit Advanced Audio Distribution
	// profile identifier.
	ProfileAdvancedAudio uint16 = 0x110D

	// ProfileVersion is the advertised A2DP profile version (1.3).
	ProfileVersion uint16 = 0x0103

	// ProtocolAVDTPVersion is the advertised AVDTP version (1.3).
	ProtocolAVDTPVersion uint16 = 0x0103

	// psmAVDTP is the L2CAP PSM the signaling channel listens on.
	psmAVDTP uint16 = 0x0019

	// featurePlayer|featureMicrophone|featureTuner|featureMixer.
	supportedFeatures uint16 = 0x000F

	serviceName = "Audio Source"
)

// SourceRecord returns the AudioSource service record as BlueZ
// ServiceRecord XML.
//
// Attributes: service class list (0x0001), protocol descriptor list
// (0x0004, L2CAP on the AVDTP PSM plus AVDTP), profile descriptor list
// (0x0009), supported features (0x0311) and the service name (0x0100).
func SourceRecord() string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" ?>
<record>
  <attribute id="0x0001">
    <sequence>
      <uuid value="0x%04x" />
    </sequence>
  </attribute>
  <attribute id="0x0004">
    <sequence>
      <sequence>
        <uuid value="0x0100" />
        <uint16 value="0x%04x" />
      </sequence>
      <sequence>
        <uuid value="0x0019" />
        <uint16 value="0x%04x" />
      </sequence>
    </sequence>
  </attribute>
  <attribute id="0x0009">
    <sequence>
      <sequence>
        <uuid value="0x%04x" />
        <uint16 value="0x%04x" />
      </sequence>
    </sequence>
  </attribute>
  <attribute id="0x0311">
    <uint16 value="0x%04x" />
  </attribute>
  <attribute id="0x0100">
    <text value="%s" />
  </attribute>
</record>
`, ClassAudioSource, psmAVDTP, ProtocolAVDTPVersion,
		ProfileAdvancedAudio, ProfileVersion, supportedFeatures, serviceName)
}
