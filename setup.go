package a2dp

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/a2dp/avdtp"
	"github.com/opd-ai/a2dp/codec"
)

// Setup is one in-flight or active stream negotiation, linking a device, an
// endpoint, the negotiated preset and the engine's stream handle.
//
// A setup's preset is either borrowed from its endpoint's acceptable-preset
// list (initiator side) or owned by the setup (synthesized from a remote
// proposal on the acceptor side). Owned presets are released with the
// setup; borrowed ones stay with the endpoint.
type Setup struct {
	dev      *Device
	endpoint *Endpoint
	preset   *codec.Preset
	stream   avdtp.Stream
	// ownsPreset marks a preset synthesized during acceptor-side
	// negotiation rather than drawn from the endpoint's list.
	ownsPreset bool
}

// Device returns the remote peer this setup belongs to.
func (s *Setup) Device() *Device {
	return s.dev
}

// Endpoint returns the local endpoint this setup uses.
func (s *Setup) Endpoint() *Endpoint {
	return s.endpoint
}

// Preset returns the negotiated codec preset.
func (s *Setup) Preset() *codec.Preset {
	return s.preset
}

// addSetup records a new stream setup. At most one setup may exist per
// endpoint at a time; a second concurrent negotiation on the same endpoint
// is rejected with ErrEndpointBusy. Callers must hold p.mu.
func (p *Profile) addSetup(dev *Device, e *Endpoint, preset *codec.Preset, stream avdtp.Stream, ownsPreset bool) (*Setup, error) {
	if p.findSetupByEndpoint(e.id) != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "addSetup",
			"endpoint_id": e.id,
			"address":     dev.addr.String(),
		}).Error("Endpoint already has a stream setup")
		return nil, ErrEndpointBusy
	}

	setup := &Setup{
		dev:        dev,
		endpoint:   e,
		preset:     preset,
		stream:     stream,
		ownsPreset: ownsPreset,
	}
	p.setups = append(p.setups, setup)

	logrus.WithFields(logrus.Fields{
		"function":    "addSetup",
		"endpoint_id": e.id,
		"address":     dev.addr.String(),
		"owns_preset": ownsPreset,
	}).Debug("Stream setup created")

	return setup, nil
}

// removeSetup detaches and destroys a setup, releasing the preset when the
// setup owns it. Removing a setup that is no longer registered is a no-op,
// so a racing close indication and close confirmation cannot double-remove.
// Callers must hold p.mu.
func (p *Profile) removeSetup(setup *Setup) {
	for i, other := range p.setups {
		if other != setup {
			continue
		}
		p.setups = append(p.setups[:i], p.setups[i+1:]...)
		if setup.ownsPreset {
			setup.preset = nil
		}
		logrus.WithFields(logrus.Fields{
			"function":    "removeSetup",
			"endpoint_id": setup.endpoint.id,
		}).Debug("Stream setup destroyed")
		return
	}
}

// removeSetupByEndpoint removes the setup for an endpoint id, reporting
// when none exists. Callers must hold p.mu.
func (p *Profile) removeSetupByEndpoint(id uint8) {
	setup := p.findSetupByEndpoint(id)
	if setup == nil {
		logrus.WithFields(logrus.Fields{
			"function":    "removeSetupByEndpoint",
			"endpoint_id": id,
		}).Error("Unable to find stream setup for endpoint")
		return
	}
	p.removeSetup(setup)
}

// findSetupByEndpoint returns the setup for an endpoint id, or nil.
// Callers must hold p.mu.
func (p *Profile) findSetupByEndpoint(id uint8) *Setup {
	for _, setup := range p.setups {
		if setup.endpoint.id == id {
			return setup
		}
	}
	return nil
}

// findSetupByDevice returns the setup for a device, or nil.
// Callers must hold p.mu.
func (p *Profile) findSetupByDevice(dev *Device) *Setup {
	for _, setup := range p.setups {
		if setup.dev == dev {
			return setup
		}
	}
	return nil
}
