package a2dp

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/a2dp/avdtp"
	"github.com/opd-ai/a2dp/codec"
)

// Endpoint is one registered local codec capability set.
//
// An endpoint carries the broadest parameter set it can accept (the
// capability, used to answer remote queries and validate acceptor-side
// proposals) and an ordered list of concrete presets tried in registration
// order during initiator-side selection. Both are homogeneous with the
// endpoint's codec type.
type Endpoint struct {
	id        uint8
	codecType codec.Type
	// capability is the broadest parameter set this endpoint accepts.
	capability *codec.Preset
	// presets are the acceptable configurations, in preference order.
	presets []*codec.Preset
	sep     avdtp.LocalSEP
}

// ID returns the endpoint id. Ids are assigned sequentially starting at 1
// and never reused within a process lifetime.
func (e *Endpoint) ID() uint8 {
	return e.id
}

// CodecType returns the endpoint's codec family.
func (e *Endpoint) CodecType() codec.Type {
	return e.codecType
}

// Capability returns the endpoint's capability preset.
func (e *Endpoint) Capability() *codec.Preset {
	return e.capability
}

// Presets returns the acceptable presets in preference order.
func (e *Endpoint) Presets() []*codec.Preset {
	return append([]*codec.Preset(nil), e.presets...)
}

// checkConfig validates a proposed configuration against this endpoint. A
// proposal byte-identical to one of the acceptable presets passes directly;
// anything else runs the codec-specific capability check.
func (e *Endpoint) checkConfig(proposed *codec.Preset) error {
	for _, preset := range e.presets {
		if preset.Equal(proposed) {
			return nil
		}
	}
	return codec.Validate(e.codecType, e.capability, proposed)
}

// OpenEndpoint registers a local source endpoint for the given codec type,
// with its capability preset and its ordered acceptable-preset list, and
// registers the corresponding SEP with the protocol engine. It returns the
// assigned endpoint id.
func (p *Profile) OpenEndpoint(ct codec.Type, capability *codec.Preset, presets []*codec.Preset) (uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if capability == nil {
		return 0, ErrNoCapability
	}
	if len(presets) == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "OpenEndpoint",
			"codec":    ct.String(),
		}).Error("No codec presets provided")
		return 0, ErrNoPresets
	}
	if p.nextEndpointID == 0 {
		return 0, ErrEndpointIDsExhausted
	}

	e := &Endpoint{
		id:         p.nextEndpointID,
		codecType:  ct,
		capability: capability,
		presets:    append([]*codec.Preset(nil), presets...),
	}

	handler := &endpointHandler{profile: p, endpoint: e}
	sep, err := p.engine.RegisterSEP(avdtp.SEPTypeSource, avdtp.MediaTypeAudio,
		ct, false, handler, handler)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "OpenEndpoint",
			"codec":    ct.String(),
			"error":    err.Error(),
		}).Error("Failed to register SEP with protocol engine")
		return 0, fmt.Errorf("register SEP: %w", err)
	}
	e.sep = sep

	p.nextEndpointID++
	p.endpoints = append(p.endpoints, e)

	logrus.WithFields(logrus.Fields{
		"function":     "OpenEndpoint",
		"endpoint_id":  e.id,
		"codec":        ct.String(),
		"preset_count": len(e.presets),
	}).Info("Endpoint registered")

	return e.id, nil
}

// CloseEndpoint unregisters an endpoint: any stream setup on it is dropped,
// its SEP is removed from the protocol engine, and the endpoint is deleted.
func (p *Profile) CloseEndpoint(id uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := p.findEndpoint(id)
	if e == nil {
		logrus.WithFields(logrus.Fields{
			"function":    "CloseEndpoint",
			"endpoint_id": id,
		}).Error("Unable to find endpoint")
		return ErrEndpointNotFound
	}

	if setup := p.findSetupByEndpoint(id); setup != nil {
		p.removeSetup(setup)
	}

	if err := p.engine.UnregisterSEP(e.sep); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "CloseEndpoint",
			"endpoint_id": id,
			"error":       err.Error(),
		}).Warn("Failed to unregister SEP")
	}

	for i, other := range p.endpoints {
		if other == e {
			p.endpoints = append(p.endpoints[:i], p.endpoints[i+1:]...)
			break
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":    "CloseEndpoint",
		"endpoint_id": id,
	}).Info("Endpoint unregistered")

	return nil
}

// findEndpoint returns the endpoint with the given id, or nil. Linear scan;
// endpoint counts are single digits in practice. Callers must hold p.mu.
func (p *Profile) findEndpoint(id uint8) *Endpoint {
	for _, e := range p.endpoints {
		if e.id == id {
			return e
		}
	}
	return nil
}
