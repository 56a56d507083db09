package a2dp

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/a2dp/avdtp"
	"github.com/opd-ai/a2dp/codec"
	"github.com/opd-ai/a2dp/transport"
)

// handleSignalingConnect completes an outbound signaling connection attempt.
func (p *Profile) handleSignalingConnect(addr transport.Addr, ch transport.Channel, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev, ok := p.devices[addr]
	if !ok {
		// Disconnected while the connect was in flight.
		if ch != nil {
			ch.Shutdown()
		}
		return
	}

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handleSignalingConnect",
			"address":  addr.String(),
			"error":    err.Error(),
		}).Error("Signaling connect failed")
		p.setDeviceState(dev, StateDisconnected)
		return
	}

	p.signalingUp(dev, ch)
}

// signalingUp wraps an established signaling channel in a protocol session
// and, on the initiator side, starts endpoint discovery. Called with the
// profile lock held.
func (p *Profile) signalingUp(dev *Device, ch transport.Channel) {
	dev.channel = ch

	inMTU, outMTU, err := ch.MTU()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "signalingUp",
			"address":  dev.addr.String(),
			"error":    err.Error(),
		}).Error("Failed to read signaling channel MTU")
		p.setDeviceState(dev, StateDisconnected)
		return
	}

	session, err := p.engine.NewSession(ch.Conn(), inMTU, outMTU, avdtp.Version)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "signalingUp",
			"address":  dev.addr.String(),
			"error":    err.Error(),
		}).Error("Failed to create protocol session")
		p.setDeviceState(dev, StateDisconnected)
		return
	}

	addr := dev.addr
	session.OnDisconnect(func() {
		p.sessionLost(addr)
	})

	// The engine owns the socket now; release our channel handle without
	// closing it.
	ch.SetCloseOnRelease(false)
	ch.Release()
	dev.channel = nil
	dev.session = session

	if dev.state == StateConnecting {
		err := session.Discover(func(seps []avdtp.RemoteSEP, err error) {
			p.discovered(addr, seps, err)
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "signalingUp",
				"address":  addr.String(),
				"error":    err.Error(),
			}).Error("Failed to start endpoint discovery")
			session.Shutdown()
			p.setDeviceState(dev, StateDisconnected)
			return
		}
	}

	p.setDeviceState(dev, StateConnected)
}

// discovered receives the remote endpoint list and configures a stream on
// the first local endpoint with a compatible remote peer.
func (p *Profile) discovered(addr transport.Addr, seps []avdtp.RemoteSEP, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev, ok := p.devices[addr]
	if !ok {
		return
	}

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "discovered",
			"address":  addr.String(),
			"error":    err.Error(),
		}).Error("Endpoint discovery failed")
		// Session loss drives the Disconnected transition.
		dev.session.Shutdown()
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "discovered",
		"address":  addr.String(),
		"seps":     len(seps),
	}).Debug("Remote endpoints discovered")

	// Renegotiation within an attempt is not supported: any failure after
	// a remote match tears the whole session down.
	for _, e := range p.endpoints {
		rsep := dev.session.FindRemoteSEP(e.sep)
		if rsep == nil {
			continue
		}
		if err := p.selectConfiguration(dev, e, rsep); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "discovered",
				"address":     addr.String(),
				"endpoint_id": e.id,
				"error":       err.Error(),
			}).Warn("Failed to configure stream")
			dev.session.Shutdown()
		}
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "discovered",
		"address":  addr.String(),
	}).Warn("No compatible remote endpoint")
	dev.session.Shutdown()
}

// selectConfiguration picks the first local preset the remote endpoint's
// capability supports and proposes it. The negotiated preset stays owned by
// the endpoint. Called with the profile lock held.
func (p *Profile) selectConfiguration(dev *Device, e *Endpoint, rsep avdtp.RemoteSEP) error {
	mc, err := rsep.Codec()
	if err != nil {
		return fmt.Errorf("remote codec capability: %w", err)
	}
	if mc.CodecType != e.codecType {
		return fmt.Errorf("remote endpoint codec %s, want %s", mc.CodecType, e.codecType)
	}

	remoteCap, err := codec.NewPreset(mc.Parameters)
	if err != nil {
		return fmt.Errorf("remote codec capability: %w", err)
	}

	preset, err := codec.Select(e.codecType, e.presets, remoteCap)
	if err != nil {
		return err
	}

	caps := []avdtp.ServiceCapability{
		avdtp.MediaTransport(),
		avdtp.MediaCodec(avdtp.MediaTypeAudio, e.codecType, preset.Bytes()),
	}

	stream, err := dev.session.SetConfiguration(rsep, e.sep, caps)
	if err != nil {
		return fmt.Errorf("set configuration: %w", err)
	}

	if _, err := p.addSetup(dev, e, preset, stream, false); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":    "selectConfiguration",
		"address":     dev.addr.String(),
		"endpoint_id": e.id,
		"remote_seid": rsep.SEID(),
	}).Info("Proposed stream configuration")

	return nil
}

// handleInbound accepts a connection from the listener. A connection from
// an unknown device is a new signaling session; a connection from a device
// we already track is the media transport leg of its stream.
func (p *Profile) handleInbound(ch transport.Channel, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handleInbound",
			"error":    err.Error(),
		}).Error("Inbound connection failed")
		return
	}

	addr := ch.RemoteAddr()
	if dev, ok := p.devices[addr]; ok {
		p.mediaTransportUp(dev, ch)
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "handleInbound",
		"address":  addr.String(),
	}).Info("Inbound signaling connection")

	dev := &Device{addr: addr, state: StateDisconnected}
	p.devices[addr] = dev
	p.signalingUp(dev, ch)
}

// handleTransportConnect completes an outbound media transport connection.
func (p *Profile) handleTransportConnect(addr transport.Addr, ch transport.Channel, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev, ok := p.devices[addr]
	if !ok {
		if ch != nil {
			ch.Shutdown()
		}
		return
	}

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handleTransportConnect",
			"address":  addr.String(),
			"error":    err.Error(),
		}).Error("Media transport connect failed")
		return
	}

	p.mediaTransportUp(dev, ch)
}

// mediaTransportUp binds an established transport channel as the media leg
// of the device's stream. Called with the profile lock held.
func (p *Profile) mediaTransportUp(dev *Device, ch transport.Channel) {
	setup := p.findSetupByDevice(dev)
	if setup == nil {
		logrus.WithFields(logrus.Fields{
			"function": "mediaTransportUp",
			"address":  dev.addr.String(),
		}).Error("Media transport for device without stream")
		ch.Shutdown()
		return
	}

	inMTU, outMTU, err := ch.MTU()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "mediaTransportUp",
			"address":  dev.addr.String(),
			"error":    err.Error(),
		}).Error("Failed to read media channel MTU")
		ch.Shutdown()
		return
	}

	if err := dev.session.SetStreamTransport(setup.stream, ch.Conn(), inMTU, outMTU); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "mediaTransportUp",
			"address":  dev.addr.String(),
			"error":    err.Error(),
		}).Error("Failed to bind stream transport")
		ch.Shutdown()
		return
	}

	ch.SetCloseOnRelease(false)
	ch.Release()

	logrus.WithFields(logrus.Fields{
		"function": "mediaTransportUp",
		"address":  dev.addr.String(),
		"in_mtu":   inMTU,
		"out_mtu":  outMTU,
	}).Info("Media transport established")
}

// endpointHandler receives the engine's indications and confirmations for
// one local endpoint.
type endpointHandler struct {
	profile  *Profile
	endpoint *Endpoint
}

// GetCapability answers a remote capability query with the endpoint's full
// capability range.
func (h *endpointHandler) GetCapability(s avdtp.Session, sep avdtp.LocalSEP) ([]avdtp.ServiceCapability, *avdtp.Error) {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	return []avdtp.ServiceCapability{
		avdtp.MediaTransport(),
		avdtp.MediaCodec(avdtp.MediaTypeAudio, h.endpoint.codecType,
			h.endpoint.capability.Bytes()),
	}, nil
}

// SetConfiguration validates a remote configuration proposal and, when it
// falls inside the endpoint's capability, records the stream setup. The
// proposed preset is owned by the setup.
func (h *endpointHandler) SetConfiguration(s avdtp.Session, sep avdtp.LocalSEP,
	stream avdtp.Stream, caps []avdtp.ServiceCapability) *avdtp.Error {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	dev := p.findDeviceBySession(s)
	if dev == nil {
		logrus.WithFields(logrus.Fields{
			"function":    "endpointHandler.SetConfiguration",
			"endpoint_id": h.endpoint.id,
		}).Error("Configuration from unknown session")
		return avdtp.NewError(avdtp.ErrBadState)
	}

	var preset *codec.Preset
	for _, cap := range caps {
		switch cap.Category {
		case avdtp.CategoryDelayReporting:
			// Not offered in our capability list.
			return avdtp.NewError(avdtp.ErrUnsupportedConfiguration)
		case avdtp.CategoryMediaCodec:
			mc, err := avdtp.ParseMediaCodec(cap)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function":    "endpointHandler.SetConfiguration",
					"endpoint_id": h.endpoint.id,
					"error":       err.Error(),
				}).Error("Malformed codec capability")
				return avdtp.NewError(avdtp.ErrUnsupportedConfiguration)
			}
			if mc.CodecType != h.endpoint.codecType {
				return avdtp.NewError(avdtp.ErrUnsupportedConfiguration)
			}
			proposed, err := codec.NewPreset(mc.Parameters)
			if err != nil {
				return avdtp.NewError(avdtp.ErrUnsupportedConfiguration)
			}
			if err := h.endpoint.checkConfig(proposed); err != nil {
				logrus.WithFields(logrus.Fields{
					"function":    "endpointHandler.SetConfiguration",
					"endpoint_id": h.endpoint.id,
					"error":       err.Error(),
				}).Error("Rejected remote configuration")
				return avdtp.NewError(avdtp.ErrUnsupportedConfiguration)
			}
			preset = proposed
		}
	}

	if preset == nil {
		return avdtp.NewError(avdtp.ErrUnsupportedConfiguration)
	}

	if _, err := p.addSetup(dev, h.endpoint, preset, stream, true); err != nil {
		if err == ErrEndpointBusy {
			return avdtp.NewError(avdtp.ErrSEPInUse)
		}
		return avdtp.NewError(avdtp.ErrBadState)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "endpointHandler.SetConfiguration",
		"address":     dev.addr.String(),
		"endpoint_id": h.endpoint.id,
	}).Info("Accepted remote stream configuration")

	return nil
}

// Open accepts a remote open request for a configured stream.
func (h *endpointHandler) Open(s avdtp.Session, sep avdtp.LocalSEP, stream avdtp.Stream) *avdtp.Error {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.findSetupByEndpoint(h.endpoint.id) == nil {
		return avdtp.NewError(avdtp.ErrSEPNotInUse)
	}
	return nil
}

// Close accepts a remote close request and destroys the stream setup.
func (h *endpointHandler) Close(s avdtp.Session, sep avdtp.LocalSEP, stream avdtp.Stream) *avdtp.Error {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	setup := p.findSetupByEndpoint(h.endpoint.id)
	if setup == nil {
		return avdtp.NewError(avdtp.ErrSEPNotInUse)
	}
	p.removeSetup(setup)
	return nil
}

// Start accepts a remote start request for an open stream.
func (h *endpointHandler) Start(s avdtp.Session, sep avdtp.LocalSEP, stream avdtp.Stream) *avdtp.Error {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.findSetupByEndpoint(h.endpoint.id) == nil {
		return avdtp.NewError(avdtp.ErrSEPNotInUse)
	}
	return nil
}

// Suspend accepts a remote suspend request.
func (h *endpointHandler) Suspend(s avdtp.Session, sep avdtp.LocalSEP, stream avdtp.Stream) *avdtp.Error {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.findSetupByEndpoint(h.endpoint.id) == nil {
		return avdtp.NewError(avdtp.ErrSEPNotInUse)
	}
	return nil
}

// SetConfigurationCfm follows up an accepted configuration with an open
// request; a rejected configuration destroys the setup.
func (h *endpointHandler) SetConfigurationCfm(s avdtp.Session, sep avdtp.LocalSEP,
	stream avdtp.Stream, cfmErr *avdtp.Error) {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	setup := p.findSetupByEndpoint(h.endpoint.id)
	if setup == nil {
		return
	}

	if cfmErr != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "endpointHandler.SetConfigurationCfm",
			"endpoint_id": h.endpoint.id,
			"error":       cfmErr.Error(),
		}).Error("Remote rejected configuration")
		p.removeSetup(setup)
		return
	}

	if err := s.Open(setup.stream); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "endpointHandler.SetConfigurationCfm",
			"endpoint_id": h.endpoint.id,
			"error":       err.Error(),
		}).Error("Failed to request stream open")
		p.removeSetup(setup)
	}
}

// OpenCfm connects the media transport leg once the remote accepts the
// open; rejection destroys the setup.
func (h *endpointHandler) OpenCfm(s avdtp.Session, sep avdtp.LocalSEP,
	stream avdtp.Stream, cfmErr *avdtp.Error) {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	if cfmErr != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "endpointHandler.OpenCfm",
			"endpoint_id": h.endpoint.id,
			"error":       cfmErr.Error(),
		}).Error("Remote rejected stream open")
		p.removeSetupByEndpoint(h.endpoint.id)
		return
	}

	setup := p.findSetupByEndpoint(h.endpoint.id)
	if setup == nil {
		return
	}

	addr := setup.dev.addr
	err := p.connector.Connect(p.localAddr, addr, transport.PSMAVDTP,
		transport.SecurityMedium, func(ch transport.Channel, err error) {
			p.handleTransportConnect(addr, ch, err)
		})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "endpointHandler.OpenCfm",
			"endpoint_id": h.endpoint.id,
			"address":     addr.String(),
			"error":       err.Error(),
		}).Error("Failed to initiate media transport connect")
	}
}

// StartCfm destroys the setup when the remote rejects a start request.
func (h *endpointHandler) StartCfm(s avdtp.Session, sep avdtp.LocalSEP,
	stream avdtp.Stream, cfmErr *avdtp.Error) {
	if cfmErr == nil {
		return
	}

	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "endpointHandler.StartCfm",
		"endpoint_id": h.endpoint.id,
		"error":       cfmErr.Error(),
	}).Error("Remote rejected stream start")
	p.removeSetupByEndpoint(h.endpoint.id)
}

// SuspendCfm destroys the setup when the remote rejects a suspend request.
func (h *endpointHandler) SuspendCfm(s avdtp.Session, sep avdtp.LocalSEP,
	stream avdtp.Stream, cfmErr *avdtp.Error) {
	if cfmErr == nil {
		return
	}

	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":    "endpointHandler.SuspendCfm",
		"endpoint_id": h.endpoint.id,
		"error":       cfmErr.Error(),
	}).Error("Remote rejected stream suspend")
	p.removeSetupByEndpoint(h.endpoint.id)
}

// CloseCfm destroys the setup once the remote confirms the close.
func (h *endpointHandler) CloseCfm(s avdtp.Session, sep avdtp.LocalSEP,
	stream avdtp.Stream, cfmErr *avdtp.Error) {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	if cfmErr != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "endpointHandler.CloseCfm",
			"endpoint_id": h.endpoint.id,
			"error":       cfmErr.Error(),
		}).Error("Remote rejected stream close")
		return
	}
	p.removeSetupByEndpoint(h.endpoint.id)
}

// AbortCfm destroys the setup once the remote confirms the abort.
func (h *endpointHandler) AbortCfm(s avdtp.Session, sep avdtp.LocalSEP,
	stream avdtp.Stream, cfmErr *avdtp.Error) {
	p := h.profile
	p.mu.Lock()
	defer p.mu.Unlock()

	if cfmErr != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "endpointHandler.AbortCfm",
			"endpoint_id": h.endpoint.id,
			"error":       cfmErr.Error(),
		}).Error("Remote rejected stream abort")
		return
	}
	p.removeSetupByEndpoint(h.endpoint.id)
}
