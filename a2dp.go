package a2dp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/a2dp/avdtp"
	"github.com/opd-ai/a2dp/codec"
	"github.com/opd-ai/a2dp/transport"
)

// StateCallback is invoked on every genuine device connection state
// transition. It runs with the profile's internal lock held and must not
// call back into the Profile.
type StateCallback func(addr transport.Addr, state ConnState)

// RecordRegistrar publishes the profile's service record with the local
// adapter's service discovery database. See the sdp package for the BlueZ
// implementation.
type RecordRegistrar interface {
	Register() error
	Unregister() error
}

// Config carries the collaborators a Profile is built from.
type Config struct {
	// Address is the local adapter address streams originate from.
	Address transport.Addr

	// Engine is the AVDTP protocol engine. Required.
	Engine avdtp.Engine

	// Connector provides the Bluetooth transport. Required.
	Connector transport.Connector

	// Records registers the profile's service record on Start and
	// removes it on Stop. Optional.
	Records RecordRegistrar
}

// Profile is the A2DP source session controller. It owns the device,
// endpoint and setup registries and drives the protocol engine and the
// transport against them.
type Profile struct {
	mu sync.Mutex

	engine    avdtp.Engine
	connector transport.Connector
	records   RecordRegistrar
	localAddr transport.Addr

	devices        map[transport.Addr]*Device
	endpoints      []*Endpoint
	setups         []*Setup
	nextEndpointID uint8

	listener transport.Listener
	running  bool

	stateCallback StateCallback
}

// New creates a Profile from its collaborators.
func New(cfg Config) (*Profile, error) {
	logrus.WithFields(logrus.Fields{
		"function": "New",
		"address":  cfg.Address.String(),
	}).Info("Creating A2DP source profile")

	if cfg.Engine == nil {
		logrus.WithFields(logrus.Fields{
			"function": "New",
			"error":    "protocol engine cannot be nil",
		}).Error("Config validation failed")
		return nil, errors.New("protocol engine cannot be nil")
	}
	if cfg.Connector == nil {
		logrus.WithFields(logrus.Fields{
			"function": "New",
			"error":    "transport connector cannot be nil",
		}).Error("Config validation failed")
		return nil, errors.New("transport connector cannot be nil")
	}

	return &Profile{
		engine:         cfg.Engine,
		connector:      cfg.Connector,
		records:        cfg.Records,
		localAddr:      cfg.Address,
		devices:        make(map[transport.Addr]*Device),
		nextEndpointID: 1,
	}, nil
}

// SetConnectionStateCallback registers the connection state notification
// callback, or unregisters it when cb is nil.
func (p *Profile) SetConnectionStateCallback(cb StateCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stateCallback = cb
}

// Start brings the profile up: it listens for inbound connections on the
// AVDTP PSM and registers the service record.
func (p *Profile) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyStarted
	}

	listener, err := p.connector.Listen(p.localAddr, transport.PSMAVDTP,
		transport.SecurityMedium, p.handleInbound)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Start",
			"error":    err.Error(),
		}).Error("Failed to listen on AVDTP channel")
		return fmt.Errorf("listen on AVDTP channel: %w", err)
	}

	if p.records != nil {
		if err := p.records.Register(); err != nil {
			listener.Close()
			logrus.WithFields(logrus.Fields{
				"function": "Start",
				"error":    err.Error(),
			}).Error("Failed to register service record")
			return fmt.Errorf("register service record: %w", err)
		}
	}

	p.listener = listener
	p.running = true

	logrus.WithFields(logrus.Fields{
		"function": "Start",
		"address":  p.localAddr.String(),
	}).Info("A2DP source profile started")

	return nil
}

// Stop tears the profile down: every setup is dropped, every endpoint
// unregistered, every device driven to StateDisconnected (with
// notifications), the service record removed and the listener closed.
// Stopping a profile that is not running is a no-op.
func (p *Profile) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}

	for len(p.setups) > 0 {
		p.removeSetup(p.setups[0])
	}

	for _, e := range p.endpoints {
		if err := p.engine.UnregisterSEP(e.sep); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "Stop",
				"endpoint_id": e.id,
				"error":       err.Error(),
			}).Warn("Failed to unregister SEP")
		}
	}
	p.endpoints = nil

	for _, dev := range p.devices {
		p.setDeviceState(dev, StateDisconnected)
	}

	if p.records != nil {
		if err := p.records.Unregister(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Stop",
				"error":    err.Error(),
			}).Warn("Failed to unregister service record")
		}
	}

	if p.listener != nil {
		p.listener.Close()
		p.listener = nil
	}
	p.running = false

	logrus.WithFields(logrus.Fields{
		"function": "Stop",
	}).Info("A2DP source profile stopped")

	return nil
}

// Connect initiates a signaling connection to a remote sink. The attempt
// completes asynchronously; progress is reported through the connection
// state callback.
func (p *Profile) Connect(addr transport.Addr) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrNotStarted
	}
	if _, exists := p.devices[addr]; exists {
		logrus.WithFields(logrus.Fields{
			"function": "Connect",
			"address":  addr.String(),
		}).Error("Device already exists")
		return ErrDeviceExists
	}

	dev := &Device{addr: addr, state: StateDisconnected}
	p.devices[addr] = dev

	err := p.connector.Connect(p.localAddr, addr, transport.PSMAVDTP,
		transport.SecurityMedium, func(ch transport.Channel, err error) {
			p.handleSignalingConnect(addr, ch, err)
		})
	if err != nil {
		delete(p.devices, addr)
		logrus.WithFields(logrus.Fields{
			"function": "Connect",
			"address":  addr.String(),
			"error":    err.Error(),
		}).Error("Failed to initiate signaling connect")
		return fmt.Errorf("signaling connect: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Connect",
		"address":  addr.String(),
	}).Info("Connecting to remote sink")

	p.setDeviceState(dev, StateConnecting)

	return nil
}

// Disconnect tears down the connection to a remote sink. With an
// established protocol session the shutdown completes asynchronously
// through the session-loss callback; a device still holding a raw signaling
// channel, or none, short-circuits directly to StateDisconnected.
func (p *Profile) Disconnect(addr transport.Addr) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev, ok := p.devices[addr]
	if !ok {
		return ErrDeviceNotFound
	}

	if dev.session == nil || dev.channel != nil {
		p.setDeviceState(dev, StateDisconnected)
		return nil
	}

	if err := dev.session.Shutdown(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Disconnect",
			"address":  addr.String(),
			"error":    err.Error(),
		}).Warn("Session shutdown request failed")
	}
	p.setDeviceState(dev, StateDisconnecting)

	return nil
}

// OpenStream returns the negotiated preset of the active stream setup on an
// endpoint. It fails when no stream has been negotiated.
func (p *Profile) OpenStream(endpointID uint8) (*codec.Preset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	setup := p.findSetupByEndpoint(endpointID)
	if setup == nil {
		logrus.WithFields(logrus.Fields{
			"function":    "OpenStream",
			"endpoint_id": endpointID,
		}).Error("Unable to find stream for endpoint")
		return nil, ErrSetupNotFound
	}

	return setup.preset, nil
}

// CloseStream requests protocol-level close of the stream on an endpoint.
// The setup is destroyed when the close confirmation arrives.
func (p *Profile) CloseStream(endpointID uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	setup := p.findSetupByEndpoint(endpointID)
	if setup == nil {
		return ErrSetupNotFound
	}

	if err := setup.dev.session.Close(setup.stream, false); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "CloseStream",
			"endpoint_id": endpointID,
			"error":       err.Error(),
		}).Error("Failed to request stream close")
		return fmt.Errorf("close stream: %w", err)
	}

	return nil
}

// ResumeStream requests protocol-level start of the stream on an endpoint.
func (p *Profile) ResumeStream(endpointID uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	setup := p.findSetupByEndpoint(endpointID)
	if setup == nil {
		return ErrSetupNotFound
	}

	if err := setup.dev.session.Start(setup.stream); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "ResumeStream",
			"endpoint_id": endpointID,
			"error":       err.Error(),
		}).Error("Failed to request stream start")
		return fmt.Errorf("start stream: %w", err)
	}

	return nil
}

// SuspendStream requests protocol-level suspend of the stream on an
// endpoint.
func (p *Profile) SuspendStream(endpointID uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	setup := p.findSetupByEndpoint(endpointID)
	if setup == nil {
		return ErrSetupNotFound
	}

	if err := setup.dev.session.Suspend(setup.stream); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "SuspendStream",
			"endpoint_id": endpointID,
			"error":       err.Error(),
		}).Error("Failed to request stream suspend")
		return fmt.Errorf("suspend stream: %w", err)
	}

	return nil
}
