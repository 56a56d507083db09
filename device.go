package a2dp

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/a2dp/avdtp"
	"github.com/opd-ai/a2dp/transport"
)

// ConnState is the connection state of a remote device.
type ConnState uint8

const (
	// StateDisconnected is the initial and terminal state. A device in
	// this state is removed from the registry.
	StateDisconnected ConnState = iota
	// StateConnecting means a signaling transport connect is in flight.
	StateConnecting
	// StateConnected means a protocol session is established.
	StateConnected
	// StateDisconnecting means session shutdown has been requested and
	// session loss is awaited.
	StateDisconnecting
)

// String returns a human readable state name.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Device is one known remote peer. At most one Device exists per address.
//
// While a signaling connect is in flight the device owns the raw transport
// channel; once the protocol session is created the session owns the
// underlying socket and the channel reference is dropped.
type Device struct {
	addr    transport.Addr
	state   ConnState
	channel transport.Channel
	session avdtp.Session
}

// Addr returns the device's Bluetooth address.
func (d *Device) Addr() transport.Addr {
	return d.addr
}

// State returns the device's current connection state.
func (d *Device) State() ConnState {
	return d.state
}

// setDeviceState transitions a device, notifying on every genuine
// transition and destroying the device when it reaches StateDisconnected.
// Setting the state already held fires no duplicate notification, but a
// device driven to StateDisconnected is destroyed even when it never left
// it: an inbound device whose session setup failed must not linger in the
// registry.
//
// Callers must hold p.mu.
func (p *Profile) setDeviceState(dev *Device, state ConnState) {
	if dev.state != state {
		dev.state = state

		logrus.WithFields(logrus.Fields{
			"function": "setDeviceState",
			"address":  dev.addr.String(),
			"state":    state.String(),
		}).Debug("Device connection state changed")

		if p.stateCallback != nil {
			p.stateCallback(dev.addr, state)
		}
	}

	if state != StateDisconnected {
		return
	}

	p.destroyDevice(dev)
}

// destroyDevice destroys a device's stream setups, releases its session and
// channel and removes it from the registry. Callers must hold p.mu.
func (p *Profile) destroyDevice(dev *Device) {
	for setup := p.findSetupByDevice(dev); setup != nil; setup = p.findSetupByDevice(dev) {
		p.removeSetup(setup)
	}
	if dev.session != nil {
		dev.session.Release()
		dev.session = nil
	}
	if dev.channel != nil {
		dev.channel.Shutdown()
		dev.channel = nil
	}
	delete(p.devices, dev.addr)

	logrus.WithFields(logrus.Fields{
		"function": "destroyDevice",
		"address":  dev.addr.String(),
	}).Debug("Device removed")
}

// findDeviceBySession returns the device owning the given session, or nil.
// Callers must hold p.mu.
func (p *Profile) findDeviceBySession(s avdtp.Session) *Device {
	for _, dev := range p.devices {
		if dev.session == s {
			return dev
		}
	}
	return nil
}

// sessionLost handles the engine's session-loss callback for a device.
func (p *Profile) sessionLost(addr transport.Addr) {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev, ok := p.devices[addr]
	if !ok {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "sessionLost",
		"address":  addr.String(),
	}).Info("Protocol session lost")

	p.setDeviceState(dev, StateDisconnected)
}
