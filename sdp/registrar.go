package sdp

import (
	"fmt"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const (
	bluezService        = "org.bluez"
	bluezPath           = dbus.ObjectPath("/org/bluez")
	profileManagerIface = "org.bluez.ProfileManager1"
	profileIface        = "org.bluez.Profile1"
	profilePath         = dbus.ObjectPath("/org/a2dp/source")
)

// Registrar publishes the AudioSource service record through BlueZ. It
// satisfies the profile's RecordRegistrar interface.
type Registrar struct {
	mu         sync.Mutex
	conn       *dbus.Conn
	registered bool
}

// NewRegistrar connects to the system bus and exports the profile object
// BlueZ calls back into.
func NewRegistrar() (*Registrar, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewRegistrar",
			"error":    err.Error(),
		}).Error("Failed to connect to system bus")
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}

	if err := conn.Export(profileObject{}, profilePath, profileIface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export profile object: %w", err)
	}

	return &Registrar{conn: conn}, nil
}

// Register publishes the AudioSource record. The record itself is passed to
// BlueZ verbatim through the ServiceRecord option; transport channels are
// managed by the caller, so BlueZ's own connection handling is disabled.
func (r *Registrar) Register() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.registered {
		return nil
	}

	options := map[string]dbus.Variant{
		"Name":                  dbus.MakeVariant(serviceName),
		"Role":                  dbus.MakeVariant("server"),
		"ServiceRecord":         dbus.MakeVariant(SourceRecord()),
		"RequireAuthentication": dbus.MakeVariant(false),
		"RequireAuthorization":  dbus.MakeVariant(false),
		"AutoConnect":           dbus.MakeVariant(false),
	}

	obj := r.conn.Object(bluezService, bluezPath)
	call := obj.Call(profileManagerIface+".RegisterProfile", 0,
		profilePath, UUIDAudioSource, options)
	if call.Err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Register",
			"error":    call.Err.Error(),
		}).Error("Failed to register service record")
		return fmt.Errorf("register profile: %w", call.Err)
	}
	r.registered = true

	logrus.WithFields(logrus.Fields{
		"function": "Register",
		"uuid":     UUIDAudioSource,
	}).Info("Service record registered")

	return nil
}

// Unregister removes the record from BlueZ. Unregistering a record that is
// not registered is a no-op.
func (r *Registrar) Unregister() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.registered {
		return nil
	}

	obj := r.conn.Object(bluezService, bluezPath)
	call := obj.Call(profileManagerIface+".UnregisterProfile", 0, profilePath)
	if call.Err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Unregister",
			"error":    call.Err.Error(),
		}).Error("Failed to unregister service record")
		return fmt.Errorf("unregister profile: %w", call.Err)
	}
	r.registered = false

	return nil
}

// Close drops the bus connection. The record should be unregistered first.
func (r *Registrar) Close() error {
	return r.conn.Close()
}

// profileObject is the org.bluez.Profile1 implementation BlueZ calls back
// into. Connection handling happens over the profile's own listener, so the
// callbacks only acknowledge.
type profileObject struct{}

func (profileObject) NewConnection(device dbus.ObjectPath, fd dbus.UnixFD,
	properties map[string]dbus.Variant) *dbus.Error {
	logrus.WithFields(logrus.Fields{
		"function": "NewConnection",
		"device":   string(device),
	}).Debug("Ignoring BlueZ-delivered connection")
	os.NewFile(uintptr(fd), "bluez-conn").Close()
	return nil
}

func (profileObject) RequestDisconnection(device dbus.ObjectPath) *dbus.Error {
	return nil
}

func (profileObject) Release() *dbus.Error {
	return nil
}
