// Package sdp publishes the A2DP source service record through the BlueZ
// daemon.
//
// BlueZ owns the adapter's service discovery database, so the record is
// registered over D-Bus using the org.bluez.ProfileManager1 interface with
// a hand-built ServiceRecord XML document rather than through raw SDP PDUs.
// The Registrar satisfies the profile's RecordRegistrar interface.
package sdp
