// Package a2dp implements the source role of the Advanced Audio
// Distribution Profile on top of an AVDTP protocol engine.
//
// The package negotiates, establishes and tears down audio streams between
// the local device and remote Bluetooth sinks: it tracks per-device
// connection state, matches locally registered codec presets against remote
// capabilities (and validates remote proposals against local capabilities
// when acting as acceptor), and sequences the AVDTP request, indication and
// confirmation exchange that brings a stream up and back down.
//
// The AVDTP engine, the Bluetooth transport and the service record
// registrar are external collaborators supplied through [Config]; see the
// avdtp, transport and sdp packages.
//
// # Getting Started
//
// Create a profile, register an endpoint, and connect to a sink:
//
//	profile, err := a2dp.New(a2dp.Config{
//	    Address:   adapterAddr,
//	    Engine:    engine,
//	    Connector: transport.NewL2CAPConnector(),
//	    Records:   registrar,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	profile.SetConnectionStateCallback(func(addr transport.Addr, state a2dp.ConnState) {
//	    fmt.Printf("%s: %s\n", addr, state)
//	})
//
//	if err := profile.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer profile.Stop()
//
//	id, err := profile.OpenEndpoint(codec.TypeSBC, capability, presets)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := profile.Connect(sinkAddr); err != nil {
//	    log.Fatal(err)
//	}
//
// # Core Types
//
//   - [Profile]: the session controller owning the device, endpoint and
//     setup registries
//   - [Device]: one known remote peer and its connection state
//   - [Endpoint]: one registered local codec capability set
//   - [Setup]: one in-flight or active stream negotiation
//
// # Concurrency
//
// All profile state is guarded by a single mutex; collaborator callbacks
// re-enter through handler methods that take it. Collaborators must deliver
// callbacks asynchronously — from their own goroutine or event loop — never
// from inside a profile-initiated call, and the connection state callback
// must not call back into the Profile.
package a2dp
