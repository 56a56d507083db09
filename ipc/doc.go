// Package ipc exposes the A2DP source profile to external control clients
// over a websocket.
//
// Clients connect to a single endpoint and exchange JSON frames: every
// command frame receives exactly one response frame carrying the same
// correlation id, and connection state changes are pushed to all connected
// clients as event frames. Audio itself never crosses this interface.
package ipc
