package a2dp

import (
	"errors"
	"testing"

	"github.com/opd-ai/a2dp/avdtp"
	"github.com/opd-ai/a2dp/codec"
)

// TestOpenEndpointAssignsSequentialIDs verifies ids start at 1, grow
// monotonically and are never reused.
func TestOpenEndpointAssignsSequentialIDs(t *testing.T) {
	p, engine, _, _ := newTestProfile(t)

	first, err := p.OpenEndpoint(codec.TypeSBC, sbcTestCapability(),
		[]*codec.Preset{sbcTestPreset()})
	if err != nil {
		t.Fatalf("Failed to open endpoint: %v", err)
	}
	second, err := p.OpenEndpoint(codec.TypeSBC, sbcTestCapability(),
		[]*codec.Preset{sbcTestPreset()})
	if err != nil {
		t.Fatalf("Failed to open endpoint: %v", err)
	}

	if first != 1 || second != 2 {
		t.Errorf("Expected ids 1 and 2, got %d and %d", first, second)
	}
	if len(engine.seps) != 2 {
		t.Errorf("Expected 2 registered SEPs, got %d", len(engine.seps))
	}
	if engine.seps[0].st != avdtp.SEPTypeSource || engine.seps[0].mt != avdtp.MediaTypeAudio {
		t.Error("Endpoints should register as audio sources")
	}

	if err := p.CloseEndpoint(first); err != nil {
		t.Fatalf("Failed to close endpoint: %v", err)
	}

	// A fresh endpoint never takes a previously assigned id.
	third, err := p.OpenEndpoint(codec.TypeSBC, sbcTestCapability(),
		[]*codec.Preset{sbcTestPreset()})
	if err != nil {
		t.Fatalf("Failed to open endpoint: %v", err)
	}
	if third != 3 {
		t.Errorf("Expected id 3, got %d", third)
	}
}

// TestOpenEndpointValidation verifies argument checks.
func TestOpenEndpointValidation(t *testing.T) {
	p, _, _, _ := newTestProfile(t)

	_, err := p.OpenEndpoint(codec.TypeSBC, nil, []*codec.Preset{sbcTestPreset()})
	if !errors.Is(err, ErrNoCapability) {
		t.Errorf("Expected ErrNoCapability, got %v", err)
	}

	_, err = p.OpenEndpoint(codec.TypeSBC, sbcTestCapability(), nil)
	if !errors.Is(err, ErrNoPresets) {
		t.Errorf("Expected ErrNoPresets, got %v", err)
	}
}

// TestOpenEndpointEngineFailure verifies a SEP registration failure leaves
// no endpoint behind.
func TestOpenEndpointEngineFailure(t *testing.T) {
	p, engine, _, _ := newTestProfile(t)
	engine.registerErr = errors.New("engine full")

	if _, err := p.OpenEndpoint(codec.TypeSBC, sbcTestCapability(),
		[]*codec.Preset{sbcTestPreset()}); err == nil {
		t.Fatal("Expected open to fail")
	}
	if len(p.endpoints) != 0 {
		t.Error("Failed registration should not leave an endpoint")
	}
}

// TestCloseEndpointNotFound verifies close on an unknown id fails.
func TestCloseEndpointNotFound(t *testing.T) {
	p, _, _, _ := newTestProfile(t)

	if err := p.CloseEndpoint(7); !errors.Is(err, ErrEndpointNotFound) {
		t.Errorf("Expected ErrEndpointNotFound, got %v", err)
	}
}

// TestCloseEndpointDropsSetup verifies the endpoint's stream setup goes
// away with it.
func TestCloseEndpointDropsSetup(t *testing.T) {
	p, engine, connector, _ := newTestProfile(t)
	_, session := connectDevice(t, p, engine, connector)

	sep := engine.lastSEP()
	rsep := &mockRemoteSEP{
		seid: 5,
		codecCap: &avdtp.MediaCodecCapability{
			MediaType:  avdtp.MediaTypeAudio,
			CodecType:  codec.TypeSBC,
			Parameters: sbcTestCapability().Bytes(),
		},
	}
	session.remote[sep.sep.SEID()] = rsep
	session.discoverCB([]avdtp.RemoteSEP{rsep}, nil)

	if err := p.CloseEndpoint(1); err != nil {
		t.Fatalf("Failed to close endpoint: %v", err)
	}
	if len(p.setups) != 0 {
		t.Error("Closing an endpoint should drop its setup")
	}
	if len(engine.unregistered) != 1 {
		t.Error("Closing an endpoint should unregister its SEP")
	}
}

// TestCheckConfigFastPath verifies a proposal byte-identical to an
// acceptable preset passes without codec validation.
func TestCheckConfigFastPath(t *testing.T) {
	// Capability pinned to 44.1 kHz; the preset list still carries a
	// 16 kHz entry that field validation would reject.
	capability := codec.MustPreset([]byte{0x21, 0x15, 2, 53})
	odd := codec.MustPreset([]byte{0x88, 0x15, 2, 53})

	e := &Endpoint{
		id:         1,
		codecType:  codec.TypeSBC,
		capability: capability,
		presets:    []*codec.Preset{odd},
	}

	if err := e.checkConfig(codec.MustPreset(odd.Bytes())); err != nil {
		t.Errorf("Byte-identical proposal should pass, got %v", err)
	}

	// A near miss falls through to validation and is rejected.
	near := codec.MustPreset([]byte{0x88, 0x15, 2, 52})
	if err := e.checkConfig(near); !errors.Is(err, codec.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
