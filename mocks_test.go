package a2dp

import (
	"errors"
	"io"

	"github.com/opd-ai/a2dp/avdtp"
	"github.com/opd-ai/a2dp/codec"
	"github.com/opd-ai/a2dp/transport"
)

// nopConn is a do-nothing stream for mock channels.
type nopConn struct{}

func (nopConn) Read(p []byte) (int, error)  { return 0, io.EOF }
func (nopConn) Write(p []byte) (int, error) { return len(p), nil }
func (nopConn) Close() error                { return nil }

// mockLocalSEP implements avdtp.LocalSEP.
type mockLocalSEP struct {
	seid uint8
}

func (s *mockLocalSEP) SEID() uint8 { return s.seid }

// mockRemoteSEP implements avdtp.RemoteSEP with a fixed codec capability.
type mockRemoteSEP struct {
	seid     uint8
	codecCap *avdtp.MediaCodecCapability
	codecErr error
}

func (s *mockRemoteSEP) SEID() uint8 { return s.seid }

func (s *mockRemoteSEP) Codec() (*avdtp.MediaCodecCapability, error) {
	return s.codecCap, s.codecErr
}

// registeredSEP records one RegisterSEP call.
type registeredSEP struct {
	sep *mockLocalSEP
	st  avdtp.SEPType
	mt  avdtp.MediaType
	ct  codec.Type
	ind avdtp.IndicationHandler
	cfm avdtp.ConfirmationHandler
}

// mockEngine implements avdtp.Engine over in-memory registries.
type mockEngine struct {
	seps          []*registeredSEP
	sessions      []*mockSession
	nextSEID      uint8
	registerErr   error
	newSessionErr error
	// sessionDiscoverErr seeds Discover failure on every new session.
	sessionDiscoverErr error
	unregistered       []uint8
}

func newMockEngine() *mockEngine {
	return &mockEngine{nextSEID: 1}
}

func (e *mockEngine) NewSession(conn io.ReadWriteCloser, inMTU, outMTU uint16, version uint16) (avdtp.Session, error) {
	if e.newSessionErr != nil {
		return nil, e.newSessionErr
	}
	s := &mockSession{
		inMTU:       inMTU,
		outMTU:      outMTU,
		remote:      make(map[uint8]avdtp.RemoteSEP),
		discoverErr: e.sessionDiscoverErr,
	}
	e.sessions = append(e.sessions, s)
	return s, nil
}

func (e *mockEngine) RegisterSEP(st avdtp.SEPType, mt avdtp.MediaType, ct codec.Type,
	delayReporting bool, ind avdtp.IndicationHandler, cfm avdtp.ConfirmationHandler) (avdtp.LocalSEP, error) {
	if e.registerErr != nil {
		return nil, e.registerErr
	}
	r := &registeredSEP{
		sep: &mockLocalSEP{seid: e.nextSEID},
		st:  st,
		mt:  mt,
		ct:  ct,
		ind: ind,
		cfm: cfm,
	}
	e.nextSEID++
	e.seps = append(e.seps, r)
	return r.sep, nil
}

func (e *mockEngine) UnregisterSEP(sep avdtp.LocalSEP) error {
	for i, r := range e.seps {
		if r.sep == sep {
			e.seps = append(e.seps[:i], e.seps[i+1:]...)
			e.unregistered = append(e.unregistered, sep.SEID())
			return nil
		}
	}
	return errors.New("unknown SEP")
}

// lastSEP returns the most recently registered endpoint handler pair.
func (e *mockEngine) lastSEP() *registeredSEP {
	if len(e.seps) == 0 {
		return nil
	}
	return e.seps[len(e.seps)-1]
}

// setConfigCall records one SetConfiguration request.
type setConfigCall struct {
	remote avdtp.RemoteSEP
	local  avdtp.LocalSEP
	caps   []avdtp.ServiceCapability
}

// mockSession implements avdtp.Session. Requests are recorded, not
// executed; tests complete them by calling the confirmation handlers.
type mockSession struct {
	inMTU, outMTU uint16

	discoverCB avdtp.DiscoverFunc
	remote     map[uint8]avdtp.RemoteSEP

	setConfigCalls []setConfigCall
	streams        []avdtp.Stream

	openCalls    []avdtp.Stream
	startCalls   []avdtp.Stream
	suspendCalls []avdtp.Stream
	closeCalls   []avdtp.Stream

	transportConn   io.ReadWriteCloser
	transportInMTU  uint16
	transportOutMTU uint16

	disconnectCB func()
	shutdowns    int
	released     bool

	discoverErr     error
	setConfigErr    error
	openErr         error
	startErr        error
	suspendErr      error
	closeErr        error
	setTransportErr error
}

func (s *mockSession) Discover(cb avdtp.DiscoverFunc) error {
	if s.discoverErr != nil {
		return s.discoverErr
	}
	s.discoverCB = cb
	return nil
}

func (s *mockSession) FindRemoteSEP(local avdtp.LocalSEP) avdtp.RemoteSEP {
	return s.remote[local.SEID()]
}

func (s *mockSession) SetConfiguration(remote avdtp.RemoteSEP, local avdtp.LocalSEP,
	caps []avdtp.ServiceCapability) (avdtp.Stream, error) {
	if s.setConfigErr != nil {
		return nil, s.setConfigErr
	}
	s.setConfigCalls = append(s.setConfigCalls, setConfigCall{remote: remote, local: local, caps: caps})
	stream := new(int)
	s.streams = append(s.streams, stream)
	return stream, nil
}

func (s *mockSession) Open(stream avdtp.Stream) error {
	if s.openErr != nil {
		return s.openErr
	}
	s.openCalls = append(s.openCalls, stream)
	return nil
}

func (s *mockSession) Start(stream avdtp.Stream) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.startCalls = append(s.startCalls, stream)
	return nil
}

func (s *mockSession) Suspend(stream avdtp.Stream) error {
	if s.suspendErr != nil {
		return s.suspendErr
	}
	s.suspendCalls = append(s.suspendCalls, stream)
	return nil
}

func (s *mockSession) Close(stream avdtp.Stream, immediate bool) error {
	if s.closeErr != nil {
		return s.closeErr
	}
	s.closeCalls = append(s.closeCalls, stream)
	return nil
}

func (s *mockSession) SetStreamTransport(stream avdtp.Stream, conn io.ReadWriteCloser,
	inMTU, outMTU uint16) error {
	if s.setTransportErr != nil {
		return s.setTransportErr
	}
	s.transportConn = conn
	s.transportInMTU = inMTU
	s.transportOutMTU = outMTU
	return nil
}

func (s *mockSession) OnDisconnect(cb func()) { s.disconnectCB = cb }

func (s *mockSession) Shutdown() error {
	s.shutdowns++
	return nil
}

func (s *mockSession) Release() { s.released = true }

// connectCall records one outbound connect request.
type connectCall struct {
	local, remote transport.Addr
	psm           uint16
	cb            transport.ConnectFunc
}

// mockConnector implements transport.Connector. Connects are recorded;
// tests complete them by invoking the stored callback.
type mockConnector struct {
	connects   []connectCall
	connectErr error
	listenErr  error
	listener   *mockListener
}

func (c *mockConnector) Connect(local, remote transport.Addr, psm uint16,
	sec transport.SecurityLevel, cb transport.ConnectFunc) error {
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connects = append(c.connects, connectCall{local: local, remote: remote, psm: psm, cb: cb})
	return nil
}

func (c *mockConnector) Listen(local transport.Addr, psm uint16,
	sec transport.SecurityLevel, cb transport.ConnectFunc) (transport.Listener, error) {
	if c.listenErr != nil {
		return nil, c.listenErr
	}
	c.listener = &mockListener{addr: local, accept: cb}
	return c.listener, nil
}

// lastConnect returns the most recent connect request.
func (c *mockConnector) lastConnect() *connectCall {
	if len(c.connects) == 0 {
		return nil
	}
	return &c.connects[len(c.connects)-1]
}

type mockListener struct {
	addr   transport.Addr
	accept transport.ConnectFunc
	closed bool
}

func (l *mockListener) Addr() transport.Addr { return l.addr }

func (l *mockListener) Close() error {
	l.closed = true
	return nil
}

// mockChannel implements transport.Channel.
type mockChannel struct {
	local, remote  transport.Addr
	inMTU, outMTU  uint16
	mtuErr         error
	closeOnRelease bool
	released       bool
	shutdown       bool
}

func newMockChannel(remote transport.Addr) *mockChannel {
	return &mockChannel{remote: remote, inMTU: 672, outMTU: 672, closeOnRelease: true}
}

func (c *mockChannel) Conn() io.ReadWriteCloser     { return nopConn{} }
func (c *mockChannel) LocalAddr() transport.Addr    { return c.local }
func (c *mockChannel) RemoteAddr() transport.Addr   { return c.remote }
func (c *mockChannel) MTU() (uint16, uint16, error) { return c.inMTU, c.outMTU, c.mtuErr }
func (c *mockChannel) SetCloseOnRelease(close bool) { c.closeOnRelease = close }
func (c *mockChannel) Release() error               { c.released = true; return nil }
func (c *mockChannel) Shutdown() error              { c.shutdown = true; return nil }

// mockRegistrar implements RecordRegistrar.
type mockRegistrar struct {
	registered    int
	unregistered  int
	registerErr   error
	unregisterErr error
}

func (r *mockRegistrar) Register() error {
	if r.registerErr != nil {
		return r.registerErr
	}
	r.registered++
	return nil
}

func (r *mockRegistrar) Unregister() error {
	if r.unregisterErr != nil {
		return r.unregisterErr
	}
	r.unregistered++
	return nil
}
