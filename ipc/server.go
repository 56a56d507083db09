package ipc

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/a2dp"
	"github.com/opd-ai/a2dp/codec"
	"github.com/opd-ai/a2dp/transport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server dispatches control commands to an a2dp.Profile and pushes its
// connection state changes to every connected client.
type Server struct {
	profile *a2dp.Profile
	hub     *hub
	events  chan Event
	done    chan struct{}
}

// NewServer wires a Server to the profile. The profile's connection state
// callback is claimed by the server.
func NewServer(profile *a2dp.Profile) *Server {
	s := &Server{
		profile: profile,
		hub:     newHub(),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}

	// The profile delivers state changes under its own lock, so the
	// callback only queues; the pump goroutine does the fan-out.
	profile.SetConnectionStateCallback(func(addr transport.Addr, state a2dp.ConnState) {
		event := Event{
			Type:    EventConnectionState,
			Address: addr.String(),
			State:   state.String(),
		}
		select {
		case s.events <- event:
		default:
			logrus.WithFields(logrus.Fields{
				"function": "connectionStateCallback",
				"address":  event.Address,
			}).Warn("Event queue full, dropping state event")
		}
	})
	go s.pump()

	return s
}

// Close stops event delivery and drops every client.
func (s *Server) Close() {
	s.profile.SetConnectionStateCallback(nil)
	close(s.done)
	s.hub.closeAll()
}

func (s *Server) pump() {
	for {
		select {
		case event := <-s.events:
			s.hub.broadcast(event)
		case <-s.done:
			return
		}
	}
}

// ServeHTTP upgrades the request to a websocket and serves command frames
// until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ServeHTTP",
			"error":    err.Error(),
		}).Error("Failed to upgrade connection")
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	s.hub.add(c)

	logrus.WithFields(logrus.Fields{
		"function": "ServeHTTP",
		"client":   c.id,
	}).Info("Control client connected")

	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.hub.remove(c)
		logrus.WithFields(logrus.Fields{
			"function": "readLoop",
			"client":   c.id,
		}).Info("Control client disconnected")
	}()

	for {
		var req Request
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				logrus.WithFields(logrus.Fields{
					"function": "readLoop",
					"client":   c.id,
					"error":    err.Error(),
				}).Warn("Control client read failed")
			}
			return
		}

		resp := s.dispatch(&req)
		if err := c.writeJSON(resp); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "readLoop",
				"client":   c.id,
				"error":    err.Error(),
			}).Warn("Control client write failed")
			return
		}
	}
}

// dispatch executes one command and builds its response.
func (s *Server) dispatch(req *Request) Response {
	resp := Response{ID: req.ID, Op: req.Op, Status: StatusOK}
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}

	logrus.WithFields(logrus.Fields{
		"function": "dispatch",
		"op":       req.Op,
		"id":       resp.ID,
	}).Debug("Dispatching command")

	var err error
	switch req.Op {
	case OpConnect:
		err = s.withAddr(req, s.profile.Connect)
	case OpDisconnect:
		err = s.withAddr(req, s.profile.Disconnect)
	case OpOpenEndpoint:
		resp.EndpointID, err = s.openEndpoint(req)
	case OpCloseEndpoint:
		err = s.profile.CloseEndpoint(req.EndpointID)
	case OpOpenStream:
		var preset *codec.Preset
		preset, err = s.profile.OpenStream(req.EndpointID)
		if err == nil {
			resp.Preset = preset.Bytes()
		}
	case OpCloseStream:
		err = s.profile.CloseStream(req.EndpointID)
	case OpResumeStream:
		err = s.profile.ResumeStream(req.EndpointID)
	case OpSuspendStream:
		err = s.profile.SuspendStream(req.EndpointID)
	default:
		resp.Status = StatusError
		resp.Error = "unknown op: " + req.Op
		return resp
	}

	if err != nil {
		resp.Status = StatusError
		resp.Error = err.Error()
	}
	return resp
}

func (s *Server) withAddr(req *Request, fn func(transport.Addr) error) error {
	addr, err := transport.ParseAddr(req.Address)
	if err != nil {
		return err
	}
	return fn(addr)
}

// openEndpoint registers an endpoint from the request's preset list. The
// first preset is the endpoint's capability; the remainder, or the
// capability itself when nothing else is given, form the acceptable list.
func (s *Server) openEndpoint(req *Request) (uint8, error) {
	if len(req.Presets) == 0 {
		return 0, codec.ErrEmptyPreset
	}

	capability, err := codec.NewPreset(req.Presets[0])
	if err != nil {
		return 0, err
	}

	rest := req.Presets[1:]
	if len(rest) == 0 {
		rest = req.Presets[:1]
	}
	presets := make([]*codec.Preset, 0, len(rest))
	for _, raw := range rest {
		p, err := codec.NewPreset(raw)
		if err != nil {
			return 0, err
		}
		presets = append(presets, p)
	}

	return s.profile.OpenEndpoint(codec.Type(req.Codec), capability, presets)
}
