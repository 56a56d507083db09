package ipc

// Command operations.
const (
	OpConnect       = "connect"
	OpDisconnect    = "disconnect"
	OpOpenEndpoint  = "open_endpoint"
	OpCloseEndpoint = "close_endpoint"
	OpOpenStream    = "open_stream"
	OpCloseStream   = "close_stream"
	OpResumeStream  = "resume_stream"
	OpSuspendStream = "suspend_stream"
)

// Request is one command frame. ID correlates the response; a request
// without one is answered with a generated id. Fields beyond Op are
// op-specific and ignored elsewhere.
type Request struct {
	ID string `json:"id,omitempty"`
	Op string `json:"op"`

	// Address selects the remote device for connect and disconnect.
	Address string `json:"address,omitempty"`

	// Codec and Presets describe an endpoint for open_endpoint. The first
	// preset is the endpoint's full capability; the remainder are the
	// acceptable configurations in preference order.
	Codec   uint8    `json:"codec,omitempty"`
	Presets [][]byte `json:"presets,omitempty"`

	// EndpointID selects the endpoint for the endpoint and stream ops.
	EndpointID uint8 `json:"endpoint_id,omitempty"`
}

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Response is the single reply to a Request.
type Response struct {
	ID     string `json:"id"`
	Op     string `json:"op"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	// EndpointID carries the new endpoint's id for open_endpoint.
	EndpointID uint8 `json:"endpoint_id,omitempty"`

	// Preset carries the negotiated configuration for open_stream.
	Preset []byte `json:"preset,omitempty"`
}

// EventConnectionState is the type of connection state change events.
const EventConnectionState = "connection_state"

// Event is an unsolicited notification pushed to every connected client.
type Event struct {
	Type    string `json:"type"`
	Address string `json:"address"`
	State   string `json:"state"`
}
