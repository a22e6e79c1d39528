package observerproto

// Version is the observer protocol version.
const Version = "0.1"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeFrame     = "FRAME"

	EncodingRLE = "RLE"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// EveryTicks sends one frame per N ticks (1 = every tick).
	EveryTicks int `json:"every_ticks,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string    `json:"protocol_version"`
	RunID           string    `json:"run_id"`
	Tick            uint64    `json:"tick"`
	Params          RunParams `json:"params"`
	Labels          []string  `json:"labels"`
}

type RunParams struct {
	Size       int     `json:"size"`
	TickRateHz int     `json:"tick_rate_hz"`
	Threshold  float64 `json:"threshold"`
	Relocation string  `json:"relocation"`
	Seed       int64   `json:"seed"`
}

// Server -> Client. Grid state after a tick.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Size            int    `json:"size"`

	// Data is EncodeRLE of the row-major cell codes (0 = empty, t+1 = type t).
	Encoding string `json:"encoding"`
	Data     string `json:"data"`

	Stats Stats `json:"stats"`
}

type Stats struct {
	Agents      int     `json:"agents"`
	Satisfied   int     `json:"satisfied"`
	Unsatisfied int     `json:"unsatisfied"`
	Isolated    int     `json:"isolated"`
	Moved       int     `json:"moved"`
	Similarity  float64 `json:"similarity"`
	Settled     bool    `json:"settled"`
}
