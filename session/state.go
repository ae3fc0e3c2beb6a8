package session

// State is the diagnostic session state. States form a strictly ordered
// progression; an operation gated on security access checks
// state >= StateSecurityGranted.
type State int

const (
	// StateDisconnected means no usable channel
	StateDisconnected State = iota

	// StateConnected means the channel is open but no session started
	StateConnected

	// StateSessionStarted means the enhanced diagnostic session is active
	StateSessionStarted

	// StateSecurityRequested means a seed was received and the key exchange
	// is in flight
	StateSecurityRequested

	// StateSecurityGranted means the device accepted the key
	StateSecurityGranted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateSessionStarted:
		return "session started"
	case StateSecurityRequested:
		return "security requested"
	case StateSecurityGranted:
		return "security granted"
	default:
		return "unknown"
	}
}
