package session

import "fmt"

// StateError indicates an operation was attempted before the session
// reached the state it requires. It is a caller contract violation and is
// never retried; no channel I/O happens.
type StateError struct {
	Op       string
	State    State
	Required State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s: requires %s, session is %s", e.Op, e.Required, e.State)
}

// TimeoutError indicates no complete response frame arrived within the
// deadline on any attempt of the retry budget.
type TimeoutError struct {
	Op       string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no response to %s after %d attempts", e.Op, e.Attempts)
}

// ChannelError indicates the transport failed while sending or receiving.
// The session resets to disconnected when this surfaces.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel failure during %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// UnexpectedResponseError indicates a response arrived but does not match
// the expected format for the issued service.
type UnexpectedResponseError struct {
	Op    string
	Frame []byte
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response to %s: % X", e.Op, e.Frame)
}
