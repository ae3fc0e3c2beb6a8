package transport

import (
	"errors"
	"time"

	"github.com/opentech2/go-tech2/protocol"
)

// ErrReadTimeout is returned by ReadFrame when the deadline expires before
// a complete frame has arrived. The bytes collected so far accompany it.
var ErrReadTimeout = errors.New("read timeout")

// pollInterval bounds each individual Read so the deadline is checked
// regularly. The device delivers frames in arbitrarily small pieces, so
// reads accumulate until framing completion.
const pollInterval = 10 * time.Millisecond

// readBufSize is the per-Read scratch size. Responses are small; chunk
// data arrives in dribbles well below this.
const readBufSize = 64

// ReadFrame accumulates bytes from p until they form a complete
// length-prefixed frame or the timeout elapses. On timeout the partial
// buffer is returned along with ErrReadTimeout. Any transport error is
// returned with whatever had been collected.
func ReadFrame(p Port, timeout time.Duration) ([]byte, error) {
	return collect(p, timeout, func(buf []byte) bool {
		return protocol.IsComplete(buf)
	})
}

// ReadAtLeast accumulates bytes from p until n bytes have arrived or the
// timeout elapses. A short result is not an error: the download layer
// prefers partial data over none, so the caller inspects the length.
func ReadAtLeast(p Port, n int, timeout time.Duration) ([]byte, error) {
	buf, err := collect(p, timeout, func(buf []byte) bool {
		return len(buf) >= n
	})
	if errors.Is(err, ErrReadTimeout) {
		return buf, nil
	}
	return buf, err
}

// collect is the shared poll-with-deadline loop: short bounded reads,
// accumulating until done reports completion or the deadline passes.
func collect(p Port, timeout time.Duration, done func([]byte) bool) ([]byte, error) {
	if err := p.SetReadTimeout(pollInterval); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	var buf []byte
	scratch := make([]byte, readBufSize)

	for !done(buf) {
		n, err := p.Read(scratch)
		if n > 0 {
			buf = append(buf, scratch[:n]...)
		}
		if err != nil {
			return buf, err
		}
		if !done(buf) && time.Now().After(deadline) {
			return buf, ErrReadTimeout
		}
	}
	return buf, nil
}
