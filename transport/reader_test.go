package transport

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// fakePort delivers scripted byte chunks one per Read call, then behaves
// like an idle serial port (0, nil).
type fakePort struct {
	chunks  [][]byte
	idx     int
	readErr error
	reads   int
}

func (f *fakePort) Read(p []byte) (int, error) {
	f.reads++
	if f.readErr != nil {
		return 0, f.readErr
	}
	if f.idx < len(f.chunks) {
		n := copy(p, f.chunks[f.idx])
		f.idx++
		return n, nil
	}
	time.Sleep(time.Millisecond)
	return 0, nil
}

func (f *fakePort) Write(p []byte) (int, error)        { return len(p), nil }
func (f *fakePort) Close() error                       { return nil }
func (f *fakePort) SetReadTimeout(time.Duration) error { return nil }
func (f *fakePort) ResetInputBuffer() error            { return nil }

func TestReadFramePartialArrivals(t *testing.T) {
	// A six-byte frame delivered in three pieces.
	port := &fakePort{chunks: [][]byte{
		{0x06},
		{0x7E, 0x00},
		{0x02, 0x50, 0x02},
	}}

	frame, err := ReadFrame(port, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{0x06, 0x7E, 0x00, 0x02, 0x50, 0x02}
	if !bytes.Equal(frame, want) {
		t.Errorf("frame = % X, want % X", frame, want)
	}
}

func TestReadFrameTimeout(t *testing.T) {
	// Only half a frame ever arrives.
	port := &fakePort{chunks: [][]byte{{0x06, 0x7E, 0x00}}}

	frame, err := ReadFrame(port, 30*time.Millisecond)
	if !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("err = %v, want ErrReadTimeout", err)
	}
	if !bytes.Equal(frame, []byte{0x06, 0x7E, 0x00}) {
		t.Errorf("partial frame = % X, want the collected bytes", frame)
	}
}

func TestReadFrameTransportError(t *testing.T) {
	wantErr := errors.New("port gone")
	port := &fakePort{readErr: wantErr}

	if _, err := ReadFrame(port, time.Second); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestReadAtLeast(t *testing.T) {
	port := &fakePort{chunks: [][]byte{
		{0x01, 0x02},
		{0x03, 0x04, 0x05},
	}}

	got, err := ReadAtLeast(port, 5, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03, 0x04, 0x05}) {
		t.Errorf("got % X", got)
	}
}

func TestReadAtLeastShortResult(t *testing.T) {
	// Fewer bytes than requested: the short buffer comes back without an
	// error so the caller can decide what to do with it.
	port := &fakePort{chunks: [][]byte{{0xAA, 0xBB}}}

	got, err := ReadAtLeast(port, 10, 30*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte{0xAA, 0xBB}) {
		t.Errorf("got % X, want AA BB", got)
	}
}
