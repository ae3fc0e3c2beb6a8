// Package download implements the Tech2 bulk memory read. The device is
// switched into its download mode with a magic handshake, a fixed table
// of memory regions is read chunk by chunk, and the stripped chunk
// payloads are reassembled into a contiguous image.
//
// Download mode runs outside the diagnostic session framing; the
// Downloader talks raw four-to-eight byte commands on the channel and
// does not require security access.
package download

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/opentech2/go-tech2/protocol"
	"github.com/opentech2/go-tech2/transport"
)

// chunkHeaderSize is the per-chunk header stripped before reassembly.
const chunkHeaderSize = 2

// chunkTrailerSize is the extra byte read past the payload.
const chunkTrailerSize = 1

// handshakePause separates the two download-mode commands. The device
// ignores the handshake when the transmissions arrive closer together.
const handshakePause = 2 * time.Second

// ImageSize is the byte length of a complete memory image.
const ImageSize = 714

// chunk is one entry of the fixed memory-read table.
type chunk struct {
	offset  uint16
	payload int
}

// chunkTable covers the full image region: four full chunks plus a short
// tail. Offsets advance by payload size.
var chunkTable = []chunk{
	{offset: 0x0000, payload: 166},
	{offset: 0x00A6, payload: 166},
	{offset: 0x014C, payload: 166},
	{offset: 0x01F2, payload: 166},
	{offset: 0x0298, payload: 50},
}

// ErrHandshakeFailed indicates the device did not acknowledge the
// download-mode handshake. Nothing can be read without it.
var ErrHandshakeFailed = errors.New("download mode handshake not acknowledged")

// ErrKeyRejected indicates the device refused the submitted security key.
var ErrKeyRejected = errors.New("security key rejected")

// Progress reports a completed chunk: its index, the total chunk count
// and the payload bytes kept.
type Progress func(index, total, received int)

// Downloader drives the download-mode bulk read over an open channel.
// It borrows the channel; closing it stays with the caller.
type Downloader struct {
	port transport.Port
	cfg  config
}

// New creates a Downloader over an open channel.
func New(port transport.Port, opts ...Option) *Downloader {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Downloader{port: port, cfg: cfg}
}

// EnterDownloadMode switches the device into its bulk download mode: the
// mode command is sent twice with a pause between transmissions and the
// device must answer with the fixed acknowledgement. This is the only
// step of a download that is fatal on failure.
func (d *Downloader) EnterDownloadMode() error {
	if err := d.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("enter download mode: %w", err)
	}

	d.logDebug("sending download mode command")
	if _, err := d.port.Write(protocol.DownloadModeCmd); err != nil {
		return fmt.Errorf("enter download mode: %w", err)
	}

	time.Sleep(d.cfg.HandshakePause)

	if err := d.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("enter download mode: %w", err)
	}
	if _, err := d.port.Write(protocol.DownloadModeCmd); err != nil {
		return fmt.Errorf("enter download mode: %w", err)
	}

	ack, err := transport.ReadAtLeast(d.port, len(protocol.DownloadModeAck), d.cfg.AckTimeout)
	if err != nil {
		return fmt.Errorf("enter download mode: %w", err)
	}
	if !bytes.Equal(ack, protocol.DownloadModeAck) {
		d.logError("handshake rejected", "reply", fmt.Sprintf("% X", ack))
		return ErrHandshakeFailed
	}

	d.logInfo("download mode entered")
	return nil
}

// Download reads the full memory image: every table entry is requested in
// order, each chunk's header is stripped and the payloads are
// concatenated. A short chunk is kept as-is rather than failing the
// download. The device is restarted afterwards.
//
// In seed-only mode only the first chunk is read, which is enough to
// reach the security bytes near the start of the image.
func (d *Downloader) Download() ([]byte, error) {
	table := chunkTable
	if d.cfg.SeedOnly {
		table = chunkTable[:1]
	}

	image := make([]byte, 0, ImageSize)
	for i, ch := range table {
		payload, err := d.readChunk(ch)
		if err != nil {
			return nil, fmt.Errorf("chunk %d at 0x%04X: %w", i+1, ch.offset, err)
		}

		if len(payload) < ch.payload {
			d.logError("short chunk", "index", i+1,
				"got", len(payload), "want", ch.payload)
		}
		image = append(image, payload...)

		if d.cfg.Progress != nil {
			d.cfg.Progress(i+1, len(table), len(payload))
		}
		d.logDebug("chunk received", "index", i+1, "bytes", len(payload))
	}

	d.restart()
	d.logInfo("download complete", "bytes", len(image))
	return image, nil
}

// readChunk requests one memory region and returns its stripped payload.
func (d *Downloader) readChunk(ch chunk) ([]byte, error) {
	if err := d.port.ResetInputBuffer(); err != nil {
		return nil, err
	}

	cmd := protocol.BuildMemoryReadCmd(ch.offset, byte(ch.payload))
	if _, err := d.port.Write(cmd); err != nil {
		return nil, err
	}

	want := chunkHeaderSize + ch.payload + chunkTrailerSize
	raw, err := transport.ReadAtLeast(d.port, want, d.cfg.ChunkTimeout)
	if err != nil {
		return nil, err
	}
	if len(raw) <= chunkHeaderSize {
		// Nothing usable arrived; the download carries on with an empty
		// payload rather than aborting.
		return nil, nil
	}

	end := chunkHeaderSize + ch.payload
	if end > len(raw) {
		end = len(raw)
	}
	return raw[chunkHeaderSize:end], nil
}

// SendSecurityKey submits a derived key while in download mode. The
// device answers with a four-byte status reply whose second byte is zero
// on acceptance.
func (d *Downloader) SendSecurityKey(key uint16) error {
	if err := d.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("send security key: %w", err)
	}

	cmd := protocol.BuildSecurityKeyCmd(key)
	if _, err := d.port.Write(cmd); err != nil {
		return fmt.Errorf("send security key: %w", err)
	}

	reply, err := transport.ReadAtLeast(d.port, 4, d.cfg.AckTimeout)
	if err != nil {
		return fmt.Errorf("send security key: %w", err)
	}
	if len(reply) < 2 || reply[1] != 0x00 {
		d.logError("key rejected", "reply", fmt.Sprintf("% X", reply))
		return ErrKeyRejected
	}

	d.logInfo("security key accepted", "key", fmt.Sprintf("0x%04X", key))
	return nil
}

// Close sends the alternate download-mode exit command used by some
// firmware revisions. Most callers rely on the restart Download issues
// instead.
func (d *Downloader) Close() error {
	_, err := d.port.Write(protocol.CloseDownloadCmd)
	return err
}

// restart returns the device to its idle mode. Best effort; the image is
// already in hand when this runs.
func (d *Downloader) restart() {
	if _, err := d.port.Write(protocol.RestartCmd); err != nil {
		d.logError("restart failed", "err", err)
	}
}

func (d *Downloader) logDebug(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug(msg, keysAndValues...)
	}
}

func (d *Downloader) logInfo(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Info(msg, keysAndValues...)
	}
}

func (d *Downloader) logError(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Error(msg, keysAndValues...)
	}
}
