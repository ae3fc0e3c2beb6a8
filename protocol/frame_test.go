package protocol

import (
	"bytes"
	"testing"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name    string
		service []byte
		want    []byte
	}{
		{
			name:    "start diagnostic session",
			service: []byte{SvcDiagnosticSession, SessionEnhanced},
			want:    []byte{0x06, 0x7E, 0x00, 0x02, 0x10, 0x02},
		},
		{
			name:    "security access request",
			service: []byte{SvcSecurityAccess, byte(LevelHighest), 0x00},
			want:    []byte{0x07, 0x7E, 0x00, 0x03, 0x27, 0xFD, 0x00},
		},
		{
			name:    "read data by identifier",
			service: []byte{SvcReadDataByID, 0x00, 0x90},
			want:    []byte{0x07, 0x7E, 0x00, 0x03, 0x22, 0x00, 0x90},
		},
		{
			name:    "tester present",
			service: []byte{SvcTesterPresent, TesterPresentDefault},
			want:    []byte{0x06, 0x7E, 0x00, 0x02, 0x3E, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := BuildCommand(tt.service...)

			if !bytes.Equal(frame, tt.want) {
				t.Errorf("frame = % X, want % X", frame, tt.want)
			}

			if int(frame[0]) != FrameOverhead+len(tt.service) {
				t.Errorf("total length = %d, want %d", frame[0], FrameOverhead+len(tt.service))
			}

			if !IsComplete(frame) {
				t.Error("built frame should satisfy IsComplete")
			}
		})
	}
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want bool
	}{
		{name: "empty buffer", buf: nil, want: false},
		{name: "length byte only", buf: []byte{0x06}, want: false},
		{name: "partial frame", buf: []byte{0x06, 0x7E, 0x00, 0x02}, want: false},
		{name: "exact frame", buf: []byte{0x06, 0x7E, 0x00, 0x02, 0x50, 0x02}, want: true},
		{name: "frame plus trailing bytes", buf: []byte{0x05, 0x7E, 0x00, 0x01, 0x7E, 0xFF}, want: true},
		{name: "declared length one", buf: []byte{0x01}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsComplete(tt.buf); got != tt.want {
				t.Errorf("IsComplete(% X) = %v, want %v", tt.buf, got, tt.want)
			}
		})
	}
}

func TestResponseAccessors(t *testing.T) {
	// Positive ReadDataByIdentifier response carrying two data bytes
	frame := []byte{0x09, 0x7E, 0x00, 0x05, 0x62, 0x00, 0x90, 0xAB, 0xCD}

	if got := ResponseService(frame); got != 0x62 {
		t.Errorf("ResponseService = 0x%02X, want 0x62", got)
	}

	if !IsPositive(frame, SvcReadDataByID) {
		t.Error("IsPositive(SvcReadDataByID) = false, want true")
	}

	if IsNegative(frame) {
		t.Error("IsNegative = true for a positive response")
	}

	wantData := []byte{0x00, 0x90, 0xAB, 0xCD}
	if !bytes.Equal(ResponseData(frame), wantData) {
		t.Errorf("ResponseData = % X, want % X", ResponseData(frame), wantData)
	}

	// Accessors must tolerate truncated frames.
	if got := ResponseService([]byte{0x05, 0x7E}); got != 0 {
		t.Errorf("ResponseService(short frame) = 0x%02X, want 0x00", got)
	}
	if ResponseData([]byte{0x05, 0x7E, 0x00, 0x01, 0x62}) != nil {
		t.Error("ResponseData(no payload) should be nil")
	}
}

func TestParseNegative(t *testing.T) {
	tests := []struct {
		name        string
		frame       []byte
		wantService byte
		wantCode    byte
		wantNil     bool
	}{
		{
			name:        "security access denied",
			frame:       []byte{0x07, 0x7E, 0x00, 0x03, 0x7F, 0x27, 0x33},
			wantService: SvcSecurityAccess,
			wantCode:    NRCSecurityAccessDenied,
		},
		{
			name:        "invalid key",
			frame:       []byte{0x07, 0x7E, 0x00, 0x03, 0x7F, 0x27, 0x35},
			wantService: SvcSecurityAccess,
			wantCode:    NRCInvalidKey,
		},
		{
			name:    "positive response",
			frame:   []byte{0x06, 0x7E, 0x00, 0x02, 0x50, 0x02},
			wantNil: true,
		},
		{
			name:    "truncated negative response",
			frame:   []byte{0x06, 0x7E, 0x00, 0x02, 0x7F, 0x27},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nre := ParseNegative(tt.frame)

			if tt.wantNil {
				if nre != nil {
					t.Fatalf("ParseNegative = %v, want nil", nre)
				}
				return
			}

			if nre == nil {
				t.Fatal("ParseNegative = nil, want error")
			}
			if nre.Service != tt.wantService {
				t.Errorf("Service = 0x%02X, want 0x%02X", nre.Service, tt.wantService)
			}
			if nre.Code != tt.wantCode {
				t.Errorf("Code = 0x%02X, want 0x%02X", nre.Code, tt.wantCode)
			}
		})
	}
}

func TestBuildMemoryReadCmd(t *testing.T) {
	// The five read commands the Tech2 download sequence uses, checksum
	// byte included.
	tests := []struct {
		name   string
		offset uint16
		length byte
		want   []byte
	}{
		{name: "chunk at 0x0000", offset: 0x0000, length: 0xA6, want: []byte{0x81, 0x5A, 0x0F, 0x2E, 0x00, 0x00, 0xA6, 0x42}},
		{name: "chunk at 0x00A6", offset: 0x00A6, length: 0xA6, want: []byte{0x81, 0x5A, 0x0F, 0x2E, 0x00, 0xA6, 0xA6, 0x9C}},
		{name: "chunk at 0x014C", offset: 0x014C, length: 0xA6, want: []byte{0x81, 0x5A, 0x0F, 0x2E, 0x01, 0x4C, 0xA6, 0xF5}},
		{name: "chunk at 0x01F2", offset: 0x01F2, length: 0xA6, want: []byte{0x81, 0x5A, 0x0F, 0x2E, 0x01, 0xF2, 0xA6, 0x4F}},
		{name: "chunk at 0x0298", offset: 0x0298, length: 0x32, want: []byte{0x81, 0x5A, 0x0F, 0x2E, 0x02, 0x98, 0x32, 0x1C}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := BuildMemoryReadCmd(tt.offset, tt.length)
			if !bytes.Equal(cmd, tt.want) {
				t.Errorf("cmd = % X, want % X", cmd, tt.want)
			}
		})
	}
}

func TestBuildSecurityKeyCmd(t *testing.T) {
	cmd := BuildSecurityKeyCmd(0xEB64)
	want := []byte{0x8B, 0x56, 0x02, 0x00, 0xEB, 0x64}
	if !bytes.Equal(cmd, want) {
		t.Errorf("cmd = % X, want % X", cmd, want)
	}
}

func TestDownloadModeConstants(t *testing.T) {
	// The magic command set is part of the device contract; pin the exact
	// bytes.
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{name: "download mode", got: DownloadModeCmd, want: []byte{0xEF, 0x56, 0x80, 0x3B}},
		{name: "download ack", got: DownloadModeAck, want: []byte{0xEF, 0x56, 0x01, 0xBA}},
		{name: "restart", got: RestartCmd, want: []byte{0x8B, 0x56, 0x00, 0x1F}},
		{name: "close download", got: CloseDownloadCmd, want: []byte{0xEF, 0x56, 0x80, 0x3C}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Errorf("got % X, want % X", tt.got, tt.want)
			}
		})
	}
}
