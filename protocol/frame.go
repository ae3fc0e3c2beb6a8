package protocol

// BuildCommand frames service bytes into a complete command frame.
// The first service byte is the service ID, the rest its payload.
//
// Frame structure:
//
//	[TOTAL_LEN][TARGET_HI][TARGET_LO][DATA_LEN][SERVICE...]
//
// TOTAL_LEN always equals FrameOverhead plus the service byte count.
func BuildCommand(service ...byte) []byte {
	frame := make([]byte, 0, FrameOverhead+len(service))
	frame = append(frame, byte(FrameOverhead+len(service)))
	frame = append(frame, TargetHi, TargetLo)
	frame = append(frame, byte(len(service)))
	frame = append(frame, service...)
	return frame
}

// IsComplete reports whether buf holds at least one complete frame.
// The first byte of every frame declares its total length, so a frame is
// complete once the buffer has grown to that size. An empty buffer is
// never complete.
func IsComplete(buf []byte) bool {
	if len(buf) < 1 {
		return false
	}
	return len(buf) >= int(buf[0])
}

// ResponseService returns the service ID byte of a response frame, or 0 if
// the frame is too short to carry one.
func ResponseService(frame []byte) byte {
	if len(frame) <= posService {
		return 0
	}
	return frame[posService]
}

// ResponseData returns the payload bytes following the service ID, which
// may be empty.
func ResponseData(frame []byte) []byte {
	if len(frame) <= posService+1 {
		return nil
	}
	return frame[posService+1:]
}

// IsPositive reports whether frame is the positive response to the given
// request service ID.
func IsPositive(frame []byte, service byte) bool {
	return ResponseService(frame) == service+PositiveResponseOffset
}

// IsNegative reports whether frame is a negative response.
func IsNegative(frame []byte) bool {
	return ResponseService(frame) == NegativeResponseID
}

// ParseNegative extracts the rejection from a negative response frame.
// Returns nil if the frame is not a well-formed negative response.
func ParseNegative(frame []byte) *NegativeResponseError {
	if !IsNegative(frame) || len(frame) <= posNRC {
		return nil
	}
	return &NegativeResponseError{
		Service: frame[posNegService],
		Code:    frame[posNRC],
	}
}

// BuildSecurityKeyCmd constructs the download-mode key submission command.
// The key is sent big-endian after the fixed prefix.
func BuildSecurityKeyCmd(key uint16) []byte {
	cmd := make([]byte, 0, len(securityKeyPrefix)+2)
	cmd = append(cmd, securityKeyPrefix...)
	cmd = append(cmd, byte(key>>8), byte(key))
	return cmd
}

// BuildMemoryReadCmd constructs a download-mode memory read command for
// length bytes at the given offset.
//
// Command structure:
//
//	[0x81][0x5A][0x0F][0x2E][OFF_HI][OFF_LO][LEN][CHECKSUM]
//
// The trailing checksum is the two's complement of the byte sum of the
// preceding seven bytes.
func BuildMemoryReadCmd(offset uint16, length byte) []byte {
	cmd := make([]byte, 0, len(memoryReadPrefix)+4)
	cmd = append(cmd, memoryReadPrefix...)
	cmd = append(cmd, byte(offset>>8), byte(offset))
	cmd = append(cmd, length)
	cmd = append(cmd, commandChecksum(cmd))
	return cmd
}

// commandChecksum computes the 8-bit checksum for a download-mode command:
// sum all bytes, then take the two's complement.
func commandChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}
