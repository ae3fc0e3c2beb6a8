package protocol

// Frame structure constants.
const (
	// TargetHi and TargetLo form the ECU bus address (0x7E00) placed in
	// every command frame. All Tech2 traffic uses this single address.
	TargetHi = 0x7E
	TargetLo = 0x00

	// FrameOverhead is the byte count added around the service data:
	// TOTAL_LEN(1) + TARGET(2) + DATA_LEN(1)
	FrameOverhead = 4

	// MinResponseSize is the smallest frame that carries a service ID:
	// TOTAL_LEN(1) + TARGET(2) + DATA_LEN(1) + SERVICE_ID(1)
	MinResponseSize = 5
)

// Byte positions within a response frame.
const (
	// posService is the index of the (positive or negative) service ID
	posService = 4

	// posNegService is the index of the echoed request service ID in a
	// negative response
	posNegService = 5

	// posNRC is the index of the negative response code
	posNRC = 6
)

// Diagnostic service identifiers.
const (
	// SvcDiagnosticSession starts a diagnostic session (subfunction selects
	// the session type)
	SvcDiagnosticSession = 0x10

	// SvcECUReset requests an ECU reset
	SvcECUReset = 0x11

	// SvcReadDataByID reads a data record by 16-bit identifier
	SvcReadDataByID = 0x22

	// SvcSecurityAccess runs the seed/key challenge-response exchange
	SvcSecurityAccess = 0x27

	// SvcWriteDataByID writes a data record by 16-bit identifier
	SvcWriteDataByID = 0x2E

	// SvcRoutineControl starts, stops or queries a routine
	SvcRoutineControl = 0x31

	// SvcTesterPresent keeps the diagnostic session alive
	SvcTesterPresent = 0x3E

	// NegativeResponseID marks a rejected request; it is followed by the
	// echoed service ID and a one-byte NRC
	NegativeResponseID = 0x7F

	// PositiveResponseOffset is added to a service ID to form its positive
	// response ID (0x10 -> 0x50, 0x22 -> 0x62, ...)
	PositiveResponseOffset = 0x40
)

// Service subfunctions and well-known identifiers.
const (
	// SessionEnhanced is the enhanced-diagnostics session type
	SessionEnhanced = 0x02

	// RoutineStart is the startRoutine subfunction of RoutineControl
	RoutineStart = 0x01

	// TesterPresentDefault is the default TesterPresent mode byte
	TesterPresentDefault = 0x00

	// VINIdentifier is the ReadDataByIdentifier record holding the VIN
	VINIdentifier = 0x0090
)

// ECU reset types accepted by SvcECUReset.
const (
	ResetHard                 = 0x01
	ResetKeyOffOn             = 0x02
	ResetSoft                 = 0x03
	ResetEnableRapidShutdown  = 0x04
	ResetDisableRapidShutdown = 0x05
)

// AccessLevel is a security access tier. The device hands out a seed for
// the requested level; the matching key is submitted under level+1.
type AccessLevel byte

// Security access levels supported by the Tech2.
const (
	// LevelBasic is the lowest access tier
	LevelBasic AccessLevel = 0x01

	// LevelIntermediate is the middle access tier
	LevelIntermediate AccessLevel = 0xFB

	// LevelHighest is the tier required for programming operations
	LevelHighest AccessLevel = 0xFD
)

// KeyResponseLevel returns the subfunction under which the computed key is
// submitted for this level.
func (l AccessLevel) KeyResponseLevel() byte {
	return byte(l) + 1
}

func (l AccessLevel) String() string {
	switch l {
	case LevelBasic:
		return "basic (0x01)"
	case LevelIntermediate:
		return "intermediate (0xFB)"
	case LevelHighest:
		return "highest (0xFD)"
	default:
		return "unknown"
	}
}

// Download-mode commands. These run outside the diagnostic session framing:
// fixed four-byte magics exchanged while the device is in, or entering, its
// bulk download mode.
var (
	// DownloadModeCmd enters download mode; sent twice with a two second
	// pause between transmissions
	DownloadModeCmd = []byte{0xEF, 0x56, 0x80, 0x3B}

	// DownloadModeAck is the expected acknowledgement after the second
	// DownloadModeCmd
	DownloadModeAck = []byte{0xEF, 0x56, 0x01, 0xBA}

	// RestartCmd returns the device to its idle mode
	RestartCmd = []byte{0x8B, 0x56, 0x00, 0x1F}

	// CloseDownloadCmd is the alternate download-mode exit used by some
	// firmware revisions
	CloseDownloadCmd = []byte{0xEF, 0x56, 0x80, 0x3C}

	// securityKeyPrefix starts the download-mode key submission command;
	// the 16-bit key follows big-endian
	securityKeyPrefix = []byte{0x8B, 0x56, 0x02, 0x00}
)

// memoryReadPrefix starts every download-mode memory read command; offset,
// length and a checksum byte follow.
var memoryReadPrefix = []byte{0x81, 0x5A, 0x0F, 0x2E}
