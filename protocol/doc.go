// Package protocol implements the Tech2 serial diagnostic wire format.
//
// This package provides functions to build command frames and interpret
// response frames for the length-prefixed framing the Tech2 uses on its
// RS-232 link, along with the service identifiers, negative response
// codes, and download-mode command constants.
//
// # Frame Overview
//
// Every diagnostic command and response is a single length-prefixed frame:
//
//	[TOTAL_LEN][TARGET_HI][TARGET_LO][DATA_LEN][SERVICE_ID][DATA...]
//
// Where:
//   - TOTAL_LEN = total byte count of the frame, including itself
//   - TARGET = 16-bit ECU bus address (0x7E00 for all Tech2 traffic)
//   - DATA_LEN = byte count of SERVICE_ID plus DATA
//
// A received buffer holds a complete frame once its length reaches the
// value declared by its first byte; see IsComplete.
//
// # Command Builders
//
// Use BuildCommand to frame a service request:
//
//	frame := protocol.BuildCommand(protocol.SvcDiagnosticSession, protocol.SessionEnhanced)
//
// # Response Accessors
//
// Responses are inspected in place:
//
//	if protocol.IsNegative(frame) {
//	    return protocol.ParseNegative(frame)
//	}
//	data := protocol.ResponseData(frame)
//
// Negative responses carry a one-byte NRC which TranslateNRC renders as a
// human-readable string.
//
// # Download Mode
//
// The bulk memory download runs outside the diagnostic session framing and
// uses fixed four-byte magic commands (DownloadModeCmd, RestartCmd and
// friends) plus the memory-read commands produced by BuildMemoryReadCmd.
package protocol
