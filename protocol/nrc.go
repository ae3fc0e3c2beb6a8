package protocol

import "fmt"

// Negative response codes returned by the device.
const (
	NRCGeneralReject           = 0x10
	NRCServiceNotSupported     = 0x11
	NRCSubFunctionNotSupported = 0x12
	NRCBusyRepeatRequest       = 0x21
	NRCConditionsNotCorrect    = 0x22
	NRCRoutineNotCompleted     = 0x23
	NRCRequestOutOfRange       = 0x31
	NRCSecurityAccessDenied    = 0x33
	NRCInvalidKey              = 0x35
	NRCExceededAttempts        = 0x36
	NRCTimeDelayNotExpired     = 0x37
	NRCResponsePending         = 0x78
	NRCGeneralError            = 0x7F
)

// NegativeResponseError represents an explicit rejection from the device.
// Service is the echoed request service ID, Code the one-byte NRC.
type NegativeResponseError struct {
	Service byte
	Code    byte
}

func (e *NegativeResponseError) Error() string {
	return fmt.Sprintf("service 0x%02X rejected: %s", e.Service, TranslateNRC(e.Code))
}

// IsNegativeResponse returns true if the error is a NegativeResponseError.
func IsNegativeResponse(err error) bool {
	_, ok := err.(*NegativeResponseError)
	return ok
}

// TranslateNRC returns the human-readable message for a negative response
// code.
func TranslateNRC(code byte) string {
	switch code {
	case NRCGeneralReject:
		return "General reject"
	case NRCServiceNotSupported:
		return "Service not supported"
	case NRCSubFunctionNotSupported:
		return "Sub-function not supported - invalid format"
	case NRCBusyRepeatRequest:
		return "Busy, repeat request"
	case NRCConditionsNotCorrect:
		return "Conditions not correct or request sequence error"
	case NRCRoutineNotCompleted:
		return "Routine not completed or service in progress"
	case NRCRequestOutOfRange:
		return "Request out of range or session dropped"
	case NRCSecurityAccessDenied:
		return "Security access denied"
	case NRCInvalidKey:
		return "Invalid key supplied"
	case NRCExceededAttempts:
		return "Exceeded number of attempts to get security access"
	case NRCTimeDelayNotExpired:
		return "Required time delay not expired"
	case NRCResponsePending:
		return "Response pending"
	case NRCGeneralError:
		return "General error"
	default:
		return fmt.Sprintf("Unknown error code: 0x%02X", code)
	}
}
