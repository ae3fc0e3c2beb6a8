package session

import (
	"fmt"
	"time"

	"github.com/opentech2/go-tech2/protocol"
)

// keySubmitPause is the settle time between receiving a seed and
// submitting the derived key. Some firmware rejects a key that arrives
// too quickly after the seed.
const keySubmitPause = 100 * time.Millisecond

// vinLength is the byte length of a vehicle identification number.
const vinLength = 17

// StartSession starts the enhanced diagnostic session. Requires a
// connected channel.
func (c *Client) StartSession() error {
	if err := c.require("start session", StateConnected); err != nil {
		return err
	}

	cmd := protocol.BuildCommand(protocol.SvcDiagnosticSession, protocol.SessionEnhanced)
	resp, err := c.sendAndReceive("start session", cmd)
	if err != nil {
		return err
	}

	if protocol.IsNegative(resp) {
		return protocol.ParseNegative(resp)
	}
	if !protocol.IsPositive(resp, protocol.SvcDiagnosticSession) {
		return &UnexpectedResponseError{Op: "start session", Frame: resp}
	}

	c.state = StateSessionStarted
	c.logInfo("session started")
	return nil
}

// RequestSecurityAccess runs the full seed/key exchange for the
// configured access level: request the seed, derive the key with the
// configured algorithm and submit it. A zero seed means access is
// already granted and no key is sent. Requires an active session.
func (c *Client) RequestSecurityAccess() error {
	if err := c.require("security access", StateSessionStarted); err != nil {
		return err
	}
	c.maintainSession()

	cmd := protocol.BuildCommand(protocol.SvcSecurityAccess, byte(c.cfg.Level), 0x00)
	resp, err := c.sendAndReceive("security access", cmd)
	if err != nil {
		return err
	}

	if protocol.IsNegative(resp) {
		return protocol.ParseNegative(resp)
	}
	if !protocol.IsPositive(resp, protocol.SvcSecurityAccess) || len(resp) < 8 ||
		resp[5] != byte(c.cfg.Level) {
		return &UnexpectedResponseError{Op: "security access", Frame: resp}
	}

	seed := uint16(resp[6])<<8 | uint16(resp[7])
	if seed == 0 {
		// The device hands out a zero seed when access is already open.
		c.state = StateSecurityGranted
		c.logInfo("security access already granted")
		return nil
	}
	c.state = StateSecurityRequested
	c.logDebug("seed received", "seed", fmt.Sprintf("0x%04X", seed))

	key, err := c.cfg.Algorithm.Compute(int(seed), c.cfg.Level)
	if err != nil {
		return fmt.Errorf("key derivation: %w", err)
	}

	time.Sleep(keySubmitPause)

	keyCmd := protocol.BuildCommand(protocol.SvcSecurityAccess,
		c.cfg.Level.KeyResponseLevel(), byte(key>>8), byte(key), 0x00)
	resp, err = c.sendAndReceive("submit key", keyCmd)
	if err != nil {
		return err
	}

	if protocol.IsNegative(resp) {
		return protocol.ParseNegative(resp)
	}
	if !protocol.IsPositive(resp, protocol.SvcSecurityAccess) || len(resp) < 6 ||
		resp[5] != c.cfg.Level.KeyResponseLevel() {
		return &UnexpectedResponseError{Op: "submit key", Frame: resp}
	}

	c.state = StateSecurityGranted
	c.logInfo("security access granted", "level", c.cfg.Level.String())
	return nil
}

// ReadDataByIdentifier reads the data record with the given 16-bit
// identifier. Requires security access.
func (c *Client) ReadDataByIdentifier(id uint16) ([]byte, error) {
	if err := c.require("read data", StateSecurityGranted); err != nil {
		return nil, err
	}
	c.maintainSession()

	cmd := protocol.BuildCommand(protocol.SvcReadDataByID, byte(id>>8), byte(id))
	resp, err := c.sendAndReceive("read data", cmd)
	if err != nil {
		return nil, err
	}

	if protocol.IsNegative(resp) {
		return nil, protocol.ParseNegative(resp)
	}
	if !protocol.IsPositive(resp, protocol.SvcReadDataByID) {
		return nil, &UnexpectedResponseError{Op: "read data", Frame: resp}
	}

	data := protocol.ResponseData(resp)
	if len(data) < 2 || data[0] != byte(id>>8) || data[1] != byte(id) {
		return nil, &UnexpectedResponseError{Op: "read data", Frame: resp}
	}
	// The echoed identifier precedes the record.
	return data[2:], nil
}

// WriteDataByIdentifier writes data to the record with the given 16-bit
// identifier. Requires security access.
func (c *Client) WriteDataByIdentifier(id uint16, data []byte) error {
	if err := c.require("write data", StateSecurityGranted); err != nil {
		return err
	}
	c.maintainSession()

	service := make([]byte, 0, 3+len(data))
	service = append(service, protocol.SvcWriteDataByID, byte(id>>8), byte(id))
	service = append(service, data...)

	resp, err := c.sendAndReceive("write data", protocol.BuildCommand(service...))
	if err != nil {
		return err
	}

	if protocol.IsNegative(resp) {
		return protocol.ParseNegative(resp)
	}
	if !protocol.IsPositive(resp, protocol.SvcWriteDataByID) || len(resp) < 7 ||
		resp[5] != byte(id>>8) || resp[6] != byte(id) {
		return &UnexpectedResponseError{Op: "write data", Frame: resp}
	}
	return nil
}

// ExecuteRoutine starts the routine with the given identifier, passing any
// parameter bytes, and returns the routine results. Requires security
// access.
func (c *Client) ExecuteRoutine(id uint16, params []byte) ([]byte, error) {
	if err := c.require("execute routine", StateSecurityGranted); err != nil {
		return nil, err
	}
	c.maintainSession()

	service := make([]byte, 0, 4+len(params))
	service = append(service, protocol.SvcRoutineControl, protocol.RoutineStart,
		byte(id>>8), byte(id))
	service = append(service, params...)

	resp, err := c.sendAndReceive("execute routine", protocol.BuildCommand(service...))
	if err != nil {
		return nil, err
	}

	if protocol.IsNegative(resp) {
		return nil, protocol.ParseNegative(resp)
	}
	if !protocol.IsPositive(resp, protocol.SvcRoutineControl) || len(resp) < 8 ||
		resp[5] != protocol.RoutineStart {
		return nil, &UnexpectedResponseError{Op: "execute routine", Frame: resp}
	}
	// The sub-function and routine identifier echoes precede the results.
	return resp[8:], nil
}

// ECUReset requests a reset of the given type. The session falls back to
// connected afterwards since the device restarts. Requires a connected
// channel.
func (c *Client) ECUReset(resetType byte) error {
	if err := c.require("ecu reset", StateConnected); err != nil {
		return err
	}

	cmd := protocol.BuildCommand(protocol.SvcECUReset, resetType)
	resp, err := c.sendAndReceive("ecu reset", cmd)
	if err != nil {
		return err
	}

	if protocol.IsNegative(resp) {
		return protocol.ParseNegative(resp)
	}
	if !protocol.IsPositive(resp, protocol.SvcECUReset) || len(resp) < 6 ||
		resp[5] != resetType {
		return &UnexpectedResponseError{Op: "ecu reset", Frame: resp}
	}

	c.state = StateConnected
	c.logInfo("ecu reset", "type", resetType)
	return nil
}

// TesterPresent sends a keep-alive so the device does not drop the
// session during idle periods. Requires an active session.
func (c *Client) TesterPresent() error {
	if err := c.require("tester present", StateSessionStarted); err != nil {
		return err
	}

	cmd := protocol.BuildCommand(protocol.SvcTesterPresent, protocol.TesterPresentDefault)
	resp, err := c.sendAndReceive("tester present", cmd)
	if err != nil {
		return err
	}

	if protocol.IsNegative(resp) {
		return protocol.ParseNegative(resp)
	}
	return nil
}

// ReadVIN reads the vehicle identification number: the record is reduced
// to its printable-ASCII run, which must be exactly 17 characters.
// Requires security access.
func (c *Client) ReadVIN() (string, error) {
	data, err := c.ReadDataByIdentifier(protocol.VINIdentifier)
	if err != nil {
		return "", err
	}

	vin := make([]byte, 0, vinLength)
	for _, b := range data {
		if b >= 32 && b <= 126 {
			vin = append(vin, b)
		}
	}
	if len(vin) != vinLength {
		return "", fmt.Errorf("vin record yielded %d printable characters, want %d",
			len(vin), vinLength)
	}
	return string(vin), nil
}

// MaintainSession sends a keep-alive if the channel has been idle longer
// than the configured interval. Callers running their own long pauses
// between services can invoke this periodically.
func (c *Client) MaintainSession() {
	c.maintainSession()
}
