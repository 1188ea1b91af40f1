package hci

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrTimedOut is reported when a procedure did not complete within its
	// deadline.
	ErrTimedOut = errors.New("timed out")

	// ErrCanceled is reported when a procedure was aborted by its caller.
	ErrCanceled = errors.New("canceled")

	// ErrNotReady ...
	ErrNotReady = errors.New("not ready")

	// ErrChannelClosed is returned for commands sent after the command
	// channel shut down.
	ErrChannelClosed = errors.New("command channel closed")

	// ErrCommandTimeout is reported when the controller did not answer a
	// command.
	ErrCommandTimeout = errors.New("no response to command")

	// ErrInvalidAddr ...
	ErrInvalidAddr = errors.New("invalid address")

	// ErrInvalidParams ...
	ErrInvalidParams = errors.New("invalid parameters")
)

// ErrCommand is a status code reported by the controller [Vol 2, Part D, 1.3].
type ErrCommand byte

// Status returns the raw status code.
func (e ErrCommand) Status() uint8 { return uint8(e) }

func (e ErrCommand) Error() string {
	if s, ok := errCmd[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown error (0x%02X)", uint8(e))
}

// Status codes.
const (
	ErrSuccess           ErrCommand = 0x00
	ErrUnknownCommand    ErrCommand = 0x01
	ErrConnID            ErrCommand = 0x02
	ErrHardware          ErrCommand = 0x03
	ErrPageTimeout       ErrCommand = 0x04
	ErrAuth              ErrCommand = 0x05
	ErrPINMissing        ErrCommand = 0x06
	ErrMemoryCapacity    ErrCommand = 0x07
	ErrConnTimeout       ErrCommand = 0x08
	ErrConnLimit         ErrCommand = 0x09
	ErrSCOConnLimit      ErrCommand = 0x0A
	ErrACLConnExists     ErrCommand = 0x0B
	ErrDisallowed        ErrCommand = 0x0C
	ErrLimitedResource   ErrCommand = 0x0D
	ErrSecurity          ErrCommand = 0x0E
	ErrBDADDR            ErrCommand = 0x0F
	ErrConnAcceptTimeout ErrCommand = 0x10
	ErrUnsupported       ErrCommand = 0x11
	ErrInvalidParameters ErrCommand = 0x12
	ErrRemoteUser        ErrCommand = 0x13
	ErrRemoteLowResource ErrCommand = 0x14
	ErrRemotePowerOff    ErrCommand = 0x15
	ErrLocalHost         ErrCommand = 0x16
	ErrRepeatedAttempts  ErrCommand = 0x17
	ErrPairingNotAllowed ErrCommand = 0x18
	ErrUnknownLMP        ErrCommand = 0x19
	ErrUnsupportedRemote ErrCommand = 0x1A
	ErrUnspecified       ErrCommand = 0x1F
	ErrLMPTimeout        ErrCommand = 0x22
	ErrInstantPassed     ErrCommand = 0x28
	ErrControllerBusy    ErrCommand = 0x3A
	ErrConnParams        ErrCommand = 0x3B
	ErrAdvTimeout        ErrCommand = 0x3C
	ErrMIC               ErrCommand = 0x3D
	ErrConnFailed        ErrCommand = 0x3E
)

var errCmd = map[ErrCommand]string{
	ErrSuccess:           "Success",
	ErrUnknownCommand:    "Unknown HCI Command",
	ErrConnID:            "Unknown Connection Identifier",
	ErrHardware:          "Hardware Failure",
	ErrPageTimeout:       "Page Timeout",
	ErrAuth:              "Authentication Failure",
	ErrPINMissing:        "PIN or Key Missing",
	ErrMemoryCapacity:    "Memory Capacity Exceeded",
	ErrConnTimeout:       "Connection Timeout",
	ErrConnLimit:         "Connection Limit Exceeded",
	ErrSCOConnLimit:      "Synchronous Connection Limit To A Device Exceeded",
	ErrACLConnExists:     "Connection Already Exists",
	ErrDisallowed:        "Command Disallowed",
	ErrLimitedResource:   "Connection Rejected due to Limited Resources",
	ErrSecurity:          "Connection Rejected Due To Security Reasons",
	ErrBDADDR:            "Connection Rejected due to Unacceptable BD_ADDR",
	ErrConnAcceptTimeout: "Connection Accept Timeout Exceeded",
	ErrUnsupported:       "Unsupported Feature or Parameter Value",
	ErrInvalidParameters: "Invalid HCI Command Parameters",
	ErrRemoteUser:        "Remote User Terminated Connection",
	ErrRemoteLowResource: "Remote Device Terminated Connection due to Low Resources",
	ErrRemotePowerOff:    "Remote Device Terminated Connection due to Power Off",
	ErrLocalHost:         "Connection Terminated By Local Host",
	ErrRepeatedAttempts:  "Repeated Attempts",
	ErrPairingNotAllowed: "Pairing Not Allowed",
	ErrUnknownLMP:        "Unknown LMP PDU",
	ErrUnsupportedRemote: "Unsupported Remote Feature / Unsupported LMP Feature",
	ErrUnspecified:       "Unspecified Error",
	ErrLMPTimeout:        "LMP Response Timeout / LL Response Timeout",
	ErrInstantPassed:     "Instant Passed",
	ErrControllerBusy:    "Controller Busy",
	ErrConnParams:        "Unacceptable Connection Parameters",
	ErrAdvTimeout:        "Directed Advertising Timeout",
	ErrMIC:               "Connection Terminated due to MIC Failure",
	ErrConnFailed:        "Connection Failed to be Established",
}

// statusError converts a controller status into an error. Success maps to nil.
func statusError(status uint8) error {
	if status == 0 {
		return nil
	}
	return ErrCommand(status)
}
