package hci

import "time"

// HCI Packet types
const (
	PktTypeCommand uint8 = 0x01
	PktTypeACLData uint8 = 0x02
	PktTypeSCOData uint8 = 0x03
	PktTypeEvent   uint8 = 0x04
	PktTypeVendor  uint8 = 0xFF
)

// Connection roles as reported in LE Connection Complete.
const (
	RoleMaster = 0x00
	RoleSlave  = 0x01
)

// Disconnect reasons used by the host.
const (
	ReasonRemoteUser = uint8(ErrRemoteUser)
	ReasonLocalHost  = uint8(ErrLocalHost)
)

const (
	// DefaultCommandTimeout bounds how long a command may wait for its
	// Command Complete / Command Status.
	DefaultCommandTimeout = 10 * time.Second

	// DefaultScanResponseTimeout bounds how long an active scan holds a
	// scannable advertisement back waiting for its scan response.
	DefaultScanResponseTimeout = 2 * time.Second

	// maxPendingCommands caps Num_HCI_Command_Packets.
	maxPendingCommands = 16

	// connectionHandleMask keeps the 12 usable handle bits.
	connectionHandleMask = 0x0FFF
)
