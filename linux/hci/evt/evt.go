// Package evt provides views over HCI event parameters [Vol 2, Part E, 7.7].
//
// Each view is the raw parameter slice of one event. Accessors come in two
// forms: X() returns a default on short packets, XWErr() reports the error.
package evt

// Event codes.
const (
	DisconnectionCompleteCode = 0x05
	CommandCompleteCode       = 0x0E
	CommandStatusCode         = 0x0F
	HardwareErrorCode         = 0x10
	LEMetaEventCode           = 0x3E
)

// LE Meta subevent codes.
const (
	LEConnectionCompleteSubCode       = 0x01
	LEAdvertisingReportSubCode        = 0x02
	LEConnectionUpdateCompleteSubCode = 0x03
)

// Advertising report event types [Vol 2, Part E, 7.7.65.2].
const (
	AdvInd        = 0x00
	AdvDirectInd  = 0x01
	AdvScanInd    = 0x02
	AdvNonconnInd = 0x03
	ScanRsp       = 0x04
)

// CommandComplete implements Command Complete (0x0E) [Vol 2, Part E, 7.7.14].
type CommandComplete []byte

func (e CommandComplete) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandComplete) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e CommandComplete) ReturnParameters() []byte {
	v, _ := e.ReturnParametersWErr()
	return v
}

// Status returns the first return parameter, which is the status for every
// command this package knows about.
func (e CommandComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

// CommandStatus implements Command Status (0x0F) [Vol 2, Part E, 7.7.15].
type CommandStatus []byte

func (e CommandStatus) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e CommandStatus) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandStatus) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

// DisconnectionComplete implements Disconnection Complete (0x05) [Vol 2, Part E, 7.7.5].
type DisconnectionComplete []byte

func (e DisconnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e DisconnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e DisconnectionComplete) Reason() uint8 {
	v, _ := e.ReasonWErr()
	return v
}

// HardwareError implements Hardware Error (0x10) [Vol 2, Part E, 7.7.16].
type HardwareError []byte

func (e HardwareError) HardwareCode() uint8 {
	v, _ := e.HardwareCodeWErr()
	return v
}

// LEConnectionComplete implements LE Connection Complete (0x3E:0x01) [Vol 2, Part E, 7.7.65.1].
type LEConnectionComplete []byte

func (e LEConnectionComplete) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEConnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEConnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEConnectionComplete) Role() uint8 {
	v, _ := e.RoleWErr()
	return v
}

func (e LEConnectionComplete) PeerAddressType() uint8 {
	v, _ := e.PeerAddressTypeWErr()
	return v
}

func (e LEConnectionComplete) PeerAddress() [6]byte {
	v, _ := e.PeerAddressWErr()
	return v
}

func (e LEConnectionComplete) ConnInterval() uint16 {
	v, _ := e.ConnIntervalWErr()
	return v
}

func (e LEConnectionComplete) ConnLatency() uint16 {
	v, _ := e.ConnLatencyWErr()
	return v
}

func (e LEConnectionComplete) SupervisionTimeout() uint16 {
	v, _ := e.SupervisionTimeoutWErr()
	return v
}

func (e LEConnectionComplete) MasterClockAccuracy() uint8 {
	v, _ := e.MasterClockAccuracyWErr()
	return v
}

// LEConnectionUpdateComplete implements LE Connection Update Complete (0x3E:0x03) [Vol 2, Part E, 7.7.65.3].
type LEConnectionUpdateComplete []byte

func (e LEConnectionUpdateComplete) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEConnectionUpdateComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnInterval() uint16 {
	v, _ := e.ConnIntervalWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnLatency() uint16 {
	v, _ := e.ConnLatencyWErr()
	return v
}

func (e LEConnectionUpdateComplete) SupervisionTimeout() uint16 {
	v, _ := e.SupervisionTimeoutWErr()
	return v
}

// LEAdvertisingReport implements LE Advertising Report (0x3E:0x02) [Vol 2, Part E, 7.7.65.2].
type LEAdvertisingReport []byte

func (e LEAdvertisingReport) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEAdvertisingReport) NumReports() uint8 {
	v, _ := e.NumReportsWErr()
	return v
}

func (e LEAdvertisingReport) EventType(i int) uint8 {
	v, _ := e.EventTypeWErr(i)
	return v
}

func (e LEAdvertisingReport) AddressType(i int) uint8 {
	v, _ := e.AddressTypeWErr(i)
	return v
}

func (e LEAdvertisingReport) Address(i int) [6]byte {
	v, _ := e.AddressWErr(i)
	return v
}

func (e LEAdvertisingReport) LengthData(i int) uint8 {
	v, _ := e.LengthDataWErr(i)
	return v
}

func (e LEAdvertisingReport) Data(i int) []byte {
	v, _ := e.DataWErr(i)
	return v
}

func (e LEAdvertisingReport) RSSI(i int) int8 {
	v, _ := e.RSSIWErr(i)
	return v
}
