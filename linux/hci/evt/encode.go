package evt

import "encoding/binary"

// Packet frames params as an event packet: event code, parameter length,
// parameters. The H4 packet indicator is not included.
func Packet(code uint8, params []byte) []byte {
	b := make([]byte, 2, 2+len(params))
	b[0] = code
	b[1] = uint8(len(params))
	return append(b, params...)
}

// EncodeCommandComplete builds Command Complete parameters.
func EncodeCommandComplete(numPkts uint8, opcode uint16, rp []byte) []byte {
	b := make([]byte, 3, 3+len(rp))
	b[0] = numPkts
	binary.LittleEndian.PutUint16(b[1:], opcode)
	return append(b, rp...)
}

// EncodeCommandStatus builds Command Status parameters.
func EncodeCommandStatus(status, numPkts uint8, opcode uint16) []byte {
	b := []byte{status, numPkts, 0, 0}
	binary.LittleEndian.PutUint16(b[2:], opcode)
	return b
}

// EncodeDisconnectionComplete builds Disconnection Complete parameters.
func EncodeDisconnectionComplete(status uint8, handle uint16, reason uint8) []byte {
	b := []byte{status, 0, 0, reason}
	binary.LittleEndian.PutUint16(b[1:], handle)
	return b
}

// ConnectionCompleteFields are the fields of an LE Connection Complete subevent.
type ConnectionCompleteFields struct {
	Status              uint8
	ConnectionHandle    uint16
	Role                uint8
	PeerAddressType     uint8
	PeerAddress         [6]byte
	ConnInterval        uint16
	ConnLatency         uint16
	SupervisionTimeout  uint16
	MasterClockAccuracy uint8
}

// Encode builds the LE Meta parameters, subevent code included.
func (f ConnectionCompleteFields) Encode() []byte {
	b := make([]byte, 19)
	b[0] = LEConnectionCompleteSubCode
	b[1] = f.Status
	binary.LittleEndian.PutUint16(b[2:], f.ConnectionHandle)
	b[4] = f.Role
	b[5] = f.PeerAddressType
	copy(b[6:12], f.PeerAddress[:])
	binary.LittleEndian.PutUint16(b[12:], f.ConnInterval)
	binary.LittleEndian.PutUint16(b[14:], f.ConnLatency)
	binary.LittleEndian.PutUint16(b[16:], f.SupervisionTimeout)
	b[18] = f.MasterClockAccuracy
	return b
}

// ConnectionUpdateCompleteFields are the fields of an LE Connection Update
// Complete subevent.
type ConnectionUpdateCompleteFields struct {
	Status             uint8
	ConnectionHandle   uint16
	ConnInterval       uint16
	ConnLatency        uint16
	SupervisionTimeout uint16
}

// Encode builds the LE Meta parameters, subevent code included.
func (f ConnectionUpdateCompleteFields) Encode() []byte {
	b := make([]byte, 10)
	b[0] = LEConnectionUpdateCompleteSubCode
	b[1] = f.Status
	binary.LittleEndian.PutUint16(b[2:], f.ConnectionHandle)
	binary.LittleEndian.PutUint16(b[4:], f.ConnInterval)
	binary.LittleEndian.PutUint16(b[6:], f.ConnLatency)
	binary.LittleEndian.PutUint16(b[8:], f.SupervisionTimeout)
	return b
}

// AdvertisingReportFields is one entry of an LE Advertising Report.
type AdvertisingReportFields struct {
	EventType   uint8
	AddressType uint8
	Address     [6]byte
	Data        []byte
	RSSI        int8
}

// EncodeAdvertisingReport builds LE Meta parameters carrying reports in the
// array layout read by LEAdvertisingReport.
func EncodeAdvertisingReport(reports ...AdvertisingReportFields) []byte {
	n := len(reports)
	b := []byte{LEAdvertisingReportSubCode, uint8(n)}
	for _, r := range reports {
		b = append(b, r.EventType)
	}
	for _, r := range reports {
		b = append(b, r.AddressType)
	}
	for _, r := range reports {
		b = append(b, r.Address[:]...)
	}
	for _, r := range reports {
		b = append(b, uint8(len(r.Data)))
	}
	for _, r := range reports {
		b = append(b, r.Data...)
	}
	for _, r := range reports {
		b = append(b, uint8(r.RSSI))
	}
	return b
}
