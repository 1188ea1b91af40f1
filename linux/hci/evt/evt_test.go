package evt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandComplete(t *testing.T) {
	e := CommandComplete(EncodeCommandComplete(1, 0x200D, []byte{0x0C}))
	require.Equal(t, uint8(1), e.NumHCICommandPackets())
	require.Equal(t, uint16(0x200D), e.CommandOpcode())
	require.Equal(t, uint8(0x0C), e.Status())
	require.Equal(t, []byte{0x0C}, e.ReturnParameters())

	_, err := CommandComplete([]byte{1}).CommandOpcodeWErr()
	require.Equal(t, ErrShortPacket, err)
}

func TestCommandStatus(t *testing.T) {
	e := CommandStatus(EncodeCommandStatus(0x0C, 1, 0x0406))
	require.Equal(t, uint8(0x0C), e.Status())
	require.Equal(t, uint8(1), e.NumHCICommandPackets())
	require.Equal(t, uint16(0x0406), e.CommandOpcode())
}

func TestLEConnectionComplete(t *testing.T) {
	f := ConnectionCompleteFields{
		ConnectionHandle:   0x0001,
		Role:               0x00,
		PeerAddressType:    0x01,
		PeerAddress:        [6]byte{1, 0, 0, 0, 0, 0},
		ConnInterval:       0x0018,
		ConnLatency:        0x0002,
		SupervisionTimeout: 0x002A,
	}
	e := LEConnectionComplete(f.Encode())
	require.NoError(t, e.Validate())
	require.Equal(t, uint8(LEConnectionCompleteSubCode), e.SubeventCode())
	require.Equal(t, uint16(1), e.ConnectionHandle())
	require.Equal(t, uint8(1), e.PeerAddressType())
	require.Equal(t, f.PeerAddress, e.PeerAddress())
	require.Equal(t, uint16(0x0018), e.ConnInterval())
	require.Equal(t, uint16(0x0002), e.ConnLatency())
	require.Equal(t, uint16(0x002A), e.SupervisionTimeout())

	require.Error(t, LEConnectionComplete(f.Encode()[:12]).Validate())
}

func TestAdvertisingReportLayout(t *testing.T) {
	b := EncodeAdvertisingReport(
		AdvertisingReportFields{EventType: AdvInd, Address: [6]byte{1}, Data: []byte{2, 1, 6}, RSSI: -40},
		AdvertisingReportFields{EventType: ScanRsp, AddressType: 1, Address: [6]byte{2}, RSSI: -70},
	)
	e := LEAdvertisingReport(b)
	require.NoError(t, e.Validate())
	require.Equal(t, uint8(2), e.NumReports())
	require.Equal(t, uint8(AdvInd), e.EventType(0))
	require.Equal(t, uint8(ScanRsp), e.EventType(1))
	require.Equal(t, uint8(1), e.AddressType(1))
	require.Equal(t, [6]byte{2}, e.Address(1))
	require.Equal(t, []byte{2, 1, 6}, e.Data(0))
	require.Equal(t, []byte{}, e.Data(1))
	require.Equal(t, int8(-40), e.RSSI(0))
	require.Equal(t, int8(-70), e.RSSI(1))

	// truncated RSSI
	require.Error(t, LEAdvertisingReport(b[:len(b)-1]).Validate())
	require.Error(t, LEAdvertisingReport([]byte{LEAdvertisingReportSubCode, 0}).Validate())
}

func TestPacket(t *testing.T) {
	p := Packet(DisconnectionCompleteCode, EncodeDisconnectionComplete(0, 0x0040, 0x13))
	require.Equal(t, []byte{0x05, 4, 0x00, 0x40, 0x00, 0x13}, p)
	e := DisconnectionComplete(p[2:])
	require.Equal(t, uint16(0x0040), e.ConnectionHandle())
	require.Equal(t, uint8(0x13), e.Reason())
}
