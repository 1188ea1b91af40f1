package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpCodeFields(t *testing.T) {
	require.Equal(t, 0x200D, LECreateConnectionOpCode)
	require.Equal(t, OGFLECtl, OGF(LECreateConnectionOpCode))
	require.Equal(t, 0x000D, OCF(LECreateConnectionOpCode))
	require.Equal(t, 0x0406, OpCode(OGFLinkCtl, 0x0006))
}

func TestPacketLayout(t *testing.T) {
	c := &LECreateConnection{
		LEScanInterval:     0x0060,
		LEScanWindow:       0x0030,
		PeerAddress:        [6]byte{1, 2, 3, 4, 5, 6},
		ConnIntervalMin:    0x0018,
		ConnIntervalMax:    0x0028,
		SupervisionTimeout: 0x002A,
	}
	b, err := Packet(c)
	require.NoError(t, err)
	require.Len(t, b, 3+25)
	require.Equal(t, []byte{0x0D, 0x20, 25}, b[:3])
	require.Equal(t, []byte{0x60, 0x00, 0x30, 0x00}, b[3:7])
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, b[9:15])

	var d LECreateConnection
	require.NoError(t, d.Unmarshal(b[3:]))
	require.Equal(t, *c, d)
}

func TestMarshalShortBuffer(t *testing.T) {
	c := &Disconnect{ConnectionHandle: 1, Reason: 0x13}
	require.Error(t, c.Marshal(make([]byte, 2)))
}

func TestReturnParameters(t *testing.T) {
	rp := &ReadLocalExtendedFeaturesRP{PageNumber: 1, MaximumPageNumber: 2, ExtendedLMPFeatures: 0x03}
	b, err := rp.Marshal()
	require.NoError(t, err)
	require.Len(t, b, 11)

	var got ReadLocalExtendedFeaturesRP
	require.NoError(t, got.Unmarshal(b))
	require.Equal(t, *rp, got)

	var short ReadBDADDRRP
	require.Error(t, short.Unmarshal([]byte{0x00, 0x01}))
}

func TestRaw(t *testing.T) {
	r := &Raw{Op: OpCode(OGFVendor, 0x0001), Payload: []byte{0xAA, 0xBB}}
	b, err := Packet(r)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0xFC, 2, 0xAA, 0xBB}, b)
}
