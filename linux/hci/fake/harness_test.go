package fake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

var (
	peerAddr1 = lecore.MustParseAddress(lecore.AddrTypeLEPublic, "00:00:00:00:00:01")
	peerAddr2 = lecore.MustParseAddress(lecore.AddrTypeLERandom, "C0:00:00:00:00:02")
)

// rawHost plays the host side of the transport and records everything the
// controller sends, events and notifications alike, in arrival order.
type rawHost struct {
	t    *testing.T
	loop *dispatch.TestLoop
	ctrl *Controller
	log  []interface{}
}

func newRawHost(t *testing.T, s Settings) *rawHost {
	loop := dispatch.NewTestLoop()
	h := &rawHost{t: t, loop: loop, ctrl: NewController(loop, s)}
	h.ctrl.SetPacketHandler(func(b []byte) {
		require.Equal(t, hci.PktTypeEvent, b[0])
		h.log = append(h.log, hci.EventPacket(b[1:]))
	})
	h.ctrl.SetNotificationHandler(loop, func(n Notification) {
		h.log = append(h.log, n)
	})
	return h
}

func (h *rawHost) addPeer(p *Peer) {
	require.NoError(h.t, h.ctrl.AddPeer(p))
}

func (h *rawHost) send(c cmd.Command) {
	b, err := cmd.Packet(c)
	require.NoError(h.t, err)
	require.NoError(h.t, h.ctrl.WritePacket(append([]byte{hci.PktTypeCommand}, b...)))
	h.loop.RunUntilIdle()
}

// take returns and clears the recorded traffic.
func (h *rawHost) take() []interface{} {
	l := h.log
	h.log = nil
	return l
}

func (h *rawHost) takeEvents() []hci.EventPacket {
	var out []hci.EventPacket
	for _, x := range h.take() {
		if e, ok := x.(hci.EventPacket); ok {
			out = append(out, e)
		}
	}
	return out
}

func requireCommandComplete(t *testing.T, x interface{}, op int, status hci.ErrCommand) evt.CommandComplete {
	e, ok := x.(hci.EventPacket)
	require.True(t, ok, "want an event, got %#v", x)
	require.Equal(t, uint8(evt.CommandCompleteCode), e.Code())
	cc := evt.CommandComplete(e.Params())
	require.Equal(t, uint16(op), cc.CommandOpcode())
	require.Equal(t, uint8(status), cc.Status())
	return cc
}

func requireCommandStatus(t *testing.T, x interface{}, op int, status hci.ErrCommand) {
	e, ok := x.(hci.EventPacket)
	require.True(t, ok, "want an event, got %#v", x)
	require.Equal(t, uint8(evt.CommandStatusCode), e.Code())
	cs := evt.CommandStatus(e.Params())
	require.Equal(t, uint16(op), cs.CommandOpcode())
	require.Equal(t, uint8(status), cs.Status())
}

func requireConnectionComplete(t *testing.T, x interface{}, status hci.ErrCommand) evt.LEConnectionComplete {
	e, ok := x.(hci.EventPacket)
	require.True(t, ok, "want an event, got %#v", x)
	require.Equal(t, uint8(evt.LEMetaEventCode), e.Code())
	require.Equal(t, uint8(evt.LEConnectionCompleteSubCode), e.Subevent())
	lc := evt.LEConnectionComplete(e.Params())
	require.NoError(t, lc.Validate())
	require.Equal(t, uint8(status), lc.Status())
	return lc
}

func createConnection(peer lecore.DeviceAddress) *cmd.LECreateConnection {
	return &cmd.LECreateConnection{
		LEScanInterval:     hci.DefaultLEScanInterval,
		LEScanWindow:       hci.DefaultLEScanWindow,
		PeerAddressType:    hci.AddressTypeOf(peer),
		PeerAddress:        peer.Value,
		ConnIntervalMin:    hci.DefaultConnIntervalMin,
		ConnIntervalMax:    hci.DefaultConnIntervalMax,
		ConnLatency:        hci.DefaultConnLatency,
		SupervisionTimeout: hci.DefaultSupervisionTimeout,
	}
}
