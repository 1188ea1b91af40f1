// Package fake provides a software Bluetooth controller that speaks HCI over
// the same Transport the host uses with real hardware.
package fake

import (
	"encoding/binary"
	"sync"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// CommandHandler receives the parameters of one command packet.
type CommandHandler func(opcode int, params []byte)

// ControllerBase is the controller end of a host Transport. It parses command
// packets from the host and frames events back to it; everything is posted on
// the controller dispatcher.
type ControllerBase struct {
	scope  *dispatch.Scope
	logger lecore.Logger

	mu           sync.Mutex
	hostHandler  func([]byte)
	closeHandler func(error)
	onCommand    CommandHandler
	closed       bool
}

var _ hci.Transport = (*ControllerBase)(nil)

// NewControllerBase returns a base that forwards well formed commands to
// onCommand.
func NewControllerBase(d dispatch.Dispatcher, onCommand CommandHandler) *ControllerBase {
	return &ControllerBase{
		scope:     dispatch.NewScope(d),
		logger:    lecore.ComponentLogger("fakectlr"),
		onCommand: onCommand,
	}
}

// Dispatcher returns the controller dispatcher.
func (b *ControllerBase) Dispatcher() dispatch.Dispatcher { return b.scope.Dispatcher() }

// WritePacket receives a packet from the host.
func (b *ControllerBase) WritePacket(p []byte) error {
	if b.isClosed() {
		return hci.ErrChannelClosed
	}
	pkt := append([]byte(nil), p...)
	b.scope.Post(func() { b.handleHostPacket(pkt) })
	return nil
}

// SetPacketHandler installs the host receiver.
func (b *ControllerBase) SetPacketHandler(h func([]byte)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hostHandler = h
}

// SetCloseHandler ...
func (b *ControllerBase) SetCloseHandler(h func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeHandler = h
}

// Close detaches the host. Scheduled controller work is canceled.
func (b *ControllerBase) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.hostHandler = nil
	b.mu.Unlock()
	b.scope.Close()
	return nil
}

// CloseWithError simulates the controller going away: the host close handler
// runs and nothing is delivered afterwards.
func (b *ControllerBase) CloseWithError(err error) {
	b.mu.Lock()
	h := b.closeHandler
	b.mu.Unlock()
	b.scope.Post(func() {
		if h != nil {
			h(err)
		}
	})
	b.scope.Post(func() { b.Close() })
}

func (b *ControllerBase) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// SendPacket delivers a raw packet, H4 indicator included, to the host.
func (b *ControllerBase) SendPacket(p []byte) {
	b.scope.Post(func() {
		b.mu.Lock()
		h := b.hostHandler
		b.mu.Unlock()
		if h != nil {
			h(p)
		}
	})
}

// SendEvent delivers an event to the host.
func (b *ControllerBase) SendEvent(code uint8, params []byte) {
	b.SendPacket(append([]byte{hci.PktTypeEvent}, evt.Packet(code, params)...))
}

// SendLEMetaEvent delivers an LE Meta event; params start with the subevent
// code.
func (b *ControllerBase) SendLEMetaEvent(params []byte) {
	b.SendEvent(evt.LEMetaEventCode, params)
}

// SendCommandStatus ...
func (b *ControllerBase) SendCommandStatus(status uint8, opcode int) {
	b.SendEvent(evt.CommandStatusCode, evt.EncodeCommandStatus(status, 1, uint16(opcode)))
}

// RespondWithCommandComplete sends a Command Complete carrying rp.
func (b *ControllerBase) RespondWithCommandComplete(opcode int, rp []byte) {
	b.SendEvent(evt.CommandCompleteCode, evt.EncodeCommandComplete(1, uint16(opcode), rp))
}

// RespondWithStatus sends a Command Complete carrying only a status.
func (b *ControllerBase) RespondWithStatus(opcode int, status uint8) {
	b.RespondWithCommandComplete(opcode, []byte{status})
}

// RespondWithReturnParameters encodes rp into a Command Complete.
func (b *ControllerBase) RespondWithReturnParameters(opcode int, rp cmd.Encoder) {
	buf, err := rp.Marshal()
	if err != nil {
		b.logger.Errorf("can't encode return parameters of 0x%04X: %v", opcode, err)
		b.RespondWithStatus(opcode, uint8(hci.ErrUnspecified))
		return
	}
	b.RespondWithCommandComplete(opcode, buf)
}

func (b *ControllerBase) handleHostPacket(p []byte) {
	if len(p) == 0 {
		b.logger.Warn("dropping empty host packet")
		return
	}
	switch p[0] {
	case hci.PktTypeCommand:
	case hci.PktTypeACLData:
		b.logger.Debugf("dropping ACL data: % X", p[1:])
		return
	default:
		b.logger.Warnf("dropping unsupported packet type 0x%02X", p[0])
		return
	}

	p = p[1:]
	if len(p) < 3 {
		b.logger.Warnf("dropping short command packet: % X", p)
		return
	}
	op := int(binary.LittleEndian.Uint16(p))
	if int(p[2]) != len(p)-3 {
		b.logger.Warnf("dropping command 0x%04X, length %d, have %d", op, p[2], len(p)-3)
		return
	}
	if b.onCommand != nil {
		b.onCommand(op, p[3:])
	}
}
