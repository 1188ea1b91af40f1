package fake

import (
	"time"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/evt"
)

// DefaultRSSI is reported for peers that don't set one.
const DefaultRSSI int8 = -50

// Peer is a simulated remote LE device. Its exported fields configure how
// the controller reports and connects it; set them before handing the peer
// to a Controller.
type Peer struct {
	Address     lecore.DeviceAddress
	Connectable bool
	Scannable   bool

	AdvertisingData []byte
	ScanResponse    []byte

	// ShouldBatchReports sends the scan response in the same event as the
	// advertisement.
	ShouldBatchReports bool
	RSSI               int8

	// ConnectStatus is returned in the Command Status of LE Create
	// Connection. ConnectResponse is the status of the LE Connection
	// Complete that follows ConnectResponseDelay later.
	ConnectStatus        hci.ErrCommand
	ConnectResponse      hci.ErrCommand
	ConnectResponseDelay time.Duration

	connected bool
	handles   []uint16
	params    hci.ConnectionParameters
}

// NewPeer ...
func NewPeer(addr lecore.DeviceAddress, connectable, scannable bool) *Peer {
	return &Peer{
		Address:     addr,
		Connectable: connectable,
		Scannable:   scannable,
		RSSI:        DefaultRSSI,
	}
}

// Connected reports whether the controller holds a link to the peer.
func (p *Peer) Connected() bool { return p.connected }

// Handles returns the connection handles of the peer's links.
func (p *Peer) Handles() []uint16 {
	return append([]uint16(nil), p.handles...)
}

// Parameters returns the parameters of the most recent link update.
func (p *Peer) Parameters() hci.ConnectionParameters { return p.params }

func (p *Peer) addLink(h uint16) {
	p.handles = append(p.handles, h)
	p.connected = true
}

func (p *Peer) removeLink(h uint16) {
	for i, x := range p.handles {
		if x == h {
			p.handles = append(p.handles[:i:i], p.handles[i+1:]...)
			break
		}
	}
	p.connected = len(p.handles) > 0
}

func (p *Peer) hasLink(h uint16) bool {
	for _, x := range p.handles {
		if x == h {
			return true
		}
	}
	return false
}

func (p *Peer) advertisingEventType() uint8 {
	switch {
	case p.Connectable:
		return evt.AdvInd
	case p.Scannable:
		return evt.AdvScanInd
	}
	return evt.AdvNonconnInd
}
