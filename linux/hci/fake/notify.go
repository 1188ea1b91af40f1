package fake

import (
	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/hci"
)

// Notification is a controller state change. It is one of
// ScanStateChanged, AdvertisingStateChanged, ConnectionStateChanged or
// ConnectionParametersUpdated.
type Notification interface {
	notification()
}

// ScanStateChanged is sent when LE Set Scan Enable toggles scanning.
type ScanStateChanged struct {
	Enabled          bool
	Active           bool
	FilterDuplicates bool
}

// AdvertisingStateChanged is sent when LE Set Advertise Enable toggles
// advertising.
type AdvertisingStateChanged struct {
	Enabled bool
}

// ConnectionStateChanged is sent when a peer gets its first link, loses its
// last one, or a pending attempt to it is canceled.
type ConnectionStateChanged struct {
	Address   lecore.DeviceAddress
	Connected bool
	Canceled  bool
}

// ConnectionParametersUpdated is sent when an LE Connection Update is
// applied to a link.
type ConnectionParametersUpdated struct {
	Address    lecore.DeviceAddress
	Handle     uint16
	Parameters hci.ConnectionParameters
}

func (ScanStateChanged) notification()            {}
func (AdvertisingStateChanged) notification()     {}
func (ConnectionStateChanged) notification()      {}
func (ConnectionParametersUpdated) notification() {}
