package hci

import (
	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/adv"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// Advertising PDU types of LE Set Advertising Parameters [Vol 2, Part E, 7.8.5].
const (
	AdvTypeConnUndirected      = 0x00 // ADV_IND
	AdvTypeConnDirected        = 0x01 // ADV_DIRECT_IND, high duty cycle
	AdvTypeScanUndirected      = 0x02 // ADV_SCAN_IND
	AdvTypeNonconnUndirected   = 0x03 // ADV_NONCONN_IND
	AdvTypeConnDirectedLowDuty = 0x04 // ADV_DIRECT_IND, low duty cycle

	AdvTypeMax = AdvTypeConnDirectedLowDuty
)

// AdvertisingOptions ...
type AdvertisingOptions struct {
	IntervalMin uint16 // N * 0.625 ms
	IntervalMax uint16
	Connectable bool
}

// DefaultAdvertisingOptions ...
func DefaultAdvertisingOptions() AdvertisingOptions {
	return AdvertisingOptions{
		IntervalMin: DefaultAdvInterval,
		IntervalMax: DefaultAdvInterval,
		Connectable: true,
	}
}

// LowEnergyAdvertiser advertises the local device.
type LowEnergyAdvertiser interface {
	// StartAdvertising advertises data and scanRsp from addr. resultCb
	// reports whether advertising started; connectCb, when not nil, makes
	// the advertisement connectable and receives the resulting link.
	StartAdvertising(addr lecore.DeviceAddress, data, scanRsp []byte, opts AdvertisingOptions,
		connectCb func(*Connection), resultCb func(error))

	// StopAdvertising stops advertising addr. It returns false if addr is not
	// being advertised.
	StopAdvertising(addr lecore.DeviceAddress) bool

	// OnIncomingConnection hands over a link a remote central opened to one
	// of the advertisements.
	OnIncomingConnection(handle uint16, role uint8, peer lecore.DeviceAddress, params ConnectionParameters)

	// AllowsRandomAddressChange reports whether the random address may be
	// changed now.
	AllowsRandomAddressChange() bool

	IsAdvertising() bool
}

// LegacyLowEnergyAdvertiser advertises one address at a time with the legacy
// advertising commands.
type LegacyLowEnergyAdvertiser struct {
	ch     *CommandChannel
	scope  *dispatch.Scope
	logger lecore.Logger
	runner *SequentialCommandRunner

	addr        lecore.DeviceAddress
	starting    bool
	advertising bool
	connectCb   func(*Connection)
	resultCb    func(error)
	closeID     EventHandlerID
}

var _ LowEnergyAdvertiser = (*LegacyLowEnergyAdvertiser)(nil)

// NewLegacyLowEnergyAdvertiser ...
func NewLegacyLowEnergyAdvertiser(ch *CommandChannel, d dispatch.Dispatcher, opts ...Option) (*LegacyLowEnergyAdvertiser, error) {
	o, err := buildOptions("advertiser", opts)
	if err != nil {
		return nil, errors.Wrap(err, "can't create advertiser")
	}
	a := &LegacyLowEnergyAdvertiser{
		ch:     ch,
		scope:  dispatch.NewScope(d),
		logger: o.logger,
		runner: NewSequentialCommandRunner(ch),
	}
	a.closeID = ch.AddCloseHandler(a.handleChannelClosed)
	return a, nil
}

// handleChannelClosed forgets a running advertisement. One still starting
// fails through its command runner.
func (a *LegacyLowEnergyAdvertiser) handleChannelClosed(err error) {
	if !a.advertising {
		return
	}
	a.logger.Warnf("advertising of %v lost: %v", a.addr, err)
	a.advertising = false
	a.connectCb = nil
}

// StartAdvertising ...
func (a *LegacyLowEnergyAdvertiser) StartAdvertising(addr lecore.DeviceAddress, data, scanRsp []byte, opts AdvertisingOptions,
	connectCb func(*Connection), resultCb func(error)) {
	fail := func(err error) {
		if resultCb == nil {
			a.logger.Warnf("can't advertise %v: %v", addr, err)
			return
		}
		a.scope.Post(func() { resultCb(err) })
	}
	switch {
	case !addr.IsLowEnergy():
		fail(ErrInvalidAddr)
		return
	case len(data) > adv.MaxEIRPacketLength || len(scanRsp) > adv.MaxEIRPacketLength:
		fail(errors.Wrap(ErrInvalidParams, "advertising data too long"))
		return
	case opts.IntervalMin < AdvIntervalMin || opts.IntervalMax > AdvIntervalMax || opts.IntervalMin > opts.IntervalMax:
		fail(errors.Wrapf(ErrInvalidParams, "advertising interval %d-%d", opts.IntervalMin, opts.IntervalMax))
		return
	case a.starting:
		fail(errors.Wrap(ErrNotReady, "advertising already starting"))
		return
	case a.advertising && a.addr != addr:
		fail(errors.Wrapf(ErrNotReady, "already advertising %v", a.addr))
		return
	}

	if a.advertising {
		// parameters can't change while enabled
		a.runner.QueueCommand(&cmd.LESetAdvertiseEnable{AdvertisingEnable: 0}, nil)
	}
	a.advertising = false

	advType := uint8(AdvTypeNonconnUndirected)
	switch {
	case opts.Connectable && connectCb != nil:
		advType = AdvTypeConnUndirected
	case len(scanRsp) > 0:
		advType = AdvTypeScanUndirected
	}
	if addr.Type == lecore.AddrTypeLERandom {
		a.runner.QueueCommand(&cmd.LESetRandomAddress{RandomAddress: addr.Value}, nil)
	}
	a.runner.QueueCommand(&cmd.LESetAdvertisingParameters{
		AdvertisingIntervalMin:  opts.IntervalMin,
		AdvertisingIntervalMax:  opts.IntervalMax,
		AdvertisingType:         advType,
		OwnAddressType:          AddressTypeOf(addr),
		AdvertisingChannelMap:   0x7,
		AdvertisingFilterPolicy: 0x00,
	}, nil)

	ad := &cmd.LESetAdvertisingData{AdvertisingDataLength: uint8(len(data))}
	copy(ad.AdvertisingData[:], data)
	a.runner.QueueCommand(ad, nil)

	sr := &cmd.LESetScanResponseData{ScanResponseDataLength: uint8(len(scanRsp))}
	copy(sr.ScanResponseData[:], scanRsp)
	a.runner.QueueCommand(sr, nil)

	a.runner.QueueCommand(&cmd.LESetAdvertiseEnable{AdvertisingEnable: 1}, nil)

	a.addr = addr
	a.starting = true
	a.connectCb = connectCb
	a.resultCb = resultCb
	err := a.runner.RunCommands(func(err error) {
		a.starting = false
		cb := a.resultCb
		a.resultCb = nil
		if err != nil {
			a.logger.Warnf("failed to start advertising: %v", err)
			a.connectCb = nil
		} else {
			a.advertising = true
			a.logger.Debugf("advertising %v", addr)
		}
		if cb != nil {
			cb(err)
		}
	})
	if err != nil {
		a.starting = false
		a.runner.Cancel()
		a.resultCb = nil
		a.connectCb = nil
		fail(err)
	}
}

// StopAdvertising ...
func (a *LegacyLowEnergyAdvertiser) StopAdvertising(addr lecore.DeviceAddress) bool {
	if (!a.advertising && !a.starting) || a.addr != addr {
		return false
	}
	if a.starting {
		// reports ErrCanceled to the pending result callback
		a.runner.Cancel()
	}
	a.advertising = false
	a.connectCb = nil
	_, err := a.ch.SendCommand(&cmd.LESetAdvertiseEnable{AdvertisingEnable: 0}, evt.CommandCompleteCode, func(_ TransactionID, e EventPacket) {
		if err := EventStatus(e); err != nil {
			a.logger.Warnf("failed to stop advertising: %v", err)
		}
	})
	if err != nil {
		a.logger.Errorf("can't stop advertising: %v", err)
	}
	return true
}

// OnIncomingConnection ...
func (a *LegacyLowEnergyAdvertiser) OnIncomingConnection(handle uint16, role uint8, peer lecore.DeviceAddress, params ConnectionParameters) {
	conn := NewConnection(a.ch, handle, role, a.addr, peer, params)
	if role != RoleSlave || !a.advertising || a.connectCb == nil {
		a.logger.Warnf("unexpected incoming connection from %v, rejecting", peer)
		conn.Close()
		return
	}

	// The controller leaves the advertising state once connected.
	cb := a.connectCb
	a.advertising = false
	a.connectCb = nil
	a.logger.Debugf("incoming connection from %v, handle %04X", peer, handle)
	cb(conn)
}

// AllowsRandomAddressChange is false while advertising.
func (a *LegacyLowEnergyAdvertiser) AllowsRandomAddressChange() bool {
	return !a.starting && !a.advertising
}

// IsAdvertising ...
func (a *LegacyLowEnergyAdvertiser) IsAdvertising() bool {
	return a.advertising
}

// Close stops advertising. No callbacks are delivered afterwards.
func (a *LegacyLowEnergyAdvertiser) Close() {
	a.resultCb = nil
	if a.advertising || a.starting {
		a.StopAdvertising(a.addr)
	}
	a.ch.RemoveEventHandler(a.closeID)
	a.scope.Close()
}
