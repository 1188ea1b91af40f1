package hci

import (
	"time"

	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// ConnectionResultCallback receives the outcome of CreateConnection: a nil
// error with the new connection, or an error classified by errors.Cause as
// ErrCommand, ErrTimedOut or ErrCanceled.
type ConnectionResultCallback func(err error, c *Connection)

// IncomingConnectionDelegate receives connections this host did not request.
type IncomingConnectionDelegate func(handle uint16, role uint8, peer lecore.DeviceAddress, params ConnectionParameters)

type pendingRequest struct {
	peer         lecore.DeviceAddress
	useWhitelist bool
	canceled     bool
	timedOut     bool
	cb           ConnectionResultCallback
}

// LowEnergyConnector drives at most one locally initiated LE connection
// attempt at a time.
type LowEnergyConnector struct {
	ch        *CommandChannel
	scope     *dispatch.Scope
	logger    lecore.Logger
	localAddr lecore.DeviceAddress
	delegate  IncomingConnectionDelegate

	pending     *pendingRequest
	timeoutTask *dispatch.Task
	handlerID   EventHandlerID
	closeID     EventHandlerID
	closed      bool

	// request given up by Close whose cancel the controller has not
	// answered yet
	abandoned *pendingRequest
}

// NewLowEnergyConnector registers for LE Connection Complete events on ch.
// delegate may be nil, in which case remote initiated links are disconnected.
func NewLowEnergyConnector(ch *CommandChannel, localAddr lecore.DeviceAddress, d dispatch.Dispatcher, delegate IncomingConnectionDelegate, opts ...Option) (*LowEnergyConnector, error) {
	o, err := buildOptions("connector", opts)
	if err != nil {
		return nil, errors.Wrap(err, "can't create connector")
	}
	c := &LowEnergyConnector{
		ch:        ch,
		scope:     dispatch.NewScope(d),
		logger:    o.logger,
		localAddr: localAddr,
		delegate:  delegate,
	}
	c.handlerID = ch.AddLEMetaEventHandler(evt.LEConnectionCompleteSubCode, c.handleConnectionComplete)
	c.closeID = ch.AddCloseHandler(c.handleChannelClosed)
	return c, nil
}

// CreateConnection starts a connection attempt to peer. It returns false, and
// never calls cb, when a request is already pending or the arguments are
// invalid. Otherwise cb is called exactly once, never from within this call.
// When timeout elapses first the attempt is canceled and cb gets ErrTimedOut.
// If the command channel stops first cb gets ErrChannelClosed.
func (c *LowEnergyConnector) CreateConnection(ownAddrType uint8, useWhitelist bool, peer lecore.DeviceAddress,
	scanInterval, scanWindow uint16, preferred PreferredConnectionParameters, cb ConnectionResultCallback, timeout time.Duration) bool {
	switch {
	case c.closed:
		c.logger.Warn("connector closed")
		return false
	case c.pending != nil:
		c.logger.Warnf("connection to %v already pending", c.pending.peer)
		return false
	case cb == nil:
		c.logger.Error("no result callback")
		return false
	case !peer.IsLowEnergy():
		c.logger.Errorf("%v: %v is not an LE address", ErrInvalidAddr, peer)
		return false
	case timeout <= 0:
		c.logger.Errorf("invalid timeout %v", timeout)
		return false
	case ownAddrType != AddressTypePublic && ownAddrType != AddressTypeRandom:
		c.logger.Errorf("invalid own address type %d", ownAddrType)
		return false
	}
	if err := ValidateScanParams(scanInterval, scanWindow); err != nil {
		c.logger.Errorf("%v: %v", ErrInvalidParams, err)
		return false
	}
	if err := ValidatePreferredParams(preferred); err != nil {
		c.logger.Errorf("%v: %v", ErrInvalidParams, err)
		return false
	}

	c.pending = &pendingRequest{peer: peer, useWhitelist: useWhitelist, cb: cb}

	filter := uint8(FilterPolicyAcceptAll)
	if useWhitelist {
		filter = FilterPolicyAcceptWhitelist
	}
	cc := &cmd.LECreateConnection{
		LEScanInterval:        scanInterval,
		LEScanWindow:          scanWindow,
		InitiatorFilterPolicy: filter,
		PeerAddressType:       AddressTypeOf(peer),
		PeerAddress:           peer.Value,
		OwnAddressType:        ownAddrType,
		ConnIntervalMin:       preferred.MinInterval,
		ConnIntervalMax:       preferred.MaxInterval,
		ConnLatency:           preferred.MaxLatency,
		SupervisionTimeout:    preferred.SupervisionTimeout,
		MinimumCELength:       0x0000,
		MaximumCELength:       0x0000,
	}

	req := c.pending
	c.logger.Debugf("connecting to %v", peer)
	_, err := c.ch.SendCommand(cc, evt.CommandStatusCode, func(_ TransactionID, e EventPacket) {
		c.handleCreateConnectionStatus(req, timeout, e)
	})
	if err != nil {
		c.scope.Post(func() {
			if c.pending == req {
				c.resolve(errors.Wrap(err, "can't send create connection"), nil)
			}
		})
	}
	return true
}

// Cancel aborts the pending request. The callback receives ErrCanceled once
// the controller confirms. Calling Cancel without a pending request, or
// twice, only logs.
func (c *LowEnergyConnector) Cancel() {
	if c.pending == nil {
		c.logger.Warn("no pending request to cancel")
		return
	}
	c.cancel(false)
}

// RequestPending ...
func (c *LowEnergyConnector) RequestPending() bool { return c.pending != nil }

// PendingPeerAddress returns the target of the pending request.
func (c *LowEnergyConnector) PendingPeerAddress() (lecore.DeviceAddress, bool) {
	if c.pending == nil {
		return lecore.DeviceAddress{}, false
	}
	return c.pending.peer, true
}

// Close cancels a pending request, reporting ErrCanceled (ErrTimedOut when
// the timeout already started the cancel) to its callback before returning.
// Nothing is delivered afterwards. A link the controller completes before it
// sees the cancel is disconnected.
func (c *LowEnergyConnector) Close() {
	if c.closed {
		return
	}
	if req := c.pending; req != nil {
		if !req.canceled {
			c.cancel(false)
		}
		if c.pending != nil {
			c.resolve(c.cancelError(req), nil)
			c.abandoned = req
		}
	}
	c.closed = true
	c.ch.RemoveEventHandler(c.closeID)
	if c.abandoned == nil {
		c.ch.RemoveEventHandler(c.handlerID)
	}
	c.scope.Close()
}

// release drops the abandoned request and the handler kept for it.
func (c *LowEnergyConnector) release() {
	c.abandoned = nil
	c.ch.RemoveEventHandler(c.handlerID)
}

func (c *LowEnergyConnector) handleChannelClosed(err error) {
	if c.closed || c.pending == nil {
		return
	}
	c.logger.Warnf("connection to %v aborted: %v", c.pending.peer, err)
	c.resolve(err, nil)
}

func (c *LowEnergyConnector) handleCreateConnectionStatus(req *pendingRequest, timeout time.Duration, e EventPacket) {
	if c.pending != req {
		if req == c.abandoned && EventStatus(e) != nil {
			// no Connection Complete follows a rejected create
			c.release()
		}
		return
	}
	if err := EventStatus(e); err != nil {
		c.logger.Warnf("create connection rejected: %v", err)
		c.resolve(err, nil)
		return
	}
	if req.canceled {
		// the cancel is already on its way
		return
	}
	c.timeoutTask = c.scope.PostDelayed(timeout, func() {
		c.timeoutTask = nil
		if c.pending != req {
			return
		}
		c.logger.Debugf("connection to %v timed out", req.peer)
		c.cancel(true)
	})
}

// cancel is shared by Cancel and the timeout. The timer is always stopped
// before the cancel command is sent.
func (c *LowEnergyConnector) cancel(timedOut bool) {
	req := c.pending
	if req.canceled {
		c.logger.Warn("connection attempt already canceled")
		return
	}
	req.canceled = true
	req.timedOut = timedOut
	c.stopTimer()

	_, err := c.ch.SendCommand(&cmd.LECreateConnectionCancel{}, evt.CommandCompleteCode, func(_ TransactionID, e EventPacket) {
		if err := EventStatus(e); err != nil {
			// Command Disallowed means no connection is pending at the
			// controller, its Connection Complete is already queued.
			c.logger.Debugf("create connection cancel: %v", err)
		}
	})
	if err != nil {
		c.logger.Errorf("can't send create connection cancel: %v", err)
		c.resolve(c.cancelError(req), nil)
	}
}

func (c *LowEnergyConnector) cancelError(req *pendingRequest) error {
	if req.timedOut {
		return ErrTimedOut
	}
	return ErrCanceled
}

func (c *LowEnergyConnector) stopTimer() {
	if c.timeoutTask != nil {
		c.timeoutTask.Cancel()
		c.timeoutTask = nil
	}
}

func (c *LowEnergyConnector) resolve(err error, conn *Connection) {
	if c.pending == nil {
		panic("hci: resolving a connection request that is not pending")
	}
	req := c.pending
	c.pending = nil
	c.stopTimer()
	req.cb(err, conn)
}

func matches(req *pendingRequest, peer lecore.DeviceAddress, role uint8, status uint8) bool {
	switch {
	case req == nil:
		return false
	case req.peer == peer:
		return true
	case req.useWhitelist && role == RoleMaster:
		return true
	case req.useWhitelist && ErrCommand(status) == ErrConnID:
		return true
	}
	return false
}

func (c *LowEnergyConnector) handleConnectionComplete(e EventPacket) {
	lc := evt.LEConnectionComplete(e.Params())
	if err := lc.Validate(); err != nil {
		c.logger.Warnf("dropping malformed connection complete: % X", e)
		return
	}

	status := lc.Status()
	peer := AddressFromHCI(lc.PeerAddressType(), lc.PeerAddress())
	handle := lc.ConnectionHandle() & connectionHandleMask
	role := lc.Role()
	params := ConnectionParameters{
		Interval:           lc.ConnInterval(),
		Latency:            lc.ConnLatency(),
		SupervisionTimeout: lc.SupervisionTimeout(),
	}

	if c.closed {
		c.handleAbandonedComplete(status, handle, role, peer, params)
		return
	}
	if !matches(c.pending, peer, role, status) {
		c.handleRemoteInitiated(status, handle, role, peer, params)
		return
	}

	req := c.pending
	if err := statusError(status); err != nil {
		if ErrCommand(status) == ErrConnID && req.canceled {
			err = c.cancelError(req)
		}
		c.logger.Debugf("connection to %v failed: %v", peer, err)
		c.resolve(err, nil)
		return
	}

	conn := NewConnection(c.ch, handle, role, c.localAddr, peer, params)
	if req.canceled {
		// The link came up before the controller saw the cancel.
		c.logger.Debugf("dropping link %04X established after cancel", handle)
		conn.Close()
		c.resolve(c.cancelError(req), nil)
		return
	}
	c.logger.Debugf("connected to %v, handle %04X, %v", peer, handle, params)
	c.resolve(nil, conn)
}

func (c *LowEnergyConnector) handleAbandonedComplete(status uint8, handle uint16, role uint8, peer lecore.DeviceAddress, params ConnectionParameters) {
	if c.abandoned == nil {
		return
	}
	if ErrCommand(status) != ErrConnID && !matches(c.abandoned, peer, role, status) {
		return
	}
	c.release()
	if statusError(status) != nil {
		return
	}
	c.logger.Debugf("dropping link %04X established after close", handle)
	NewConnection(c.ch, handle, role, c.localAddr, peer, params).Close()
}

func (c *LowEnergyConnector) handleRemoteInitiated(status uint8, handle uint16, role uint8, peer lecore.DeviceAddress, params ConnectionParameters) {
	if err := statusError(status); err != nil {
		c.logger.Warnf("ignoring failed connection from %v: %v", peer, err)
		return
	}
	c.logger.Infof("remote initiated connection from %v, handle %04X", peer, handle)
	if c.delegate == nil {
		_, err := c.ch.SendCommand(&cmd.Disconnect{
			ConnectionHandle: handle,
			Reason:           ReasonRemoteUser,
		}, evt.CommandStatusCode, nil)
		if err != nil {
			c.logger.Errorf("can't reject connection: %v", err)
		}
		return
	}
	c.delegate(handle, role, peer, params)
}
