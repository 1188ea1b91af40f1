package hci

import (
	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// Connection is an established LE link.
type Connection struct {
	ch     *CommandChannel
	logger lecore.Logger

	handle uint16
	role   uint8
	local  lecore.DeviceAddress
	peer   lecore.DeviceAddress
	params ConnectionParameters

	closed            bool
	disconnectHandler func(reason error)
	updateCb          func(error)

	disconnID EventHandlerID
	updateID  EventHandlerID
	closeID   EventHandlerID
}

// NewConnection tracks the link identified by handle. It watches for the
// Disconnection Complete and LE Connection Update Complete of that handle.
func NewConnection(ch *CommandChannel, handle uint16, role uint8, local, peer lecore.DeviceAddress, params ConnectionParameters) *Connection {
	c := &Connection{
		ch:     ch,
		handle: handle & connectionHandleMask,
		role:   role,
		local:  local,
		peer:   peer,
		params: params,
	}
	c.logger = lecore.ComponentLogger("conn").ChildLogger(map[string]interface{}{
		"handle": c.handle,
		"peer":   peer.String(),
	})
	c.disconnID = ch.AddEventHandler(evt.DisconnectionCompleteCode, c.handleDisconnectionComplete)
	c.updateID = ch.AddLEMetaEventHandler(evt.LEConnectionUpdateCompleteSubCode, c.handleConnectionUpdateComplete)
	c.closeID = ch.AddCloseHandler(c.handleChannelClosed)
	return c
}

// Handle ...
func (c *Connection) Handle() uint16 { return c.handle }

// Role is RoleMaster for links this host initiated.
func (c *Connection) Role() uint8 { return c.role }

// LocalAddress ...
func (c *Connection) LocalAddress() lecore.DeviceAddress { return c.local }

// PeerAddress ...
func (c *Connection) PeerAddress() lecore.DeviceAddress { return c.peer }

// Parameters returns the current connection parameters.
func (c *Connection) Parameters() ConnectionParameters { return c.params }

// Closed reports whether the link is gone.
func (c *Connection) Closed() bool { return c.closed }

// SetDisconnectHandler installs h, called once when the link goes down with
// the reason reported by the controller, or with an ErrChannelClosed error
// when the command channel stops.
func (c *Connection) SetDisconnectHandler(h func(reason error)) {
	c.disconnectHandler = h
}

// Disconnect asks the controller to terminate the link. The link is closed
// once the Disconnection Complete arrives.
func (c *Connection) Disconnect(reason uint8) error {
	if c.closed {
		return errors.Wrap(ErrNotReady, "connection closed")
	}
	_, err := c.ch.SendCommand(&cmd.Disconnect{
		ConnectionHandle: c.handle,
		Reason:           reason,
	}, evt.CommandStatusCode, func(_ TransactionID, e EventPacket) {
		if err := EventStatus(e); err != nil {
			c.logger.Warnf("disconnect rejected: %v", err)
		}
	})
	return err
}

// UpdateParameters starts an LE Connection Update. It returns false without
// sending anything if p is invalid, the link is closed or an update is
// already running. cb receives the outcome.
func (c *Connection) UpdateParameters(p PreferredConnectionParameters, cb func(error)) bool {
	if c.closed || c.updateCb != nil {
		return false
	}
	if p.MinInterval > p.MaxInterval {
		c.logger.Warnf("rejecting update, min interval %d > max %d", p.MinInterval, p.MaxInterval)
		return false
	}
	c.updateCb = cb
	_, err := c.ch.SendCommand(&cmd.LEConnectionUpdate{
		ConnectionHandle:   c.handle,
		ConnIntervalMin:    p.MinInterval,
		ConnIntervalMax:    p.MaxInterval,
		ConnLatency:        p.MaxLatency,
		SupervisionTimeout: p.SupervisionTimeout,
	}, evt.CommandStatusCode, func(_ TransactionID, e EventPacket) {
		if err := EventStatus(e); err != nil {
			c.resolveUpdate(err)
		}
	})
	if err != nil {
		c.updateCb = nil
		c.logger.Errorf("can't send connection update: %v", err)
		return false
	}
	return true
}

// Close stops tracking the link, disconnecting it first if it is still up. The
// disconnect handler is not called.
func (c *Connection) Close() {
	if !c.closed {
		if err := c.Disconnect(ReasonRemoteUser); err != nil {
			c.logger.Warnf("can't disconnect on close: %v", err)
		}
	}
	c.release()
	c.closed = true
}

func (c *Connection) release() {
	c.ch.RemoveEventHandler(c.disconnID)
	c.ch.RemoveEventHandler(c.updateID)
	c.ch.RemoveEventHandler(c.closeID)
	c.disconnectHandler = nil
	c.updateCb = nil
}

func (c *Connection) resolveUpdate(err error) {
	cb := c.updateCb
	c.updateCb = nil
	if cb != nil {
		cb(err)
	}
}

func (c *Connection) handleDisconnectionComplete(e EventPacket) {
	dc := evt.DisconnectionComplete(e.Params())
	h, err := dc.ConnectionHandleWErr()
	if err != nil || h&connectionHandleMask != c.handle || c.closed {
		return
	}
	if dc.Status() != 0 {
		c.logger.Warnf("disconnection failed: %v", ErrCommand(dc.Status()))
		return
	}
	reason := ErrCommand(dc.Reason())
	c.logger.Debugf("disconnected: %v", reason)

	c.closed = true
	handler := c.disconnectHandler
	if c.updateCb != nil {
		c.resolveUpdate(errors.Wrap(reason, "link closed"))
	}
	c.release()
	if handler != nil {
		handler(reason)
	}
}

func (c *Connection) handleChannelClosed(err error) {
	if c.closed {
		return
	}
	c.logger.Warnf("link lost: %v", err)
	c.closed = true
	handler := c.disconnectHandler
	c.resolveUpdate(err)
	c.release()
	if handler != nil {
		handler(err)
	}
}

func (c *Connection) handleConnectionUpdateComplete(e EventPacket) {
	uc := evt.LEConnectionUpdateComplete(e.Params())
	if err := uc.Validate(); err != nil {
		c.logger.Warnf("dropping malformed connection update complete: % X", e)
		return
	}
	if uc.ConnectionHandle()&connectionHandleMask != c.handle {
		return
	}
	if err := statusError(uc.Status()); err != nil {
		c.resolveUpdate(err)
		return
	}
	c.params = ConnectionParameters{
		Interval:           uc.ConnInterval(),
		Latency:            uc.ConnLatency(),
		SupervisionTimeout: uc.SupervisionTimeout(),
	}
	c.logger.Debugf("parameters updated: %v", c.params)
	c.resolveUpdate(nil)
}
