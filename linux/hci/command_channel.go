package hci

import (
	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// TransactionID identifies a command sent through a CommandChannel.
type TransactionID uint64

// EventHandlerID identifies a registered event handler.
type EventHandlerID uint64

// CommandCallback receives the events that complete a command. It is called
// once with the Command Complete or Command Status, and once more with the
// completion event when the command was sent with another completion code.
type CommandCallback func(id TransactionID, e EventPacket)

// EventHandler receives events matching its registration.
type EventHandler func(e EventPacket)

type transaction struct {
	id           TransactionID
	opcode       int
	completeCode uint8
	pkt          []byte
	cb           CommandCallback
	timer        *dispatch.Task

	// link the command targets, if any
	handle    uint16
	hasHandle bool
}

type closeHandler struct {
	id EventHandlerID
	fn func(error)
}

type eventHandler struct {
	id       EventHandlerID
	code     uint8
	subevent bool
	fn       EventHandler
}

// CommandChannel sends HCI commands to a controller and routes the events it
// sends back. All methods must be called on the dispatcher it was created
// with.
type CommandChannel struct {
	transport Transport
	scope     *dispatch.Scope
	logger    lecore.Logger
	opts      *options

	nextTxID      TransactionID
	nextHandlerID EventHandlerID

	// Num_HCI_Command_Packets credits.
	allowed int

	queue   []*transaction
	sent    map[int]*transaction
	waiting map[uint8][]*transaction

	handlers      []*eventHandler
	closeHandlers []*closeHandler

	closed bool
}

// NewCommandChannel takes over t. Options: WithLogger, WithCommandTimeout,
// WithErrorHandler.
func NewCommandChannel(t Transport, d dispatch.Dispatcher, opts ...Option) (*CommandChannel, error) {
	o, err := buildOptions("cmdchan", opts)
	if err != nil {
		return nil, errors.Wrap(err, "can't create command channel")
	}
	ch := &CommandChannel{
		transport: t,
		scope:     dispatch.NewScope(d),
		logger:    o.logger,
		opts:      o,
		allowed:   1,
		sent:      map[int]*transaction{},
		waiting:   map[uint8][]*transaction{},
	}
	t.SetPacketHandler(ch.handlePacket)
	t.SetCloseHandler(func(err error) {
		ch.fail(errors.Wrap(err, "transport closed"))
	})
	return ch, nil
}

// Dispatcher returns the dispatcher events are delivered on.
func (ch *CommandChannel) Dispatcher() dispatch.Dispatcher {
	return ch.scope.Dispatcher()
}

// Closed reports whether the channel stopped dispatching.
func (ch *CommandChannel) Closed() bool { return ch.closed }

// SendCommand queues c for the controller. completeCode is the event that
// concludes the command: evt.CommandCompleteCode, evt.CommandStatusCode, or
// an asynchronous event code such as evt.DisconnectionCompleteCode. A command
// whose opcode is already in flight waits for it to finish.
func (ch *CommandChannel) SendCommand(c cmd.Command, completeCode uint8, cb CommandCallback) (TransactionID, error) {
	if ch.closed {
		return 0, ErrChannelClosed
	}
	if completeCode == evt.LEMetaEventCode {
		return 0, errors.Wrap(ErrInvalidParams, "LE meta completions need a subevent handler")
	}

	b, err := cmd.Packet(c)
	if err != nil {
		return 0, err
	}

	ch.nextTxID++
	tx := &transaction{
		id:           ch.nextTxID,
		opcode:       c.OpCode(),
		completeCode: completeCode,
		pkt:          append([]byte{PktTypeCommand}, b...),
		cb:           cb,
	}
	tx.handle, tx.hasHandle = commandHandle(c)
	ch.queue = append(ch.queue, tx)
	ch.logger.Debugf("queued %v tx %d", c, tx.id)
	ch.trySend()
	return tx.id, nil
}

// AddEventHandler registers fn for every event with the given code that does
// not complete a pending command.
func (ch *CommandChannel) AddEventHandler(code uint8, fn EventHandler) EventHandlerID {
	return ch.addHandler(code, false, fn)
}

// AddLEMetaEventHandler registers fn for LE Meta events with the given
// subevent code.
func (ch *CommandChannel) AddLEMetaEventHandler(subevent uint8, fn EventHandler) EventHandlerID {
	return ch.addHandler(subevent, true, fn)
}

func (ch *CommandChannel) addHandler(code uint8, subevent bool, fn EventHandler) EventHandlerID {
	ch.nextHandlerID++
	ch.handlers = append(ch.handlers, &eventHandler{
		id:       ch.nextHandlerID,
		code:     code,
		subevent: subevent,
		fn:       fn,
	})
	return ch.nextHandlerID
}

// AddCloseHandler registers fn to learn that the channel stopped, whether
// through Close, a transport failure or a command timeout. fn is posted on the
// dispatcher with an error whose cause is ErrChannelClosed. It is never called
// if the channel is already closed.
func (ch *CommandChannel) AddCloseHandler(fn func(error)) EventHandlerID {
	if ch.closed {
		return 0
	}
	ch.nextHandlerID++
	ch.closeHandlers = append(ch.closeHandlers, &closeHandler{id: ch.nextHandlerID, fn: fn})
	return ch.nextHandlerID
}

// RemoveEventHandler removes an event or close handler.
func (ch *CommandChannel) RemoveEventHandler(id EventHandlerID) {
	for i, h := range ch.handlers {
		if h.id == id {
			ch.handlers = append(ch.handlers[:i:i], ch.handlers[i+1:]...)
			return
		}
	}
	for i, h := range ch.closeHandlers {
		if h.id == id {
			ch.closeHandlers = append(ch.closeHandlers[:i:i], ch.closeHandlers[i+1:]...)
			return
		}
	}
}

// Close stops dispatching and closes the transport. Pending commands are
// dropped; their owners hear about it through their close handlers.
func (ch *CommandChannel) Close() error {
	if ch.closed {
		return nil
	}
	ch.shutdown(ErrChannelClosed)
	return ch.transport.Close()
}

func (ch *CommandChannel) shutdown(reason error) {
	ch.closed = true
	ch.scope.Close()
	ch.queue = nil
	ch.sent = map[int]*transaction{}
	ch.waiting = map[uint8][]*transaction{}
	ch.handlers = nil
	ch.transport.SetPacketHandler(nil)
	ch.transport.SetCloseHandler(nil)

	if len(ch.closeHandlers) == 0 {
		return
	}
	// handlers removed before this runs are skipped
	ch.scope.Dispatcher().Post(func() {
		for len(ch.closeHandlers) > 0 {
			h := ch.closeHandlers[0]
			ch.closeHandlers = ch.closeHandlers[1:]
			h.fn(reason)
		}
	})
}

func (ch *CommandChannel) fail(err error) {
	if ch.closed {
		return
	}
	ch.logger.Errorf("command channel failed: %v", err)
	ch.shutdown(errors.Wrap(ErrChannelClosed, err.Error()))
	if h := ch.opts.errorHandler; h != nil {
		h(err)
	}
}

func (ch *CommandChannel) trySend() {
	for i := 0; i < len(ch.queue) && ch.allowed > 0; {
		tx := ch.queue[i]
		if _, busy := ch.sent[tx.opcode]; busy {
			i++
			continue
		}
		ch.queue = append(ch.queue[:i:i], ch.queue[i+1:]...)

		if err := ch.transport.WritePacket(tx.pkt); err != nil {
			ch.fail(errors.Wrapf(err, "can't send command 0x%04X", tx.opcode))
			return
		}
		ch.allowed--
		ch.sent[tx.opcode] = tx
		opcode := tx.opcode
		tx.timer = ch.scope.PostDelayed(ch.opts.cmdTimeout, func() {
			ch.fail(errors.Wrapf(ErrCommandTimeout, "opcode 0x%04X", opcode))
		})
	}
}

func (ch *CommandChannel) setAllowedCommands(n int) {
	if n > maxPendingCommands {
		ch.logger.Warnf("Num_HCI_Command_Packets %d capped to %d", n, maxPendingCommands)
		n = maxPendingCommands
	}
	ch.allowed = n
}

func (ch *CommandChannel) handlePacket(b []byte) {
	if ch.closed {
		return
	}
	if len(b) == 0 {
		ch.logger.Warn("dropping empty packet")
		return
	}

	// Strip the 1-byte HCI header and pass down the rest of the packet.
	t, b := b[0], b[1:]
	switch t {
	case PktTypeEvent:
		e, err := parseEventPacket(b)
		if err != nil {
			ch.logger.Warnf("dropping malformed event: %v", err)
			return
		}
		ch.handleEvent(e)

	case PktTypeACLData:
		ch.logger.Debugf("dropping ACL packet: % X", b)

	case PktTypeCommand:
		ch.logger.Warnf("unmanaged cmd: % X", b)
	case PktTypeSCOData:
		ch.logger.Warnf("unsupported sco packet: % X", b)
	case PktTypeVendor:
		ch.logger.Warnf("unsupported vendor packet: % X", b)
	default:
		ch.logger.Warnf("invalid packet: 0x%02X % X", t, b)
	}
}

func (ch *CommandChannel) handleEvent(e EventPacket) {
	switch e.Code() {
	case evt.CommandCompleteCode:
		ch.handleCommandComplete(e)
	case evt.CommandStatusCode:
		ch.handleCommandStatus(e)
	default:
		if tx := ch.takeWaiting(e); tx != nil && tx.cb != nil {
			tx.cb(tx.id, e)
			if ch.closed {
				return
			}
		}
		ch.notifyHandlers(e)
	}
}

// takeWaiting detaches the oldest transaction completed by e. When both the
// command and the event name a connection handle, they must match.
func (ch *CommandChannel) takeWaiting(e EventPacket) *transaction {
	q := ch.waiting[e.Code()]
	h, ok := eventHandle(e)
	for i, tx := range q {
		if ok && tx.hasHandle && tx.handle != h {
			continue
		}
		q = append(q[:i:i], q[i+1:]...)
		if len(q) == 0 {
			delete(ch.waiting, e.Code())
		} else {
			ch.waiting[e.Code()] = q
		}
		return tx
	}
	return nil
}

func commandHandle(c cmd.Command) (uint16, bool) {
	switch c := c.(type) {
	case *cmd.Disconnect:
		return c.ConnectionHandle & connectionHandleMask, true
	case *cmd.LEConnectionUpdate:
		return c.ConnectionHandle & connectionHandleMask, true
	}
	return 0, false
}

func eventHandle(e EventPacket) (uint16, bool) {
	switch e.Code() {
	case evt.DisconnectionCompleteCode:
		h, err := evt.DisconnectionComplete(e.Params()).ConnectionHandleWErr()
		if err != nil {
			return 0, false
		}
		return h & connectionHandleMask, true
	}
	return 0, false
}

func (ch *CommandChannel) handleCommandComplete(e EventPacket) {
	cc := evt.CommandComplete(e.Params())
	n, err := cc.NumHCICommandPacketsWErr()
	if err != nil {
		ch.logger.Warnf("dropping malformed command complete: % X", e)
		return
	}
	op, err := cc.CommandOpcodeWErr()
	if err != nil {
		ch.logger.Warnf("dropping malformed command complete: % X", e)
		return
	}
	ch.setAllowedCommands(int(n))

	// NOP command, used for flow control purpose [Vol 2, Part E, 4.4]
	if op == 0x0000 {
		ch.trySend()
		return
	}

	tx := ch.complete(int(op))
	if tx == nil {
		ch.logger.Warnf("can't find the cmd for CommandCompleteEP: % X", e)
		ch.trySend()
		return
	}
	ch.trySend()
	if tx.cb != nil {
		tx.cb(tx.id, e)
	}
}

func (ch *CommandChannel) handleCommandStatus(e EventPacket) {
	cs := evt.CommandStatus(e.Params())
	status, err := cs.StatusWErr()
	if err != nil {
		ch.logger.Warnf("dropping malformed command status: % X", e)
		return
	}
	n, _ := cs.NumHCICommandPacketsWErr()
	op, err := cs.CommandOpcodeWErr()
	if err != nil {
		ch.logger.Warnf("dropping malformed command status: % X", e)
		return
	}
	ch.setAllowedCommands(int(n))

	if op == 0x0000 {
		ch.trySend()
		return
	}

	tx := ch.complete(int(op))
	if tx == nil {
		ch.logger.Warnf("can't find the cmd for CommandStatusEP: % X", e)
		ch.trySend()
		return
	}
	if tx.completeCode != evt.CommandStatusCode && tx.completeCode != evt.CommandCompleteCode && status == 0 {
		ch.waiting[tx.completeCode] = append(ch.waiting[tx.completeCode], tx)
	}
	ch.trySend()
	if tx.cb != nil {
		tx.cb(tx.id, e)
	}
}

// complete detaches the in-flight transaction for op.
func (ch *CommandChannel) complete(op int) *transaction {
	tx, ok := ch.sent[op]
	if !ok {
		return nil
	}
	delete(ch.sent, op)
	tx.timer.Cancel()
	return tx
}

func (ch *CommandChannel) notifyHandlers(e EventPacket) {
	meta := e.Code() == evt.LEMetaEventCode
	var fns []EventHandler
	for _, h := range ch.handlers {
		switch {
		case meta && h.subevent && h.code == e.Subevent():
		case !meta && !h.subevent && h.code == e.Code():
		default:
			continue
		}
		fns = append(fns, h.fn)
	}
	if len(fns) == 0 {
		ch.logger.Debugf("unhandled event: % X", e)
		return
	}
	for _, fn := range fns {
		fn(e)
		if ch.closed {
			return
		}
	}
}
