package hci_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// scriptTransport records host packets and lets the test inject events.
type scriptTransport struct {
	written      [][]byte
	handler      func([]byte)
	closeHandler func(error)
	closed       bool
	writeErr     error
}

func (s *scriptTransport) WritePacket(b []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.written = append(s.written, append([]byte(nil), b...))
	return nil
}

func (s *scriptTransport) SetPacketHandler(h func([]byte)) { s.handler = h }
func (s *scriptTransport) SetCloseHandler(h func(error))   { s.closeHandler = h }
func (s *scriptTransport) Close() error {
	s.closed = true
	return nil
}

func (s *scriptTransport) event(code uint8, params []byte) {
	s.handler(append([]byte{hci.PktTypeEvent}, evt.Packet(code, params)...))
}

func (s *scriptTransport) commandComplete(numPkts uint8, opcode int, rp ...byte) {
	s.event(evt.CommandCompleteCode, evt.EncodeCommandComplete(numPkts, uint16(opcode), rp))
}

func (s *scriptTransport) commandStatus(status uint8, opcode int) {
	s.event(evt.CommandStatusCode, evt.EncodeCommandStatus(status, 1, uint16(opcode)))
}

// opcodes returns the opcodes of the written commands.
func (s *scriptTransport) opcodes() []int {
	var ops []int
	for _, b := range s.written {
		ops = append(ops, int(b[1])|int(b[2])<<8)
	}
	return ops
}

type chanEnv struct {
	loop *dispatch.TestLoop
	tr   *scriptTransport
	ch   *hci.CommandChannel
	errs []error
}

func newChanEnv(t *testing.T, opts ...hci.Option) *chanEnv {
	env := &chanEnv{loop: dispatch.NewTestLoop(), tr: &scriptTransport{}}
	opts = append(opts, hci.WithErrorHandler(func(err error) { env.errs = append(env.errs, err) }))
	ch, err := hci.NewCommandChannel(env.tr, env.loop, opts...)
	require.NoError(t, err)
	env.ch = ch
	return env
}

type eventLog struct {
	events []hci.EventPacket
}

func (l *eventLog) callback(_ hci.TransactionID, e hci.EventPacket) {
	l.events = append(l.events, e)
}

func (l *eventLog) handler(e hci.EventPacket) {
	l.events = append(l.events, e)
}

func TestCommandChannelSend(t *testing.T) {
	env := newChanEnv(t)
	var l eventLog

	id, err := env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, l.callback)
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.Len(t, env.tr.written, 1)
	assert.Equal(t, []byte{hci.PktTypeCommand, 0x03, 0x0C, 0x00}, env.tr.written[0])

	env.tr.commandComplete(1, cmd.ResetOpCode, 0x00)
	require.Len(t, l.events, 1)
	assert.Equal(t, uint8(evt.CommandCompleteCode), l.events[0].Code())
	assert.NoError(t, hci.EventStatus(l.events[0]))

	env.loop.RunFor(time.Minute)
	assert.Empty(t, env.errs)
}

func TestCommandChannelCredits(t *testing.T) {
	env := newChanEnv(t)

	_, err := env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, nil)
	require.NoError(t, err)
	_, err = env.ch.SendCommand(&cmd.ReadBDADDR{}, evt.CommandCompleteCode, nil)
	require.NoError(t, err)
	_, err = env.ch.SendCommand(&cmd.ReadBufferSize{}, evt.CommandCompleteCode, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{cmd.ResetOpCode}, env.tr.opcodes(), "one credit at start")

	env.tr.commandComplete(2, cmd.ResetOpCode, 0x00)
	assert.Equal(t, []int{cmd.ResetOpCode, cmd.ReadBDADDROpCode, cmd.ReadBufferSizeOpCode}, env.tr.opcodes())

	// A NOP only updates credits.
	_, err = env.ch.SendCommand(&cmd.LEReadBufferSize{}, evt.CommandCompleteCode, nil)
	require.NoError(t, err)
	assert.Len(t, env.tr.written, 3)
	env.tr.commandComplete(1, 0x0000)
	assert.Len(t, env.tr.written, 4)
}

func TestCommandChannelSameOpcodeWaits(t *testing.T) {
	env := newChanEnv(t)
	env.tr.commandComplete(4, 0x0000)

	var first, second eventLog
	_, err := env.ch.SendCommand(&cmd.ReadBDADDR{}, evt.CommandCompleteCode, first.callback)
	require.NoError(t, err)
	_, err = env.ch.SendCommand(&cmd.ReadBDADDR{}, evt.CommandCompleteCode, second.callback)
	require.NoError(t, err)
	_, err = env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{cmd.ReadBDADDROpCode, cmd.ResetOpCode}, env.tr.opcodes())

	env.tr.commandComplete(4, cmd.ReadBDADDROpCode, 0x00, 1, 2, 3, 4, 5, 6)
	assert.Len(t, first.events, 1)
	assert.Empty(t, second.events)
	assert.Equal(t, []int{cmd.ReadBDADDROpCode, cmd.ResetOpCode, cmd.ReadBDADDROpCode}, env.tr.opcodes())

	env.tr.commandComplete(4, cmd.ReadBDADDROpCode, 0x00, 1, 2, 3, 4, 5, 6)
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestCommandChannelAsyncCompletion(t *testing.T) {
	env := newChanEnv(t)
	var l, other eventLog
	env.ch.AddEventHandler(evt.DisconnectionCompleteCode, other.handler)

	_, err := env.ch.SendCommand(&cmd.Disconnect{ConnectionHandle: 1, Reason: hci.ReasonRemoteUser},
		evt.DisconnectionCompleteCode, l.callback)
	require.NoError(t, err)
	env.tr.commandStatus(0x00, cmd.DisconnectOpCode)
	require.Len(t, l.events, 1)
	assert.Equal(t, uint8(evt.CommandStatusCode), l.events[0].Code())

	dc := evt.EncodeDisconnectionComplete(0x00, 1, hci.ReasonLocalHost)
	env.tr.event(evt.DisconnectionCompleteCode, dc)
	require.Len(t, l.events, 2)
	assert.Equal(t, uint8(evt.DisconnectionCompleteCode), l.events[1].Code())
	assert.Len(t, other.events, 1, "handlers still see the completion")

	env.tr.event(evt.DisconnectionCompleteCode, dc)
	assert.Len(t, l.events, 2)
	assert.Len(t, other.events, 2)
}

func TestCommandChannelAsyncCompletionMatchesHandle(t *testing.T) {
	env := newChanEnv(t)
	env.tr.commandComplete(4, 0x0000)
	var first, second, other eventLog
	env.ch.AddEventHandler(evt.DisconnectionCompleteCode, other.handler)

	_, err := env.ch.SendCommand(&cmd.Disconnect{ConnectionHandle: 1, Reason: hci.ReasonRemoteUser},
		evt.DisconnectionCompleteCode, first.callback)
	require.NoError(t, err)
	env.tr.commandStatus(0x00, cmd.DisconnectOpCode)
	_, err = env.ch.SendCommand(&cmd.Disconnect{ConnectionHandle: 2, Reason: hci.ReasonRemoteUser},
		evt.DisconnectionCompleteCode, second.callback)
	require.NoError(t, err)
	env.tr.commandStatus(0x00, cmd.DisconnectOpCode)
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)

	env.tr.event(evt.DisconnectionCompleteCode, evt.EncodeDisconnectionComplete(0x00, 2, hci.ReasonLocalHost))
	assert.Len(t, first.events, 1, "handle 2 does not complete the disconnect of handle 1")
	assert.Len(t, second.events, 2)

	env.tr.event(evt.DisconnectionCompleteCode, evt.EncodeDisconnectionComplete(0x00, 1, hci.ReasonLocalHost))
	assert.Len(t, first.events, 2)
	assert.Len(t, second.events, 2)
	assert.Len(t, other.events, 2)
}

func TestCommandChannelFailedStatusEndsTransaction(t *testing.T) {
	env := newChanEnv(t)
	var l, other eventLog
	env.ch.AddEventHandler(evt.DisconnectionCompleteCode, other.handler)

	_, err := env.ch.SendCommand(&cmd.Disconnect{ConnectionHandle: 1, Reason: hci.ReasonRemoteUser},
		evt.DisconnectionCompleteCode, l.callback)
	require.NoError(t, err)
	env.tr.commandStatus(uint8(hci.ErrConnID), cmd.DisconnectOpCode)
	require.Len(t, l.events, 1)
	assert.Equal(t, hci.ErrConnID, errors.Cause(hci.EventStatus(l.events[0])))

	env.tr.event(evt.DisconnectionCompleteCode, evt.EncodeDisconnectionComplete(0x00, 1, hci.ReasonLocalHost))
	assert.Len(t, l.events, 1)
	assert.Len(t, other.events, 1)
}

func TestCommandChannelLEMetaHandlers(t *testing.T) {
	env := newChanEnv(t)
	var reports, conns eventLog
	id := env.ch.AddLEMetaEventHandler(evt.LEAdvertisingReportSubCode, reports.handler)
	env.ch.AddLEMetaEventHandler(evt.LEConnectionCompleteSubCode, conns.handler)

	env.tr.event(evt.LEMetaEventCode, evt.EncodeAdvertisingReport(evt.AdvertisingReportFields{
		EventType: evt.AdvNonconnInd,
		Address:   [6]byte{1, 2, 3, 4, 5, 6},
		RSSI:      -40,
	}))
	assert.Len(t, reports.events, 1)
	assert.Empty(t, conns.events)

	env.ch.RemoveEventHandler(id)
	env.tr.event(evt.LEMetaEventCode, evt.EncodeAdvertisingReport(evt.AdvertisingReportFields{}))
	assert.Len(t, reports.events, 1)

	_, err := env.ch.SendCommand(&cmd.LECreateConnection{}, evt.LEMetaEventCode, nil)
	assert.Equal(t, hci.ErrInvalidParams, errors.Cause(err))
}

func TestCommandChannelDropsMalformedPackets(t *testing.T) {
	env := newChanEnv(t)
	var l eventLog
	_, err := env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, l.callback)
	require.NoError(t, err)

	env.tr.handler(nil)
	env.tr.handler([]byte{hci.PktTypeEvent, evt.CommandCompleteCode})
	env.tr.handler([]byte{hci.PktTypeEvent, evt.CommandCompleteCode, 0x05, 0x01})
	env.tr.handler([]byte{hci.PktTypeEvent, evt.CommandCompleteCode, 0x01, 0x01})
	env.tr.handler([]byte{hci.PktTypeACLData, 0x01, 0x00, 0x00, 0x00})
	env.tr.handler([]byte{0x7F})
	assert.Empty(t, l.events)
	assert.False(t, env.ch.Closed())

	env.tr.commandComplete(1, cmd.ResetOpCode, 0x00)
	assert.Len(t, l.events, 1)
}

func TestCommandChannelTimeout(t *testing.T) {
	env := newChanEnv(t, hci.WithCommandTimeout(time.Second))
	var l eventLog
	_, err := env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, l.callback)
	require.NoError(t, err)

	env.loop.RunFor(time.Second - time.Millisecond)
	assert.Empty(t, env.errs)
	env.loop.RunFor(time.Millisecond)
	require.Len(t, env.errs, 1)
	assert.Equal(t, hci.ErrCommandTimeout, errors.Cause(env.errs[0]))
	assert.True(t, env.ch.Closed())

	_, err = env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, l.callback)
	assert.Equal(t, hci.ErrChannelClosed, err)
	assert.Empty(t, l.events)
}

func TestCommandChannelTransportClosed(t *testing.T) {
	env := newChanEnv(t)
	cause := errors.New("unplugged")
	env.tr.closeHandler(cause)
	require.Len(t, env.errs, 1)
	assert.Equal(t, cause, errors.Cause(env.errs[0]))
	assert.True(t, env.ch.Closed())
	assert.Nil(t, env.tr.handler)
}

func TestCommandChannelWriteFailure(t *testing.T) {
	env := newChanEnv(t)
	env.tr.writeErr = errors.New("broken pipe")
	_, err := env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, nil)
	require.NoError(t, err)
	require.Len(t, env.errs, 1)
	assert.True(t, env.ch.Closed())
}

func TestCommandChannelClose(t *testing.T) {
	env := newChanEnv(t)
	var l eventLog
	_, err := env.ch.SendCommand(&cmd.Reset{}, evt.CommandCompleteCode, l.callback)
	require.NoError(t, err)
	handler := env.tr.handler

	require.NoError(t, env.ch.Close())
	assert.True(t, env.tr.closed)
	require.NoError(t, env.ch.Close())

	handler(append([]byte{hci.PktTypeEvent}, evt.Packet(evt.CommandCompleteCode,
		evt.EncodeCommandComplete(1, cmd.ResetOpCode, []byte{0}))...))
	env.loop.RunFor(time.Minute)
	assert.Empty(t, l.events)
	assert.Empty(t, env.errs, "closing is not a failure")
}

func TestSequentialCommandRunner(t *testing.T) {
	env := newChanEnv(t)
	r := hci.NewSequentialCommandRunner(env.ch)
	assert.Error(t, r.RunCommands(func(error) {}), "nothing queued")

	var got []string
	r.QueueCommand(&cmd.Reset{}, func(hci.EventPacket) { got = append(got, "reset") })
	r.QueueCommand(&cmd.ReadBDADDR{}, func(hci.EventPacket) { got = append(got, "bdaddr") })
	var results []error
	require.NoError(t, r.RunCommands(func(err error) { results = append(results, err) }))
	assert.False(t, r.IsReady())
	assert.Error(t, r.RunCommands(func(error) {}))

	env.tr.commandComplete(4, cmd.ResetOpCode, 0x00)
	assert.Equal(t, []int{cmd.ResetOpCode, cmd.ReadBDADDROpCode}, env.tr.opcodes(), "sent one after the other")
	env.tr.commandComplete(4, cmd.ReadBDADDROpCode, 0x00, 1, 2, 3, 4, 5, 6)
	assert.Equal(t, []string{"reset", "bdaddr"}, got)
	assert.Equal(t, []error{nil}, results)
	assert.True(t, r.IsReady())
}

func TestSequentialCommandRunnerFailure(t *testing.T) {
	env := newChanEnv(t)
	r := hci.NewSequentialCommandRunner(env.ch)

	called := false
	r.QueueCommand(&cmd.Reset{}, nil)
	r.QueueCommand(&cmd.ReadBDADDR{}, func(hci.EventPacket) { called = true })
	var results []error
	require.NoError(t, r.RunCommands(func(err error) { results = append(results, err) }))

	env.tr.commandComplete(4, cmd.ResetOpCode, uint8(hci.ErrHardware))
	require.Len(t, results, 1)
	assert.Equal(t, hci.ErrHardware, errors.Cause(results[0]))
	assert.Equal(t, []int{cmd.ResetOpCode}, env.tr.opcodes())
	assert.False(t, called)
	assert.False(t, r.HasQueuedCommands())
}

func TestSequentialCommandRunnerCancel(t *testing.T) {
	env := newChanEnv(t)
	r := hci.NewSequentialCommandRunner(env.ch)

	r.QueueCommand(&cmd.Reset{}, nil)
	r.QueueCommand(&cmd.ReadBDADDR{}, nil)
	var results []error
	require.NoError(t, r.RunCommands(func(err error) { results = append(results, err) }))
	r.Cancel()
	require.Len(t, results, 1)
	assert.Equal(t, hci.ErrCanceled, results[0])

	// The late completion is ignored.
	env.tr.commandComplete(4, cmd.ResetOpCode, 0x00)
	assert.Len(t, results, 1)
	assert.Equal(t, []int{cmd.ResetOpCode}, env.tr.opcodes())
	assert.True(t, r.IsReady())
}

func TestCommandChannelCloseHandlers(t *testing.T) {
	env := newChanEnv(t)
	var got []error
	env.ch.AddCloseHandler(func(err error) { got = append(got, err) })
	removed := env.ch.AddCloseHandler(func(error) { t.Fatal("removed handler called") })
	env.ch.RemoveEventHandler(removed)

	env.tr.closeHandler(errors.New("unplugged"))
	assert.Empty(t, got, "close handlers are posted")
	env.loop.RunUntilIdle()
	require.Len(t, got, 1)
	assert.Equal(t, hci.ErrChannelClosed, errors.Cause(got[0]))

	assert.Zero(t, env.ch.AddCloseHandler(func(error) { t.Fatal("handler added after close called") }))
	env.loop.RunFor(time.Minute)
	assert.Len(t, got, 1)
}

func TestCommandChannelCloseNotifiesHandlers(t *testing.T) {
	env := newChanEnv(t)
	var got []error
	env.ch.AddCloseHandler(func(err error) { got = append(got, err) })
	require.NoError(t, env.ch.Close())
	env.loop.RunUntilIdle()
	assert.Equal(t, []error{hci.ErrChannelClosed}, got)
	assert.Empty(t, env.errs)
}

func TestSequentialCommandRunnerChannelFailure(t *testing.T) {
	env := newChanEnv(t)
	r := hci.NewSequentialCommandRunner(env.ch)

	r.QueueCommand(&cmd.Reset{}, nil)
	r.QueueCommand(&cmd.ReadBDADDR{}, nil)
	var results []error
	require.NoError(t, r.RunCommands(func(err error) { results = append(results, err) }))

	env.tr.closeHandler(errors.New("unplugged"))
	env.loop.RunUntilIdle()
	require.Len(t, results, 1)
	assert.Equal(t, hci.ErrChannelClosed, errors.Cause(results[0]))
	assert.True(t, r.IsReady())
	assert.False(t, r.HasQueuedCommands())
}

func TestSequentialCommandRunnerCommandTimeout(t *testing.T) {
	env := newChanEnv(t, hci.WithCommandTimeout(time.Second))
	r := hci.NewSequentialCommandRunner(env.ch)

	r.QueueCommand(&cmd.Reset{}, nil)
	var results []error
	require.NoError(t, r.RunCommands(func(err error) { results = append(results, err) }))

	env.loop.RunFor(time.Second)
	require.Len(t, env.errs, 1)
	require.Len(t, results, 1)
	assert.Equal(t, hci.ErrChannelClosed, errors.Cause(results[0]))
}
