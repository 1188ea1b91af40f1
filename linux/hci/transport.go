package hci

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci/h4"
	"github.com/rigado/lecore/linux/hci/socket"
)

// Transport moves whole HCI packets between the host and a controller. Every
// packet starts with its H4 packet type indicator.
type Transport interface {
	// WritePacket sends one packet to the controller.
	WritePacket(b []byte) error

	// SetPacketHandler installs the receiver for controller packets. The
	// handler runs on the host dispatcher.
	SetPacketHandler(h func(b []byte))

	// SetCloseHandler installs a handler called once, on the host dispatcher,
	// when the controller side goes away.
	SetCloseHandler(h func(error))

	Close() error
}

// StreamTransport adapts a packet-per-read stream, such as the HCI user
// channel socket or an H4 link, to Transport.
type StreamTransport struct {
	rwc    io.ReadWriteCloser
	scope  *dispatch.Scope
	logger lecore.Logger

	mu           sync.Mutex
	handler      func([]byte)
	closeHandler func(error)

	done      chan struct{}
	closeOnce sync.Once
	wmu       sync.Mutex
}

// NewStreamTransport starts reading rwc. Received packets are posted on d.
func NewStreamTransport(d dispatch.Dispatcher, rwc io.ReadWriteCloser) *StreamTransport {
	t := &StreamTransport{
		rwc:    rwc,
		scope:  dispatch.NewScope(d),
		logger: lecore.ComponentLogger("transport"),
		done:   make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// WritePacket ...
func (t *StreamTransport) WritePacket(b []byte) error {
	if !t.isOpen() {
		return ErrChannelClosed
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	n, err := t.rwc.Write(b)
	if err != nil {
		return errors.Wrap(err, "can't write packet")
	}
	if n != len(b) {
		return errors.Errorf("short write %d of %d bytes", n, len(b))
	}
	return nil
}

// SetPacketHandler ...
func (t *StreamTransport) SetPacketHandler(h func([]byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// SetCloseHandler ...
func (t *StreamTransport) SetCloseHandler(h func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeHandler = h
}

// Close stops the reader and closes the underlying stream.
func (t *StreamTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.scope.Close()
		err = t.rwc.Close()
	})
	return err
}

func (t *StreamTransport) isOpen() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *StreamTransport) readLoop() {
	b := make([]byte, 4096)
	for {
		n, err := t.rwc.Read(b)
		switch {
		case n == 0 && err == nil:
			// read timeout
			if !t.isOpen() {
				return
			}
			continue

		case err != nil:
			if !t.isOpen() {
				return
			}
			if err != io.EOF {
				err = errors.Wrap(err, "can't read packet")
			}
			t.logger.Warnf("transport read stopped: %v", err)
			t.scope.Post(func() {
				t.mu.Lock()
				h := t.closeHandler
				t.mu.Unlock()
				if h != nil {
					h(err)
				}
			})
			return

		default:
			p := make([]byte, n)
			copy(p, b)
			t.scope.Post(func() {
				t.mu.Lock()
				h := t.handler
				t.mu.Unlock()
				if h != nil {
					h(p)
				}
			})
		}
	}
}

// TransportConfig selects one of the production transports.
type TransportConfig struct {
	hci      *transportHci
	h4uart   *transportH4Uart
	h4socket *transportH4Socket
}

type transportHci struct {
	id int
}

type transportH4Socket struct {
	addr    string
	timeout time.Duration
}

type transportH4Uart struct {
	path string
}

// TransportHCISocket selects the HCI user channel of device id, -1 picks the
// first available device.
func TransportHCISocket(id int) TransportConfig {
	return TransportConfig{hci: &transportHci{id}}
}

// TransportH4Socket selects an H4 stream served over TCP.
func TransportH4Socket(addr string, timeout time.Duration) TransportConfig {
	return TransportConfig{h4socket: &transportH4Socket{addr, timeout}}
}

// TransportH4Uart selects an H4 UART.
func TransportH4Uart(path string) TransportConfig {
	return TransportConfig{h4uart: &transportH4Uart{path}}
}

// OpenTransport opens the configured stream and wraps it in a
// StreamTransport posting to d.
func OpenTransport(d dispatch.Dispatcher, t TransportConfig) (*StreamTransport, error) {
	var rwc io.ReadWriteCloser
	var err error
	switch {
	case t.hci != nil:
		rwc, err = socket.NewSocket(t.hci.id)

	case t.h4socket != nil:
		rwc, err = h4.NewSocket(t.h4socket.addr, t.h4socket.timeout)

	case t.h4uart != nil:
		so := h4.DefaultSerialOptions()
		so.PortName = t.h4uart.path
		rwc, err = h4.NewSerial(so)

	default:
		return nil, errors.New("no valid transport found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't open transport")
	}
	return NewStreamTransport(d, rwc), nil
}
