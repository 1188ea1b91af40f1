// Package h4 carries HCI packets over unframed byte streams, a UART or a TCP
// connection, using the H4 packet indicators [Vol 4, Part A].
package h4

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/rigado/lecore"
)

const (
	rxQueueSize = 64

	// Read returns (0, nil) when nothing arrives for this long.
	readTimeout = time.Second
)

type h4 struct {
	rw     io.ReadWriteCloser
	logger lecore.Logger
	wmu    sync.Mutex

	// a UART read returns io.EOF when the inter-character timer expires
	eofIsIdle bool

	rxQueue chan []byte
	done    chan struct{}
	once    sync.Once
}

func newH4(rw io.ReadWriteCloser, eofIsIdle bool) *h4 {
	h := &h4{
		rw:        rw,
		logger:    lecore.ComponentLogger("h4"),
		eofIsIdle: eofIsIdle,
		rxQueue:   make(chan []byte, rxQueueSize),
		done:      make(chan struct{}),
	}
	go h.rxLoop()
	return h
}

// Read returns one whole packet.
func (h *h4) Read(p []byte) (int, error) {
	select {
	case <-h.done:
		return 0, io.EOF
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, errors.Errorf("buffer too small, need %d bytes", len(t))
		}
		return copy(p, t), nil
	case <-time.After(readTimeout):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}
	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.rw.Write(p)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	var err error
	h.once.Do(func() {
		close(h.done)
		err = errors.Wrap(h.rw.Close(), "can't close h4")
	})
	return err
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *h4) rxLoop() {
	f := newFrame(func(b []byte) {
		select {
		case h.rxQueue <- b:
		case <-h.done:
		}
	})
	tmp := make([]byte, 512)
	for {
		n, err := h.rw.Read(tmp)
		if !h.isOpen() {
			return
		}
		switch {
		case err == io.EOF && h.eofIsIdle:
			continue
		case err == io.EOF:
			h.logger.Warn("h4 stream closed by peer")
			h.Close()
			return
		case err != nil:
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			h.logger.Warnf("h4 read: %v", err)
			continue
		case n == 0:
			continue
		}
		f.Assemble(tmp[:n])
	}
}

type connWithTimeout struct {
	net.Conn
	timeout time.Duration
}

func (c *connWithTimeout) Read(b []byte) (int, error) {
	if err := c.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *connWithTimeout) Write(b []byte) (int, error) {
	if err := c.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}

// NewSocket dials an H4 stream served over TCP at addr. timeout bounds the
// dial and every write.
func NewSocket(addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %v", addr)
	}
	return newH4(&connWithTimeout{Conn: c, timeout: timeout}, false), nil
}
