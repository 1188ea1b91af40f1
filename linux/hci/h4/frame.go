package h4

import (
	"time"

	"github.com/pkg/errors"
)

// H4 packet indicators the assembler frames.
const (
	pktTypeACL   = 0x02
	pktTypeEvent = 0x04
)

const (
	eventHeaderLength = 3 // indicator, code, length
	aclHeaderLength   = 5 // indicator, handle (2), length (2)

	// partial frames older than this are dropped
	frameTimeout = 500 * time.Millisecond
)

var errShortFrame = errors.New("not enough bytes")

// frame reassembles H4 packets from an unframed byte stream.
type frame struct {
	b        []byte
	deadline time.Time
	out      func([]byte)
	now      func() time.Time
}

func newFrame(out func([]byte)) *frame {
	return &frame{
		b:   make([]byte, 0, 256),
		out: out,
		now: time.Now,
	}
}

// Assemble consumes b and emits every packet it completes.
func (f *frame) Assemble(b []byte) {
	if len(b) == 0 {
		return
	}
	if len(f.b) > 0 && f.now().After(f.deadline) {
		f.reset()
	}

	if len(f.b) == 0 {
		b = f.waitStart(b)
		if b == nil {
			return
		}
		f.deadline = f.now().Add(frameTimeout)
	}
	f.b = append(f.b, b...)

	for {
		n, err := f.length()
		if err != nil || len(f.b) < n {
			return
		}
		out := make([]byte, n)
		copy(out, f.b[:n])
		f.out(out)

		rem := f.b[n:]
		f.reset()
		if rem = f.waitStart(rem); rem == nil {
			return
		}
		f.b = append(f.b, rem...)
		f.deadline = f.now().Add(frameTimeout)
	}
}

func (f *frame) reset() {
	f.b = f.b[:0:0]
	f.deadline = time.Time{}
}

// waitStart skips to the first packet indicator in b. It returns nil when
// there is none.
func (f *frame) waitStart(b []byte) []byte {
	for i, v := range b {
		if v == pktTypeEvent || v == pktTypeACL {
			return b[i:]
		}
	}
	return nil
}

// length returns the size of the packet at the head of the buffer.
func (f *frame) length() (int, error) {
	switch f.b[0] {
	case pktTypeEvent:
		if len(f.b) < eventHeaderLength {
			return 0, errShortFrame
		}
		return int(f.b[2]) + eventHeaderLength, nil
	case pktTypeACL:
		if len(f.b) < aclHeaderLength {
			return 0, errShortFrame
		}
		return (int(f.b[3]) | int(f.b[4])<<8) + aclHeaderLength, nil
	}
	return 0, errors.Errorf("invalid packet type 0x%02X", f.b[0])
}
