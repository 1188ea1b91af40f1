package h4

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type frameSink struct {
	pkts [][]byte
}

func (s *frameSink) out(b []byte) { s.pkts = append(s.pkts, b) }

func TestFrameAssemble(t *testing.T) {
	var s frameSink
	f := newFrame(s.out)

	cc := []byte{0x04, 0x0E, 0x04, 0x01, 0x03, 0x0C, 0x00}
	f.Assemble(cc)
	assert.Equal(t, [][]byte{cc}, s.pkts)

	// split and coalesced, with leading junk
	s.pkts = nil
	acl := []byte{0x02, 0x01, 0x20, 0x02, 0x00, 0xAA, 0xBB}
	stream := append(append([]byte{0x00, 0x00}, cc...), acl...)
	f.Assemble(stream[:4])
	f.Assemble(stream[4:10])
	assert.Equal(t, [][]byte{cc}, s.pkts)
	f.Assemble(stream[10:])
	assert.Equal(t, [][]byte{cc, acl}, s.pkts)
}

func TestFrameDropsStalePartial(t *testing.T) {
	var s frameSink
	f := newFrame(s.out)
	now := time.Unix(0, 0)
	f.now = func() time.Time { return now }

	f.Assemble([]byte{0x04, 0x0E, 0x04, 0x01})
	now = now.Add(frameTimeout + time.Millisecond)
	cs := []byte{0x04, 0x0F, 0x04, 0x00, 0x01, 0x03, 0x0C}
	f.Assemble(cs)
	assert.Equal(t, [][]byte{cs}, s.pkts)
}

func TestFrameIgnoresNoise(t *testing.T) {
	var s frameSink
	f := newFrame(s.out)
	f.Assemble(nil)
	f.Assemble([]byte{0x00, 0x11, 0xFF})
	assert.Empty(t, s.pkts)
}
