// Package cmd implements the HCI command packets and their return parameters
// [Vol 2, Part E, 7].
package cmd

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Command ...
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// CommandRP ...
type CommandRP interface {
	Unmarshal(b []byte) error
}

// Decoder is implemented by commands that can be parsed back from their
// parameter bytes. The fake controller uses it.
type Decoder interface {
	Unmarshal(b []byte) error
}

// Encoder is implemented by return parameters that can be serialized. The
// fake controller uses it to build Command Complete events.
type Encoder interface {
	Marshal() ([]byte, error)
}

// OGF / OCF values.
const (
	OGFLinkCtl     = 0x01
	OGFLinkPolicy  = 0x02
	OGFHostCtl     = 0x03
	OGFInfoParam   = 0x04
	OGFStatusParam = 0x05
	OGFLECtl       = 0x08
	OGFVendor      = 0x3F
)

// OpCode composes an opcode from its group and command fields.
func OpCode(ogf, ocf int) int { return ogf<<10 | ocf }

// OGF returns the group field of op.
func OGF(op int) int { return (op & 0xFC00) >> 10 }

// OCF returns the command field of op.
func OCF(op int) int { return op & 0x03FF }

// Packet serializes c into a full HCI command packet, without the H4 packet
// type indicator: opcode (2 bytes), parameter length, parameters.
func Packet(c Command) ([]byte, error) {
	b := make([]byte, 3+c.Len())
	b[0] = byte(c.OpCode())
	b[1] = byte(c.OpCode() >> 8)
	b[2] = byte(c.Len())
	if err := c.Marshal(b[3:]); err != nil {
		return nil, errors.Wrapf(err, "can't marshal command 0x%04X", c.OpCode())
	}
	return b, nil
}

func marshal(c Command, b []byte) error {
	buf := bytes.NewBuffer(b)
	buf.Reset()
	if buf.Cap() < c.Len() {
		return io.ErrShortBuffer
	}
	return binary.Write(buf, binary.LittleEndian, c)
}

func unmarshal(c interface{}, b []byte) error {
	buf := bytes.NewBuffer(b)
	return binary.Read(buf, binary.LittleEndian, c)
}

func marshalRP(rp interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, rp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StatusRP is the return parameter of every command that only reports a
// status.
type StatusRP struct {
	Status uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *StatusRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *StatusRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// Raw carries an arbitrary opcode and pre-serialized parameters, mostly for
// vendor specific commands.
type Raw struct {
	Op      int
	Payload []byte
}

func (c *Raw) String() string {
	return "Raw Command"
}

// OpCode returns the opcode of the command.
func (c *Raw) OpCode() int { return c.Op }

// Len returns the length of the command.
func (c *Raw) Len() int { return len(c.Payload) }

// Marshal serializes the command parameters into binary form.
func (c *Raw) Marshal(b []byte) error {
	if len(b) < len(c.Payload) {
		return io.ErrShortBuffer
	}
	copy(b, c.Payload)
	return nil
}

// Unmarshal copies the parameter bytes.
func (c *Raw) Unmarshal(b []byte) error {
	c.Payload = append([]byte(nil), b...)
	return nil
}
