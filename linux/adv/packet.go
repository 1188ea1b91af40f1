// Package adv builds and parses advertising data: a sequence of AD
// structures (length, type, data) as carried in advertising and scan
// response PDUs. Refer to Supplement to Bluetooth Core Specification | CSSv6,
// Part A.
package adv

import (
	"github.com/pkg/errors"
)

// MaxEIRPacketLength is the maximum length of legacy advertising or scan
// response data.
const MaxEIRPacketLength = 31

// Flag bits.
const (
	FlagLimitedDiscoverable = 0x01
	FlagGeneralDiscoverable = 0x02
	FlagLEOnly              = 0x04
)

var (
	// ErrNotFit is returned when a field would overflow the packet.
	ErrNotFit = errors.New("field does not fit in the packet")

	// ErrInvalid ...
	ErrInvalid = errors.New("invalid field")
)

// Packet is advertising data or a scan response, for crafting or parsing.
type Packet struct {
	b []byte
	m map[string][]byte
}

// Bytes returns the bytes of the packet.
func (p *Packet) Bytes() []byte {
	return p.b
}

// Len returns the length of the packet.
func (p *Packet) Len() int {
	return len(p.b)
}

// NewPacket returns a new advertising Packet.
func NewPacket(fields ...Field) (*Packet, error) {
	p := &Packet{b: make([]byte, 0, MaxEIRPacketLength)}
	for _, f := range fields {
		if err := f(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewRawPacket decodes the concatenation of bytes, typically advertising
// data followed by its scan response.
func NewRawPacket(bytes ...[]byte) (*Packet, error) {
	var b []byte
	for _, bb := range bytes {
		b = append(b, bb...)
	}

	m, err := decode(b)
	if err != nil {
		return nil, errors.Wrap(err, "pdu decode")
	}
	return &Packet{b: b, m: m}, nil
}

// Field is an advertising field which can be appended to a packet.
type Field func(p *Packet) error

// Append appends a field to the packet. It returns ErrNotFit if the field
// doesn't fit into the packet, and leaves the packet intact.
func (p *Packet) Append(f Field) error {
	return f(p)
}

func (p *Packet) append(typ byte, b []byte) error {
	if p.Len()+1+1+len(b) > MaxEIRPacketLength {
		return ErrNotFit
	}
	p.b = append(p.b, byte(len(b)+1))
	p.b = append(p.b, typ)
	p.b = append(p.b, b...)
	return nil
}

// Raw appends the bytes to the current packet.
func Raw(b []byte) Field {
	return func(p *Packet) error {
		if p.Len()+len(b) > MaxEIRPacketLength {
			return ErrNotFit
		}
		p.b = append(p.b, b...)
		return nil
	}
}

// Flags is a flags.
func Flags(f byte) Field {
	return func(p *Packet) error {
		return p.append(types.flags, []byte{f})
	}
}

// ShortName is a short local name.
func ShortName(n string) Field {
	return func(p *Packet) error {
		return p.append(types.nameshort, []byte(n))
	}
}

// CompleteName is a complete local name.
func CompleteName(n string) Field {
	return func(p *Packet) error {
		return p.append(types.namecomp, []byte(n))
	}
}

// Name appends the complete name, or as much of it as fits as a short name.
func Name(n string) Field {
	return func(p *Packet) error {
		if err := CompleteName(n)(p); err != ErrNotFit {
			return err
		}
		room := MaxEIRPacketLength - p.Len() - 2
		if room <= 0 {
			return ErrNotFit
		}
		return ShortName(n[:room])(p)
	}
}

// TxPower is the advertised transmit power level.
func TxPower(dbm int8) Field {
	return func(p *Packet) error {
		return p.append(types.txpwr, []byte{uint8(dbm)})
	}
}

// ManufacturerData is manufacturer specific data.
func ManufacturerData(id uint16, b []byte) Field {
	return func(p *Packet) error {
		d := append([]byte{uint8(id), uint8(id >> 8)}, b...)
		return p.append(types.mfgdata, d)
	}
}

// Flags returns the flags of the packet.
func (p *Packet) Flags() (flags byte, present bool) {
	if b, ok := p.m[keys.flags]; ok {
		return b[0], true
	}
	return 0, false
}

// LocalName returns the CompleteName, or the ShortName if only that is present.
func (p *Packet) LocalName() string {
	if b, ok := p.m[keys.namecomp]; ok {
		return string(b)
	}
	if b, ok := p.m[keys.nameshort]; ok {
		return string(b)
	}
	return ""
}

// TxPower returns the TxPower, if it presents.
func (p *Packet) TxPower() (power int, present bool) {
	if b, ok := p.m[keys.txpwr]; ok {
		return int(int8(b[0])), true
	}
	return 0, false
}

// ManufacturerData returns the ManufacturerData field if it presents.
func (p *Packet) ManufacturerData() []byte {
	return p.m[keys.mfgdata]
}
