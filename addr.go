package lecore

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// AddrType is the type tag of a Bluetooth device address.
type AddrType uint8

// Address types.
const (
	AddrTypeLEPublic AddrType = iota
	AddrTypeLERandom
	AddrTypeBREDR
)

func (t AddrType) String() string {
	switch t {
	case AddrTypeLEPublic:
		return "le-public"
	case AddrTypeLERandom:
		return "le-random"
	case AddrTypeBREDR:
		return "br/edr"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// DeviceAddress identifies a Bluetooth endpoint.
// Value holds the address in HCI (little-endian) byte order, the way it
// travels in command and event payloads.
type DeviceAddress struct {
	Type  AddrType
	Value [6]byte
}

// ParseAddress parses a colon separated MAC ("00:00:00:00:00:01", most
// significant byte first) into a DeviceAddress of the given type.
func ParseAddress(t AddrType, s string) (DeviceAddress, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return DeviceAddress{}, errors.Wrapf(err, "can't parse address %q", s)
	}
	if len(hw) != 6 {
		return DeviceAddress{}, errors.Errorf("invalid address length %d for %q", len(hw), s)
	}
	a := DeviceAddress{Type: t}
	for i := 0; i < 6; i++ {
		a.Value[i] = hw[5-i]
	}
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(t AddrType, s string) DeviceAddress {
	a, err := ParseAddress(t, s)
	if err != nil {
		panic(err)
	}
	return a
}

// NewAddress returns a DeviceAddress built from an HCI ordered value.
func NewAddress(t AddrType, v [6]byte) DeviceAddress {
	return DeviceAddress{Type: t, Value: v}
}

// IsLowEnergy reports whether the address belongs to an LE endpoint.
func (a DeviceAddress) IsLowEnergy() bool {
	return a.Type == AddrTypeLEPublic || a.Type == AddrTypeLERandom
}

// Bytes returns the address most significant byte first.
func (a DeviceAddress) Bytes() []byte {
	b := make([]byte, 6)
	for i := 0; i < 6; i++ {
		b[i] = a.Value[5-i]
	}
	return b
}

func (a DeviceAddress) String() string {
	return net.HardwareAddr(a.Bytes()).String()
}
