package evt

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrShortPacket is returned by accessors reading past the end of an event.
var ErrShortPacket = errors.New("index error")

func (e CommandComplete) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e CommandComplete) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e CommandComplete) ReturnParametersWErr() ([]byte, error) {
	return getBytes(e, 3, -1)
}

func (e CommandComplete) StatusWErr() (uint8, error) {
	return getByte(e, 3, 0xff)
}

func (e CommandStatus) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e CommandStatus) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e CommandStatus) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

func (e DisconnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e DisconnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e DisconnectionComplete) ReasonWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e HardwareError) HardwareCodeWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e LEConnectionComplete) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e LEConnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0xff)
}

func (e LEConnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

func (e LEConnectionComplete) RoleWErr() (uint8, error) {
	return getByte(e, 4, 0xff)
}

func (e LEConnectionComplete) PeerAddressTypeWErr() (uint8, error) {
	return getByte(e, 5, 0xff)
}

func (e LEConnectionComplete) PeerAddressWErr() ([6]byte, error) {
	return getAddr(e, 6)
}

func (e LEConnectionComplete) ConnIntervalWErr() (uint16, error) {
	return getUint16LE(e, 12, 0)
}

func (e LEConnectionComplete) ConnLatencyWErr() (uint16, error) {
	return getUint16LE(e, 14, 0)
}

func (e LEConnectionComplete) SupervisionTimeoutWErr() (uint16, error) {
	return getUint16LE(e, 16, 0)
}

func (e LEConnectionComplete) MasterClockAccuracyWErr() (uint8, error) {
	return getByte(e, 18, 0)
}

// Validate checks that every field of the event is present.
func (e LEConnectionComplete) Validate() error {
	_, err := getBytes(e, 0, 19)
	return err
}

func (e LEConnectionUpdateComplete) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e LEConnectionUpdateComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0xff)
}

func (e LEConnectionUpdateComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

func (e LEConnectionUpdateComplete) ConnIntervalWErr() (uint16, error) {
	return getUint16LE(e, 4, 0)
}

func (e LEConnectionUpdateComplete) ConnLatencyWErr() (uint16, error) {
	return getUint16LE(e, 6, 0)
}

func (e LEConnectionUpdateComplete) SupervisionTimeoutWErr() (uint16, error) {
	return getUint16LE(e, 8, 0)
}

// Validate checks that every field of the event is present.
func (e LEConnectionUpdateComplete) Validate() error {
	_, err := getBytes(e, 0, 10)
	return err
}

// The advertising report uses the Bluetooth 4.x array layout: all
// event types, then all address types, then all addresses and so on.

func (e LEAdvertisingReport) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e LEAdvertisingReport) NumReportsWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e LEAdvertisingReport) EventTypeWErr(i int) (uint8, error) {
	return getByte(e, 2+i, 0xff)
}

func (e LEAdvertisingReport) AddressTypeWErr(i int) (uint8, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return 0, err
	}
	return getByte(e, 2+int(nr)+i, 0xff)
}

func (e LEAdvertisingReport) AddressWErr(i int) ([6]byte, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return [6]byte{}, err
	}
	return getAddr(e, 2+int(nr)*2+(6*i))
}

func (e LEAdvertisingReport) LengthDataWErr(i int) (uint8, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return 0, err
	}
	return getByte(e, 2+int(nr)*8+i, 0)
}

func (e LEAdvertisingReport) DataWErr(i int) ([]byte, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return nil, err
	}

	l := 0
	for j := 0; j < i; j++ {
		ll, err := e.LengthDataWErr(j)
		if err != nil {
			return nil, err
		}
		l += int(ll)
	}

	ll, err := e.LengthDataWErr(i)
	if err != nil {
		return nil, err
	}
	if ll == 0 {
		return []byte{}, nil
	}
	return getBytes(e, 2+int(nr)*9+l, int(ll))
}

func (e LEAdvertisingReport) RSSIWErr(i int) (int8, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return 0, err
	}

	l := 0
	for j := 0; j < int(nr); j++ {
		ll, err := e.LengthDataWErr(j)
		if err != nil {
			return 0, err
		}
		l += int(ll)
	}

	rssi, err := getByte(e, 2+int(nr)*9+l+i, 0)
	return int8(rssi), err
}

// Validate checks that the report array is complete: every report's data and
// RSSI are within the event.
func (e LEAdvertisingReport) Validate() error {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return err
	}
	if nr == 0 {
		return errors.New("no reports")
	}
	_, err = e.RSSIWErr(int(nr) - 1)
	return err
}

//get or default
func getByte(b []byte, i int, def byte) (byte, error) {
	bb, err := getBytes(b, i, 1)
	if err != nil {
		return def, err
	}
	return bb[0], nil
}

//get or default
func getUint16LE(b []byte, i int, def uint16) (uint16, error) {
	bb, err := getBytes(b, i, 2)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint16(bb), nil
}

func getAddr(b []byte, i int) ([6]byte, error) {
	out := [6]byte{}
	bb, err := getBytes(b, i, 6)
	if err != nil {
		return out, err
	}
	copy(out[:], bb)
	return out, nil
}

func getBytes(bytes []byte, start int, count int) ([]byte, error) {
	if bytes == nil || start >= len(bytes) {
		return nil, ErrShortPacket
	}

	if count < 0 {
		return bytes[start:], nil
	}

	end := start + count
	//end is non-inclusive
	if end > len(bytes) {
		return nil, ErrShortPacket
	}

	return bytes[start:end], nil
}
