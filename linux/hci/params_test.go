package hci

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rigado/lecore"
)

func TestValidateScanParams(t *testing.T) {
	assert.NoError(t, ValidateScanParams(DefaultLEScanInterval, DefaultLEScanWindow))
	assert.NoError(t, ValidateScanParams(LEScanIntervalMax, LEScanWindowMax))
	assert.Error(t, ValidateScanParams(LEScanIntervalMin-1, LEScanWindowMin))
	assert.Error(t, ValidateScanParams(LEScanIntervalMax+1, LEScanWindowMin))
	assert.Error(t, ValidateScanParams(DefaultLEScanInterval, LEScanWindowMin-1))
	assert.Error(t, ValidateScanParams(DefaultLEScanWindow, DefaultLEScanInterval))
}

func TestValidatePreferredParams(t *testing.T) {
	assert.NoError(t, ValidatePreferredParams(DefaultPreferredConnectionParameters()))

	for name, mod := range map[string]func(p *PreferredConnectionParameters){
		"min above max":      func(p *PreferredConnectionParameters) { p.MinInterval = p.MaxInterval + 1 },
		"interval too small": func(p *PreferredConnectionParameters) { p.MinInterval = ConnIntervalMin - 1 },
		"interval too large": func(p *PreferredConnectionParameters) { p.MaxInterval = ConnIntervalMax + 1 },
		"latency":            func(p *PreferredConnectionParameters) { p.MaxLatency = ConnLatencyMax + 1 },
		"timeout range":      func(p *PreferredConnectionParameters) { p.SupervisionTimeout = SupervisionTimeoutMin - 1 },
		"timeout too short": func(p *PreferredConnectionParameters) {
			p.MaxInterval = ConnIntervalMax
			p.SupervisionTimeout = SupervisionTimeoutMin
		},
	} {
		p := DefaultPreferredConnectionParameters()
		mod(&p)
		assert.Error(t, ValidatePreferredParams(p), name)
	}
}

func TestAddressMapping(t *testing.T) {
	v := [6]byte{1, 2, 3, 4, 5, 6}
	assert.Equal(t, uint8(AddressTypePublic), AddressTypeOf(lecore.NewAddress(lecore.AddrTypeLEPublic, v)))
	assert.Equal(t, uint8(AddressTypeRandom), AddressTypeOf(lecore.NewAddress(lecore.AddrTypeLERandom, v)))

	assert.Equal(t, lecore.AddrTypeLEPublic, AddressFromHCI(0x00, v).Type)
	assert.Equal(t, lecore.AddrTypeLERandom, AddressFromHCI(0x01, v).Type)
	assert.Equal(t, lecore.AddrTypeLEPublic, AddressFromHCI(0x02, v).Type)
	assert.Equal(t, lecore.AddrTypeLERandom, AddressFromHCI(0x03, v).Type)
	assert.Equal(t, v, AddressFromHCI(0x01, v).Value)
}

func TestEventStatus(t *testing.T) {
	cc := EventPacket{0x0E, 0x04, 0x01, 0x03, 0x0C, 0x0C}
	assert.Equal(t, ErrDisallowed, EventStatus(cc))
	cs := EventPacket{0x0F, 0x04, 0x00, 0x01, 0x0D, 0x20}
	assert.NoError(t, EventStatus(cs))
	assert.Error(t, EventStatus(EventPacket{0x0E, 0x00}))

	_, err := parseEventPacket([]byte{0x0E, 0x02, 0x01})
	assert.Error(t, err)
	_, err = parseEventPacket([]byte{0x3E, 0x00})
	assert.Error(t, err)
}

func TestErrCommand(t *testing.T) {
	assert.Equal(t, "Command Disallowed", ErrDisallowed.Error())
	assert.Equal(t, uint8(0x0C), ErrDisallowed.Status())
	assert.Nil(t, statusError(0))
	assert.Equal(t, ErrConnID, statusError(0x02))
}
