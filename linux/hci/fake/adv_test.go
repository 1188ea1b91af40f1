package fake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
)

func TestAdvertising(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())

	h.send(&cmd.LESetAdvertisingParameters{
		AdvertisingIntervalMin: hci.DefaultAdvInterval,
		AdvertisingIntervalMax: hci.DefaultAdvInterval,
		AdvertisingChannelMap:  0x07,
	})
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingParametersOpCode, hci.ErrSuccess)

	ad := &cmd.LESetAdvertisingData{AdvertisingDataLength: 3}
	copy(ad.AdvertisingData[:], []byte{0x02, 0x01, 0x06})
	h.send(ad)
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingDataOpCode, hci.ErrSuccess)
	assert.Equal(t, []byte{0x02, 0x01, 0x06}, h.ctrl.AdvertisingData())

	h.send(&cmd.LESetAdvertiseEnable{AdvertisingEnable: 1})
	log := h.take()
	require.Len(t, log, 2)
	assert.Equal(t, AdvertisingStateChanged{Enabled: true}, log[0])
	requireCommandComplete(t, log[1], cmd.LESetAdvertiseEnableOpCode, hci.ErrSuccess)

	// Enabling twice is not a state change.
	h.send(&cmd.LESetAdvertiseEnable{AdvertisingEnable: 1})
	log = h.take()
	require.Len(t, log, 1)

	h.send(&cmd.LESetAdvertisingParameters{
		AdvertisingIntervalMin: hci.AdvIntervalMin,
		AdvertisingIntervalMax: hci.AdvIntervalMin,
	})
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingParametersOpCode, hci.ErrDisallowed)
	h.send(&cmd.LESetAdvertisingData{})
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingDataOpCode, hci.ErrDisallowed)
	h.send(&cmd.LESetScanResponseData{})
	requireCommandComplete(t, h.take()[0], cmd.LESetScanResponseDataOpCode, hci.ErrDisallowed)
	h.send(&cmd.LESetRandomAddress{})
	requireCommandComplete(t, h.take()[0], cmd.LESetRandomAddressOpCode, hci.ErrDisallowed)
	assert.Equal(t, uint16(hci.DefaultAdvInterval), h.ctrl.AdvertisingParameters().AdvertisingIntervalMin)

	h.send(&cmd.LESetAdvertiseEnable{AdvertisingEnable: 0})
	log = h.take()
	require.Len(t, log, 2)
	assert.Equal(t, AdvertisingStateChanged{}, log[0])
	assert.False(t, h.ctrl.AdvertisingEnabled())
}

func TestAdvertisingValidation(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())

	h.send(&cmd.LESetAdvertisingParameters{AdvertisingIntervalMin: 0x10, AdvertisingIntervalMax: 0x30})
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingParametersOpCode, hci.ErrInvalidParameters)
	h.send(&cmd.LESetAdvertisingParameters{AdvertisingIntervalMin: 0x40, AdvertisingIntervalMax: 0x30})
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingParametersOpCode, hci.ErrInvalidParameters)

	h.send(&cmd.LESetAdvertisingData{AdvertisingDataLength: 32})
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingDataOpCode, hci.ErrInvalidParameters)
	h.send(&cmd.LESetAdvertiseEnable{AdvertisingEnable: 2})
	requireCommandComplete(t, h.take()[0], cmd.LESetAdvertiseEnableOpCode, hci.ErrInvalidParameters)

	for _, tc := range []struct {
		advType uint8
		status  hci.ErrCommand
	}{
		{hci.AdvTypeConnDirected, hci.ErrSuccess},
		{hci.AdvTypeConnDirectedLowDuty, hci.ErrSuccess},
		{hci.AdvTypeMax + 1, hci.ErrInvalidParameters},
	} {
		h.send(&cmd.LESetAdvertisingParameters{
			AdvertisingIntervalMin: hci.DefaultAdvInterval,
			AdvertisingIntervalMax: hci.DefaultAdvInterval,
			AdvertisingType:        tc.advType,
			AdvertisingChannelMap:  0x07,
		})
		requireCommandComplete(t, h.take()[0], cmd.LESetAdvertisingParametersOpCode, tc.status)
	}
}

func TestSetRandomAddress(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	a := lecore.MustParseAddress(lecore.AddrTypeLERandom, "C0:11:22:33:44:55")
	h.send(&cmd.LESetRandomAddress{RandomAddress: a.Value})
	requireCommandComplete(t, h.take()[0], cmd.LESetRandomAddressOpCode, hci.ErrSuccess)
	assert.Equal(t, a, h.ctrl.RandomAddress())
}

func TestSettingsPresets(t *testing.T) {
	le := LEOnlyDefaults()
	assert.True(t, le.HasLMPFeature(hci.LMPFeatureLESupportedController))
	assert.True(t, le.HasLMPFeature(hci.LMPFeatureBREDRNotSupported))
	assert.False(t, le.SupportsCommand(CommandLECreateConnection))
	assert.True(t, le.SupportsCommand(CommandReset))

	legacy := LegacyLEConfig()
	assert.Equal(t, uint8(HCIVersion42), legacy.HCIVersion)
	assert.True(t, legacy.SupportsCommand(CommandLECreateConnection))
	assert.True(t, legacy.SupportsCommand(CommandLESetAdvertiseEnable))
	assert.False(t, legacy.SupportsCommand(CommandWriteLEHostSupport))

	dual := DualModeDefaults()
	assert.False(t, dual.HasLMPFeature(hci.LMPFeatureBREDRNotSupported))
	assert.True(t, dual.HasLMPFeature(hci.LMPFeatureExtendedFeatures))
	assert.True(t, dual.SupportsCommand(CommandWriteLEHostSupport))

	trimmed := legacy.WithoutCommands(CommandLECreateConnection)
	assert.False(t, trimmed.SupportsCommand(CommandLECreateConnection))
	assert.True(t, legacy.SupportsCommand(CommandLECreateConnection), "presets are values")
}
