package hci_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/fake"
)

func initAdapter(t *testing.T, env *testEnv) (*hci.AdapterState, error) {
	var st *hci.AdapterState
	var res error
	calls := 0
	require.NoError(t, hci.InitializeAdapterState(env.ch, func(s *hci.AdapterState, err error) {
		calls++
		st, res = s, err
	}))
	env.loop.RunUntilIdle()
	require.Equal(t, 1, calls)
	return st, res
}

func TestInitializeLegacyLE(t *testing.T) {
	s := fake.LegacyLEConfig()
	env := newTestEnv(t, s)

	st, err := initAdapter(t, env)
	require.NoError(t, err)
	assert.Equal(t, uint8(fake.HCIVersion42), st.HCIVersion)
	assert.Equal(t, s.Manufacturer, st.Manufacturer)
	assert.Equal(t, fake.DefaultBDADDR, st.BDADDR)
	assert.True(t, st.IsLowEnergySupported())
	assert.False(t, st.IsBREDRSupported())
	assert.False(t, st.BREDRDataBuffer.IsAvailable())
	assert.Equal(t, uint16(0x001B), st.LowEnergy.DataPacketLength)
	assert.Equal(t, uint8(0x04), st.LowEnergy.MaxNumPackets)
	assert.True(t, st.LowEnergy.IsFeatureSupported(hci.LEFeatureEncryption))
	assert.Equal(t, s.LEStates, st.LowEnergy.SupportedStates)
	assert.Equal(t, s.SupportedCommands, st.SupportedCommands)
	assert.True(t, st.IsCommandSupported(fake.CommandLECreateConnection.Octet, fake.CommandLECreateConnection.Bit))
	assert.False(t, st.IsCommandSupported(fake.CommandWriteLEHostSupport.Octet, fake.CommandWriteLEHostSupport.Bit))
	assert.False(t, st.IsCommandSupported(64, 0))
	assert.False(t, st.Features.HasPage(1))

	mask, leMask := env.ctrl.EventMasks()
	assert.Equal(t, uint64(0x3dbff807fffbffff), mask)
	assert.Equal(t, uint64(0x1f), leMask)
	assert.False(t, env.ctrl.LEHostSupported())
}

func TestInitializeDualMode(t *testing.T) {
	s := fake.DualModeDefaults()
	env := newTestEnv(t, s)

	st, err := initAdapter(t, env)
	require.NoError(t, err)
	assert.Equal(t, uint8(fake.HCIVersion50), st.HCIVersion)
	assert.True(t, st.IsBREDRSupported())
	assert.True(t, st.Features.Has(hci.LMPFeatureSimultaneousLEBREDR))
	assert.True(t, st.Features.HasPage(1))
	assert.True(t, st.Features.Has(hci.LMPFeatureSecureSimplePairing))
	assert.Equal(t, uint8(1), st.Features.LastPageNumber())
	assert.Equal(t, hci.DataBufferInfo{MaxDataLength: 0x03FD, MaxNumPackets: 0x08}, st.BREDRDataBuffer)
	assert.True(t, env.ctrl.LEHostSupported())
	assert.True(t, env.ctrl.Settings().HasLMPFeature(hci.LMPFeatureLESupportedHost))
}

func TestInitializeWithoutLE(t *testing.T) {
	s := fake.LEOnlyDefaults()
	s.LMPFeaturePages[0] &^= 1 << hci.LMPFeatureLESupportedController.Bit
	env := newTestEnv(t, s)

	st, err := initAdapter(t, env)
	assert.Nil(t, st)
	assert.Equal(t, hci.ErrNotReady, errors.Cause(err))
}

func TestInitializeResetFailure(t *testing.T) {
	env := newTestEnv(t, fake.LegacyLEConfig())
	env.ctrl.SetDefaultResponseStatus(cmd.ResetOpCode, hci.ErrHardware)

	st, err := initAdapter(t, env)
	assert.Nil(t, st)
	assert.Equal(t, hci.ErrHardware, errors.Cause(err))
	mask, _ := env.ctrl.EventMasks()
	assert.Zero(t, mask, "nothing runs after the failed reset")
}

func TestInitializeUnsupportedCommand(t *testing.T) {
	env := newTestEnv(t, fake.LegacyLEConfig().WithoutCommands(fake.CommandLEReadSupportedStates))

	_, err := initAdapter(t, env)
	assert.Equal(t, hci.ErrUnknownCommand, errors.Cause(err))
}
