package hci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLMPFeatureSet(t *testing.T) {
	var s LMPFeatureSet
	assert.False(t, s.HasPage(0))
	assert.False(t, s.Has(LMPFeatureLESupportedController))
	assert.Zero(t, s.Page(0))

	s.SetPage(0, 1<<LMPFeatureLESupportedController.Bit|1<<LMPFeatureExtendedFeatures.Bit)
	assert.True(t, s.Has(LMPFeatureLESupportedController))
	assert.True(t, s.Has(LMPFeatureExtendedFeatures))
	assert.False(t, s.Has(LMPFeatureBREDRNotSupported))
	assert.False(t, s.HasBit(0, 64))
	assert.False(t, s.Has(LMPFeatureSecureSimplePairing), "page 1 was never set")

	s.SetPage(1, 1)
	assert.True(t, s.Has(LMPFeatureSecureSimplePairing))

	s.SetPage(MaxLMPFeaturePage+1, ^uint64(0))
	assert.False(t, s.HasPage(MaxLMPFeaturePage+1))

	s.SetLastPageNumber(7)
	assert.Equal(t, uint8(MaxLMPFeaturePage), s.LastPageNumber())
	s.SetLastPageNumber(1)
	assert.Equal(t, uint8(1), s.LastPageNumber())
}

func TestLowEnergyState(t *testing.T) {
	s := LowEnergyState{SupportedFeatures: 1<<LEFeatureEncryption | 1<<LEFeatureDataPacketLengthExt}
	assert.True(t, s.IsFeatureSupported(LEFeatureEncryption))
	assert.True(t, s.IsFeatureSupported(LEFeatureDataPacketLengthExt))
	assert.False(t, s.IsFeatureSupported(LEFeaturePing))
	assert.False(t, s.IsFeatureSupported(64))
}

func TestAdapterStateCapabilities(t *testing.T) {
	var st AdapterState
	st.Features.SetPage(0, 1<<LMPFeatureLESupportedController.Bit|1<<LMPFeatureBREDRNotSupported.Bit)
	st.SupportedCommands[26] = 1 << 4
	assert.True(t, st.IsLowEnergySupported())
	assert.False(t, st.IsBREDRSupported())
	assert.True(t, st.IsCommandSupported(26, 4))
	assert.False(t, st.IsCommandSupported(26, 5))
	assert.False(t, st.IsCommandSupported(-1, 0))
	assert.False(t, st.IsCommandSupported(0, 8))

	assert.False(t, DataBufferInfo{}.IsAvailable())
	assert.True(t, DataBufferInfo{MaxDataLength: 27, MaxNumPackets: 1}.IsAvailable())
}
