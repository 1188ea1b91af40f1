package fake

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci"
)

func TestPeerFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "peers.json")
	pf := NewPeerFile(fn)

	all, err := pf.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	p := NewPeer(peerAddr2, true, true)
	p.AdvertisingData = []byte{0x02, 0x01, 0x06}
	p.ScanResponse = []byte{0x03, 0x09, 'h', 'i'}
	p.ConnectResponse = hci.ErrConnFailed
	p.ConnectResponseDelay = 250 * time.Millisecond
	p.ShouldBatchReports = true
	require.NoError(t, pf.Store(p, false))
	require.Error(t, pf.Store(p, false))
	require.NoError(t, pf.Store(NewPeer(peerAddr1, false, false), false))

	got, err := pf.Load(peerAddr2)
	require.NoError(t, err)
	assert.Equal(t, p.Address, got.Address)
	assert.Equal(t, p.AdvertisingData, got.AdvertisingData)
	assert.Equal(t, p.ScanResponse, got.ScanResponse)
	assert.Equal(t, p.ConnectResponse, got.ConnectResponse)
	assert.Equal(t, p.ConnectResponseDelay, got.ConnectResponseDelay)
	assert.True(t, got.ShouldBatchReports)
	assert.Equal(t, DefaultRSSI, got.RSSI)

	_, err = pf.Load(peerAddr1)
	require.NoError(t, err)

	c := NewController(dispatch.NewTestLoop(), LegacyLEConfig())
	require.NoError(t, LoadPeers(c, fn))
	assert.Len(t, c.Peers(), 2)
	assert.NotNil(t, c.FindPeer(peerAddr1))
	require.Error(t, LoadPeers(c, fn), "peers are already known")

	require.NoError(t, pf.Clear())
	all, err = pf.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, StorePeers(c, fn))
	all, err = pf.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
