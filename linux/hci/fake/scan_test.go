package fake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

func scanParams(active bool) *cmd.LESetScanParameters {
	p := &cmd.LESetScanParameters{
		LEScanType:     hci.LEScanTypePassive,
		LEScanInterval: hci.DefaultLEScanInterval,
		LEScanWindow:   hci.DefaultLEScanWindow,
	}
	if active {
		p.LEScanType = hci.LEScanTypeActive
	}
	return p
}

// reports flattens the advertising report events in log.
func reports(t *testing.T, log []interface{}) (n int, types []uint8) {
	for _, x := range log {
		e, ok := x.(hci.EventPacket)
		if !ok || e.Subevent() != evt.LEAdvertisingReportSubCode {
			continue
		}
		n++
		r := evt.LEAdvertisingReport(e.Params())
		require.NoError(t, r.Validate())
		for i := 0; i < int(r.NumReports()); i++ {
			types = append(types, r.EventType(i))
		}
	}
	return n, types
}

func TestScanEnableNotifiesBeforeCommandComplete(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	h.send(scanParams(true))
	requireCommandComplete(t, h.take()[0], cmd.LESetScanParametersOpCode, hci.ErrSuccess)

	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1})
	log := h.take()
	require.Len(t, log, 2)
	assert.Equal(t, ScanStateChanged{Enabled: true, Active: true, FilterDuplicates: true}, log[0])
	requireCommandComplete(t, log[1], cmd.LESetScanEnableOpCode, hci.ErrSuccess)
	assert.True(t, h.ctrl.ScanEnabled())

	h.send(&cmd.LESetScanEnable{LEScanEnable: 0})
	log = h.take()
	require.Len(t, log, 2)
	assert.Equal(t, ScanStateChanged{Active: true}, log[0])
	requireCommandComplete(t, log[1], cmd.LESetScanEnableOpCode, hci.ErrSuccess)
	assert.False(t, h.ctrl.ScanEnabled())
}

func TestScanParametersRejectedWhileScanning(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	h.send(scanParams(false))
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1})
	h.take()

	h.send(scanParams(true))
	log := h.take()
	require.Len(t, log, 1)
	requireCommandComplete(t, log[0], cmd.LESetScanParametersOpCode, hci.ErrDisallowed)
	assert.Equal(t, uint8(hci.LEScanTypePassive), h.ctrl.ScanParameters().LEScanType)
}

func TestScanParametersValidated(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	p := scanParams(false)
	p.LEScanWindow = p.LEScanInterval + 1
	h.send(p)
	requireCommandComplete(t, h.take()[0], cmd.LESetScanParametersOpCode, hci.ErrInvalidParameters)
}

func TestReportsWithDuplicateFiltering(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	h.addPeer(NewPeer(peerAddr1, true, false))
	h.addPeer(NewPeer(peerAddr2, false, false))
	h.send(scanParams(false))
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1})

	h.loop.RunFor(5 * time.Second)
	n, types := reports(t, h.take())
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint8{evt.AdvInd, evt.AdvNonconnInd}, types)

	// Restarting the scan reports every peer once more.
	h.send(&cmd.LESetScanEnable{LEScanEnable: 0})
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1})
	h.loop.RunFor(5 * time.Second)
	n, _ = reports(t, h.take())
	assert.Equal(t, 2, n)
}

func TestReportsRepeatWithoutDuplicateFiltering(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	h.addPeer(NewPeer(peerAddr1, true, false))
	h.send(scanParams(false))
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 0})

	n, _ := reports(t, h.take())
	assert.Equal(t, 1, n)

	h.loop.RunFor(2 * DefaultReportInterval)
	n, _ = reports(t, h.take())
	assert.Equal(t, 2, n)

	h.send(&cmd.LESetScanEnable{LEScanEnable: 0})
	h.take()
	h.loop.RunFor(10 * DefaultReportInterval)
	n, _ = reports(t, h.take())
	assert.Zero(t, n)
}

func TestActiveScanSendsScanResponse(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	p := NewPeer(peerAddr1, true, true)
	p.AdvertisingData = []byte{0x02, 0x01, 0x06}
	p.ScanResponse = []byte{0x03, 0x09, 'h', 'i'}
	h.addPeer(p)

	h.send(scanParams(true))
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1})
	n, types := reports(t, h.take())
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint8{evt.AdvInd, evt.ScanRsp}, types)
}

func TestActiveScanBatchesScanResponse(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	p := NewPeer(peerAddr1, false, true)
	p.ScanResponse = []byte{0x03, 0x09, 'h', 'i'}
	p.ShouldBatchReports = true
	h.addPeer(p)

	h.send(scanParams(true))
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1})
	log := h.take()
	n, types := reports(t, log)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uint8{evt.AdvScanInd, evt.ScanRsp}, types)
}

func TestPassiveScanOmitsScanResponse(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	h.addPeer(NewPeer(peerAddr1, true, true))
	h.send(scanParams(false))
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1})
	_, types := reports(t, h.take())
	assert.Equal(t, []uint8{evt.AdvInd}, types)
}

func TestResetStopsScanning(t *testing.T) {
	h := newRawHost(t, LegacyLEConfig())
	h.addPeer(NewPeer(peerAddr1, true, false))
	h.send(scanParams(false))
	h.send(&cmd.LESetScanEnable{LEScanEnable: 1})
	h.take()

	h.send(&cmd.Reset{})
	log := h.take()
	require.Len(t, log, 2)
	assert.Equal(t, ScanStateChanged{}, log[0])
	requireCommandComplete(t, log[1], cmd.ResetOpCode, hci.ErrSuccess)
	h.loop.RunFor(10 * DefaultReportInterval)
	assert.Empty(t, h.take())
}
