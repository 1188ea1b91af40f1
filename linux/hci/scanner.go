package hci

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/adv"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// ScanState is the state of a LowEnergyScanner.
type ScanState int

// Scan states.
const (
	ScanStateIdle ScanState = iota
	ScanStateInitiating
	ScanStateScanning
	ScanStateStopping
)

func (s ScanState) String() string {
	switch s {
	case ScanStateIdle:
		return "idle"
	case ScanStateInitiating:
		return "initiating"
	case ScanStateScanning:
		return "scanning"
	case ScanStateStopping:
		return "stopping"
	}
	return fmt.Sprintf("ScanState(%d)", int(s))
}

// ScanStatus is reported to the StartScan callback.
type ScanStatus int

// Scan statuses.
const (
	ScanStatusStarted ScanStatus = iota
	ScanStatusFailed
	ScanStatusStopped
	ScanStatusComplete
)

func (s ScanStatus) String() string {
	switch s {
	case ScanStatusStarted:
		return "started"
	case ScanStatusFailed:
		return "failed"
	case ScanStatusStopped:
		return "stopped"
	case ScanStatusComplete:
		return "complete"
	}
	return fmt.Sprintf("ScanStatus(%d)", int(s))
}

// PeriodInfinite keeps a scan running until StopScan.
const PeriodInfinite time.Duration = 0

// DiscoveredDevice is one advertiser seen during a scan.
type DiscoveredDevice struct {
	Address         lecore.DeviceAddress
	Connectable     bool
	RSSI            int8
	Data            []byte
	ScanResponse    []byte
	HasScanResponse bool
}

// LocalName returns the name carried in the advertising data or scan
// response, if any.
func (d DiscoveredDevice) LocalName() string {
	p, err := adv.NewRawPacket(d.Data, d.ScanResponse)
	if err != nil {
		return ""
	}
	return p.LocalName()
}

// ScannerDelegate receives discovered devices.
type ScannerDelegate interface {
	OnDeviceFound(d DiscoveredDevice)
}

// ScannerDelegateFunc adapts a function to ScannerDelegate.
type ScannerDelegateFunc func(d DiscoveredDevice)

// OnDeviceFound ...
func (f ScannerDelegateFunc) OnDeviceFound(d DiscoveredDevice) { f(d) }

type pendingResult struct {
	device DiscoveredDevice
	timer  *dispatch.Task
}

// LowEnergyScanner runs LE scans and reports advertising reports to its
// delegate.
type LowEnergyScanner struct {
	ch       *CommandChannel
	scope    *dispatch.Scope
	logger   lecore.Logger
	opts     *options
	runner   *SequentialCommandRunner
	delegate ScannerDelegate

	state      ScanState
	active     bool
	cb         func(ScanStatus)
	periodTask *dispatch.Task

	// scannable advertisements waiting for their scan response
	pending map[lecore.DeviceAddress]*pendingResult

	handlerID EventHandlerID
	closeID   EventHandlerID
	closed    bool
}

// NewLowEnergyScanner registers for advertising reports on ch. Options:
// WithLogger, WithScanReportTimeout, WithOwnAddressType.
func NewLowEnergyScanner(ch *CommandChannel, d dispatch.Dispatcher, delegate ScannerDelegate, opts ...Option) (*LowEnergyScanner, error) {
	o, err := buildOptions("scanner", opts)
	if err != nil {
		return nil, errors.Wrap(err, "can't create scanner")
	}
	if delegate == nil {
		return nil, errors.Wrap(ErrInvalidParams, "nil delegate")
	}
	s := &LowEnergyScanner{
		ch:       ch,
		scope:    dispatch.NewScope(d),
		logger:   o.logger,
		opts:     o,
		runner:   NewSequentialCommandRunner(ch),
		delegate: delegate,
		pending:  map[lecore.DeviceAddress]*pendingResult{},
	}
	s.handlerID = ch.AddLEMetaEventHandler(evt.LEAdvertisingReportSubCode, s.handleAdvertisingReport)
	s.closeID = ch.AddCloseHandler(s.handleChannelClosed)
	return s, nil
}

// State ...
func (s *LowEnergyScanner) State() ScanState { return s.state }

// IsScanning ...
func (s *LowEnergyScanner) IsScanning() bool { return s.state == ScanStateScanning }

// StartScan sets the scan parameters and enables scanning. It returns false,
// and never calls cb, unless the scanner is idle and the parameters are
// valid. cb then reports ScanStatusStarted or ScanStatusFailed, and once the
// scan ends ScanStatusStopped or, when period elapsed, ScanStatusComplete. A
// running scan whose command channel stops ends with ScanStatusFailed.
func (s *LowEnergyScanner) StartScan(active bool, interval, window uint16, filterDuplicates bool, filterPolicy uint8, period time.Duration, cb func(ScanStatus)) bool {
	switch {
	case s.closed:
		return false
	case s.state != ScanStateIdle:
		s.logger.Warnf("can't start scan while %v", s.state)
		return false
	case cb == nil:
		s.logger.Error("no scan status callback")
		return false
	case period < 0:
		s.logger.Errorf("invalid scan period %v", period)
		return false
	case filterPolicy != FilterPolicyAcceptAll && filterPolicy != FilterPolicyAcceptWhitelist:
		s.logger.Errorf("invalid filter policy %d", filterPolicy)
		return false
	}
	if err := ValidateScanParams(interval, window); err != nil {
		s.logger.Errorf("%v: %v", ErrInvalidParams, err)
		return false
	}

	scanType := uint8(LEScanTypePassive)
	if active {
		scanType = LEScanTypeActive
	}
	dup := uint8(0)
	if filterDuplicates {
		dup = 1
	}

	s.state = ScanStateInitiating
	s.active = active
	s.cb = cb

	s.runner.QueueCommand(&cmd.LESetScanParameters{
		LEScanType:           scanType,
		LEScanInterval:       interval,
		LEScanWindow:         window,
		OwnAddressType:       s.opts.ownAddrType,
		ScanningFilterPolicy: filterPolicy,
	}, nil)
	s.runner.QueueCommand(&cmd.LESetScanEnable{
		LEScanEnable:     1,
		FilterDuplicates: dup,
	}, nil)

	err := s.runner.RunCommands(func(err error) {
		if s.closed {
			return
		}
		if err != nil {
			s.logger.Warnf("failed to start scan: %v", err)
			s.state = ScanStateIdle
			s.report(ScanStatusFailed, true)
			return
		}
		s.logger.Debugf("scan started, active: %v, period: %v", active, period)
		s.state = ScanStateScanning
		if period != PeriodInfinite {
			s.periodTask = s.scope.PostDelayed(period, func() {
				s.periodTask = nil
				if s.state == ScanStateScanning {
					s.stop(ScanStatusComplete)
				}
			})
		}
		s.report(ScanStatusStarted, false)
	})
	if err != nil {
		s.logger.Errorf("can't run scan commands: %v", err)
		s.runner.Cancel()
		s.state = ScanStateIdle
		s.cb = nil
		return false
	}
	return true
}

// StopScan disables an ongoing scan. It returns false if the scanner is not
// scanning.
func (s *LowEnergyScanner) StopScan() bool {
	if s.closed || s.state != ScanStateScanning {
		return false
	}
	s.stop(ScanStatusStopped)
	return true
}

// Close stops an ongoing scan without reporting it.
func (s *LowEnergyScanner) Close() {
	if s.closed {
		return
	}
	s.closed = true
	wasActive := s.state == ScanStateInitiating || s.state == ScanStateScanning
	s.runner.Cancel()
	if wasActive {
		_, err := s.ch.SendCommand(&cmd.LESetScanEnable{LEScanEnable: 0}, evt.CommandCompleteCode, nil)
		if err != nil {
			s.logger.Warnf("can't disable scan: %v", err)
		}
	}
	for addr, p := range s.pending {
		p.timer.Cancel()
		delete(s.pending, addr)
	}
	s.cb = nil
	s.state = ScanStateIdle
	s.ch.RemoveEventHandler(s.handlerID)
	s.ch.RemoveEventHandler(s.closeID)
	s.scope.Close()
}

// handleChannelClosed ends a running scan. Starting and stopping scans
// end through their command runner.
func (s *LowEnergyScanner) handleChannelClosed(err error) {
	if s.closed || s.state != ScanStateScanning {
		return
	}
	s.logger.Warnf("scan aborted: %v", err)
	if s.periodTask != nil {
		s.periodTask.Cancel()
		s.periodTask = nil
	}
	s.finish(ScanStatusFailed)
}

func (s *LowEnergyScanner) stop(status ScanStatus) {
	if s.periodTask != nil {
		s.periodTask.Cancel()
		s.periodTask = nil
	}
	s.state = ScanStateStopping

	s.runner.QueueCommand(&cmd.LESetScanEnable{LEScanEnable: 0}, nil)
	err := s.runner.RunCommands(func(err error) {
		if s.closed {
			return
		}
		if err != nil {
			s.logger.Warnf("failed to stop scan: %v", err)
		}
		s.finish(status)
	})
	if err != nil {
		s.logger.Errorf("can't run scan commands: %v", err)
		s.finish(status)
	}
}

// finish reports the scannable advertisers still waiting for a scan
// response, then the final status.
func (s *LowEnergyScanner) finish(status ScanStatus) {
	for addr, p := range s.pending {
		p.timer.Cancel()
		delete(s.pending, addr)
		s.delegate.OnDeviceFound(p.device)
	}
	s.state = ScanStateIdle
	s.report(status, true)
}

func (s *LowEnergyScanner) report(status ScanStatus, last bool) {
	cb := s.cb
	if last {
		s.cb = nil
	}
	if cb != nil {
		cb(status)
	}
}

func (s *LowEnergyScanner) handleAdvertisingReport(e EventPacket) {
	r := evt.LEAdvertisingReport(e.Params())
	if err := r.Validate(); err != nil {
		s.logger.Warnf("dropping malformed advertising report: %v: % X", err, e)
		return
	}
	if s.state != ScanStateScanning && s.state != ScanStateInitiating {
		s.logger.Debugf("dropping advertising report while %v", s.state)
		return
	}

	for i := 0; i < int(r.NumReports()); i++ {
		et := r.EventType(i)
		addr := AddressFromHCI(r.AddressType(i), r.Address(i))
		data := append([]byte(nil), r.Data(i)...)
		rssi := r.RSSI(i)

		if et == evt.ScanRsp {
			s.handleScanResponse(addr, data, rssi)
			continue
		}

		d := DiscoveredDevice{
			Address:     addr,
			Connectable: et == evt.AdvInd || et == evt.AdvDirectInd,
			RSSI:        rssi,
			Data:        data,
		}
		scannable := et == evt.AdvInd || et == evt.AdvScanInd
		if !s.active || !scannable {
			s.delegate.OnDeviceFound(d)
			continue
		}
		s.holdForScanResponse(d)
	}
}

func (s *LowEnergyScanner) holdForScanResponse(d DiscoveredDevice) {
	if p, ok := s.pending[d.Address]; ok {
		p.device.Data = d.Data
		p.device.RSSI = d.RSSI
		p.device.Connectable = d.Connectable
		return
	}
	addr := d.Address
	p := &pendingResult{device: d}
	p.timer = s.scope.PostDelayed(s.opts.scanRspTimeout, func() {
		if cur, ok := s.pending[addr]; ok && cur == p {
			delete(s.pending, addr)
			s.logger.Debugf("no scan response from %v", addr)
			s.delegate.OnDeviceFound(p.device)
		}
	})
	s.pending[addr] = p
}

func (s *LowEnergyScanner) handleScanResponse(addr lecore.DeviceAddress, data []byte, rssi int8) {
	p, ok := s.pending[addr]
	if !ok {
		s.logger.Debugf("dropping unmatched scan response from %v", addr)
		return
	}
	delete(s.pending, addr)
	p.timer.Cancel()
	p.device.ScanResponse = data
	p.device.HasScanResponse = true
	p.device.RSSI = rssi
	s.delegate.OnDeviceFound(p.device)
}
