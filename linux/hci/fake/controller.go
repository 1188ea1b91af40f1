package fake

import (
	"time"

	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

// DefaultReportInterval is how often advertising reports repeat while
// duplicate filtering is disabled.
const DefaultReportInterval = 500 * time.Millisecond

// maxConnectionHandle is the first handle the allocator can't hand out.
const maxConnectionHandle = 0x0FFF

type handlerFunc func(op int, params []byte)

type pendingConnection struct {
	addr   lecore.DeviceAddress
	peer   *Peer
	handle uint16
	status hci.ErrCommand
	params hci.ConnectionParameters
	task   *dispatch.Task
}

// Controller emulates an LE controller. It answers the host's commands the
// way hardware would, from its Settings and the configured peers.
//
// Controller state is owned by its dispatcher. The exported methods must be
// called there, which for a dispatch.TestLoop is the test goroutine.
type Controller struct {
	*ControllerBase

	settings      Settings
	handlers      map[int]handlerFunc
	defaultStatus map[int]hci.ErrCommand

	peers      []*Peer
	nextHandle uint16
	pending    *pendingConnection

	eventMask       uint64
	leEventMask     uint64
	leHostSupported bool
	randomAddr      [6]byte

	scanParams       cmd.LESetScanParameters
	scanEnabled      bool
	filterDuplicates bool
	reportInterval   time.Duration
	reportTask       *dispatch.Task

	advParams   cmd.LESetAdvertisingParameters
	advData     []byte
	scanRspData []byte
	advEnabled  bool

	notifyScope *dispatch.Scope
	notifyFn    func(Notification)
}

// NewController returns a controller reporting s.
func NewController(d dispatch.Dispatcher, s Settings) *Controller {
	c := &Controller{
		settings:       s,
		defaultStatus:  map[int]hci.ErrCommand{},
		nextHandle:     1,
		reportInterval: DefaultReportInterval,
	}
	c.ControllerBase = NewControllerBase(d, c.handleCommand)
	c.handlers = map[int]handlerFunc{
		cmd.DisconnectOpCode:                      c.handleDisconnect,
		cmd.SetEventMaskOpCode:                    c.handleSetEventMask,
		cmd.ResetOpCode:                           c.handleReset,
		cmd.WriteLEHostSupportOpCode:              c.handleWriteLEHostSupport,
		cmd.ReadLocalVersionInformationOpCode:     c.handleReadLocalVersionInformation,
		cmd.ReadLocalSupportedCommandsOpCode:      c.handleReadLocalSupportedCommands,
		cmd.ReadLocalSupportedFeaturesOpCode:      c.handleReadLocalSupportedFeatures,
		cmd.ReadLocalExtendedFeaturesOpCode:       c.handleReadLocalExtendedFeatures,
		cmd.ReadBufferSizeOpCode:                  c.handleReadBufferSize,
		cmd.ReadBDADDROpCode:                      c.handleReadBDADDR,
		cmd.LESetEventMaskOpCode:                  c.handleLESetEventMask,
		cmd.LEReadBufferSizeOpCode:                c.handleLEReadBufferSize,
		cmd.LEReadLocalSupportedFeaturesOpCode:    c.handleLEReadLocalSupportedFeatures,
		cmd.LESetRandomAddressOpCode:              c.handleLESetRandomAddress,
		cmd.LESetAdvertisingParametersOpCode:      c.handleLESetAdvertisingParameters,
		cmd.LEReadAdvertisingChannelTxPowerOpCode: c.handleLEReadAdvertisingChannelTxPower,
		cmd.LESetAdvertisingDataOpCode:            c.handleLESetAdvertisingData,
		cmd.LESetScanResponseDataOpCode:           c.handleLESetScanResponseData,
		cmd.LESetAdvertiseEnableOpCode:            c.handleLESetAdvertiseEnable,
		cmd.LESetScanParametersOpCode:             c.handleLESetScanParameters,
		cmd.LESetScanEnableOpCode:                 c.handleLESetScanEnable,
		cmd.LECreateConnectionOpCode:              c.handleLECreateConnection,
		cmd.LECreateConnectionCancelOpCode:        c.handleLECreateConnectionCancel,
		cmd.LEConnectionUpdateOpCode:              c.handleLEConnectionUpdate,
		cmd.LEReadSupportedStatesOpCode:           c.handleLEReadSupportedStates,
	}
	return c
}

// Settings ...
func (c *Controller) Settings() Settings { return c.settings }

// SetReportInterval changes how often advertising reports repeat.
func (c *Controller) SetReportInterval(d time.Duration) { c.reportInterval = d }

// SetDefaultResponseStatus makes every op command fail with status in a
// Command Complete, skipping its regular handling.
func (c *Controller) SetDefaultResponseStatus(op int, status hci.ErrCommand) {
	c.defaultStatus[op] = status
}

// ClearDefaultResponseStatus ...
func (c *Controller) ClearDefaultResponseStatus(op int) {
	delete(c.defaultStatus, op)
}

// SetNotificationHandler installs fn to receive state changes on d. Each
// notification is posted before the event that concludes the command which
// caused it.
func (c *Controller) SetNotificationHandler(d dispatch.Dispatcher, fn func(Notification)) {
	if c.notifyScope != nil {
		c.notifyScope.Close()
		c.notifyScope = nil
	}
	c.notifyFn = fn
	if fn != nil {
		c.notifyScope = dispatch.NewScope(d)
	}
}

func (c *Controller) notify(n Notification) {
	fn, s := c.notifyFn, c.notifyScope
	if fn == nil {
		return
	}
	s.Post(func() { fn(n) })
}

// AddPeer registers p. Addresses must be unique.
func (c *Controller) AddPeer(p *Peer) error {
	if p == nil {
		return errors.New("nil peer")
	}
	if c.FindPeer(p.Address) != nil {
		return errors.Errorf("peer %v already exists", p.Address)
	}
	c.peers = append(c.peers, p)
	return nil
}

// RemovePeer forgets the peer at addr, dropping its links silently.
func (c *Controller) RemovePeer(addr lecore.DeviceAddress) bool {
	for i, p := range c.peers {
		if p.Address == addr {
			c.peers = append(c.peers[:i:i], c.peers[i+1:]...)
			return true
		}
	}
	return false
}

// FindPeer ...
func (c *Controller) FindPeer(addr lecore.DeviceAddress) *Peer {
	for _, p := range c.peers {
		if p.Address == addr {
			return p
		}
	}
	return nil
}

// Peers returns the peers in the order they were added.
func (c *Controller) Peers() []*Peer {
	return append([]*Peer(nil), c.peers...)
}

func (c *Controller) findPeerByHandle(h uint16) *Peer {
	for _, p := range c.peers {
		if p.hasLink(h) {
			return p
		}
	}
	return nil
}

// ScanEnabled ...
func (c *Controller) ScanEnabled() bool { return c.scanEnabled }

// ScanParameters returns the last accepted LE Set Scan Parameters.
func (c *Controller) ScanParameters() cmd.LESetScanParameters { return c.scanParams }

// AdvertisingEnabled ...
func (c *Controller) AdvertisingEnabled() bool { return c.advEnabled }

// AdvertisingParameters returns the last accepted LE Set Advertising
// Parameters.
func (c *Controller) AdvertisingParameters() cmd.LESetAdvertisingParameters { return c.advParams }

// AdvertisingData ...
func (c *Controller) AdvertisingData() []byte { return append([]byte(nil), c.advData...) }

// ScanResponseData ...
func (c *Controller) ScanResponseData() []byte { return append([]byte(nil), c.scanRspData...) }

// RandomAddress returns the address set with LE Set Random Address.
func (c *Controller) RandomAddress() lecore.DeviceAddress {
	return lecore.NewAddress(lecore.AddrTypeLERandom, c.randomAddr)
}

// LEHostSupported reports what the host wrote with Write LE Host Support.
func (c *Controller) LEHostSupported() bool { return c.leHostSupported }

// EventMasks returns the masks written by Set Event Mask and LE Set Event
// Mask.
func (c *Controller) EventMasks() (mask, leMask uint64) { return c.eventMask, c.leEventMask }

// ConnectionPending reports whether an LE Create Connection is outstanding.
func (c *Controller) ConnectionPending() bool { return c.pending != nil }

// ConnectLowEnergy simulates a remote central connecting to addr. role is
// the role of the host on the new link.
func (c *Controller) ConnectLowEnergy(addr lecore.DeviceAddress, role uint8) (uint16, error) {
	p := c.FindPeer(addr)
	if p == nil {
		return 0, errors.Errorf("no peer %v", addr)
	}
	h, ok := c.allocateHandle()
	if !ok {
		return 0, hci.ErrConnLimit
	}
	params := hci.ConnectionParameters{
		Interval:           hci.DefaultConnIntervalMin,
		Latency:            hci.DefaultConnLatency,
		SupervisionTimeout: hci.DefaultSupervisionTimeout,
	}
	if !p.connected {
		c.notify(ConnectionStateChanged{Address: addr, Connected: true})
	}
	p.addLink(h)
	p.params = params
	c.sendConnectionComplete(hci.ErrSuccess, h, role, addr, params)
	return h, nil
}

// Disconnect drops every link to the peer at addr. Each link gets a
// Disconnection Complete with reason Remote User Terminated Connection.
func (c *Controller) Disconnect(addr lecore.DeviceAddress) bool {
	p := c.FindPeer(addr)
	if p == nil || !p.connected {
		return false
	}
	handles := p.Handles()
	p.handles = nil
	p.connected = false
	c.notify(ConnectionStateChanged{Address: addr})
	for _, h := range handles {
		c.SendEvent(evt.DisconnectionCompleteCode,
			evt.EncodeDisconnectionComplete(uint8(hci.ErrSuccess), h, hci.ReasonRemoteUser))
	}
	return true
}

// Close stops reporting and drops scheduled events.
func (c *Controller) Close() error {
	c.stopReports()
	c.dropPending()
	if c.notifyScope != nil {
		c.notifyScope.Close()
	}
	return c.ControllerBase.Close()
}

func (c *Controller) dropPending() *pendingConnection {
	pc := c.pending
	if pc == nil {
		return nil
	}
	if pc.task != nil {
		pc.task.Cancel()
	}
	c.pending = nil
	return pc
}

func (c *Controller) allocateHandle() (uint16, bool) {
	if c.nextHandle >= maxConnectionHandle {
		return 0, false
	}
	h := c.nextHandle
	c.nextHandle++
	return h, true
}

func (c *Controller) handleCommand(op int, params []byte) {
	if status, ok := c.defaultStatus[op]; ok {
		c.logger.Debugf("responding to 0x%04X with default status %v", op, status)
		c.RespondWithStatus(op, uint8(status))
		return
	}
	h, ok := c.handlers[op]
	if !ok || !c.settings.supportsOpcode(op) {
		c.logger.Warnf("unsupported command 0x%04X", op)
		c.RespondWithStatus(op, uint8(hci.ErrUnknownCommand))
		return
	}
	h(op, params)
}

// decode parses params into d. Parameter lengths must be exact.
func (c *Controller) decode(op int, params []byte, d interface {
	Len() int
	Unmarshal([]byte) error
}) bool {
	if len(params) != d.Len() {
		c.logger.Warnf("command 0x%04X has %d parameter bytes, want %d", op, len(params), d.Len())
		return false
	}
	if err := d.Unmarshal(params); err != nil {
		c.logger.Warnf("can't decode command 0x%04X: %v", op, err)
		return false
	}
	return true
}

func (c *Controller) sendConnectionComplete(status hci.ErrCommand, h uint16, role uint8, addr lecore.DeviceAddress, params hci.ConnectionParameters) {
	f := evt.ConnectionCompleteFields{
		Status:          uint8(status),
		Role:            role,
		PeerAddressType: hci.AddressTypeOf(addr),
		PeerAddress:     addr.Value,
	}
	if status == hci.ErrSuccess {
		f.ConnectionHandle = h
		f.ConnInterval = params.Interval
		f.ConnLatency = params.Latency
		f.SupervisionTimeout = params.SupervisionTimeout
	}
	c.SendLEMetaEvent(f.Encode())
}

func (c *Controller) startReports() {
	c.stopReports()
	c.scope.Post(c.sendAdvertisingReports)
}

func (c *Controller) stopReports() {
	if c.reportTask != nil {
		c.reportTask.Cancel()
		c.reportTask = nil
	}
}

// sendAdvertisingReports runs one reporting pass over the peers. Without
// duplicate filtering the pass repeats every reportInterval.
func (c *Controller) sendAdvertisingReports() {
	c.reportTask = nil
	if !c.scanEnabled {
		return
	}
	for _, p := range c.peers {
		c.sendReportsFor(p)
	}
	if !c.filterDuplicates {
		c.reportTask = c.scope.PostDelayed(c.reportInterval, c.sendAdvertisingReports)
	}
}

func (c *Controller) sendReportsFor(p *Peer) {
	r := evt.AdvertisingReportFields{
		EventType:   p.advertisingEventType(),
		AddressType: hci.AddressTypeOf(p.Address),
		Address:     p.Address.Value,
		Data:        p.AdvertisingData,
		RSSI:        p.RSSI,
	}
	active := c.scanParams.LEScanType == hci.LEScanTypeActive
	if !active || !p.Scannable {
		c.SendLEMetaEvent(evt.EncodeAdvertisingReport(r))
		return
	}

	rsp := r
	rsp.EventType = evt.ScanRsp
	rsp.Data = p.ScanResponse
	if p.ShouldBatchReports {
		c.SendLEMetaEvent(evt.EncodeAdvertisingReport(r, rsp))
		return
	}
	c.SendLEMetaEvent(evt.EncodeAdvertisingReport(r))
	c.SendLEMetaEvent(evt.EncodeAdvertisingReport(rsp))
}
