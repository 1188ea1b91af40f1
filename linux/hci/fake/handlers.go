package fake

import (
	"github.com/rigado/lecore/linux/adv"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

func (c *Controller) respond(op int, status hci.ErrCommand) {
	c.RespondWithStatus(op, uint8(status))
}

func (c *Controller) status(op int, status hci.ErrCommand) {
	c.SendCommandStatus(uint8(status), op)
}

func (c *Controller) handleReset(op int, params []byte) {
	c.stopReports()
	if c.scanEnabled {
		c.scanEnabled = false
		c.notify(ScanStateChanged{})
	}
	if c.advEnabled {
		c.advEnabled = false
		c.notify(AdvertisingStateChanged{})
	}
	c.dropPending()
	c.eventMask, c.leEventMask = 0, 0
	c.leHostSupported = false
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleSetEventMask(op int, params []byte) {
	var p cmd.SetEventMask
	if !c.decode(op, params, &p) {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	c.eventMask = p.EventMask
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleLESetEventMask(op int, params []byte) {
	var p cmd.LESetEventMask
	if !c.decode(op, params, &p) {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	c.leEventMask = p.LEEventMask
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleWriteLEHostSupport(op int, params []byte) {
	var p cmd.WriteLEHostSupport
	if !c.decode(op, params, &p) || p.LESupportedHost > 1 {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	c.leHostSupported = p.LESupportedHost == 1
	bit := uint64(1) << hci.LMPFeatureLESupportedHost.Bit
	if c.leHostSupported {
		c.settings.LMPFeaturePages[1] |= bit
	} else {
		c.settings.LMPFeaturePages[1] &^= bit
	}
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleReadLocalVersionInformation(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.ReadLocalVersionInformationRP{
		HCIVersion:       c.settings.HCIVersion,
		HCIRevision:      c.settings.HCIRevision,
		LMPPALVersion:    c.settings.HCIVersion,
		ManufacturerName: c.settings.Manufacturer,
	})
}

func (c *Controller) handleReadLocalSupportedCommands(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.ReadLocalSupportedCommandsRP{
		SupportedCommands: c.settings.SupportedCommands,
	})
}

func (c *Controller) handleReadLocalSupportedFeatures(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.ReadLocalSupportedFeaturesRP{
		LMPFeatures: c.settings.LMPFeaturePages[0],
	})
}

func (c *Controller) handleReadLocalExtendedFeatures(op int, params []byte) {
	var p cmd.ReadLocalExtendedFeatures
	if !c.decode(op, params, &p) || p.PageNumber > hci.MaxLMPFeaturePage {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	c.RespondWithReturnParameters(op, &cmd.ReadLocalExtendedFeaturesRP{
		PageNumber:          p.PageNumber,
		MaximumPageNumber:   c.settings.LMPFeaturesMaxPage,
		ExtendedLMPFeatures: c.settings.LMPFeaturePages[p.PageNumber],
	})
}

func (c *Controller) handleReadBufferSize(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.ReadBufferSizeRP{
		HCACLDataPacketLength:    c.settings.ACLDataPacketLength,
		HCTotalNumACLDataPackets: c.settings.TotalNumACLDataPackets,
	})
}

func (c *Controller) handleReadBDADDR(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.ReadBDADDRRP{
		BDADDR: c.settings.BDADDR.Value,
	})
}

func (c *Controller) handleLEReadBufferSize(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.LEReadBufferSizeRP{
		HCLEDataPacketLength:    c.settings.LEACLDataPacketLength,
		HCTotalNumLEDataPackets: c.settings.LETotalNumACLDataPackets,
	})
}

func (c *Controller) handleLEReadLocalSupportedFeatures(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.LEReadLocalSupportedFeaturesRP{
		LEFeatures: c.settings.LEFeatures,
	})
}

func (c *Controller) handleLEReadSupportedStates(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.LEReadSupportedStatesRP{
		LEStates: c.settings.LEStates,
	})
}

func (c *Controller) handleLEReadAdvertisingChannelTxPower(op int, params []byte) {
	c.RespondWithReturnParameters(op, &cmd.LEReadAdvertisingChannelTxPowerRP{
		TransmitPowerLevel: c.settings.AdvertisingTxPower,
	})
}

func (c *Controller) handleLESetRandomAddress(op int, params []byte) {
	var p cmd.LESetRandomAddress
	if !c.decode(op, params, &p) {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	if c.advEnabled || c.scanEnabled || c.pending != nil {
		c.respond(op, hci.ErrDisallowed)
		return
	}
	c.randomAddr = p.RandomAddress
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleLESetAdvertisingParameters(op int, params []byte) {
	var p cmd.LESetAdvertisingParameters
	if !c.decode(op, params, &p) {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	if c.advEnabled {
		c.respond(op, hci.ErrDisallowed)
		return
	}
	if p.AdvertisingIntervalMin < hci.AdvIntervalMin || p.AdvertisingIntervalMax > hci.AdvIntervalMax ||
		p.AdvertisingIntervalMin > p.AdvertisingIntervalMax || p.AdvertisingType > hci.AdvTypeMax {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	c.advParams = p
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleLESetAdvertisingData(op int, params []byte) {
	var p cmd.LESetAdvertisingData
	if !c.decode(op, params, &p) || p.AdvertisingDataLength > adv.MaxEIRPacketLength {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	if c.advEnabled {
		c.respond(op, hci.ErrDisallowed)
		return
	}
	c.advData = append([]byte(nil), p.AdvertisingData[:p.AdvertisingDataLength]...)
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleLESetScanResponseData(op int, params []byte) {
	var p cmd.LESetScanResponseData
	if !c.decode(op, params, &p) || p.ScanResponseDataLength > adv.MaxEIRPacketLength {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	if c.advEnabled {
		c.respond(op, hci.ErrDisallowed)
		return
	}
	c.scanRspData = append([]byte(nil), p.ScanResponseData[:p.ScanResponseDataLength]...)
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleLESetAdvertiseEnable(op int, params []byte) {
	var p cmd.LESetAdvertiseEnable
	if !c.decode(op, params, &p) || p.AdvertisingEnable > 1 {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	enable := p.AdvertisingEnable == 1
	if enable != c.advEnabled {
		c.advEnabled = enable
		c.notify(AdvertisingStateChanged{Enabled: enable})
	}
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleLESetScanParameters(op int, params []byte) {
	var p cmd.LESetScanParameters
	if !c.decode(op, params, &p) {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	if c.scanEnabled {
		c.respond(op, hci.ErrDisallowed)
		return
	}
	if p.LEScanType > hci.LEScanTypeActive || hci.ValidateScanParams(p.LEScanInterval, p.LEScanWindow) != nil {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	c.scanParams = p
	c.respond(op, hci.ErrSuccess)
}

func (c *Controller) handleLESetScanEnable(op int, params []byte) {
	var p cmd.LESetScanEnable
	if !c.decode(op, params, &p) || p.LEScanEnable > 1 || p.FilterDuplicates > 1 {
		c.respond(op, hci.ErrInvalidParameters)
		return
	}
	enable := p.LEScanEnable == 1
	c.filterDuplicates = p.FilterDuplicates == 1
	if enable != c.scanEnabled {
		c.scanEnabled = enable
		c.notify(ScanStateChanged{
			Enabled:          enable,
			Active:           c.scanParams.LEScanType == hci.LEScanTypeActive,
			FilterDuplicates: c.filterDuplicates,
		})
	}
	c.respond(op, hci.ErrSuccess)
	if enable {
		c.startReports()
	} else {
		c.stopReports()
	}
}

func (c *Controller) handleLECreateConnection(op int, params []byte) {
	var p cmd.LECreateConnection
	if !c.decode(op, params, &p) {
		c.status(op, hci.ErrInvalidParameters)
		return
	}
	if c.pending != nil {
		c.status(op, hci.ErrDisallowed)
		return
	}
	if p.ConnIntervalMin > p.ConnIntervalMax {
		c.status(op, hci.ErrInvalidParameters)
		return
	}

	addr := hci.AddressFromHCI(p.PeerAddressType, p.PeerAddress)
	var peer *Peer
	if p.InitiatorFilterPolicy == hci.FilterPolicyAcceptWhitelist {
		peer = c.firstConnectablePeer()
		if peer != nil {
			addr = peer.Address
		}
	} else {
		peer = c.FindPeer(addr)
	}

	status := hci.ErrSuccess
	if peer != nil {
		status = peer.ConnectStatus
		if peer.connected {
			status = hci.ErrACLConnExists
		}
	}
	var handle uint16
	if status == hci.ErrSuccess {
		h, ok := c.allocateHandle()
		if !ok {
			status = hci.ErrConnLimit
		}
		handle = h
	}
	c.status(op, status)
	if status != hci.ErrSuccess {
		return
	}

	pc := &pendingConnection{
		addr:   addr,
		peer:   peer,
		handle: handle,
		params: hci.ConnectionParameters{
			Interval:           p.ConnIntervalMin,
			Latency:            p.ConnLatency,
			SupervisionTimeout: p.SupervisionTimeout,
		},
	}
	c.pending = pc
	if peer == nil || !peer.Connectable {
		c.logger.Debugf("%v is not connectable, connection won't complete", addr)
		return
	}
	pc.status = peer.ConnectResponse

	complete := func() {
		if c.pending == pc {
			c.completeConnection(pc)
		}
	}
	if peer.ConnectResponseDelay <= 0 {
		c.scope.Post(complete)
		return
	}
	pc.task = c.scope.PostDelayed(peer.ConnectResponseDelay, complete)
}

func (c *Controller) firstConnectablePeer() *Peer {
	for _, p := range c.peers {
		if p.Connectable && !p.connected {
			return p
		}
	}
	return nil
}

func (c *Controller) completeConnection(pc *pendingConnection) {
	c.pending = nil
	if pc.status == hci.ErrSuccess {
		if !pc.peer.connected {
			c.notify(ConnectionStateChanged{Address: pc.addr, Connected: true})
		}
		pc.peer.addLink(pc.handle)
		pc.peer.params = pc.params
	}
	c.sendConnectionComplete(pc.status, pc.handle, hci.RoleMaster, pc.addr, pc.params)
}

func (c *Controller) handleLECreateConnectionCancel(op int, params []byte) {
	pc := c.dropPending()
	if pc == nil {
		c.respond(op, hci.ErrDisallowed)
		return
	}
	c.notify(ConnectionStateChanged{Address: pc.addr, Canceled: true})
	c.respond(op, hci.ErrSuccess)
	c.sendConnectionComplete(hci.ErrConnID, 0, hci.RoleMaster, pc.addr, hci.ConnectionParameters{})
}

func (c *Controller) handleDisconnect(op int, params []byte) {
	var p cmd.Disconnect
	if !c.decode(op, params, &p) {
		c.status(op, hci.ErrInvalidParameters)
		return
	}
	h := p.ConnectionHandle & maxConnectionHandle
	peer := c.findPeerByHandle(h)
	if peer == nil {
		c.status(op, hci.ErrConnID)
		return
	}
	peer.removeLink(h)
	if !peer.connected {
		c.notify(ConnectionStateChanged{Address: peer.Address})
	}
	c.status(op, hci.ErrSuccess)
	c.SendEvent(evt.DisconnectionCompleteCode,
		evt.EncodeDisconnectionComplete(uint8(hci.ErrSuccess), h, hci.ReasonLocalHost))
}

func (c *Controller) handleLEConnectionUpdate(op int, params []byte) {
	var p cmd.LEConnectionUpdate
	if !c.decode(op, params, &p) {
		c.status(op, hci.ErrInvalidParameters)
		return
	}
	h := p.ConnectionHandle & maxConnectionHandle
	peer := c.findPeerByHandle(h)
	if peer == nil {
		c.status(op, hci.ErrConnID)
		return
	}
	if p.ConnIntervalMin > p.ConnIntervalMax {
		c.status(op, hci.ErrInvalidParameters)
		return
	}

	cp := hci.ConnectionParameters{
		Interval:           p.ConnIntervalMax,
		Latency:            p.ConnLatency,
		SupervisionTimeout: p.SupervisionTimeout,
	}
	peer.params = cp
	c.notify(ConnectionParametersUpdated{Address: peer.Address, Handle: h, Parameters: cp})
	c.status(op, hci.ErrSuccess)
	c.SendLEMetaEvent(evt.ConnectionUpdateCompleteFields{
		ConnectionHandle:   h,
		ConnInterval:       cp.Interval,
		ConnLatency:        cp.Latency,
		SupervisionTimeout: cp.SupervisionTimeout,
	}.Encode())
}

