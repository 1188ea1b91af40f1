package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/adv"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/fake"
)

type infoResult struct {
	Address        string `json:"address"`
	HCIVersion     uint8  `json:"hciVersion"`
	HCIRevision    uint16 `json:"hciRevision"`
	Manufacturer   uint16 `json:"manufacturer"`
	BREDR          bool   `json:"bredr"`
	LEFeatures     uint64 `json:"leFeatures"`
	LEStates       uint64 `json:"leStates"`
	LEBufferLength uint16 `json:"leBufferLength"`
	LEBufferCount  uint8  `json:"leBufferCount"`
}

func info(c *cli.Context, s *stack) error {
	st := s.state
	r := infoResult{
		Address:        st.BDADDR.String(),
		HCIVersion:     st.HCIVersion,
		HCIRevision:    st.HCIRevision,
		Manufacturer:   st.Manufacturer,
		BREDR:          st.IsBREDRSupported(),
		LEFeatures:     st.LowEnergy.SupportedFeatures,
		LEStates:       st.LowEnergy.SupportedStates,
		LEBufferLength: st.LowEnergy.DataPacketLength,
		LEBufferCount:  st.LowEnergy.MaxNumPackets,
	}
	return output(c, r, fmt.Sprintf("%s HCI 0x%02X rev 0x%04X manufacturer 0x%04X, BR/EDR: %v, LE buffers: %d x %d",
		r.Address, r.HCIVersion, r.HCIRevision, r.Manufacturer, r.BREDR, r.LEBufferCount, r.LEBufferLength))
}

type deviceResult struct {
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	RSSI        int8   `json:"rssi"`
	Connectable bool   `json:"connectable"`
	Data        []byte `json:"data,omitempty"`
	ScanRsp     []byte `json:"scanRsp,omitempty"`
}

func scan(c *cli.Context, s *stack) error {
	done := make(chan error, 1)
	var scanner *hci.LowEnergyScanner
	err := s.doErr(func() error {
		var err error
		scanner, err = hci.NewLowEnergyScanner(s.ch, s.loop, hci.ScannerDelegateFunc(func(d hci.DiscoveredDevice) {
			r := deviceResult{
				Address:     d.Address.String(),
				Name:        d.LocalName(),
				RSSI:        d.RSSI,
				Connectable: d.Connectable,
				Data:        d.Data,
				ScanRsp:     d.ScanResponse,
			}
			output(c, r, fmt.Sprintf("%s %3d %-5v %q", r.Address, r.RSSI, r.Connectable, r.Name))
		}))
		if err != nil {
			return err
		}
		ok := scanner.StartScan(c.Bool("active"), hci.DefaultLEScanInterval, hci.DefaultLEScanWindow,
			!c.Bool("dup"), hci.FilterPolicyAcceptAll, c.Duration("duration"), func(st hci.ScanStatus) {
				switch st {
				case hci.ScanStatusFailed:
					done <- errors.New("scan failed")
				case hci.ScanStatusComplete, hci.ScanStatusStopped:
					done <- nil
				}
			})
		if !ok {
			return errors.New("can't start scan")
		}
		return nil
	})
	if err != nil {
		return err
	}
	err = s.wait(done, 0)
	s.do(scanner.Close)
	return err
}

type connectResult struct {
	Address string `json:"address"`
	Handle  uint16 `json:"handle"`
	hci.ConnectionParameters
}

func connect(c *cli.Context, s *stack) error {
	peer, err := parseAddr(c)
	if err != nil {
		return err
	}

	type result struct {
		err  error
		conn *hci.Connection
	}
	res := make(chan result, 1)
	var connector *hci.LowEnergyConnector
	err = s.doErr(func() error {
		var err error
		connector, err = hci.NewLowEnergyConnector(s.ch, s.state.BDADDR, s.loop, nil)
		if err != nil {
			return err
		}
		ok := connector.CreateConnection(hci.AddressTypePublic, false, peer,
			hci.DefaultLEScanInterval, hci.DefaultLEScanWindow, hci.DefaultPreferredConnectionParameters(),
			func(err error, conn *hci.Connection) { res <- result{err, conn} }, c.Duration("tmo"))
		if !ok {
			return errors.Errorf("can't connect to %v", peer)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer s.do(connector.Close)

	var r result
	select {
	case r = <-res:
	case err := <-s.fatal:
		return errors.Wrap(err, "controller failed")
	}
	if r.err != nil {
		return errors.Wrapf(r.err, "can't connect to %v", peer)
	}
	if err := output(c, connectResult{
		Address:              peer.String(),
		Handle:               r.conn.Handle(),
		ConnectionParameters: r.conn.Parameters(),
	}, fmt.Sprintf("connected to %v, handle 0x%04X, %v", peer, r.conn.Handle(), r.conn.Parameters())); err != nil {
		return err
	}

	gone := make(chan error, 1)
	err = s.doErr(func() error {
		r.conn.SetDisconnectHandler(func(reason error) { gone <- nil })
		return r.conn.Disconnect(hci.ReasonRemoteUser)
	})
	if err != nil {
		return err
	}
	return s.wait(gone, time.Second)
}

func advertise(c *cli.Context, s *stack) error {
	p, err := adv.NewPacket(adv.Flags(0x06), adv.CompleteName(c.String("name")))
	if err != nil {
		return errors.Wrap(err, "can't build advertising data")
	}

	started := make(chan error, 1)
	var advertiser *hci.LegacyLowEnergyAdvertiser
	var connector *hci.LowEnergyConnector
	err = s.doErr(func() error {
		var err error
		if advertiser, err = hci.NewLegacyLowEnergyAdvertiser(s.ch, s.loop); err != nil {
			return err
		}
		if connector, err = hci.NewLowEnergyConnector(s.ch, s.state.BDADDR, s.loop, advertiser.OnIncomingConnection); err != nil {
			return err
		}
		opts := hci.DefaultAdvertisingOptions()
		var connectCb func(*hci.Connection)
		opts.Connectable = c.Bool("connectable")
		if opts.Connectable {
			connectCb = func(conn *hci.Connection) {
				fmt.Printf("connection from %v, handle 0x%04X\n", conn.PeerAddress(), conn.Handle())
			}
		}
		advertiser.StartAdvertising(s.state.BDADDR, p.Bytes(), nil, opts, connectCb, func(err error) { started <- err })
		return nil
	})
	if err != nil {
		return err
	}
	defer s.do(func() {
		connector.Close()
		advertiser.Close()
	})

	if err := s.wait(started, 0); err != nil {
		return errors.Wrap(err, "can't advertise")
	}
	fmt.Printf("advertising %q as %v for %v\n", c.String("name"), s.state.BDADDR, c.Duration("duration"))
	return s.wait(nil, c.Duration("duration"))
}

func peerFile(c *cli.Context) (*fake.PeerFile, error) {
	f := c.GlobalString("peers")
	if f == "" {
		return nil, errors.New("missing --peers")
	}
	return fake.NewPeerFile(f), nil
}

func peerAdd(c *cli.Context) error {
	pf, err := peerFile(c)
	if err != nil {
		return err
	}
	addr, err := parseAddr(c)
	if err != nil {
		return err
	}
	p := fake.NewPeer(addr, c.Bool("connectable"), c.Bool("scannable"))
	p.RSSI = int8(c.Int("rssi"))
	data, err := adv.NewPacket(adv.Flags(0x06))
	if err != nil {
		return err
	}
	rsp, err := adv.NewPacket(adv.CompleteName(c.String("name")))
	if err != nil {
		return err
	}
	p.AdvertisingData = data.Bytes()
	p.ScanResponse = rsp.Bytes()
	if !p.Scannable {
		// without scan requests the name travels in the advertisement
		p.AdvertisingData = append(p.AdvertisingData, p.ScanResponse...)
		p.ScanResponse = nil
	}
	return pf.Store(p, true)
}

func peerList(c *cli.Context) error {
	pf, err := peerFile(c)
	if err != nil {
		return err
	}
	peers, err := pf.LoadAll()
	if err != nil {
		return err
	}
	for _, p := range peers {
		name := ""
		if pkt, err := adv.NewRawPacket(p.AdvertisingData, p.ScanResponse); err == nil {
			name = pkt.LocalName()
		}
		r := deviceResult{
			Address:     p.Address.String(),
			Name:        name,
			RSSI:        p.RSSI,
			Connectable: p.Connectable,
			Data:        p.AdvertisingData,
			ScanRsp:     p.ScanResponse,
		}
		if err := output(c, r, fmt.Sprintf("%s %-6v %q", addrLabel(p.Address), p.Connectable, name)); err != nil {
			return err
		}
	}
	return nil
}

func peerClear(c *cli.Context) error {
	pf, err := peerFile(c)
	if err != nil {
		return err
	}
	return pf.Clear()
}

func addrLabel(a lecore.DeviceAddress) string {
	return a.Type.String() + " " + a.String()
}
