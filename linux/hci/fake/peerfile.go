package fake

import (
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/hci"
)

type peerRecord struct {
	Address              string `json:"address"`
	Random               bool   `json:"random,omitempty"`
	Connectable          bool   `json:"connectable"`
	Scannable            bool   `json:"scannable"`
	AdvertisingData      []byte `json:"advData,omitempty"`
	ScanResponse         []byte `json:"scanRsp,omitempty"`
	BatchReports         bool   `json:"batchReports,omitempty"`
	RSSI                 int8   `json:"rssi"`
	ConnectStatus        uint8  `json:"connectStatus,omitempty"`
	ConnectResponse      uint8  `json:"connectResponse,omitempty"`
	ConnectResponseDelay int64  `json:"connectResponseDelayMs,omitempty"`
}

func newPeerRecord(p *Peer) peerRecord {
	return peerRecord{
		Address:              p.Address.String(),
		Random:               p.Address.Type == lecore.AddrTypeLERandom,
		Connectable:          p.Connectable,
		Scannable:            p.Scannable,
		AdvertisingData:      p.AdvertisingData,
		ScanResponse:         p.ScanResponse,
		BatchReports:         p.ShouldBatchReports,
		RSSI:                 p.RSSI,
		ConnectStatus:        uint8(p.ConnectStatus),
		ConnectResponse:      uint8(p.ConnectResponse),
		ConnectResponseDelay: int64(p.ConnectResponseDelay / time.Millisecond),
	}
}

func (r peerRecord) peer() (*Peer, error) {
	t := lecore.AddrTypeLEPublic
	if r.Random {
		t = lecore.AddrTypeLERandom
	}
	a, err := lecore.ParseAddress(t, r.Address)
	if err != nil {
		return nil, err
	}
	p := NewPeer(a, r.Connectable, r.Scannable)
	p.AdvertisingData = r.AdvertisingData
	p.ScanResponse = r.ScanResponse
	p.ShouldBatchReports = r.BatchReports
	p.RSSI = r.RSSI
	p.ConnectStatus = hci.ErrCommand(r.ConnectStatus)
	p.ConnectResponse = hci.ErrCommand(r.ConnectResponse)
	p.ConnectResponseDelay = time.Duration(r.ConnectResponseDelay) * time.Millisecond
	return p, nil
}

func peerKey(a lecore.DeviceAddress) string {
	return a.Type.String() + "/" + a.String()
}

// PeerFile stores peer descriptions as JSON, keyed by address.
type PeerFile struct {
	filename string
	lock     sync.RWMutex
}

// NewPeerFile ...
func NewPeerFile(filename string) *PeerFile {
	return &PeerFile{filename: filename}
}

// Store saves p. An existing entry for the same address is only overwritten
// when replace is set.
func (pf *PeerFile) Store(p *Peer, replace bool) error {
	pf.lock.Lock()
	defer pf.lock.Unlock()

	peers, err := pf.loadExisting()
	if err != nil {
		return err
	}

	k := peerKey(p.Address)
	_, ok := peers[k]
	if ok && !replace {
		return fmt.Errorf("peer file already contains %s", p.Address)
	}

	peers[k] = newPeerRecord(p)
	return pf.storePeers(peers)
}

// Load returns the peer stored for addr.
func (pf *PeerFile) Load(addr lecore.DeviceAddress) (*Peer, error) {
	pf.lock.RLock()
	defer pf.lock.RUnlock()

	peers, err := pf.loadExisting()
	if err != nil {
		return nil, err
	}

	r, ok := peers[peerKey(addr)]
	if !ok {
		return nil, fmt.Errorf("peer %s not found in %s", addr, pf.filename)
	}
	return r.peer()
}

// LoadAll returns every stored peer, ordered by address.
func (pf *PeerFile) LoadAll() ([]*Peer, error) {
	pf.lock.RLock()
	defer pf.lock.RUnlock()

	peers, err := pf.loadExisting()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(peers))
	for k := range peers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Peer, 0, len(keys))
	for _, k := range keys {
		p, err := peers[k].peer()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Clear removes the file.
func (pf *PeerFile) Clear() error {
	pf.lock.Lock()
	defer pf.lock.Unlock()

	return os.Remove(pf.filename)
}

func (pf *PeerFile) loadExisting() (map[string]peerRecord, error) {
	_, err := os.Stat(pf.filename)
	if os.IsNotExist(err) {
		return map[string]peerRecord{}, nil
	}

	in, err := ioutil.ReadFile(pf.filename)
	if err != nil {
		return nil, err
	}

	var peers map[string]peerRecord
	err = jsoniter.Unmarshal(in, &peers)
	if err != nil {
		return nil, err
	}
	if peers == nil {
		peers = map[string]peerRecord{}
	}
	return peers, nil
}

func (pf *PeerFile) storePeers(peers map[string]peerRecord) error {
	out, err := jsoniter.Marshal(peers)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(pf.filename, out, 0644)
}

// LoadPeers adds every peer stored in filename to c.
func LoadPeers(c *Controller, filename string) error {
	peers, err := NewPeerFile(filename).LoadAll()
	if err != nil {
		return err
	}
	for _, p := range peers {
		if err := c.AddPeer(p); err != nil {
			return err
		}
	}
	return nil
}

// StorePeers writes the peers of c to filename, replacing existing entries.
func StorePeers(c *Controller, filename string) error {
	pf := NewPeerFile(filename)
	for _, p := range c.Peers() {
		if err := pf.Store(p, true); err != nil {
			return err
		}
	}
	return nil
}
