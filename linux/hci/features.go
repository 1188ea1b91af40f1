package hci

import "fmt"

// MaxLMPFeaturePage is the highest LMP feature page tracked.
const MaxLMPFeaturePage = 2

// LMPFeature names one bit of the LMP feature pages [Vol 2, Part C, 3.3].
type LMPFeature struct {
	Page uint8
	Bit  uint
}

// LMP features consulted by the host.
var (
	LMPFeatureLESupportedController   = LMPFeature{0, 38}
	LMPFeatureSimultaneousLEBREDR     = LMPFeature{0, 49}
	LMPFeatureBREDRNotSupported       = LMPFeature{0, 37}
	LMPFeatureExtendedFeatures        = LMPFeature{0, 63}
	LMPFeatureSecureSimplePairing     = LMPFeature{1, 0}
	LMPFeatureLESupportedHost         = LMPFeature{1, 1}
	LMPFeatureSimultaneousLEBREDRHost = LMPFeature{1, 2}
)

func (f LMPFeature) String() string {
	return fmt.Sprintf("page %d bit %d", f.Page, f.Bit)
}

// LMPFeatureSet holds up to three feature pages. A page that was never set
// reports every feature as unsupported.
type LMPFeatureSet struct {
	pages    [MaxLMPFeaturePage + 1]uint64
	valid    [MaxLMPFeaturePage + 1]bool
	lastPage uint8
}

// HasBit reports whether bit of page is set.
func (s *LMPFeatureSet) HasBit(page uint8, bit uint) bool {
	if !s.HasPage(page) || bit > 63 {
		return false
	}
	return s.pages[page]&(1<<bit) != 0
}

// Has reports whether feature f is supported.
func (s *LMPFeatureSet) Has(f LMPFeature) bool {
	return s.HasBit(f.Page, f.Bit)
}

// SetPage stores a whole page. Pages beyond MaxLMPFeaturePage are ignored.
func (s *LMPFeatureSet) SetPage(page uint8, bits uint64) {
	if page > MaxLMPFeaturePage {
		return
	}
	s.pages[page] = bits
	s.valid[page] = true
}

// Page returns the bits of page, 0 when unset.
func (s *LMPFeatureSet) Page(page uint8) uint64 {
	if !s.HasPage(page) {
		return 0
	}
	return s.pages[page]
}

// HasPage reports whether page was set.
func (s *LMPFeatureSet) HasPage(page uint8) bool {
	return page <= MaxLMPFeaturePage && s.valid[page]
}

// SetLastPageNumber records the highest page the controller reports,
// capped at MaxLMPFeaturePage.
func (s *LMPFeatureSet) SetLastPageNumber(n uint8) {
	if n > MaxLMPFeaturePage {
		n = MaxLMPFeaturePage
	}
	s.lastPage = n
}

// LastPageNumber ...
func (s *LMPFeatureSet) LastPageNumber() uint8 { return s.lastPage }

// LE features [Vol 6, Part B, 4.6].
const (
	LEFeatureEncryption           = 0
	LEFeatureConnParamsRequest    = 1
	LEFeatureExtendedReject       = 2
	LEFeatureSlaveInitiatedFeatEx = 3
	LEFeaturePing                 = 4
	LEFeatureDataPacketLengthExt  = 5
	LEFeatureLLPrivacy            = 6
	LEFeatureExtScannerFilter     = 7
)

// LowEnergyState holds the LE capabilities of the controller.
type LowEnergyState struct {
	SupportedFeatures uint64
	SupportedStates   uint64

	// ACL buffers dedicated to LE. Zero length means LE shares the BR/EDR
	// buffers.
	DataPacketLength uint16
	MaxNumPackets    uint8
}

// IsFeatureSupported reports whether LE feature bit is set.
func (s LowEnergyState) IsFeatureSupported(bit uint) bool {
	return bit < 64 && s.SupportedFeatures&(1<<bit) != 0
}

// DataBufferInfo describes controller ACL buffers.
type DataBufferInfo struct {
	MaxDataLength uint16
	MaxNumPackets uint16
}

// IsAvailable ...
func (d DataBufferInfo) IsAvailable() bool {
	return d.MaxDataLength > 0 && d.MaxNumPackets > 0
}
