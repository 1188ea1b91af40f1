package hci

import (
	"github.com/pkg/errors"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/hci/cmd"
)

// Event masks written during initialization.
const (
	defaultEventMask   = 0x3dbff807fffbffff
	defaultLEEventMask = 0x000000000000001f
)

// AdapterState is what the host learned about the controller while
// initializing it.
type AdapterState struct {
	HCIVersion        uint8
	HCIRevision       uint16
	Manufacturer      uint16
	SupportedCommands [64]byte
	Features          LMPFeatureSet
	BDADDR            lecore.DeviceAddress
	BREDRDataBuffer   DataBufferInfo
	LowEnergy         LowEnergyState
}

// IsLowEnergySupported ...
func (s *AdapterState) IsLowEnergySupported() bool {
	return s.Features.Has(LMPFeatureLESupportedController)
}

// IsBREDRSupported ...
func (s *AdapterState) IsBREDRSupported() bool {
	return !s.Features.Has(LMPFeatureBREDRNotSupported)
}

// IsCommandSupported reports bit of octet of the supported commands bitmap
// [Vol 2, Part E, 6.27].
func (s *AdapterState) IsCommandSupported(octet int, bit uint) bool {
	if octet < 0 || octet >= len(s.SupportedCommands) || bit > 7 {
		return false
	}
	return s.SupportedCommands[octet]&(1<<bit) != 0
}

// InitializeAdapterState resets the controller and reads its capabilities.
// cb receives the populated state, or the first command failure.
func InitializeAdapterState(ch *CommandChannel, cb func(*AdapterState, error)) error {
	st := &AdapterState{}
	r := NewSequentialCommandRunner(ch)
	var unmarshalErr error
	decode := func(rp cmd.CommandRP, e EventPacket) bool {
		if err := rp.Unmarshal(e.Params()[3:]); err != nil {
			unmarshalErr = errors.Wrapf(err, "can't decode return parameters of % X", e)
			r.Cancel()
			return false
		}
		return true
	}

	r.QueueCommand(&cmd.Reset{}, nil)
	r.QueueCommand(&cmd.ReadLocalVersionInformation{}, func(e EventPacket) {
		rp := &cmd.ReadLocalVersionInformationRP{}
		if decode(rp, e) {
			st.HCIVersion = rp.HCIVersion
			st.HCIRevision = rp.HCIRevision
			st.Manufacturer = rp.ManufacturerName
		}
	})
	r.QueueCommand(&cmd.ReadLocalSupportedCommands{}, func(e EventPacket) {
		rp := &cmd.ReadLocalSupportedCommandsRP{}
		if decode(rp, e) {
			st.SupportedCommands = rp.SupportedCommands
		}
	})
	r.QueueCommand(&cmd.ReadLocalSupportedFeatures{}, func(e EventPacket) {
		rp := &cmd.ReadLocalSupportedFeaturesRP{}
		if !decode(rp, e) {
			return
		}
		st.Features.SetPage(0, rp.LMPFeatures)
		if st.Features.Has(LMPFeatureExtendedFeatures) {
			queueExtendedFeatures(r, st, 1, decode)
		}
	})
	r.QueueCommand(&cmd.ReadBDADDR{}, func(e EventPacket) {
		rp := &cmd.ReadBDADDRRP{}
		if decode(rp, e) {
			st.BDADDR = lecore.NewAddress(lecore.AddrTypeLEPublic, rp.BDADDR)
		}
	})
	r.QueueCommand(&cmd.ReadBufferSize{}, func(e EventPacket) {
		rp := &cmd.ReadBufferSizeRP{}
		if decode(rp, e) {
			st.BREDRDataBuffer = DataBufferInfo{
				MaxDataLength: rp.HCACLDataPacketLength,
				MaxNumPackets: rp.HCTotalNumACLDataPackets,
			}
		}
	})
	r.QueueCommand(&cmd.LEReadBufferSize{}, func(e EventPacket) {
		rp := &cmd.LEReadBufferSizeRP{}
		if decode(rp, e) {
			st.LowEnergy.DataPacketLength = rp.HCLEDataPacketLength
			st.LowEnergy.MaxNumPackets = rp.HCTotalNumLEDataPackets
		}
	})
	r.QueueCommand(&cmd.LEReadLocalSupportedFeatures{}, func(e EventPacket) {
		rp := &cmd.LEReadLocalSupportedFeaturesRP{}
		if decode(rp, e) {
			st.LowEnergy.SupportedFeatures = rp.LEFeatures
		}
	})
	r.QueueCommand(&cmd.LEReadSupportedStates{}, func(e EventPacket) {
		rp := &cmd.LEReadSupportedStatesRP{}
		if !decode(rp, e) {
			return
		}
		st.LowEnergy.SupportedStates = rp.LEStates

		r.QueueCommand(&cmd.SetEventMask{EventMask: defaultEventMask}, nil)
		r.QueueCommand(&cmd.LESetEventMask{LEEventMask: defaultLEEventMask}, nil)
		if st.IsBREDRSupported() {
			r.QueueCommand(&cmd.WriteLEHostSupport{LESupportedHost: 1}, nil)
		}
	})

	return r.RunCommands(func(err error) {
		if unmarshalErr != nil {
			err = unmarshalErr
		}
		if err != nil {
			cb(nil, errors.Wrap(err, "can't initialize adapter"))
			return
		}
		if !st.IsLowEnergySupported() {
			cb(nil, errors.Wrap(ErrNotReady, "controller does not support LE"))
			return
		}
		cb(st, nil)
	})
}

func queueExtendedFeatures(r *SequentialCommandRunner, st *AdapterState, page uint8, decode func(cmd.CommandRP, EventPacket) bool) {
	r.QueueCommand(&cmd.ReadLocalExtendedFeatures{PageNumber: page}, func(e EventPacket) {
		rp := &cmd.ReadLocalExtendedFeaturesRP{}
		if !decode(rp, e) {
			return
		}
		st.Features.SetPage(rp.PageNumber, rp.ExtendedLMPFeatures)
		st.Features.SetLastPageNumber(rp.MaximumPageNumber)
		if next := rp.PageNumber + 1; next <= st.Features.LastPageNumber() {
			queueExtendedFeatures(r, st, next, decode)
		}
	})
}
