package fake

import (
	"github.com/rigado/lecore"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/cmd"
)

// HCI versions reported by the presets.
const (
	HCIVersion42 = 0x08
	HCIVersion50 = 0x09
)

// SupportedCommand names one bit of the Supported_Commands bitmap
// [Vol 2, Part E, 6.27].
type SupportedCommand struct {
	Octet int
	Bit   uint
}

// Supported commands the controller understands.
var (
	CommandDisconnect                      = SupportedCommand{0, 5}
	CommandSetEventMask                    = SupportedCommand{5, 6}
	CommandReset                           = SupportedCommand{5, 7}
	CommandReadLocalVersionInformation     = SupportedCommand{14, 3}
	CommandReadLocalSupportedFeatures      = SupportedCommand{14, 5}
	CommandReadLocalExtendedFeatures       = SupportedCommand{14, 6}
	CommandReadBufferSize                  = SupportedCommand{14, 7}
	CommandReadBDADDR                      = SupportedCommand{15, 1}
	CommandWriteLEHostSupport              = SupportedCommand{24, 6}
	CommandLESetEventMask                  = SupportedCommand{25, 0}
	CommandLEReadBufferSize                = SupportedCommand{25, 1}
	CommandLEReadLocalSupportedFeatures    = SupportedCommand{25, 2}
	CommandLESetRandomAddress              = SupportedCommand{25, 4}
	CommandLESetAdvertisingParameters      = SupportedCommand{25, 5}
	CommandLEReadAdvertisingChannelTxPower = SupportedCommand{25, 6}
	CommandLESetAdvertisingData            = SupportedCommand{25, 7}
	CommandLESetScanResponseData           = SupportedCommand{26, 0}
	CommandLESetAdvertiseEnable            = SupportedCommand{26, 1}
	CommandLESetScanParameters             = SupportedCommand{26, 2}
	CommandLESetScanEnable                 = SupportedCommand{26, 3}
	CommandLECreateConnection              = SupportedCommand{26, 4}
	CommandLECreateConnectionCancel        = SupportedCommand{26, 5}
	CommandLEConnectionUpdate              = SupportedCommand{27, 2}
	CommandLEReadSupportedStates           = SupportedCommand{28, 3}
)

// commandBits maps opcodes to their Supported_Commands bit. Opcodes missing
// here are always accepted.
var commandBits = map[int]SupportedCommand{
	cmd.DisconnectOpCode:                      CommandDisconnect,
	cmd.SetEventMaskOpCode:                    CommandSetEventMask,
	cmd.ResetOpCode:                           CommandReset,
	cmd.ReadLocalVersionInformationOpCode:     CommandReadLocalVersionInformation,
	cmd.ReadLocalSupportedFeaturesOpCode:      CommandReadLocalSupportedFeatures,
	cmd.ReadLocalExtendedFeaturesOpCode:       CommandReadLocalExtendedFeatures,
	cmd.ReadBufferSizeOpCode:                  CommandReadBufferSize,
	cmd.ReadBDADDROpCode:                      CommandReadBDADDR,
	cmd.WriteLEHostSupportOpCode:              CommandWriteLEHostSupport,
	cmd.LESetEventMaskOpCode:                  CommandLESetEventMask,
	cmd.LEReadBufferSizeOpCode:                CommandLEReadBufferSize,
	cmd.LEReadLocalSupportedFeaturesOpCode:    CommandLEReadLocalSupportedFeatures,
	cmd.LESetRandomAddressOpCode:              CommandLESetRandomAddress,
	cmd.LESetAdvertisingParametersOpCode:      CommandLESetAdvertisingParameters,
	cmd.LEReadAdvertisingChannelTxPowerOpCode: CommandLEReadAdvertisingChannelTxPower,
	cmd.LESetAdvertisingDataOpCode:            CommandLESetAdvertisingData,
	cmd.LESetScanResponseDataOpCode:           CommandLESetScanResponseData,
	cmd.LESetAdvertiseEnableOpCode:            CommandLESetAdvertiseEnable,
	cmd.LESetScanParametersOpCode:             CommandLESetScanParameters,
	cmd.LESetScanEnableOpCode:                 CommandLESetScanEnable,
	cmd.LECreateConnectionOpCode:              CommandLECreateConnection,
	cmd.LECreateConnectionCancelOpCode:        CommandLECreateConnectionCancel,
	cmd.LEConnectionUpdateOpCode:              CommandLEConnectionUpdate,
	cmd.LEReadSupportedStatesOpCode:           CommandLEReadSupportedStates,
}

var baseCommands = []SupportedCommand{
	CommandDisconnect,
	CommandSetEventMask,
	CommandReset,
	CommandReadLocalVersionInformation,
	CommandReadLocalSupportedFeatures,
	CommandReadLocalExtendedFeatures,
	CommandReadBufferSize,
	CommandReadBDADDR,
	CommandLESetEventMask,
	CommandLEReadBufferSize,
	CommandLEReadLocalSupportedFeatures,
	CommandLESetRandomAddress,
	CommandLEReadSupportedStates,
}

var legacyLECommands = []SupportedCommand{
	CommandLESetAdvertisingParameters,
	CommandLEReadAdvertisingChannelTxPower,
	CommandLESetAdvertisingData,
	CommandLESetScanResponseData,
	CommandLESetAdvertiseEnable,
	CommandLESetScanParameters,
	CommandLESetScanEnable,
	CommandLECreateConnection,
	CommandLECreateConnectionCancel,
	CommandLEConnectionUpdate,
}

// DefaultBDADDR is the public address the presets report.
var DefaultBDADDR = lecore.MustParseAddress(lecore.AddrTypeLEPublic, "00:00:00:00:00:AA")

// Settings is the capability set a Controller reports. Presets return
// complete values; the With methods return modified copies.
type Settings struct {
	HCIVersion   uint8
	HCIRevision  uint16
	Manufacturer uint16
	BDADDR       lecore.DeviceAddress

	SupportedCommands  [64]byte
	LMPFeaturePages    [hci.MaxLMPFeaturePage + 1]uint64
	LMPFeaturesMaxPage uint8
	LEFeatures         uint64
	LEStates           uint64

	ACLDataPacketLength      uint16
	TotalNumACLDataPackets   uint16
	LEACLDataPacketLength    uint16
	LETotalNumACLDataPackets uint8

	AdvertisingTxPower int8
}

// LEOnlyDefaults is an HCI 5.0 LE-only controller that supports the basic
// setup commands and nothing else.
func LEOnlyDefaults() Settings {
	s := Settings{
		HCIVersion:               HCIVersion50,
		Manufacturer:             0xFFFF,
		BDADDR:                   DefaultBDADDR,
		LEFeatures:               1 << hci.LEFeatureEncryption,
		LEStates:                 0x000003FFFFFFFFFF,
		LEACLDataPacketLength:    0x00FB,
		LETotalNumACLDataPackets: 0x0B,
	}
	s = s.WithLMPFeature(hci.LMPFeatureLESupportedController).
		WithLMPFeature(hci.LMPFeatureBREDRNotSupported)
	return s.WithCommands(baseCommands...)
}

// LegacyLEConfig is an HCI 4.2 LE-only controller with the legacy
// advertising, scanning and connection commands.
func LegacyLEConfig() Settings {
	s := LEOnlyDefaults()
	s.HCIVersion = HCIVersion42
	s.LEACLDataPacketLength = 0x001B
	s.LETotalNumACLDataPackets = 0x04
	return s.WithCommands(legacyLECommands...)
}

// DualModeDefaults is an HCI 5.0 controller supporting both LE and BR/EDR,
// with two LMP feature pages.
func DualModeDefaults() Settings {
	s := Settings{
		HCIVersion:               HCIVersion50,
		Manufacturer:             0xFFFF,
		BDADDR:                   DefaultBDADDR,
		LMPFeaturesMaxPage:       1,
		LEFeatures:               1 << hci.LEFeatureEncryption,
		LEStates:                 0x000003FFFFFFFFFF,
		ACLDataPacketLength:      0x03FD,
		TotalNumACLDataPackets:   0x08,
		LEACLDataPacketLength:    0x00FB,
		LETotalNumACLDataPackets: 0x0B,
	}
	s = s.WithLMPFeature(hci.LMPFeatureLESupportedController).
		WithLMPFeature(hci.LMPFeatureSimultaneousLEBREDR).
		WithLMPFeature(hci.LMPFeatureExtendedFeatures).
		WithLMPFeature(hci.LMPFeatureSecureSimplePairing)
	s = s.WithCommands(baseCommands...)
	s = s.WithCommands(legacyLECommands...)
	return s.WithCommands(CommandWriteLEHostSupport)
}

// WithCommands returns a copy that also supports cmds.
func (s Settings) WithCommands(cmds ...SupportedCommand) Settings {
	for _, c := range cmds {
		s.SupportedCommands[c.Octet] |= 1 << c.Bit
	}
	return s
}

// WithoutCommands returns a copy that no longer supports cmds.
func (s Settings) WithoutCommands(cmds ...SupportedCommand) Settings {
	for _, c := range cmds {
		s.SupportedCommands[c.Octet] &^= 1 << c.Bit
	}
	return s
}

// WithLMPFeature returns a copy with f set.
func (s Settings) WithLMPFeature(f hci.LMPFeature) Settings {
	if int(f.Page) < len(s.LMPFeaturePages) {
		s.LMPFeaturePages[f.Page] |= 1 << f.Bit
	}
	return s
}

// SupportsCommand ...
func (s Settings) SupportsCommand(c SupportedCommand) bool {
	return s.SupportedCommands[c.Octet]&(1<<c.Bit) != 0
}

// HasLMPFeature ...
func (s Settings) HasLMPFeature(f hci.LMPFeature) bool {
	return int(f.Page) < len(s.LMPFeaturePages) && s.LMPFeaturePages[f.Page]&(1<<f.Bit) != 0
}

func (s Settings) supportsOpcode(op int) bool {
	c, ok := commandBits[op]
	return !ok || s.SupportsCommand(c)
}
