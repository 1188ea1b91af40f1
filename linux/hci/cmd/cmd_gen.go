package cmd

// Opcodes of the implemented commands.
const (
	DisconnectOpCode                      = 0x01<<10 | 0x0006
	SetEventMaskOpCode                    = 0x03<<10 | 0x0001
	ResetOpCode                           = 0x03<<10 | 0x0003
	WriteLEHostSupportOpCode              = 0x03<<10 | 0x006D
	ReadLocalVersionInformationOpCode     = 0x04<<10 | 0x0001
	ReadLocalSupportedCommandsOpCode      = 0x04<<10 | 0x0002
	ReadLocalSupportedFeaturesOpCode      = 0x04<<10 | 0x0003
	ReadLocalExtendedFeaturesOpCode       = 0x04<<10 | 0x0004
	ReadBufferSizeOpCode                  = 0x04<<10 | 0x0005
	ReadBDADDROpCode                      = 0x04<<10 | 0x0009
	LESetEventMaskOpCode                  = 0x08<<10 | 0x0001
	LEReadBufferSizeOpCode                = 0x08<<10 | 0x0002
	LEReadLocalSupportedFeaturesOpCode    = 0x08<<10 | 0x0003
	LESetRandomAddressOpCode              = 0x08<<10 | 0x0005
	LESetAdvertisingParametersOpCode      = 0x08<<10 | 0x0006
	LEReadAdvertisingChannelTxPowerOpCode = 0x08<<10 | 0x0007
	LESetAdvertisingDataOpCode            = 0x08<<10 | 0x0008
	LESetScanResponseDataOpCode           = 0x08<<10 | 0x0009
	LESetAdvertiseEnableOpCode            = 0x08<<10 | 0x000A
	LESetScanParametersOpCode             = 0x08<<10 | 0x000B
	LESetScanEnableOpCode                 = 0x08<<10 | 0x000C
	LECreateConnectionOpCode              = 0x08<<10 | 0x000D
	LECreateConnectionCancelOpCode        = 0x08<<10 | 0x000E
	LEConnectionUpdateOpCode              = 0x08<<10 | 0x0013
	LEReadSupportedStatesOpCode           = 0x08<<10 | 0x001C
)

// Disconnect implements Disconnect (0x01|0x0006) [Vol 2, Part E, 7.1.6]
type Disconnect struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *Disconnect) String() string {
	return "Disconnect (0x01|0x0006)"
}

// OpCode returns the opcode of the command.
func (c *Disconnect) OpCode() int { return DisconnectOpCode }

// Len returns the length of the command.
func (c *Disconnect) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *Disconnect) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *Disconnect) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// SetEventMask implements Set Event Mask (0x03|0x0001) [Vol 2, Part E, 7.3.1]
type SetEventMask struct {
	EventMask uint64
}

func (c *SetEventMask) String() string {
	return "Set Event Mask (0x03|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *SetEventMask) OpCode() int { return SetEventMaskOpCode }

// Len returns the length of the command.
func (c *SetEventMask) Len() int { return 8 }

// Marshal serializes the command parameters into binary form.
func (c *SetEventMask) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *SetEventMask) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2]
type Reset struct{}

func (c *Reset) String() string {
	return "Reset (0x03|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *Reset) OpCode() int { return ResetOpCode }

// Len returns the length of the command.
func (c *Reset) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *Reset) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *Reset) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// WriteLEHostSupport implements Write LE Host Support (0x03|0x006D) [Vol 2, Part E, 7.3.79]
type WriteLEHostSupport struct {
	LESupportedHost    uint8
	SimultaneousLEHost uint8
}

func (c *WriteLEHostSupport) String() string {
	return "Write LE Host Support (0x03|0x006D)"
}

// OpCode returns the opcode of the command.
func (c *WriteLEHostSupport) OpCode() int { return WriteLEHostSupportOpCode }

// Len returns the length of the command.
func (c *WriteLEHostSupport) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *WriteLEHostSupport) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *WriteLEHostSupport) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalVersionInformation implements Read Local Version Information (0x04|0x0001) [Vol 2, Part E, 7.4.1]
type ReadLocalVersionInformation struct{}

func (c *ReadLocalVersionInformation) String() string {
	return "Read Local Version Information (0x04|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalVersionInformation) OpCode() int { return ReadLocalVersionInformationOpCode }

// Len returns the length of the command.
func (c *ReadLocalVersionInformation) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalVersionInformation) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *ReadLocalVersionInformation) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalVersionInformationRP returns the return parameter of Read Local Version Information
type ReadLocalVersionInformationRP struct {
	Status           uint8
	HCIVersion       uint8
	HCIRevision      uint16
	LMPPALVersion    uint8
	ManufacturerName uint16
	LMPPALSubversion uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalVersionInformationRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *ReadLocalVersionInformationRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// ReadLocalSupportedCommands implements Read Local Supported Commands (0x04|0x0002) [Vol 2, Part E, 7.4.2]
type ReadLocalSupportedCommands struct{}

func (c *ReadLocalSupportedCommands) String() string {
	return "Read Local Supported Commands (0x04|0x0002)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalSupportedCommands) OpCode() int { return ReadLocalSupportedCommandsOpCode }

// Len returns the length of the command.
func (c *ReadLocalSupportedCommands) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalSupportedCommands) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *ReadLocalSupportedCommands) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalSupportedCommandsRP returns the return parameter of Read Local Supported Commands
type ReadLocalSupportedCommandsRP struct {
	Status            uint8
	SupportedCommands [64]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalSupportedCommandsRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *ReadLocalSupportedCommandsRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// ReadLocalSupportedFeatures implements Read Local Supported Features (0x04|0x0003) [Vol 2, Part E, 7.4.3]
type ReadLocalSupportedFeatures struct{}

func (c *ReadLocalSupportedFeatures) String() string {
	return "Read Local Supported Features (0x04|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalSupportedFeatures) OpCode() int { return ReadLocalSupportedFeaturesOpCode }

// Len returns the length of the command.
func (c *ReadLocalSupportedFeatures) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalSupportedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *ReadLocalSupportedFeatures) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalSupportedFeaturesRP returns the return parameter of Read Local Supported Features
type ReadLocalSupportedFeaturesRP struct {
	Status      uint8
	LMPFeatures uint64
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalSupportedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *ReadLocalSupportedFeaturesRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// ReadLocalExtendedFeatures implements Read Local Extended Features (0x04|0x0004) [Vol 2, Part E, 7.4.4]
type ReadLocalExtendedFeatures struct {
	PageNumber uint8
}

func (c *ReadLocalExtendedFeatures) String() string {
	return "Read Local Extended Features (0x04|0x0004)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalExtendedFeatures) OpCode() int { return ReadLocalExtendedFeaturesOpCode }

// Len returns the length of the command.
func (c *ReadLocalExtendedFeatures) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalExtendedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *ReadLocalExtendedFeatures) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalExtendedFeaturesRP returns the return parameter of Read Local Extended Features
type ReadLocalExtendedFeaturesRP struct {
	Status              uint8
	PageNumber          uint8
	MaximumPageNumber   uint8
	ExtendedLMPFeatures uint64
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalExtendedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *ReadLocalExtendedFeaturesRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// ReadBufferSize implements Read Buffer Size (0x04|0x0005) [Vol 2, Part E, 7.4.5]
type ReadBufferSize struct{}

func (c *ReadBufferSize) String() string {
	return "Read Buffer Size (0x04|0x0005)"
}

// OpCode returns the opcode of the command.
func (c *ReadBufferSize) OpCode() int { return ReadBufferSizeOpCode }

// Len returns the length of the command.
func (c *ReadBufferSize) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadBufferSize) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *ReadBufferSize) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadBufferSizeRP returns the return parameter of Read Buffer Size
type ReadBufferSizeRP struct {
	Status                           uint8
	HCACLDataPacketLength            uint16
	HCSynchronousDataPacketLength    uint8
	HCTotalNumACLDataPackets         uint16
	HCTotalNumSynchronousDataPackets uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadBufferSizeRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *ReadBufferSizeRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// ReadBDADDR implements Read BD_ADDR (0x04|0x0009) [Vol 2, Part E, 7.4.6]
type ReadBDADDR struct{}

func (c *ReadBDADDR) String() string {
	return "Read BD_ADDR (0x04|0x0009)"
}

// OpCode returns the opcode of the command.
func (c *ReadBDADDR) OpCode() int { return ReadBDADDROpCode }

// Len returns the length of the command.
func (c *ReadBDADDR) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadBDADDR) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *ReadBDADDR) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadBDADDRRP returns the return parameter of Read BD_ADDR
type ReadBDADDRRP struct {
	Status uint8
	BDADDR [6]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadBDADDRRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *ReadBDADDRRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// LESetEventMask implements LE Set Event Mask (0x08|0x0001) [Vol 2, Part E, 7.8.1]
type LESetEventMask struct {
	LEEventMask uint64
}

func (c *LESetEventMask) String() string {
	return "LE Set Event Mask (0x08|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *LESetEventMask) OpCode() int { return LESetEventMaskOpCode }

// Len returns the length of the command.
func (c *LESetEventMask) Len() int { return 8 }

// Marshal serializes the command parameters into binary form.
func (c *LESetEventMask) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetEventMask) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadBufferSize implements LE Read Buffer Size (0x08|0x0002) [Vol 2, Part E, 7.8.2]
type LEReadBufferSize struct{}

func (c *LEReadBufferSize) String() string {
	return "LE Read Buffer Size (0x08|0x0002)"
}

// OpCode returns the opcode of the command.
func (c *LEReadBufferSize) OpCode() int { return LEReadBufferSizeOpCode }

// Len returns the length of the command.
func (c *LEReadBufferSize) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadBufferSize) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LEReadBufferSize) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadBufferSizeRP returns the return parameter of LE Read Buffer Size
type LEReadBufferSizeRP struct {
	Status                  uint8
	HCLEDataPacketLength    uint16
	HCTotalNumLEDataPackets uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadBufferSizeRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *LEReadBufferSizeRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// LEReadLocalSupportedFeatures implements LE Read Local Supported Features (0x08|0x0003) [Vol 2, Part E, 7.8.3]
type LEReadLocalSupportedFeatures struct{}

func (c *LEReadLocalSupportedFeatures) String() string {
	return "LE Read Local Supported Features (0x08|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *LEReadLocalSupportedFeatures) OpCode() int { return LEReadLocalSupportedFeaturesOpCode }

// Len returns the length of the command.
func (c *LEReadLocalSupportedFeatures) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadLocalSupportedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LEReadLocalSupportedFeatures) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadLocalSupportedFeaturesRP returns the return parameter of LE Read Local Supported Features
type LEReadLocalSupportedFeaturesRP struct {
	Status     uint8
	LEFeatures uint64
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadLocalSupportedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *LEReadLocalSupportedFeaturesRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// LESetRandomAddress implements LE Set Random Address (0x08|0x0005) [Vol 2, Part E, 7.8.4]
type LESetRandomAddress struct {
	RandomAddress [6]byte
}

func (c *LESetRandomAddress) String() string {
	return "LE Set Random Address (0x08|0x0005)"
}

// OpCode returns the opcode of the command.
func (c *LESetRandomAddress) OpCode() int { return LESetRandomAddressOpCode }

// Len returns the length of the command.
func (c *LESetRandomAddress) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *LESetRandomAddress) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetRandomAddress) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LESetAdvertisingParameters implements LE Set Advertising Parameters (0x08|0x0006) [Vol 2, Part E, 7.8.5]
type LESetAdvertisingParameters struct {
	AdvertisingIntervalMin  uint16
	AdvertisingIntervalMax  uint16
	AdvertisingType         uint8
	OwnAddressType          uint8
	DirectAddressType       uint8
	DirectAddress           [6]byte
	AdvertisingChannelMap   uint8
	AdvertisingFilterPolicy uint8
}

func (c *LESetAdvertisingParameters) String() string {
	return "LE Set Advertising Parameters (0x08|0x0006)"
}

// OpCode returns the opcode of the command.
func (c *LESetAdvertisingParameters) OpCode() int { return LESetAdvertisingParametersOpCode }

// Len returns the length of the command.
func (c *LESetAdvertisingParameters) Len() int { return 15 }

// Marshal serializes the command parameters into binary form.
func (c *LESetAdvertisingParameters) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetAdvertisingParameters) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadAdvertisingChannelTxPower implements LE Read Advertising Channel Tx Power (0x08|0x0007) [Vol 2, Part E, 7.8.6]
type LEReadAdvertisingChannelTxPower struct{}

func (c *LEReadAdvertisingChannelTxPower) String() string {
	return "LE Read Advertising Channel Tx Power (0x08|0x0007)"
}

// OpCode returns the opcode of the command.
func (c *LEReadAdvertisingChannelTxPower) OpCode() int { return LEReadAdvertisingChannelTxPowerOpCode }

// Len returns the length of the command.
func (c *LEReadAdvertisingChannelTxPower) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadAdvertisingChannelTxPower) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LEReadAdvertisingChannelTxPower) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadAdvertisingChannelTxPowerRP returns the return parameter of LE Read Advertising Channel Tx Power
type LEReadAdvertisingChannelTxPowerRP struct {
	Status             uint8
	TransmitPowerLevel int8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadAdvertisingChannelTxPowerRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *LEReadAdvertisingChannelTxPowerRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}

// LESetAdvertisingData implements LE Set Advertising Data (0x08|0x0008) [Vol 2, Part E, 7.8.7]
type LESetAdvertisingData struct {
	AdvertisingDataLength uint8
	AdvertisingData       [31]byte
}

func (c *LESetAdvertisingData) String() string {
	return "LE Set Advertising Data (0x08|0x0008)"
}

// OpCode returns the opcode of the command.
func (c *LESetAdvertisingData) OpCode() int { return LESetAdvertisingDataOpCode }

// Len returns the length of the command.
func (c *LESetAdvertisingData) Len() int { return 32 }

// Marshal serializes the command parameters into binary form.
func (c *LESetAdvertisingData) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetAdvertisingData) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LESetScanResponseData implements LE Set Scan Response Data (0x08|0x0009) [Vol 2, Part E, 7.8.8]
type LESetScanResponseData struct {
	ScanResponseDataLength uint8
	ScanResponseData       [31]byte
}

func (c *LESetScanResponseData) String() string {
	return "LE Set Scan Response Data (0x08|0x0009)"
}

// OpCode returns the opcode of the command.
func (c *LESetScanResponseData) OpCode() int { return LESetScanResponseDataOpCode }

// Len returns the length of the command.
func (c *LESetScanResponseData) Len() int { return 32 }

// Marshal serializes the command parameters into binary form.
func (c *LESetScanResponseData) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetScanResponseData) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LESetAdvertiseEnable implements LE Set Advertise Enable (0x08|0x000A) [Vol 2, Part E, 7.8.9]
type LESetAdvertiseEnable struct {
	AdvertisingEnable uint8
}

func (c *LESetAdvertiseEnable) String() string {
	return "LE Set Advertise Enable (0x08|0x000A)"
}

// OpCode returns the opcode of the command.
func (c *LESetAdvertiseEnable) OpCode() int { return LESetAdvertiseEnableOpCode }

// Len returns the length of the command.
func (c *LESetAdvertiseEnable) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *LESetAdvertiseEnable) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetAdvertiseEnable) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LESetScanParameters implements LE Set Scan Parameters (0x08|0x000B) [Vol 2, Part E, 7.8.10]
type LESetScanParameters struct {
	LEScanType           uint8
	LEScanInterval       uint16
	LEScanWindow         uint16
	OwnAddressType       uint8
	ScanningFilterPolicy uint8
}

func (c *LESetScanParameters) String() string {
	return "LE Set Scan Parameters (0x08|0x000B)"
}

// OpCode returns the opcode of the command.
func (c *LESetScanParameters) OpCode() int { return LESetScanParametersOpCode }

// Len returns the length of the command.
func (c *LESetScanParameters) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *LESetScanParameters) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetScanParameters) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LESetScanEnable implements LE Set Scan Enable (0x08|0x000C) [Vol 2, Part E, 7.8.11]
type LESetScanEnable struct {
	LEScanEnable     uint8
	FilterDuplicates uint8
}

func (c *LESetScanEnable) String() string {
	return "LE Set Scan Enable (0x08|0x000C)"
}

// OpCode returns the opcode of the command.
func (c *LESetScanEnable) OpCode() int { return LESetScanEnableOpCode }

// Len returns the length of the command.
func (c *LESetScanEnable) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *LESetScanEnable) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LESetScanEnable) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LECreateConnection implements LE Create Connection (0x08|0x000D) [Vol 2, Part E, 7.8.12]
type LECreateConnection struct {
	LEScanInterval        uint16
	LEScanWindow          uint16
	InitiatorFilterPolicy uint8
	PeerAddressType       uint8
	PeerAddress           [6]byte
	OwnAddressType        uint8
	ConnIntervalMin       uint16
	ConnIntervalMax       uint16
	ConnLatency           uint16
	SupervisionTimeout    uint16
	MinimumCELength       uint16
	MaximumCELength       uint16
}

func (c *LECreateConnection) String() string {
	return "LE Create Connection (0x08|0x000D)"
}

// OpCode returns the opcode of the command.
func (c *LECreateConnection) OpCode() int { return LECreateConnectionOpCode }

// Len returns the length of the command.
func (c *LECreateConnection) Len() int { return 25 }

// Marshal serializes the command parameters into binary form.
func (c *LECreateConnection) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LECreateConnection) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LECreateConnectionCancel implements LE Create Connection Cancel (0x08|0x000E) [Vol 2, Part E, 7.8.13]
type LECreateConnectionCancel struct{}

func (c *LECreateConnectionCancel) String() string {
	return "LE Create Connection Cancel (0x08|0x000E)"
}

// OpCode returns the opcode of the command.
func (c *LECreateConnectionCancel) OpCode() int { return LECreateConnectionCancelOpCode }

// Len returns the length of the command.
func (c *LECreateConnectionCancel) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LECreateConnectionCancel) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LECreateConnectionCancel) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEConnectionUpdate implements LE Connection Update (0x08|0x0013) [Vol 2, Part E, 7.8.18]
type LEConnectionUpdate struct {
	ConnectionHandle   uint16
	ConnIntervalMin    uint16
	ConnIntervalMax    uint16
	ConnLatency        uint16
	SupervisionTimeout uint16
	MinimumCELength    uint16
	MaximumCELength    uint16
}

func (c *LEConnectionUpdate) String() string {
	return "LE Connection Update (0x08|0x0013)"
}

// OpCode returns the opcode of the command.
func (c *LEConnectionUpdate) OpCode() int { return LEConnectionUpdateOpCode }

// Len returns the length of the command.
func (c *LEConnectionUpdate) Len() int { return 14 }

// Marshal serializes the command parameters into binary form.
func (c *LEConnectionUpdate) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LEConnectionUpdate) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadSupportedStates implements LE Read Supported States (0x08|0x001C) [Vol 2, Part E, 7.8.27]
type LEReadSupportedStates struct{}

func (c *LEReadSupportedStates) String() string {
	return "LE Read Supported States (0x08|0x001C)"
}

// OpCode returns the opcode of the command.
func (c *LEReadSupportedStates) OpCode() int { return LEReadSupportedStatesOpCode }

// Len returns the length of the command.
func (c *LEReadSupportedStates) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadSupportedStates) Marshal(b []byte) error {
	return marshal(c, b)
}

// Unmarshal de-serializes the command parameters.
func (c *LEReadSupportedStates) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadSupportedStatesRP returns the return parameter of LE Read Supported States
type LEReadSupportedStatesRP struct {
	Status   uint8
	LEStates uint64
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadSupportedStatesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// Marshal serializes the return parameter.
func (c *LEReadSupportedStatesRP) Marshal() ([]byte, error) {
	return marshalRP(c)
}
