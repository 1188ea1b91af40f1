package h4

// SerialOptions configures an H4 UART.
type SerialOptions struct {
	PortName          string
	BaudRate          uint
	RTSCTSFlowControl bool

	// FlushOnOpen sends an HCI Reset and discards whatever the controller
	// had queued.
	FlushOnOpen bool
}

// DefaultSerialOptions ...
func DefaultSerialOptions() SerialOptions {
	return SerialOptions{
		BaudRate:          1000000,
		RTSCTSFlowControl: true,
		FlushOnOpen:       true,
	}
}
