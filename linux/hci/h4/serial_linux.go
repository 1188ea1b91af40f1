package h4

import (
	"io"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

var resetCommand = []byte{0x01, 0x03, 0x0C, 0x00}

// NewSerial opens the UART described by o.
func NewSerial(o SerialOptions) (io.ReadWriteCloser, error) {
	sp, err := serial.Open(serial.OpenOptions{
		PortName:              o.PortName,
		BaudRate:              o.BaudRate,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     o.RTSCTSFlowControl,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %v", o.PortName)
	}

	if o.FlushOnOpen {
		if _, err := sp.Write(resetCommand); err != nil {
			sp.Close()
			return nil, errors.Wrap(err, "can't reset controller")
		}
		<-time.After(250 * time.Millisecond)
		b := make([]byte, 2048)
		if _, err := sp.Read(b); err != nil && err != io.EOF {
			sp.Close()
			return nil, errors.Wrap(err, "can't flush")
		}
	}
	return newH4(sp, true), nil
}
