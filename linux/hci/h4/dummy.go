// +build !linux

package h4

import (
	"io"

	"github.com/pkg/errors"
)

// NewSerial is a dummy function for non-Linux platform.
func NewSerial(o SerialOptions) (io.ReadWriteCloser, error) {
	return nil, errors.New("only available on linux")
}
