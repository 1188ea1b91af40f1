package hci

import (
	"time"

	"github.com/rigado/lecore"
)

type options struct {
	logger         lecore.Logger
	cmdTimeout     time.Duration
	scanRspTimeout time.Duration
	ownAddrType    uint8
	errorHandler   func(error)
}

// An Option is a configuration function, which configures a component.
type Option func(*options) error

func buildOptions(component string, opts []Option) (*options, error) {
	o := &options{
		cmdTimeout:     DefaultCommandTimeout,
		scanRspTimeout: DefaultScanResponseTimeout,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = lecore.ComponentLogger(component)
	}
	return o, nil
}

// WithLogger overrides the component logger.
func WithLogger(l lecore.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

// WithCommandTimeout sets how long the command channel waits for a Command
// Complete or Command Status before giving up on the controller.
func WithCommandTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return ErrInvalidParams
		}
		o.cmdTimeout = d
		return nil
	}
}

// WithScanReportTimeout sets how long an active scan waits for the scan
// response of a scannable advertiser.
func WithScanReportTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return ErrInvalidParams
		}
		o.scanRspTimeout = d
		return nil
	}
}

// WithOwnAddressType selects the address type the scanner uses in scan
// requests.
func WithOwnAddressType(t uint8) Option {
	return func(o *options) error {
		if t != AddressTypePublic && t != AddressTypeRandom {
			return ErrInvalidParams
		}
		o.ownAddrType = t
		return nil
	}
}

// WithErrorHandler installs a handler for fatal command channel errors.
func WithErrorHandler(h func(error)) Option {
	return func(o *options) error {
		o.errorHandler = h
		return nil
	}
}
