package hci

import (
	"fmt"

	"github.com/rigado/lecore"
)

const (
	AddressTypePublic           = 0
	AddressTypeRandom           = 1
	FilterPolicyAcceptAll       = 0
	FilterPolicyAcceptWhitelist = 1
	LEScanTypePassive           = 0
	LEScanTypeActive            = 1

	LEScanIntervalMin = 0x0004
	LEScanIntervalMax = 0x4000
	LEScanWindowMin   = 0x0004
	LEScanWindowMax   = 0x4000

	ConnIntervalMin = 0x0006
	ConnIntervalMax = 0x0c80
	ConnLatencyMin  = 0x0000
	ConnLatencyMax  = 0x01f3

	SupervisionTimeoutMin = 0x000a
	SupervisionTimeoutMax = 0x0c80

	AdvIntervalMin = 0x0020
	AdvIntervalMax = 0x4000
)

// Default timing, in controller units.
const (
	DefaultLEScanInterval = 0x0060 // 60 ms
	DefaultLEScanWindow   = 0x0030 // 30 ms

	DefaultConnIntervalMin    = 0x0018 // 30 ms
	DefaultConnIntervalMax    = 0x0028 // 50 ms
	DefaultConnLatency        = 0x0000
	DefaultSupervisionTimeout = 0x002A // 420 ms

	DefaultAdvInterval = 0x0800 // 1.28 s
)

// ConnectionParameters are the timing values the controller reports for an
// established link. They change only through an LE Connection Update.
type ConnectionParameters struct {
	Interval           uint16 // N * 1.25 ms
	Latency            uint16
	SupervisionTimeout uint16 // N * 10 ms
}

func (p ConnectionParameters) String() string {
	return fmt.Sprintf("interval: %d latency: %d timeout: %d", p.Interval, p.Latency, p.SupervisionTimeout)
}

// PreferredConnectionParameters are what the host asks for when creating or
// updating a connection.
type PreferredConnectionParameters struct {
	MinInterval        uint16
	MaxInterval        uint16
	MaxLatency         uint16
	SupervisionTimeout uint16
}

// DefaultPreferredConnectionParameters ...
func DefaultPreferredConnectionParameters() PreferredConnectionParameters {
	return PreferredConnectionParameters{
		MinInterval:        DefaultConnIntervalMin,
		MaxInterval:        DefaultConnIntervalMax,
		MaxLatency:         DefaultConnLatency,
		SupervisionTimeout: DefaultSupervisionTimeout,
	}
}

// ValidateScanParams checks scan interval and window.
func ValidateScanParams(interval, window uint16) error {
	switch {
	case interval < LEScanIntervalMin || interval > LEScanIntervalMax:
		return fmt.Errorf("invalid LEScanInterval %v", interval)

	case window < LEScanWindowMin || window > LEScanWindowMax:
		return fmt.Errorf("invalid LEScanWindow %v", window)

	case window > interval:
		return fmt.Errorf("LEScanWindow %v > LEScanInterval %v", window, interval)
	}

	return nil
}

// ValidatePreferredParams checks connection parameters against the ranges of
// [Vol 2, Part E, 7.8.12].
func ValidatePreferredParams(p PreferredConnectionParameters) error {

	/* The Supervision_Timeout in milliseconds shall be larger than
	(1 + Conn_Latency) * Conn_Interval_Max * 2, where Conn_Interval_Max is
	given in milliseconds.
	*/
	minStoMs := (1 + float64(p.MaxLatency)) * (float64(p.MaxInterval) * 1.25) * 2
	stoMs := float64(p.SupervisionTimeout) * 10

	switch {
	case p.MaxInterval < ConnIntervalMin || p.MaxInterval > ConnIntervalMax:
		return fmt.Errorf("invalid ConnIntervalMax %v", p.MaxInterval)

	case p.MinInterval < ConnIntervalMin || p.MinInterval > ConnIntervalMax:
		return fmt.Errorf("invalid ConnIntervalMin %v", p.MinInterval)

	case p.MinInterval > p.MaxInterval:
		return fmt.Errorf("ConnIntervalMin %v > ConnIntervalMax %v", p.MinInterval, p.MaxInterval)

	case p.MaxLatency < ConnLatencyMin || p.MaxLatency > ConnLatencyMax:
		return fmt.Errorf("invalid ConnLatency %v", p.MaxLatency)

	case p.SupervisionTimeout < SupervisionTimeoutMin || p.SupervisionTimeout > SupervisionTimeoutMax:
		return fmt.Errorf("invalid SupervisionTimeout %v", p.SupervisionTimeout)

	case stoMs <= minStoMs:
		return fmt.Errorf("invalid SupervisionTimeout %v (too small)", p.SupervisionTimeout)
	}

	return nil
}

// AddressTypeOf maps an LE address to its HCI address type.
func AddressTypeOf(a lecore.DeviceAddress) uint8 {
	if a.Type == lecore.AddrTypeLERandom {
		return AddressTypeRandom
	}
	return AddressTypePublic
}

// AddressFromHCI maps an HCI peer address type to a DeviceAddress. The
// identity address types 0x02 and 0x03 fold into public and random.
func AddressFromHCI(t uint8, v [6]byte) lecore.DeviceAddress {
	if t&0x01 == AddressTypeRandom {
		return lecore.NewAddress(lecore.AddrTypeLERandom, v)
	}
	return lecore.NewAddress(lecore.AddrTypeLEPublic, v)
}
