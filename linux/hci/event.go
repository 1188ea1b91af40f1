package hci

import (
	"github.com/pkg/errors"

	"github.com/rigado/lecore/linux/hci/evt"
)

// EventPacket is an HCI event without the H4 indicator: event code,
// parameter length, parameters.
type EventPacket []byte

// Code returns the event code.
func (p EventPacket) Code() uint8 { return p[0] }

// Params returns the event parameters.
func (p EventPacket) Params() []byte { return p[2:] }

// Subevent returns the LE Meta subevent code, or 0 for other events.
func (p EventPacket) Subevent() uint8 {
	if p.Code() != evt.LEMetaEventCode || len(p) < 3 {
		return 0
	}
	return p[2]
}

func parseEventPacket(b []byte) (EventPacket, error) {
	if len(b) < 2 {
		return nil, errors.Errorf("event too short: % X", b)
	}
	if int(b[1]) != len(b)-2 {
		return nil, errors.Errorf("invalid event length %d, have %d: % X", b[1], len(b)-2, b)
	}
	if b[0] == evt.LEMetaEventCode && len(b) < 3 {
		return nil, errors.Errorf("LE meta event without subevent: % X", b)
	}
	return EventPacket(b), nil
}

// EventStatus extracts the status carried by the events this host consumes.
// A success status maps to nil, anything else to ErrCommand.
func EventStatus(p EventPacket) error {
	params := p.Params()
	var status uint8
	var err error
	switch p.Code() {
	case evt.CommandCompleteCode:
		status, err = evt.CommandComplete(params).StatusWErr()
	case evt.CommandStatusCode:
		status, err = evt.CommandStatus(params).StatusWErr()
	case evt.LEMetaEventCode:
		if p.Subevent() == evt.LEAdvertisingReportSubCode {
			return nil
		}
		status, err = evt.LEConnectionComplete(params).StatusWErr()
	default:
		status, err = evt.DisconnectionComplete(params).StatusWErr()
	}
	if err != nil {
		return errors.Wrapf(err, "event 0x%02X carries no status", p.Code())
	}
	return statusError(status)
}
