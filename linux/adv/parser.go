package adv

import (
	"github.com/pkg/errors"
)

// https://www.bluetooth.org/en-us/specification/assigned-numbers/generic-access-profile
var types = struct {
	flags     byte
	nameshort byte
	namecomp  byte
	txpwr     byte
	mfgdata   byte
}{
	flags:     0x01,
	nameshort: 0x08,
	namecomp:  0x09,
	txpwr:     0x0a,
	mfgdata:   0xff,
}

var keys = struct {
	flags     string
	nameshort string
	namecomp  string
	txpwr     string
	mfgdata   string
}{
	flags:     "flags",
	nameshort: "nameshort",
	namecomp:  "name",
	txpwr:     "txpwr",
	mfgdata:   "mfg",
}

type pduRecord struct {
	minSz int
	key   string
}

var pduDecodeMap = map[byte]pduRecord{
	types.namecomp:  {1, keys.namecomp},
	types.nameshort: {1, keys.nameshort},
	types.txpwr:     {1, keys.txpwr},
	types.mfgdata:   {2, keys.mfgdata},
	types.flags:     {1, keys.flags},
}

// decode walks the AD structures of pdu. Types it doesn't know are skipped;
// a structure running past the end of the data is an error.
func decode(pdu []byte) (map[string][]byte, error) {
	m := make(map[string][]byte)
	for i := 0; i < len(pdu); {

		//length @ offset 0
		//type @ offset 1
		//data @ 2 - length
		length := int(pdu[i])

		// zero length marks the end of significant data
		if length == 0 {
			break
		}

		//do we have all the bytes for the payload?
		if i+length >= len(pdu) {
			return nil, errors.Errorf("buffer overflow: want %v, have %v", i+length+1, len(pdu))
		}

		typ := pdu[i+1]
		bytes := pdu[i+2 : i+1+length]

		if dec, ok := pduDecodeMap[typ]; ok {
			if dec.minSz > len(bytes) {
				return nil, errors.Errorf("adv type %v: min length %v, have %v", typ, dec.minSz, len(bytes))
			}
			m[dec.key] = bytes
		}

		i += length + 1
	}

	return m, nil
}
