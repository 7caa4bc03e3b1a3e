package x5a

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Encode builds an update file from a format tag, header records (written in
// slice order) and a firmware region, appending the checksum trailer.
func Encode(format byte, headers []Header, region []byte) ([]byte, error) {
	out := make([]byte, HeaderOffset, HeaderOffset+len(region)+64)
	out[0] = format

	for i, h := range headers {
		if len(h.Values) > 0xFF {
			return nil, errors.Errorf("x5a: header %d has %d values", i, len(h.Values))
		}
		out = append(out, byte(len(h.Values)))
		for j, v := range h.Values {
			if len(v) > 0xFF {
				return nil, errors.Errorf("x5a: header %d value %d is %d bytes", i, j, len(v))
			}
			out = append(out, byte(len(v)))
			out = append(out, v...)
		}
	}

	out = append(out, region...)
	return binary.LittleEndian.AppendUint32(out, Checksum(out)), nil
}

// KeyHeaders returns HeaderCount header records with keys in the key header
// and the given values, if any, in the others.
func KeyHeaders(keys []byte, other map[int][][]byte) []Header {
	headers := make([]Header, HeaderCount)
	for i := range headers {
		headers[i] = Header{Index: i, Values: other[i]}
	}
	headers[KeyHeader].Values = [][]byte{keys}
	return headers
}
