// Package locate finds the embedded firmware record inside the padded
// firmware region of an update file.
//
// The record layout is
//
//	start  uint32 big-endian  load address
//	length uint32 big-endian  payload size
//	payload [length]byte
//
// and its offset inside the region is not fixed by the container format.
package locate

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the size of the start/length prefix.
	HeaderSize = 8
	// ScanLimit caps the offsets tried by the slow path. A record starting
	// beyond it is never found.
	ScanLimit = 0x40000
)

// Pad is the filler sequence repeated after the record.
var Pad = []byte{0x78, 0x00, 0xFF}

// ErrBlockNotFound is returned when no offset holds a valid record.
var ErrBlockNotFound = errors.New("firmware block not found")

// Block describes one located firmware record.
type Block struct {
	Offset  int    // offset of the start field inside the searched buffer
	Start   uint32 // load address
	Length  uint32
	Payload []byte // aliases the searched buffer
}

// TrimPad strips whole trailing repetitions of Pad.
func TrimPad(buf []byte) []byte {
	for bytes.HasSuffix(buf, Pad) {
		buf = buf[:len(buf)-len(Pad)]
	}
	return buf
}

// Locate returns the firmware record in buf.
//
// When the trimmed buffer is exactly one record it is returned directly.
// Otherwise every offset below ScanLimit is tried and the record with the
// greatest length that fits in the buffer wins; the lowest offset wins ties.
func Locate(buf []byte) (Block, error) {
	data := TrimPad(buf)
	n := len(data)

	if n >= HeaderSize {
		start := binary.BigEndian.Uint32(data[0:4])
		length := binary.BigEndian.Uint32(data[4:8])
		if uint64(n-HeaderSize) == uint64(length) {
			return Block{
				Offset:  0,
				Start:   start,
				Length:  length,
				Payload: data[HeaderSize:],
			}, nil
		}
	}

	limit := n - HeaderSize
	if limit > ScanLimit {
		limit = ScanLimit
	}

	var best Block
	found := false
	for off := 0; off < limit; off++ {
		length := binary.BigEndian.Uint32(data[off+4 : off+8])
		if length == 0 || uint64(length) > uint64(n) {
			continue
		}
		if uint64(off)+HeaderSize+uint64(length) > uint64(n) {
			continue
		}
		if found && length <= best.Length {
			continue
		}

		end := off + HeaderSize + int(length)
		best = Block{
			Offset:  off,
			Start:   binary.BigEndian.Uint32(data[off : off+4]),
			Length:  length,
			Payload: data[off+HeaderSize : end],
		}
		found = true
	}

	if !found {
		return Block{}, errors.Wrapf(ErrBlockNotFound, "locate: no record in %d bytes", n)
	}
	return best, nil
}
