// Package x5a parses x5a firmware update containers.
//
// Layout:
//
//	[0]      format tag
//	[1:3]    reserved
//	[3:]     6 header records: count u8, then count x (len u8, bytes)
//	...      firmware region, padded with 78 00 FF
//	[n-4:n]  checksum, uint32 little-endian sum of all preceding bytes
//
// Header 5 holds the three cipher key bytes.
package x5a

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"

	"x5a-fwcrack/internal/crypto"
	"x5a-fwcrack/internal/locate"
)

const (
	HeaderOffset = 3
	HeaderCount  = 6
	KeyHeader    = 5
	TrailerSize  = 4
)

var (
	ErrChecksumMismatch = errors.New("file checksum mismatch")
	ErrMissingKeyHeader = errors.New("encryption key header missing or malformed")
	ErrTruncated        = errors.New("truncated file")
)

// ReadFile reads and parses the update file at path.
func ReadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "x5a: read %s", path)
	}
	f, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "x5a: %s", path)
	}
	return f, nil
}

// Checksum returns the 32-bit wrapping sum of data.
func Checksum(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum
}

// VerifyChecksum checks the trailer of data and returns its value.
func VerifyChecksum(data []byte) (uint32, error) {
	if len(data) < TrailerSize {
		return 0, errors.Wrapf(ErrTruncated, "x5a: %d bytes, no checksum trailer", len(data))
	}
	body := data[:len(data)-TrailerSize]
	want := binary.LittleEndian.Uint32(data[len(data)-TrailerSize:])
	if got := Checksum(body); got != want {
		return want, errors.Wrapf(ErrChecksumMismatch, "x5a: computed 0x%08x, trailer 0x%08x", got, want)
	}
	return want, nil
}

// Parse validates the checksum of data, then decodes headers, keys and the
// firmware block. Nothing is parsed when the checksum does not match.
func Parse(data []byte) (*File, error) {
	sum, err := VerifyChecksum(data)
	if err != nil {
		return nil, err
	}

	body := data[:len(data)-TrailerSize]
	if len(body) < HeaderOffset {
		return nil, errors.Wrapf(ErrTruncated, "x5a: %d bytes before trailer", len(body))
	}

	r := &reader{data: body, off: HeaderOffset}
	headers, err := r.headers()
	if err != nil {
		return nil, err
	}

	keys, err := keyHeader(headers)
	if err != nil {
		return nil, err
	}

	region := body[r.off:]
	blk, err := locate.Locate(region)
	if err != nil {
		return nil, errors.Wrap(err, "x5a")
	}

	return &File{
		Format:   data[0],
		Checksum: sum,
		Headers:  headers,
		Keys:     keys,
		Region:   region,
		Blocks:   []locate.Block{blk},
	}, nil
}

func keyHeader(headers []Header) (crypto.KeyTriple, error) {
	for _, h := range headers {
		if h.Index != KeyHeader {
			continue
		}
		if len(h.Values) != 1 {
			return crypto.KeyTriple{}, errors.Wrapf(ErrMissingKeyHeader, "x5a: key header has %d values", len(h.Values))
		}
		if len(h.Values[0]) != len(crypto.KeyTriple{}) {
			return crypto.KeyTriple{}, errors.Wrapf(ErrMissingKeyHeader, "x5a: key is %d bytes", len(h.Values[0]))
		}
		return crypto.NewKeyTriple(h.Values[0])
	}
	return crypto.KeyTriple{}, errors.Wrap(ErrMissingKeyHeader, "x5a")
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) readByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, errors.Wrapf(ErrTruncated, "x5a: read byte at 0x%x", r.off)
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, errors.Wrapf(ErrTruncated, "x5a: read %d bytes at 0x%x", n, r.off)
	}
	b := r.data[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) headers() ([]Header, error) {
	headers := make([]Header, 0, HeaderCount)
	for i := 0; i < HeaderCount; i++ {
		count, err := r.readByte()
		if err != nil {
			return nil, errors.WithMessagef(err, "header %d", i)
		}

		h := Header{Index: i, Values: make([][]byte, 0, count)}
		for v := 0; v < int(count); v++ {
			n, err := r.readByte()
			if err != nil {
				return nil, errors.WithMessagef(err, "header %d value %d", i, v)
			}
			val, err := r.readBytes(int(n))
			if err != nil {
				return nil, errors.WithMessagef(err, "header %d value %d", i, v)
			}
			h.Values = append(h.Values, val)
		}
		headers = append(headers, h)
	}
	return headers, nil
}
