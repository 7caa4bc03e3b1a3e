package x5a

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x5a-fwcrack/internal/crypto"
	"x5a-fwcrack/internal/locate"
)

func region(start uint32, payload []byte, pads int) []byte {
	b := make([]byte, locate.HeaderSize)
	binary.BigEndian.PutUint32(b[0:4], start)
	binary.BigEndian.PutUint32(b[4:8], uint32(len(payload)))
	b = append(b, payload...)
	return append(b, bytes.Repeat(locate.Pad, pads)...)
}

func sample(t *testing.T) ([]byte, []byte) {
	t.Helper()
	payload := []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60, 0x70}
	headers := KeyHeaders([]byte{0xA1, 0xB2, 0xC3}, map[int][][]byte{
		0: {[]byte("X5A"), []byte{0x01}},
		2: {[]byte("37805-RBB-J530")},
	})
	data, err := Encode(0x5A, headers, region(0x00100000, payload, 3))
	require.NoError(t, err)
	return data, payload
}

func TestParseRoundTrip(t *testing.T) {
	data, payload := sample(t)

	f, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, byte(0x5A), f.Format)
	assert.Equal(t, Checksum(data[:len(data)-4]), f.Checksum)
	assert.Equal(t, crypto.KeyTriple{0xA1, 0xB2, 0xC3}, f.Keys)

	require.Len(t, f.Headers, HeaderCount)
	assert.Equal(t, [][]byte{[]byte("X5A"), {0x01}}, f.Headers[0].Values)
	assert.Empty(t, f.Headers[1].Values)
	assert.Equal(t, [][]byte{[]byte("37805-RBB-J530")}, f.Headers[2].Values)
	for i, h := range f.Headers {
		assert.Equal(t, i, h.Index)
	}

	require.Len(t, f.Blocks, 1)
	assert.Equal(t, uint32(0x00100000), f.Blocks[0].Start)
	assert.Equal(t, uint32(len(payload)), f.Blocks[0].Length)
	assert.Equal(t, [][]byte{payload}, f.Encrypted())
}

func TestParseChecksumMismatch(t *testing.T) {
	data, _ := sample(t)
	data[HeaderOffset+1] ^= 0xFF

	_, err := Parse(data)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
}

func TestParseChecksumBeforeHeaders(t *testing.T) {
	// header 0 claims 200 values that are not there; the checksum still wins
	body := []byte{0x5A, 0, 0, 200}
	data := binary.LittleEndian.AppendUint32(body, Checksum(body)+1)

	_, err := Parse(data)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
	assert.False(t, errors.Is(err, ErrTruncated))
}

func TestParseTruncated(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrTruncated))

	body := []byte{0x5A, 0, 0, 2, 5, 'a'}
	_, err = Parse(binary.LittleEndian.AppendUint32(body, Checksum(body)))
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestParseKeyHeader(t *testing.T) {
	cases := map[string][][]byte{
		"no values":    nil,
		"two values":   {{1, 2, 3}, {4, 5, 6}},
		"short key":    {{1, 2}},
		"long key":     {{1, 2, 3, 4}},
		"empty values": {{}},
	}
	for name, values := range cases {
		headers := KeyHeaders(nil, nil)
		headers[KeyHeader].Values = values
		data, err := Encode(0x5A, headers, region(0, []byte{1, 2, 3}, 0))
		require.NoError(t, err)

		_, err = Parse(data)
		assert.True(t, errors.Is(err, ErrMissingKeyHeader), name)
	}
}

func TestParseBlockNotFound(t *testing.T) {
	headers := KeyHeaders([]byte{1, 2, 3}, nil)
	data, err := Encode(0x5A, headers, bytes.Repeat([]byte{0xEE}, 32))
	require.NoError(t, err)

	_, err = Parse(data)
	assert.True(t, errors.Is(err, locate.ErrBlockNotFound))
}

func TestEncodeLimits(t *testing.T) {
	_, err := Encode(0, []Header{{Values: [][]byte{make([]byte, 256)}}}, nil)
	assert.Error(t, err)

	_, err = Encode(0, []Header{{Values: make([][]byte, 256)}}, nil)
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, uint32(0), Checksum(nil))
	assert.Equal(t, uint32(0x1FE), Checksum([]byte{0xFF, 0xFF}))
}

func TestReadFile(t *testing.T) {
	data, payload := sample(t)
	path := filepath.Join(t.TempDir(), "update.x5a")
	require.NoError(t, os.WriteFile(path, data, 0644))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, f.Blocks[0].Payload)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.x5a"))
	assert.Error(t, err)
}
