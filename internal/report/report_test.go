package report

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x5a-fwcrack/internal/crypto"
	"x5a-fwcrack/internal/locate"
	"x5a-fwcrack/internal/search"
	"x5a-fwcrack/internal/x5a"
)

func init() {
	color.NoColor = true
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "AB.C", Preview([]byte{'A', 'B', 0x01, 'C'}, 10))
	assert.Equal(t, "AB", Preview([]byte("ABCD"), 2))
	assert.Equal(t, "café", Preview([]byte{'c', 'a', 'f', 0xE9}, -1))
	assert.Equal(t, "", Preview(nil, 8))
}

func TestSummary(t *testing.T) {
	f := &x5a.File{
		Format:   0x5A,
		Checksum: 0xDEADBEEF,
		Headers:  x5a.KeyHeaders([]byte{0xA1, 0xB2, 0xC3}, map[int][][]byte{0: {[]byte("X5A")}}),
		Keys:     crypto.KeyTriple{0xA1, 0xB2, 0xC3},
		Blocks:   []locate.Block{{Offset: 0x10, Start: 0x80000, Length: 0x200}},
	}

	var buf bytes.Buffer
	Summary(&buf, f)
	out := buf.String()

	assert.Contains(t, out, "file format: 0x5a")
	assert.Contains(t, out, "file checksum: 0xdeadbeef")
	assert.Contains(t, out, "583541") // "X5A"
	assert.Contains(t, out, "a1b2c3")
	assert.Contains(t, out, "k0 = 0xa1")
	assert.Contains(t, out, "k2 = 0xc3")
	assert.Contains(t, out, "0x80000")
	assert.Contains(t, out, "0x200")
}

func TestCandidates(t *testing.T) {
	var buf bytes.Buffer
	Candidates(&buf, nil, 16)
	assert.Equal(t, "no candidates\n", buf.String())

	f, err := crypto.ParseFormula(crypto.KeyTriple{1, 2, 3}, "^+-", [3]int{0, 1, 2})
	require.NoError(t, err)
	cands := []search.Candidate{{
		Formulas: []crypto.Formula{f, f},
		Data:     []byte("MODEL-7 firmware"),
	}}

	buf.Reset()
	Candidates(&buf, cands, 7)
	out := buf.String()
	assert.Contains(t, out, "candidates: 1")
	assert.Contains(t, out, "(((i ^ k0) + k1) - k2) & 0xFF")
	assert.Contains(t, out, "(((i ^ 0x01) + 0x02) - 0x03) & 0xFF")
	assert.Contains(t, out, "MODEL-7")
	assert.NotContains(t, out, "firmware")
	assert.Contains(t, out, "cipher: (((i ^ k0) + k1) - k2) & 0xFF")
}
