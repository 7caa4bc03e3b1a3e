package crypto

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(t *testing.T, sym string) Operator {
	t.Helper()
	o, ok := OperatorBySymbol(sym)
	require.True(t, ok, "operator %q", sym)
	return o
}

func TestBuildRejectsCollisions(t *testing.T) {
	and := op(t, "&")
	_, ok := Build(0, 0, 0, and, and, and)
	assert.False(t, ok, "AND with zero keys collapses every input to 0")

	mul := op(t, "*")
	xor := op(t, "^")
	_, ok = Build(2, 0, 0, mul, xor, xor)
	assert.False(t, ok, "multiplying by an even key is not invertible mod 256")
}

func TestBuildRejectsDivisionByZero(t *testing.T) {
	xor := op(t, "^")
	for _, sym := range []string{"/", "%"} {
		_, ok := Build(0, 0, 0, op(t, sym), xor, xor)
		assert.False(t, ok, sym)
	}
}

func TestBuildXOR(t *testing.T) {
	xor := op(t, "^")
	tbl, ok := Build(0x5A, 0x00, 0x00, xor, xor, xor)
	require.True(t, ok)
	for e := 0; e < 256; e++ {
		assert.Equal(t, byte(e)^0x5A, tbl[e])
	}
}

func TestBuildUnboundedIntermediates(t *testing.T) {
	// (e - 16) goes negative for small e; only the final value is masked.
	tbl, ok := Build(0x10, 0x03, 0x00, op(t, "-"), op(t, "*"), op(t, "|"))
	require.True(t, ok)
	assert.Equal(t, byte((0-16)*3&0xFF), tbl[0])
	assert.Equal(t, byte((200-16)*3&0xFF), tbl[200])
}

func TestBuildAlwaysBijective(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	valid := 0
	for i := 0; i < 4000; i++ {
		var k [3]byte
		rng.Read(k[:])
		tbl, ok := Build(k[0], k[1], k[2],
			Operators[rng.Intn(8)], Operators[rng.Intn(8)], Operators[rng.Intn(8)])
		if !ok {
			continue
		}
		valid++

		outputs := make(map[byte]struct{}, 256)
		for _, d := range tbl {
			outputs[d] = struct{}{}
		}
		require.Len(t, outputs, 256)
		require.True(t, tbl.IsBijective())
	}
	assert.NotZero(t, valid)
}

func TestRoundTrip(t *testing.T) {
	keys := KeyTriple{0x3C, 0x11, 0xA7}
	f, err := ParseFormula(keys, "^+-", [3]int{2, 0, 1})
	require.NoError(t, err)

	dec, ok := BuildFormula(f)
	require.True(t, ok)
	enc := dec.Invert()

	plain := []byte("37805-RBB-J530 firmware \x00\x01\xfe\xff")
	cipher := make([]byte, len(plain))
	enc.Decode(cipher, plain)
	assert.NotEqual(t, plain, cipher)

	got := make([]byte, len(cipher))
	dec.Decode(got, cipher)
	assert.Equal(t, plain, got)
}

func TestDecodeBlocks(t *testing.T) {
	xor := op(t, "^")
	tbl, ok := Build(0xFF, 0, 0, xor, xor, xor)
	require.True(t, ok)

	blocks, joined := tbl.DecodeBlocks([][]byte{{0x00, 0x01}, {}, {0xF0}})
	require.Len(t, blocks, 3)
	assert.Equal(t, []byte{0xFF, 0xFE}, blocks[0])
	assert.Empty(t, blocks[1])
	assert.Equal(t, []byte{0x0F}, blocks[2])
	assert.Equal(t, []byte{0xFF, 0xFE, 0x0F}, joined)
}

func TestFloorSemantics(t *testing.T) {
	q, ok := floorDiv(-7, 2)
	require.True(t, ok)
	assert.Equal(t, -4, q)

	m, ok := floorMod(-7, 2)
	require.True(t, ok)
	assert.Equal(t, 1, m)

	m, _ = floorMod(7, -2)
	assert.Equal(t, -1, m)

	q, _ = floorDiv(7, 2)
	assert.Equal(t, 3, q)
}
