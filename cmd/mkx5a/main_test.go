package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x5a-fwcrack/internal/crypto"
	"x5a-fwcrack/internal/x5a"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "fw.bin")
	out := filepath.Join(dir, "update.x5a")
	plain := []byte("firmware 37805-RBB-J530 build 7")
	require.NoError(t, os.WriteFile(in, plain, 0644))

	require.NoError(t, run(in, out, "a1b2c3", "^+-", "2,0,1", 3, 16, 0x5A, 0x4000))

	f, err := x5a.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, byte(0x5A), f.Format)
	assert.Equal(t, crypto.KeyTriple{0xA1, 0xB2, 0xC3}, f.Keys)
	require.Len(t, f.Blocks, 1)
	assert.Equal(t, uint32(0x4000), f.Blocks[0].Start)
	assert.Equal(t, 16, f.Blocks[0].Offset)

	formula, err := crypto.ParseFormula(f.Keys, "^+-", [3]int{2, 0, 1})
	require.NoError(t, err)
	dec, ok := crypto.BuildFormula(formula)
	require.True(t, ok)
	_, got := dec.DecodeBlocks(f.Encrypted())
	assert.True(t, bytes.Equal(plain, got))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "fw.bin")
	require.NoError(t, os.WriteFile(in, []byte("x"), 0644))
	out := filepath.Join(dir, "out.x5a")

	assert.Error(t, run(filepath.Join(dir, "missing"), out, "a1b2c3", "^+-", "0,1,2", 1, 0, 0x5A, 0))
	assert.Error(t, run(in, out, "zz", "^+-", "0,1,2", 1, 0, 0x5A, 0))
	assert.Error(t, run(in, out, "a1b2", "^+-", "0,1,2", 1, 0, 0x5A, 0))
	assert.Error(t, run(in, out, "a1b2c3", "^?-", "0,1,2", 1, 0, 0x5A, 0))
	// AND with 0 maps every byte to 0
	assert.Error(t, run(in, out, "000000", "&&&", "0,1,2", 1, 0, 0x5A, 0))
}

func TestParseOrder(t *testing.T) {
	o, err := parseOrder("2, 0,1")
	require.NoError(t, err)
	assert.Equal(t, [3]int{2, 0, 1}, o)

	_, err = parseOrder("0,1")
	assert.Error(t, err)
	_, err = parseOrder("0,x,2")
	assert.Error(t, err)
}
