package x5a

import (
	"x5a-fwcrack/internal/crypto"
	"x5a-fwcrack/internal/locate"
)

// Header is one length-prefixed header record.
type Header struct {
	Index  int
	Values [][]byte
}

// File holds a parsed x5a update file.
type File struct {
	Format   byte   // byte 0 of the file
	Checksum uint32 // trailer value, already verified
	Headers  []Header
	Keys     crypto.KeyTriple
	Region   []byte // firmware region between the headers and the trailer
	Blocks   []locate.Block
}

// Encrypted returns the encrypted payloads in block order.
func (f *File) Encrypted() [][]byte {
	out := make([][]byte, len(f.Blocks))
	for i, b := range f.Blocks {
		out[i] = b.Payload
	}
	return out
}
