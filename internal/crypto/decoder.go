package crypto

// Table is a byte substitution table: out = t[in]. Tables are comparable and
// can be used directly as map keys.
type Table [256]byte

// Build computes the decoder table for one key ordering and operator triple:
//
//	t[e] = op2(op1(op0(e, k0), k1), k2) & 0xFF
//
// It reports false when the table is not a bijection (two inputs share an
// output) or when a stage is undefined for some input.
func Build(k0, k1, k2 byte, op0, op1, op2 Operator) (Table, bool) {
	var t Table
	var seen [256]bool

	for e := 0; e < 256; e++ {
		v, ok := op0.Apply(e, int(k0))
		if !ok {
			return t, false
		}
		if v, ok = op1.Apply(v, int(k1)); !ok {
			return t, false
		}
		if v, ok = op2.Apply(v, int(k2)); !ok {
			return t, false
		}

		d := byte(v & 0xFF)
		if seen[d] {
			return t, false
		}
		seen[d] = true
		t[e] = d
	}
	return t, true
}

// BuildFormula is Build for a Formula.
func BuildFormula(f Formula) (Table, bool) {
	return Build(f.Keys[0].Value, f.Keys[1].Value, f.Keys[2].Value, f.Ops[0], f.Ops[1], f.Ops[2])
}

// Decode substitutes every byte of src into dst. dst must be at least as
// long as src; dst and src may be the same slice.
func (t *Table) Decode(dst, src []byte) {
	for i, b := range src {
		dst[i] = t[b]
	}
}

// DecodeBlocks decodes each block in order and returns the per-block output
// along with the concatenation of all blocks.
func (t *Table) DecodeBlocks(blocks [][]byte) (out [][]byte, joined []byte) {
	total := 0
	for _, b := range blocks {
		total += len(b)
	}

	joined = make([]byte, total)
	out = make([][]byte, len(blocks))
	off := 0
	for i, b := range blocks {
		seg := joined[off : off+len(b) : off+len(b)]
		t.Decode(seg, b)
		out[i] = seg
		off += len(b)
	}
	return out, joined
}

// Invert returns the inverse substitution. For a decoder table the inverse
// encrypts: t.Decode(t.Invert().Decode(p)) == p. Only meaningful for
// bijective tables.
func (t *Table) Invert() Table {
	var inv Table
	for e, d := range t {
		inv[d] = byte(e)
	}
	return inv
}

// IsBijective reports whether every output byte occurs exactly once.
func (t *Table) IsBijective() bool {
	var seen [256]bool
	for _, d := range t {
		if seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}
