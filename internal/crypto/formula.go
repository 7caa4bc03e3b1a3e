package crypto

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidKeyCount is returned when a key material is not exactly three bytes.
var ErrInvalidKeyCount = errors.New("exactly three keys required")

// KeyTriple holds the three key bytes from the container key header.
type KeyTriple [3]byte

// NewKeyTriple copies b into a KeyTriple.
func NewKeyTriple(b []byte) (KeyTriple, error) {
	var k KeyTriple
	if len(b) != len(k) {
		return k, errors.Wrapf(ErrInvalidKeyCount, "crypto: got %d", len(b))
	}
	copy(k[:], b)
	return k, nil
}

// Slot is one key placed at a formula stage. Index is the key's position in
// the original KeyTriple and names it in rendered formulas (k0, k1, k2).
type Slot struct {
	Index int
	Value byte
}

// Permutations returns all six orderings of the triple in lexicographic order
// of the original key indexes. Orderings are kept even when key values repeat.
func (k KeyTriple) Permutations() [][3]Slot {
	orders := [6][3]int{
		{0, 1, 2}, {0, 2, 1},
		{1, 0, 2}, {1, 2, 0},
		{2, 0, 1}, {2, 1, 0},
	}
	perms := make([][3]Slot, 0, len(orders))
	for _, o := range orders {
		var p [3]Slot
		for i, idx := range o {
			p[i] = Slot{Index: idx, Value: k[idx]}
		}
		perms = append(perms, p)
	}
	return perms
}

// Formula is one key ordering paired with one operator triple:
//
//	(((i OP0 K0) OP1 K1) OP2 K2) & 0xFF
type Formula struct {
	Keys [3]Slot
	Ops  [3]Operator
}

// String renders the formula with symbolic key names.
func (f Formula) String() string {
	return fmt.Sprintf("(((i %s k%d) %s k%d) %s k%d) & 0xFF",
		f.Ops[0].Symbol, f.Keys[0].Index,
		f.Ops[1].Symbol, f.Keys[1].Index,
		f.Ops[2].Symbol, f.Keys[2].Index)
}

// Values renders the formula with the literal key bytes.
func (f Formula) Values() string {
	return fmt.Sprintf("(((i %s 0x%02x) %s 0x%02x) %s 0x%02x) & 0xFF",
		f.Ops[0].Symbol, f.Keys[0].Value,
		f.Ops[1].Symbol, f.Keys[1].Value,
		f.Ops[2].Symbol, f.Keys[2].Value)
}

// Symbols returns the three operator symbols concatenated, e.g. "^+-".
func (f Formula) Symbols() string {
	return f.Ops[0].Symbol + f.Ops[1].Symbol + f.Ops[2].Symbol
}

// Formulas enumerates the whole search space for k: key orderings in the
// outer loop, operator triples with repetition in the inner loop.
func Formulas(k KeyTriple) []Formula {
	n := len(Operators)
	perms := k.Permutations()
	out := make([]Formula, 0, len(perms)*n*n*n)
	for _, p := range perms {
		for _, o0 := range Operators {
			for _, o1 := range Operators {
				for _, o2 := range Operators {
					out = append(out, Formula{Keys: p, Ops: [3]Operator{o0, o1, o2}})
				}
			}
		}
	}
	return out
}

// ParseFormula builds a formula from three operator symbols and a key order
// given as original key indexes, e.g. ParseFormula(k, "^+-", [3]int{2, 0, 1}).
func ParseFormula(k KeyTriple, symbols string, order [3]int) (Formula, error) {
	var f Formula
	if len(symbols) != 3 {
		return f, errors.Errorf("crypto: need three operator symbols, got %q", symbols)
	}
	var used [3]bool
	for i, idx := range order {
		if idx < 0 || idx > 2 || used[idx] {
			return f, errors.Errorf("crypto: invalid key order %v", order)
		}
		used[idx] = true
		f.Keys[i] = Slot{Index: idx, Value: k[idx]}

		op, ok := OperatorBySymbol(symbols[i : i+1])
		if !ok {
			return f, errors.Errorf("crypto: unknown operator %q", symbols[i:i+1])
		}
		f.Ops[i] = op
	}
	return f, nil
}
