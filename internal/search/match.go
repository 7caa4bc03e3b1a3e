package search

import (
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// fold maps every byte to its lower-case form, reading bytes as ISO-8859-1
// characters. Bytes whose lower-case rune is outside ISO-8859-1 fold to
// themselves.
var fold = func() [256]byte {
	var t [256]byte
	cm := charmap.ISO8859_1
	for i := range t {
		t[i] = byte(i)
		r := cm.DecodeByte(byte(i))
		if l := unicode.ToLower(r); l != r {
			if b, ok := cm.EncodeRune(l); ok {
				t[i] = b
			}
		}
	}
	return t
}()

// Matcher tests decrypted data for a target fragment, case-insensitively,
// either verbatim or with one filler byte after every target byte.
//
// The padded form accounts for firmware strings stored with an extra byte
// interleaved, e.g. "37805-RBB-J530" appearing as "3377880550--RRBCBA--JA503000".
type Matcher struct {
	target []byte // folded
}

// NewMatcher returns a Matcher for target. An empty target matches anything.
func NewMatcher(target []byte) *Matcher {
	t := make([]byte, len(target))
	for i, b := range target {
		t[i] = fold[b]
	}
	return &Matcher{target: t}
}

// Match reports whether data contains the target verbatim or padded.
func (m *Matcher) Match(data []byte) bool {
	return m.MatchExact(data) || m.MatchPadded(data)
}

// MatchExact reports whether data contains the target as a contiguous run.
func (m *Matcher) MatchExact(data []byte) bool {
	return m.index(data, 1) >= 0
}

// MatchPadded reports whether data contains t0 ? t1 ? ... tn ? where each ?
// is any single byte. The filler after the last target byte is required.
func (m *Matcher) MatchPadded(data []byte) bool {
	return m.index(data, 2) >= 0
}

// Index returns the offset of the first verbatim occurrence, else the first
// padded occurrence, and whether the padded form was the one found. It
// returns -1 when neither form occurs.
func (m *Matcher) Index(data []byte) (off int, padded bool) {
	if off = m.index(data, 1); off >= 0 {
		return off, false
	}
	if off = m.index(data, 2); off >= 0 {
		return off, true
	}
	return -1, false
}

func (m *Matcher) index(data []byte, stride int) int {
	n := len(m.target)
	if n == 0 {
		return 0
	}

	span := n * stride
	first := m.target[0]
	for i := 0; i+span <= len(data); i++ {
		if fold[data[i]] != first {
			continue
		}
		j := 1
		for ; j < n; j++ {
			if fold[data[i+j*stride]] != m.target[j] {
				break
			}
		}
		if j == n {
			return i
		}
	}
	return -1
}
