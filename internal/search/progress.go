package search

import (
	"io"

	"x5a-fwcrack/internal/crypto"
)

// Attempt describes one decoder applied to the payload.
type Attempt struct {
	Index   int // combination index in generation order
	Formula crypto.Formula
	Matched bool
}

// Reporter receives one Attempt per decoder tried. Calls are serialized by
// the engine.
type Reporter interface {
	Attempt(a Attempt)
}

// Starter is implemented by reporters that want the number of decoders
// before the first attempt.
type Starter interface {
	Start(total int)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(a Attempt)

// Attempt calls f(a).
func (f ReporterFunc) Attempt(a Attempt) { f(a) }

type dots struct {
	w io.Writer
}

// Dots returns a Reporter printing one character per attempt: "X" for a
// match, "." otherwise.
func Dots(w io.Writer) Reporter {
	return dots{w: w}
}

func (d dots) Attempt(a Attempt) {
	c := "."
	if a.Matched {
		c = "X"
	}
	io.WriteString(d.w, c)
}
