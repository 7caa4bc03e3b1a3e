// Package search recovers the byte substitution cipher protecting a firmware
// payload by trying every formula of the fixed search space against a known
// plaintext fragment.
package search

import (
	"bytes"
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"x5a-fwcrack/internal/crypto"
)

// Options tunes a search run. The zero value searches the whole space with
// runtime.NumCPU() workers and no progress output.
type Options struct {
	Workers  int
	Limit    int // stop once this many distinct candidates are secured; 0 = no limit
	Progress Reporter
}

// Decoder is a valid decoder table together with the first formula, in
// generation order, that produced it.
type Decoder struct {
	Index   int
	Formula crypto.Formula
	Table   crypto.Table
}

// Candidate is a decryption whose output contains the target.
//
// Formulas[0] produced the output first; later entries are formulas with a
// different table that decrypt the payload to the same bytes.
type Candidate struct {
	Index    int
	Formulas []crypto.Formula
	Table    crypto.Table
	Blocks   [][]byte // decrypted blocks, sub-slices of Data
	Data     []byte
}

// Formula returns the formula that first produced the candidate.
func (c Candidate) Formula() crypto.Formula {
	return c.Formulas[0]
}

// Decoders enumerates the search space for keys and returns every bijective
// table once, in generation order.
func Decoders(keys crypto.KeyTriple) []Decoder {
	formulas := crypto.Formulas(keys)
	seen := make(map[crypto.Table]struct{}, len(formulas))
	out := make([]Decoder, 0, len(formulas)/4)

	for i, f := range formulas {
		t, ok := crypto.BuildFormula(f)
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, Decoder{Index: i, Formula: f, Table: t})
	}
	return out
}

// Search decrypts blocks with every decoder of the search space and returns
// the distinct outputs containing target, in generation order. An empty
// result is not an error.
//
// If ctx ends first, the candidates found so far are returned with the
// context error.
func Search(ctx context.Context, blocks [][]byte, keys []byte, target []byte, opts Options) ([]Candidate, error) {
	k, err := crypto.NewKeyTriple(keys)
	if err != nil {
		return nil, errors.Wrap(err, "search")
	}

	e := &engine{
		decoders: Decoders(k),
		matcher:  NewMatcher(target),
		cipher:   bytes.Join(blocks, nil),
		opts:     opts,
	}
	for _, b := range blocks {
		e.sizes = append(e.sizes, len(b))
	}
	if e.opts.Workers <= 0 {
		e.opts.Workers = runtime.NumCPU()
	}

	return e.run(ctx)
}

type engine struct {
	decoders []Decoder
	matcher  *Matcher
	cipher   []byte
	sizes    []int
	opts     Options

	mu       sync.Mutex
	distinct map[string]struct{}
	stop     chan struct{}
	stopped  bool
}

func (e *engine) run(ctx context.Context) ([]Candidate, error) {
	if s, ok := e.opts.Progress.(Starter); ok {
		s.Start(len(e.decoders))
	}

	// results[i] holds the decrypted output of decoders[i] when it matched.
	results := make([][]byte, len(e.decoders))
	e.distinct = make(map[string]struct{})
	e.stop = make(chan struct{})

	indexes := make(chan int, e.opts.Workers*2)
	var g errgroup.Group

	g.Go(func() error {
		defer close(indexes)
		for i := range e.decoders {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case indexes <- i:
			case <-e.stop:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < e.opts.Workers; w++ {
		g.Go(func() error {
			buf := make([]byte, len(e.cipher))
			for i := range indexes {
				if ctx.Err() != nil {
					continue
				}
				d := &e.decoders[i]
				d.Table.Decode(buf, e.cipher)

				var out []byte
				if e.matcher.Match(buf) {
					out = bytes.Clone(buf)
					results[i] = out
				}
				e.record(d, out)
			}
			return nil
		})
	}

	err := g.Wait()
	cands := e.merge(results)
	if err != nil {
		return cands, errors.Wrap(err, "search: interrupted")
	}
	return cands, nil
}

// record reports one attempt and closes e.stop once Limit distinct outputs
// are known. Every index below the last dispatched one is still processed,
// so the first Limit candidates in generation order are always complete.
func (e *engine) record(d *Decoder, out []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opts.Progress != nil {
		e.opts.Progress.Attempt(Attempt{Index: d.Index, Formula: d.Formula, Matched: out != nil})
	}
	if out == nil {
		return
	}

	e.distinct[string(out)] = struct{}{}
	if e.opts.Limit > 0 && !e.stopped && len(e.distinct) >= e.opts.Limit {
		e.stopped = true
		close(e.stop)
	}
}

func (e *engine) merge(results [][]byte) []Candidate {
	var cands []Candidate
	byData := make(map[string]int)

	for i, data := range results {
		if data == nil {
			continue
		}
		d := e.decoders[i]
		if j, ok := byData[string(data)]; ok {
			cands[j].Formulas = append(cands[j].Formulas, d.Formula)
			continue
		}

		byData[string(data)] = len(cands)
		cands = append(cands, Candidate{
			Index:    d.Index,
			Formulas: []crypto.Formula{d.Formula},
			Table:    d.Table,
			Blocks:   e.split(data),
			Data:     data,
		})
		if e.opts.Limit > 0 && len(cands) == e.opts.Limit {
			// later results lie past the sequential cut-off
			break
		}
	}
	return cands
}

func (e *engine) split(data []byte) [][]byte {
	out := make([][]byte, len(e.sizes))
	off := 0
	for i, n := range e.sizes {
		out[i] = data[off : off+n : off+n]
		off += n
	}
	return out
}
