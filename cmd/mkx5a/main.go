// cmd/mkx5a: build an x5a update file around a plaintext firmware image,
// encrypted with a chosen cipher formula. Produces fixtures for fwcrack.
//
// Usage:
//
//	mkx5a -in firmware.bin -out update.x5a -keys a1b2c3 -ops '^+-' -order 2,0,1
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"x5a-fwcrack/internal/crypto"
	"x5a-fwcrack/internal/locate"
	"x5a-fwcrack/internal/x5a"
)

func main() {
	in := flag.String("in", "", "Plaintext firmware image")
	out := flag.String("out", "update.x5a", "Output update file")
	keys := flag.String("keys", "", "Three key bytes as hex, e.g. a1b2c3")
	ops := flag.String("ops", "^+-", "Operator symbols applied in order")
	order := flag.String("order", "0,1,2", "Key indices applied in order")
	pad := flag.Int("pad", 4, "Number of 78 00 FF pad sequences after the record")
	lead := flag.Int("lead", 0, "Filler bytes before the record")
	format := flag.Int("format", 0x5A, "File format byte")
	start := flag.Uint("start", 0x00100000, "Load address stored in the record")
	flag.Parse()

	if *in == "" || *keys == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*in, *out, *keys, *ops, *order, *pad, *lead, byte(*format), uint32(*start)); err != nil {
		fmt.Fprintf(os.Stderr, "mkx5a: %v\n", err)
		os.Exit(1)
	}
}

func run(in, out, keyHex, ops, orderList string, pad, lead int, format byte, start uint32) error {
	plain, err := os.ReadFile(in)
	if err != nil {
		return errors.Wrapf(err, "read %s", in)
	}

	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return errors.Wrap(err, "keys")
	}
	keys, err := crypto.NewKeyTriple(raw)
	if err != nil {
		return err
	}
	order, err := parseOrder(orderList)
	if err != nil {
		return err
	}

	f, err := crypto.ParseFormula(keys, ops, order)
	if err != nil {
		return err
	}
	dec, ok := crypto.BuildFormula(f)
	if !ok {
		return errors.Errorf("%s is not a reversible cipher", f)
	}
	enc := dec.Invert()

	cipher := make([]byte, len(plain))
	enc.Decode(cipher, plain)

	region := bytes.Repeat([]byte{0xFF}, lead)
	var hdr [locate.HeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], start)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(cipher)))
	region = append(region, hdr[:]...)
	region = append(region, cipher...)
	region = append(region, bytes.Repeat(locate.Pad, pad)...)

	headers := x5a.KeyHeaders(keys[:], map[int][][]byte{0: {[]byte("X5A")}})
	data, err := x5a.Encode(format, headers, region)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", out)
	}

	fmt.Printf("OK  %s -> %s  (%d bytes firmware, %d bytes total)\n", in, out, len(plain), len(data))
	fmt.Printf("    cipher: %s\n", f)
	fmt.Printf("    keys:   %s\n", f.Values())
	return nil
}

func parseOrder(s string) ([3]int, error) {
	var order [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return order, errors.Errorf("order %q: want three indices", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return order, errors.Wrapf(err, "order %q", s)
		}
		order[i] = n
	}
	return order, nil
}
