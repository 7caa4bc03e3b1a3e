// Package report renders parsed update files and search results as text.
package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/encoding/charmap"

	"x5a-fwcrack/internal/locate"
	"x5a-fwcrack/internal/search"
	"x5a-fwcrack/internal/x5a"
)

var title = color.New(color.FgCyan, color.Bold)

// maxValueHex limits header values printed in the summary table.
const maxValueHex = 24

// Summary prints format tag, checksum, headers, keys and block descriptors.
func Summary(w io.Writer, f *x5a.File) {
	fmt.Fprintf(w, "file format: 0x%02x\n", f.Format)
	fmt.Fprintf(w, "file checksum: 0x%08x\n", f.Checksum)

	title.Fprintln(w, "headers:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Index", "Count", "Values"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, h := range f.Headers {
		vals := make([]string, len(h.Values))
		for i, v := range h.Values {
			vals[i] = hexValue(v)
		}
		table.Append([]string{strconv.Itoa(h.Index), strconv.Itoa(len(h.Values)), strings.Join(vals, " ")})
	}
	table.Render()

	title.Fprintln(w, "keys:")
	for i, k := range f.Keys {
		fmt.Fprintf(w, "k%d = 0x%02x\n", i, k)
	}

	title.Fprintln(w, "address blocks:")
	Blocks(w, f.Blocks)
}

// Blocks prints block descriptors.
func Blocks(w io.Writer, blocks []locate.Block) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Offset", "Start", "Length"})
	table.SetBorder(false)
	for _, b := range blocks {
		table.Append([]string{
			fmt.Sprintf("0x%x", b.Offset),
			fmt.Sprintf("0x%x", b.Start),
			fmt.Sprintf("0x%x", b.Length),
		})
	}
	table.Render()
}

// Candidates prints one row per candidate with its formula and the first
// previewLen bytes of the decryption.
func Candidates(w io.Writer, cands []search.Candidate, previewLen int) {
	if len(cands) == 0 {
		fmt.Fprintln(w, "no candidates")
		return
	}

	title.Fprintf(w, "candidates: %d\n", len(cands))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Cipher", "Keys", "Aliases", "Size", "Preview"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for i, c := range cands {
		f := c.Formula()
		table.Append([]string{
			strconv.Itoa(i),
			f.String(),
			f.Values(),
			strconv.Itoa(len(c.Formulas) - 1),
			strconv.Itoa(len(c.Data)),
			Preview(c.Data, previewLen),
		})
	}
	table.Render()

	for _, c := range cands {
		fmt.Fprintf(w, "cipher: %s\n", c.Formula())
	}
}

// Preview decodes up to n bytes of data as ISO-8859-1 text, replacing
// non-printable characters with '.'.
func Preview(data []byte, n int) string {
	if n >= 0 && len(data) > n {
		data = data[:n]
	}
	text, err := charmap.ISO8859_1.NewDecoder().String(string(data))
	if err != nil {
		return strings.Repeat(".", len(data))
	}
	return strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return '.'
		}
		return r
	}, text)
}

func hexValue(v []byte) string {
	if len(v) > maxValueHex {
		return hex.EncodeToString(v[:maxValueHex]) + "..."
	}
	return hex.EncodeToString(v)
}
