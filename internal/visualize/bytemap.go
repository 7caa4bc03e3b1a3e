// Package visualize draws byte-class maps of firmware payloads. A correct
// decryption shows long runs of printable text, code and zero padding where a
// wrong one looks like noise.
package visualize

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// DefaultWidth is the byte map width in pixels (bytes per row).
const DefaultWidth = 256

// Byte class colours.
var (
	ColorZero      = color.NRGBA{0x00, 0x00, 0x00, 0xFF}
	ColorFF        = color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	ColorPrintable = color.NRGBA{0x37, 0x7E, 0xB8, 0xFF}
	ColorControl   = color.NRGBA{0x4D, 0xAF, 0x4A, 0xFF}
	ColorHigh      = color.NRGBA{0xE4, 0x1A, 0x1C, 0xFF}
)

// Class returns the colour of one byte.
func Class(b byte) color.NRGBA {
	switch {
	case b == 0x00:
		return ColorZero
	case b == 0xFF:
		return ColorFF
	case b >= 0x20 && b < 0x7F:
		return ColorPrintable
	case b < 0x80:
		return ColorControl
	default:
		return ColorHigh
	}
}

// ByteMap draws one pixel per byte, width bytes per row. Pixels past the end
// of data stay transparent.
func ByteMap(data []byte, width int) *image.NRGBA {
	if width <= 0 {
		width = DefaultWidth
	}
	height := (len(data) + width - 1) / width
	if height == 0 {
		height = 1
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, b := range data {
		c := Class(b)
		p := img.PixOffset(i%width, i/width)
		img.Pix[p] = c.R
		img.Pix[p+1] = c.G
		img.Pix[p+2] = c.B
		img.Pix[p+3] = c.A
	}
	return img
}

// Scale resizes img to the given width keeping its aspect ratio. Nearest
// neighbour keeps the class colours exact.
func Scale(img *image.NRGBA, width int) *image.NRGBA {
	b := img.Bounds()
	if width <= 0 || b.Dx() == width {
		return img
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
