package visualize

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
)

// WriteWebP encodes img as lossless WebP.
func WriteWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return errors.Wrap(err, "visualize: webp encode")
	}
	return nil
}

// WriteTGA encodes img as TGA.
func WriteTGA(w io.Writer, img image.Image) error {
	if err := tga.Encode(w, img); err != nil {
		return errors.Wrap(err, "visualize: tga encode")
	}
	return nil
}

// Save writes img to path, choosing the encoder from the extension
// (.webp or .tga).
func Save(path string, img image.Image) error {
	var enc func(io.Writer, image.Image) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".webp":
		enc = WriteWebP
	case ".tga":
		enc = WriteTGA
	default:
		return errors.Errorf("visualize: unsupported image extension %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "visualize: create %s", path)
	}
	if err := enc(f, img); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "visualize: close %s", path)
}
