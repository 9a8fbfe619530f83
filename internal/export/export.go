// Package export writes grayscale bitmaps in raster formats other than the
// row-streaming PNG path, and builds downscaled previews.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for formats this package cannot handle.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Format identifies an output file format.
type Format uint8

// Supported formats.
const (
	FormatPNG Format = iota
	FormatTIFF
	FormatBMP
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatTIFF:
		return "tiff"
	case FormatBMP:
		return "bmp"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Encode writes img to w in format f. PNG goes through image/png here; the
// row-streaming PNG writer lives in pngenc.
func Encode(w io.Writer, img *image.Gray, f Format) error {
	var err error
	switch f {
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatPNG:
		err = png.Encode(w, img)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return fmt.Errorf("export: encode %v: %w", f, err)
	}
	return nil
}

// Decode reads an image in format f from r.
func Decode(r io.Reader, f Format) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch f {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("export: decode %v: %w", f, err)
	}
	return img, nil
}
