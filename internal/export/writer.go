package export

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// ErrSequence is returned when Writer calls are made out of order.
var ErrSequence = errors.New("export: call out of sequence")

// Writer adapts Encode to the bind/info/image/end call sequence used for
// PNG output. TIFF and BMP encoders take a whole image, so the body is
// copied at WriteImage and encoded at WriteEnd.
type Writer struct {
	format Format
	width  int
	height int

	w    io.Writer
	img  *image.Gray
	done bool
}

// NewWriter creates a writer for a width x height grayscale image.
func NewWriter(f Format, width, height int) (*Writer, error) {
	if f != FormatTIFF && f != FormatBMP && f != FormatPNG {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("export: invalid dimensions %dx%d", width, height)
	}
	return &Writer{format: f, width: width, height: height}, nil
}

// Bind sets the output stream.
func (w *Writer) Bind(out io.Writer) error {
	if w.w != nil || out == nil {
		return ErrSequence
	}
	w.w = out
	return nil
}

// WriteInfo checks that an output is bound. The header is written together
// with the body by the format encoder.
func (w *Writer) WriteInfo() error {
	if w.w == nil {
		return ErrSequence
	}
	return nil
}

// WriteImage copies rows into the pending image.
func (w *Writer) WriteImage(rows [][]byte) error {
	if w.w == nil || w.img != nil {
		return ErrSequence
	}
	if len(rows) != w.height {
		return fmt.Errorf("export: got %d rows, want %d", len(rows), w.height)
	}
	img := image.NewGray(image.Rect(0, 0, w.width, w.height))
	for y, row := range rows {
		if len(row) != w.width {
			return fmt.Errorf("export: row %d has %d bytes, want %d", y, len(row), w.width)
		}
		copy(img.Pix[y*img.Stride:], row)
	}
	w.img = img
	return nil
}

// WriteEnd encodes the image to the bound output.
func (w *Writer) WriteEnd() error {
	if w.img == nil || w.done {
		return ErrSequence
	}
	w.done = true
	return Encode(w.w, w.img, w.format)
}

// Close drops the pending image.
func (w *Writer) Close() error {
	w.img = nil
	return nil
}
