// Package pngenc implements a row-oriented PNG writer.
//
// The Encoder is driven through a fixed sequence of calls, mirroring the
// classic create/set-header/init-io/write-info/write-image/write-end API:
//
//	enc, _ := pngenc.NewEncoder()
//	defer enc.Close()
//	_ = enc.SetHeader(pngenc.GrayHeader(w, h))
//	_ = enc.Bind(f)
//	_ = enc.WriteInfo()
//	_ = enc.WriteImage(rows)
//	_ = enc.WriteEnd()
//
// Every call reports errors; a failed write makes all later calls fail with
// the same error. Image data is compressed with klauspost/compress/zlib.
package pngenc

import (
	"encoding/binary"
	"fmt"
)

// ColorType is the PNG IHDR color type.
type ColorType uint8

// Color types defined by the PNG specification.
const (
	ColorGray      ColorType = 0
	ColorRGB       ColorType = 2
	ColorPalette   ColorType = 3
	ColorGrayAlpha ColorType = 4
	ColorRGBA      ColorType = 6
)

// Interlace is the PNG IHDR interlace method.
type Interlace uint8

// Interlace methods.
const (
	InterlaceNone  Interlace = 0
	InterlaceAdam7 Interlace = 1
)

// maxDimension is the largest width or height PNG allows (2^31-1).
const maxDimension = 1<<31 - 1

// Header holds the image metadata written into IHDR.
// Compression and filter method are always 0, the only values PNG defines.
type Header struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType ColorType
	Interlace Interlace
}

// GrayHeader returns the header of a non-interlaced 8-bit grayscale image.
func GrayHeader(width, height int) Header {
	return Header{
		Width:     width,
		Height:    height,
		BitDepth:  8,
		ColorType: ColorGray,
		Interlace: InterlaceNone,
	}
}

// Validate reports whether the encoder can write images with this header.
// Only 8-bit grayscale without interlacing is supported.
func (h Header) Validate() error {
	if h.Width <= 0 || h.Height <= 0 || h.Width > maxDimension || h.Height > maxDimension {
		return fmt.Errorf("%w: dimensions %dx%d", ErrHeader, h.Width, h.Height)
	}
	if h.BitDepth != 8 {
		return fmt.Errorf("%w: bit depth %d", ErrHeader, h.BitDepth)
	}
	if h.ColorType != ColorGray {
		return fmt.Errorf("%w: color type %d", ErrHeader, h.ColorType)
	}
	if h.Interlace != InterlaceNone {
		return fmt.Errorf("%w: interlace method %d", ErrHeader, h.Interlace)
	}
	return nil
}

// RowBytes returns the number of sample bytes per row, excluding the filter
// type byte.
func (h Header) RowBytes() int {
	return h.Width * h.bytesPerPixel()
}

func (h Header) bytesPerPixel() int {
	return h.BitDepth / 8
}

// ihdr returns the 13-byte IHDR payload.
func (h Header) ihdr() []byte {
	var b [13]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(h.Width))  //nolint:gosec // validated <= 2^31-1
	binary.BigEndian.PutUint32(b[4:8], uint32(h.Height)) //nolint:gosec // validated <= 2^31-1
	b[8] = uint8(h.BitDepth)
	b[9] = uint8(h.ColorType)
	b[10] = 0 // deflate
	b[11] = 0 // adaptive filtering
	b[12] = uint8(h.Interlace)
	return b[:]
}
