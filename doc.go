// Package blankpng writes uniformly filled grayscale images.
//
// # Overview
//
// blankpng allocates a single-channel 8-bit bitmap, fills every sample with
// one value and streams it row by row to a PNG file. The defaults reproduce
// a fixed 8000x4000 black canvas written to image.png.
//
// # Quick Start
//
//	import "github.com/gogpu/blankpng"
//
//	cfg := blankpng.DefaultConfig()
//	cfg.Fill = 255 // white
//	res, err := blankpng.Render(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Image saved as", res.Path)
//
// # Errors
//
// Render and Verify return a *StepError naming the failed step. Use
// errors.Is with ErrOutOfMemory, ErrEncoderInit, ErrFileOpen, ErrEncoding,
// ErrInvalidConfig or ErrMismatch to classify it; the underlying cause
// (for example fs.ErrNotExist) matches as well.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Config, Render, Verify, SetLogger
//   - internal/bitmap: the sample buffer and its row reference table
//   - internal/pngenc: the row-oriented PNG encoder (zlib from klauspost/compress)
//   - internal/export: TIFF/BMP output and thumbnails (golang.org/x/image)
package blankpng
