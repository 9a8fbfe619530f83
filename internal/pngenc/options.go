package pngenc

import (
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Level is the zlib compression level of the image data.
type Level int

// Compression levels.
const (
	DefaultCompression Level = iota
	NoCompression
	BestSpeed
	BestCompression
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case DefaultCompression:
		return "default"
	case NoCompression:
		return "none"
	case BestSpeed:
		return "speed"
	case BestCompression:
		return "best"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// zlibLevel maps l to the zlib package constant.
func (l Level) zlibLevel() (int, bool) {
	switch l {
	case DefaultCompression:
		return zlib.DefaultCompression, true
	case NoCompression:
		return zlib.NoCompression, true
	case BestSpeed:
		return zlib.BestSpeed, true
	case BestCompression:
		return zlib.BestCompression, true
	default:
		return 0, false
	}
}

// DefaultChunkSize is the IDAT payload size, matching libpng's default
// compression buffer.
const DefaultChunkSize = 8192

// Option configures an Encoder during creation.
type Option func(*options)

type options struct {
	level     Level
	filter    Filter
	chunkSize int
}

func defaultOptions() options {
	return options{
		level:     DefaultCompression,
		filter:    FilterAdaptive,
		chunkSize: DefaultChunkSize,
	}
}

// WithCompression sets the zlib compression level.
func WithCompression(l Level) Option {
	return func(o *options) {
		o.level = l
	}
}

// WithFilter forces a single row filter instead of adaptive selection.
func WithFilter(f Filter) Option {
	return func(o *options) {
		o.filter = f
	}
}

// WithChunkSize sets the maximum payload size of each IDAT chunk.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}
