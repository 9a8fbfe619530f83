package blankpng

import "github.com/gogpu/blankpng/internal/bitmap"

// Allocator supplies the sample buffer of the image. Alloc must return a
// zeroed slice of n bytes; Free is called once when Render is done with it.
type Allocator = bitmap.Allocator

// LimitAllocator is an Allocator that refuses to hold more than Max bytes.
type LimitAllocator = bitmap.LimitAllocator

// NewLimitAllocator returns an allocator capped at limit bytes in use.
// It is mainly useful for exercising the out-of-memory path.
func NewLimitAllocator(limit int) *LimitAllocator {
	return bitmap.NewLimitAllocator(limit)
}

// Option configures a Render call.
//
// Example:
//
//	// Refuse to allocate more than 64 MiB for the image buffer
//	res, err := blankpng.Render(cfg, blankpng.WithAllocator(blankpng.NewLimitAllocator(64<<20)))
type Option func(*renderOptions)

// renderOptions holds optional collaborators.
type renderOptions struct {
	allocator Allocator
	chunkSize int
}

// defaultOptions returns the default render options.
func defaultOptions() renderOptions {
	return renderOptions{
		allocator: bitmap.Heap,
		chunkSize: 0, // encoder default
	}
}

// WithAllocator sets the allocator for the image buffer.
// A nil allocator restores the default heap allocator.
func WithAllocator(a Allocator) Option {
	return func(o *renderOptions) {
		if a == nil {
			a = bitmap.Heap
		}
		o.allocator = a
	}
}

// WithChunkSize sets the maximum IDAT chunk payload for PNG output.
// Values <= 0 keep the encoder default.
func WithChunkSize(n int) Option {
	return func(o *renderOptions) {
		o.chunkSize = n
	}
}
