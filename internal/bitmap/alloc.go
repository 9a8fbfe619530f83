package bitmap

import (
	"fmt"
	"sync"
)

// Allocator hands out sample buffers for bitmaps.
//
// Alloc returns a zeroed slice of exactly n bytes or an error wrapping
// ErrOutOfMemory. Free is called once per successful Alloc when the owning
// bitmap is released.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(buf []byte)
}

// Heap is the default allocator backed by make.
var Heap Allocator = heapAllocator{}

type heapAllocator struct{}

// Alloc allocates n bytes on the Go heap. A runtime refusal of the size
// (makeslice: len out of range) is reported as ErrOutOfMemory.
func (heapAllocator) Alloc(n int) (buf []byte, err error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrOutOfMemory, n)
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d bytes: %v", ErrOutOfMemory, n, r)
		}
	}()
	return make([]byte, n), nil
}

func (heapAllocator) Free([]byte) {}

// LimitAllocator refuses allocations that would push the bytes currently in
// use above Max. It tracks usage so callers can check that every buffer was
// returned.
//
// Thread safety: all methods are safe for concurrent use.
type LimitAllocator struct {
	Max int

	mu     sync.Mutex
	inUse  int
	allocs int
	frees  int
}

// NewLimitAllocator creates an allocator capped at limit bytes in use.
func NewLimitAllocator(limit int) *LimitAllocator {
	return &LimitAllocator{Max: limit}
}

// Alloc allocates n bytes if the limit allows it.
func (a *LimitAllocator) Alloc(n int) ([]byte, error) {
	a.mu.Lock()
	if n < 0 || a.inUse+n > a.Max || a.inUse+n < a.inUse {
		inUse := a.inUse
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, n, inUse, a.Max)
	}
	a.inUse += n
	a.allocs++
	a.mu.Unlock()

	buf, err := Heap.Alloc(n)
	if err != nil {
		a.mu.Lock()
		a.inUse -= n
		a.allocs--
		a.mu.Unlock()
		return nil, err
	}
	return buf, nil
}

// Free returns buf's bytes to the budget.
func (a *LimitAllocator) Free(buf []byte) {
	a.mu.Lock()
	a.inUse -= len(buf)
	a.frees++
	a.mu.Unlock()
}

// InUse returns the number of bytes currently allocated.
func (a *LimitAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse
}

// Stats returns the number of successful allocations and frees.
func (a *LimitAllocator) Stats() (allocs, frees int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.frees
}
