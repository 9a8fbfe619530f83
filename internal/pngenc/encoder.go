package pngenc

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Encoder errors.
var (
	// ErrInit is returned when an encoder cannot be created.
	ErrInit = errors.New("pngenc: cannot create encoder")

	// ErrHeader is returned for headers the encoder cannot write.
	ErrHeader = errors.New("pngenc: invalid header")

	// ErrState is returned when a call is made out of sequence.
	ErrState = errors.New("pngenc: call out of sequence")

	// ErrNilWriter is returned when binding a nil output.
	ErrNilWriter = errors.New("pngenc: nil writer")

	// ErrRowCount is returned when WriteImage gets the wrong number of rows.
	ErrRowCount = errors.New("pngenc: wrong number of rows")

	// ErrRowLength is returned when a row has the wrong number of bytes.
	ErrRowLength = errors.New("pngenc: wrong row length")
)

// State is the position of an Encoder in its write sequence.
type State uint8

// Encoder states, in order. Transitions only move forward; Close moves any
// state to StateReleased.
const (
	StateUninitialized State = iota
	StateContextCreated
	StateMetadataConfigured
	StateOutputBound
	StateHeaderWritten
	StateBodyWritten
	StateFinalized
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateContextCreated:
		return "context-created"
	case StateMetadataConfigured:
		return "metadata-configured"
	case StateOutputBound:
		return "output-bound"
	case StateHeaderWritten:
		return "header-written"
	case StateBodyWritten:
		return "body-written"
	case StateFinalized:
		return "finalized"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Encoder writes a single PNG image. It is not safe for concurrent use and
// cannot be reused after Close.
type Encoder struct {
	state State
	opts  options
	hdr   Header

	cw *chunkWriter
	zw *zlib.Writer

	// prev holds the previous unfiltered row; out holds one filtered
	// candidate per filter type, each prefixed with its type byte.
	prev []byte
	out  [numFilters][]byte

	err error
}

// NewEncoder creates an encoder context. It fails with ErrInit if an option
// is invalid or the compressor cannot be set up.
func NewEncoder(opts ...Option) (*Encoder, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	lvl, ok := o.level.zlibLevel()
	if !ok {
		return nil, fmt.Errorf("%w: compression level %v", ErrInit, o.level)
	}
	if !o.filter.valid() {
		return nil, fmt.Errorf("%w: filter %v", ErrInit, o.filter)
	}
	if o.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInit, o.chunkSize)
	}

	zw, err := zlib.NewWriterLevel(io.Discard, lvl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	return &Encoder{
		state: StateContextCreated,
		opts:  o,
		zw:    zw,
	}, nil
}

// State returns the current state.
func (e *Encoder) State() State {
	return e.state
}

// Header returns the configured header.
func (e *Encoder) Header() Header {
	return e.hdr
}

// BytesWritten returns the number of bytes written to the bound output.
func (e *Encoder) BytesWritten() int64 {
	if e.cw == nil {
		return 0
	}
	return e.cw.written
}

// Chunks returns the number of chunks written so far.
func (e *Encoder) Chunks() int {
	if e.cw == nil {
		return 0
	}
	return e.cw.chunks
}

// advance checks that the encoder is in state from and no earlier write has
// failed.
func (e *Encoder) advance(from State, op string) error {
	if e.err != nil {
		return e.err
	}
	if e.state != from {
		return fmt.Errorf("%w: %s in state %v", ErrState, op, e.state)
	}
	return nil
}

// fail records a write error so every later call reports it.
func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// SetHeader configures the image metadata.
func (e *Encoder) SetHeader(h Header) error {
	if err := e.advance(StateContextCreated, "SetHeader"); err != nil {
		return err
	}
	if err := h.Validate(); err != nil {
		return err
	}

	e.hdr = h
	n := h.RowBytes() + 1
	e.prev = make([]byte, h.RowBytes())
	for ft := range e.out {
		e.out[ft] = make([]byte, n)
		e.out[ft][0] = byte(ft)
	}
	e.state = StateMetadataConfigured
	return nil
}

// Bind attaches the output stream. The encoder never closes w.
func (e *Encoder) Bind(w io.Writer) error {
	if err := e.advance(StateMetadataConfigured, "Bind"); err != nil {
		return err
	}
	if w == nil {
		return ErrNilWriter
	}

	e.cw = newChunkWriter(w, e.opts.chunkSize)
	e.zw.Reset(e.cw)
	e.state = StateOutputBound
	return nil
}

// WriteInfo writes the PNG signature and the IHDR chunk.
func (e *Encoder) WriteInfo() error {
	if err := e.advance(StateOutputBound, "WriteInfo"); err != nil {
		return err
	}

	e.cw.writeRaw([]byte(signature))
	e.cw.writeChunk("IHDR", e.hdr.ihdr())
	if e.cw.err != nil {
		return e.fail(fmt.Errorf("pngenc: write header: %w", e.cw.err))
	}
	e.state = StateHeaderWritten
	return nil
}

// WriteImage filters, compresses and writes every row of the image. rows
// must hold exactly Height rows of RowBytes bytes each.
func (e *Encoder) WriteImage(rows [][]byte) error {
	if err := e.advance(StateHeaderWritten, "WriteImage"); err != nil {
		return err
	}
	if len(rows) != e.hdr.Height {
		return fmt.Errorf("%w: got %d, want %d", ErrRowCount, len(rows), e.hdr.Height)
	}
	rowBytes := e.hdr.RowBytes()
	for y, row := range rows {
		if len(row) != rowBytes {
			return fmt.Errorf("%w: row %d has %d bytes, want %d", ErrRowLength, y, len(row), rowBytes)
		}
	}

	want := e.opts.filter
	if e.opts.level == NoCompression && want == FilterAdaptive {
		want = FilterNone
	}
	bpp := e.hdr.bytesPerPixel()

	for y, row := range rows {
		ft := filterRow(&e.out, row, e.prev, bpp, want)
		if _, err := e.zw.Write(e.out[ft]); err != nil {
			return e.fail(fmt.Errorf("pngenc: write row %d: %w", y, err))
		}
		copy(e.prev, row)
	}

	e.state = StateBodyWritten
	return nil
}

// WriteEnd flushes the compressed stream and writes the IEND chunk.
func (e *Encoder) WriteEnd() error {
	if err := e.advance(StateBodyWritten, "WriteEnd"); err != nil {
		return err
	}

	if err := e.zw.Close(); err != nil {
		return e.fail(fmt.Errorf("pngenc: finish image data: %w", err))
	}
	e.cw.flush()
	e.cw.writeChunk("IEND", nil)
	if e.cw.err != nil {
		return e.fail(fmt.Errorf("pngenc: write trailer: %w", e.cw.err))
	}
	e.state = StateFinalized
	return nil
}

// Close releases the encoder's buffers. It may be called in any state and
// more than once. It does not close the bound writer.
func (e *Encoder) Close() error {
	if e.state == StateReleased {
		return nil
	}
	e.zw = nil
	e.prev = nil
	for ft := range e.out {
		e.out[ft] = nil
	}
	if e.cw != nil {
		e.cw.buf = nil
	}
	e.state = StateReleased
	return nil
}

// Encode writes a complete 8-bit grayscale PNG of rows to w.
func Encode(w io.Writer, width int, rows [][]byte, opts ...Option) error {
	enc, err := NewEncoder(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = enc.Close() }()

	if err := enc.SetHeader(GrayHeader(width, len(rows))); err != nil {
		return err
	}
	if err := enc.Bind(w); err != nil {
		return err
	}
	if err := enc.WriteInfo(); err != nil {
		return err
	}
	if err := enc.WriteImage(rows); err != nil {
		return err
	}
	return enc.WriteEnd()
}
