package pngenc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"testing"
)

// gradientRows returns height rows of width bytes with a diagonal pattern.
func gradientRows(width, height int) [][]byte {
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = make([]byte, width)
		for x := range rows[y] {
			rows[y][x] = uint8((x*7 + y*13) ^ (x * y))
		}
	}
	return rows
}

func constRows(width, height int, v uint8) [][]byte {
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = bytes.Repeat([]byte{v}, width)
	}
	return rows
}

func decodeGray(t *testing.T, data []byte) *image.Gray {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("png.Decode returned %T, want *image.Gray", img)
	}
	return gray
}

func TestEncode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"default", nil},
		{"no compression", []Option{WithCompression(NoCompression)}},
		{"best speed", []Option{WithCompression(BestSpeed)}},
		{"best compression", []Option{WithCompression(BestCompression)}},
		{"filter none", []Option{WithFilter(FilterNone)}},
		{"filter sub", []Option{WithFilter(FilterSub)}},
		{"filter up", []Option{WithFilter(FilterUp)}},
		{"filter average", []Option{WithFilter(FilterAverage)}},
		{"filter paeth", []Option{WithFilter(FilterPaeth)}},
		{"tiny chunks", []Option{WithChunkSize(7)}},
	}

	rows := gradientRows(37, 23)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, 37, rows, tt.opts...); err != nil {
				t.Fatalf("Encode: %v", err)
			}

			gray := decodeGray(t, buf.Bytes())
			if gray.Bounds() != image.Rect(0, 0, 37, 23) {
				t.Fatalf("Bounds = %v, want 37x23", gray.Bounds())
			}
			for y, row := range rows {
				for x, want := range row {
					if got := gray.GrayAt(x, y).Y; got != want {
						t.Fatalf("pixel (%d, %d) = %d, want %d", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestEncode_ConstantFill(t *testing.T) {
	for _, fill := range []uint8{0, 1, 128, 255} {
		var buf bytes.Buffer
		if err := Encode(&buf, 300, constRows(300, 200, fill)); err != nil {
			t.Fatalf("Encode(fill=%d): %v", fill, err)
		}
		gray := decodeGray(t, buf.Bytes())
		for i, v := range gray.Pix {
			if v != fill {
				t.Fatalf("fill=%d: Pix[%d] = %d", fill, i, v)
			}
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	rows := gradientRows(64, 64)

	var a, b bytes.Buffer
	if err := Encode(&a, 64, rows); err != nil {
		t.Fatal(err)
	}
	if err := Encode(&b, 64, rows); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("two encodings of the same rows differ")
	}
}

// chunk is a parsed PNG chunk.
type chunk struct {
	name string
	data []byte
}

func parseChunks(t *testing.T, data []byte) []chunk {
	t.Helper()
	if !bytes.HasPrefix(data, []byte(signature)) {
		t.Fatal("missing PNG signature")
	}
	data = data[len(signature):]

	var chunks []chunk
	for len(data) > 0 {
		if len(data) < 12 {
			t.Fatalf("truncated chunk: %d bytes left", len(data))
		}
		n := int(binary.BigEndian.Uint32(data[0:4]))
		name := string(data[4:8])
		body := data[8 : 8+n]
		crc := binary.BigEndian.Uint32(data[8+n : 12+n])
		if want := crc32.ChecksumIEEE(data[4 : 8+n]); crc != want {
			t.Errorf("chunk %s: crc = %08x, want %08x", name, crc, want)
		}
		chunks = append(chunks, chunk{name: name, data: body})
		data = data[12+n:]
	}
	return chunks
}

func TestEncode_ChunkLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, 50, gradientRows(50, 40), WithChunkSize(100), WithCompression(NoCompression)); err != nil {
		t.Fatal(err)
	}

	chunks := parseChunks(t, buf.Bytes())
	if len(chunks) < 4 {
		t.Fatalf("got %d chunks, want IHDR, several IDAT, IEND", len(chunks))
	}

	ihdr := chunks[0]
	if ihdr.name != "IHDR" || len(ihdr.data) != 13 {
		t.Fatalf("first chunk = %s (%d bytes), want IHDR (13 bytes)", ihdr.name, len(ihdr.data))
	}
	if w := binary.BigEndian.Uint32(ihdr.data[0:4]); w != 50 {
		t.Errorf("IHDR width = %d, want 50", w)
	}
	if h := binary.BigEndian.Uint32(ihdr.data[4:8]); h != 40 {
		t.Errorf("IHDR height = %d, want 40", h)
	}
	if !bytes.Equal(ihdr.data[8:], []byte{8, 0, 0, 0, 0}) {
		t.Errorf("IHDR depth/type/methods = %v, want [8 0 0 0 0]", ihdr.data[8:])
	}

	last := chunks[len(chunks)-1]
	if last.name != "IEND" || len(last.data) != 0 {
		t.Errorf("last chunk = %s (%d bytes), want empty IEND", last.name, len(last.data))
	}

	for i, c := range chunks[1 : len(chunks)-1] {
		if c.name != "IDAT" {
			t.Errorf("chunk %d = %s, want IDAT", i+1, c.name)
		}
		if len(c.data) > 100 {
			t.Errorf("IDAT %d has %d bytes, limit 100", i, len(c.data))
		}
	}
}

func TestEncoder_StateSequence(t *testing.T) {
	enc, err := NewEncoder()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	rows := constRows(4, 2, 0)

	steps := []struct {
		name string
		call func() error
		want State
	}{
		{"SetHeader", func() error { return enc.SetHeader(GrayHeader(4, 2)) }, StateMetadataConfigured},
		{"Bind", func() error { return enc.Bind(&buf) }, StateOutputBound},
		{"WriteInfo", enc.WriteInfo, StateHeaderWritten},
		{"WriteImage", func() error { return enc.WriteImage(rows) }, StateBodyWritten},
		{"WriteEnd", enc.WriteEnd, StateFinalized},
		{"Close", enc.Close, StateReleased},
		{"Close again", enc.Close, StateReleased},
	}

	if enc.State() != StateContextCreated {
		t.Fatalf("initial State() = %v, want %v", enc.State(), StateContextCreated)
	}
	for _, s := range steps {
		if err := s.call(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if enc.State() != s.want {
			t.Fatalf("after %s: State() = %v, want %v", s.name, enc.State(), s.want)
		}
	}
	if enc.BytesWritten() != int64(buf.Len()) {
		t.Errorf("BytesWritten() = %d, buffer has %d", enc.BytesWritten(), buf.Len())
	}
	if enc.Chunks() != 3 {
		t.Errorf("Chunks() = %d, want 3 (IHDR, IDAT, IEND)", enc.Chunks())
	}
}

func TestEncoder_OutOfSequence(t *testing.T) {
	tests := []struct {
		name string
		call func(*Encoder) error
	}{
		{"Bind before SetHeader", func(e *Encoder) error { return e.Bind(io.Discard) }},
		{"WriteInfo before Bind", func(e *Encoder) error { return e.WriteInfo() }},
		{"WriteImage before WriteInfo", func(e *Encoder) error { return e.WriteImage(nil) }},
		{"WriteEnd before WriteImage", func(e *Encoder) error { return e.WriteEnd() }},
		{"SetHeader after Close", func(e *Encoder) error {
			_ = e.Close()
			return e.SetHeader(GrayHeader(1, 1))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncoder()
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = enc.Close() }()
			if err := tt.call(enc); !errors.Is(err, ErrState) {
				t.Errorf("error = %v, want ErrState", err)
			}
		})
	}
}

func TestNewEncoder_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"level", WithCompression(Level(42))},
		{"filter", WithFilter(Filter(9))},
		{"chunk size", WithChunkSize(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEncoder(tt.opt); !errors.Is(err, ErrInit) {
				t.Errorf("NewEncoder() error = %v, want ErrInit", err)
			}
		})
	}
}

func TestHeader_Validate(t *testing.T) {
	tests := []struct {
		name string
		hdr  Header
		ok   bool
	}{
		{"gray 8000x4000", GrayHeader(8000, 4000), true},
		{"zero width", GrayHeader(0, 1), false},
		{"zero height", GrayHeader(1, 0), false},
		{"16-bit", Header{Width: 1, Height: 1, BitDepth: 16, ColorType: ColorGray}, false},
		{"rgb", Header{Width: 1, Height: 1, BitDepth: 8, ColorType: ColorRGB}, false},
		{"interlaced", Header{Width: 1, Height: 1, BitDepth: 8, ColorType: ColorGray, Interlace: InterlaceAdam7}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hdr.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrHeader) {
				t.Errorf("Validate() = %v, want ErrHeader", err)
			}
		})
	}
}

func TestEncoder_RowChecks(t *testing.T) {
	newReady := func(t *testing.T) *Encoder {
		t.Helper()
		enc, err := NewEncoder()
		if err != nil {
			t.Fatal(err)
		}
		if err := enc.SetHeader(GrayHeader(3, 2)); err != nil {
			t.Fatal(err)
		}
		if err := enc.Bind(io.Discard); err != nil {
			t.Fatal(err)
		}
		if err := enc.WriteInfo(); err != nil {
			t.Fatal(err)
		}
		return enc
	}

	enc := newReady(t)
	if err := enc.WriteImage(constRows(3, 1, 0)); !errors.Is(err, ErrRowCount) {
		t.Errorf("WriteImage(1 row) error = %v, want ErrRowCount", err)
	}
	if err := enc.WriteImage([][]byte{{0, 0, 0}, {0, 0}}); !errors.Is(err, ErrRowLength) {
		t.Errorf("WriteImage(short row) error = %v, want ErrRowLength", err)
	}
	if err := enc.WriteImage(constRows(3, 2, 0)); err != nil {
		t.Errorf("WriteImage after rejected calls: %v", err)
	}

	if err := newReady(t).Bind(nil); !errors.Is(err, ErrState) {
		t.Errorf("Bind after WriteInfo error = %v, want ErrState", err)
	}
}

func TestEncoder_BindNil(t *testing.T) {
	enc, _ := NewEncoder()
	_ = enc.SetHeader(GrayHeader(1, 1))
	if err := enc.Bind(nil); !errors.Is(err, ErrNilWriter) {
		t.Errorf("Bind(nil) error = %v, want ErrNilWriter", err)
	}
}

// failWriter accepts limit bytes and then fails.
type failWriter struct {
	limit int
	err   error
}

func (w *failWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, w.err
	}
	w.limit -= len(p)
	return len(p), nil
}

func TestEncoder_WriteErrorsAreSticky(t *testing.T) {
	errDisk := errors.New("disk full")
	tests := []struct {
		name  string
		limit int
	}{
		{"during signature", 3},
		{"during IHDR", 20},
		{"during IDAT", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, _ := NewEncoder(WithChunkSize(64), WithCompression(NoCompression))
			defer func() { _ = enc.Close() }()
			_ = enc.SetHeader(GrayHeader(64, 64))
			_ = enc.Bind(&failWriter{limit: tt.limit, err: errDisk})

			err := enc.WriteInfo()
			if err == nil {
				err = enc.WriteImage(gradientRows(64, 64))
			}
			if err == nil {
				err = enc.WriteEnd()
			}
			if !errors.Is(err, errDisk) {
				t.Fatalf("write sequence error = %v, want %v", err, errDisk)
			}
			if err := enc.WriteEnd(); !errors.Is(err, errDisk) {
				t.Errorf("later call error = %v, want sticky %v", err, errDisk)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if got := StateHeaderWritten.String(); got != "header-written" {
		t.Errorf("String() = %q", got)
	}
	if got := State(99).String(); got != "State(99)" {
		t.Errorf("String() = %q", got)
	}
}
