package pngenc

import (
	"encoding/binary"
	"hash/crc32"
	"io"
)

// signature is the 8-byte PNG file signature.
const signature = "\x89PNG\r\n\x1a\n"

// chunkWriter frames PNG chunks onto an underlying writer. Errors are
// sticky: once a write fails every later call returns the same error.
//
// As an io.Writer it collects IDAT payload and emits a full IDAT chunk each
// time size bytes have accumulated.
type chunkWriter struct {
	w       io.Writer
	err     error
	tmp     [8]byte
	buf     []byte
	size    int
	written int64
	chunks  int
}

func newChunkWriter(w io.Writer, size int) *chunkWriter {
	return &chunkWriter{
		w:    w,
		buf:  make([]byte, 0, size),
		size: size,
	}
}

func (cw *chunkWriter) writeRaw(b []byte) {
	if cw.err != nil {
		return
	}
	n, err := cw.w.Write(b)
	cw.written += int64(n)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	cw.err = err
}

// writeChunk writes one chunk: length, type, data and CRC-32 of type+data.
func (cw *chunkWriter) writeChunk(name string, data []byte) {
	if cw.err != nil {
		return
	}
	binary.BigEndian.PutUint32(cw.tmp[0:4], uint32(len(data))) //nolint:gosec // chunk payloads are bounded by size
	copy(cw.tmp[4:8], name)
	cw.writeRaw(cw.tmp[:8])
	cw.writeRaw(data)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(cw.tmp[4:8])
	_, _ = crc.Write(data)
	binary.BigEndian.PutUint32(cw.tmp[0:4], crc.Sum32())
	cw.writeRaw(cw.tmp[:4])
	cw.chunks++
}

// Write buffers p as IDAT payload.
func (cw *chunkWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n := 0
	for len(p) > 0 {
		k := min(cw.size-len(cw.buf), len(p))
		cw.buf = append(cw.buf, p[:k]...)
		p = p[k:]
		n += k
		if len(cw.buf) == cw.size {
			cw.flush()
			if cw.err != nil {
				return n, cw.err
			}
		}
	}
	return n, nil
}

// flush emits any buffered payload as an IDAT chunk.
func (cw *chunkWriter) flush() {
	if len(cw.buf) == 0 {
		return
	}
	cw.writeChunk("IDAT", cw.buf)
	cw.buf = cw.buf[:0]
}
