package blankpng

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/blankpng/internal/bitmap"
	"github.com/gogpu/blankpng/internal/export"
	"github.com/gogpu/blankpng/internal/pngenc"
)

// Result describes a finished Render.
type Result struct {
	Path      string
	Width     int
	Height    int
	Format    Format
	Bytes     int64
	Thumbnail string
	Elapsed   time.Duration
}

// imageWriter is the write sequence shared by the PNG encoder and the
// whole-image export writers.
type imageWriter interface {
	Bind(w io.Writer) error
	WriteInfo() error
	WriteImage(rows [][]byte) error
	WriteEnd() error
	Close() error
}

// Render allocates a cfg.Width x cfg.Height grayscale bitmap filled with
// cfg.Fill and writes it to cfg.Path.
//
// The steps run strictly in order: allocate and fill, build the row table,
// create and configure the encoder, open the output, write header, rows and
// trailer. A failure stops the sequence and releases whatever was acquired,
// in reverse order. The output is written to a temporary file next to
// cfg.Path and renamed into place only after the trailer is written, so a
// failed Render never leaves a truncated image at cfg.Path.
func Render(cfg Config, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, stepErr(StepConfig, ErrInvalidConfig, err)
	}

	log := Logger()
	start := time.Now()

	bm, err := bitmap.New(cfg.Width, cfg.Height, cfg.Fill, o.allocator)
	if err != nil {
		log.Debug("bitmap allocation failed", "width", cfg.Width, "height", cfg.Height, "err", err)
		return nil, stepErr(StepAllocate, ErrOutOfMemory, err)
	}
	defer bm.Release()
	log.Debug("bitmap allocated", "width", cfg.Width, "height", cfg.Height, "bytes", bm.ByteSize(), "fill", cfg.Fill)

	rows, err := bm.Rows()
	if err != nil {
		return nil, stepErr(StepAllocate, ErrOutOfMemory, err)
	}

	n, err := writeFile(cfg.Path, cfg.Format, cfg.Compression, cfg.Width, rows.Slices(), o)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:   cfg.Path,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: cfg.Format,
		Bytes:  n,
	}

	if cfg.Thumbnail != "" {
		if err := writeThumbnail(cfg, bm, o); err != nil {
			return nil, err
		}
		res.Thumbnail = cfg.Thumbnail
	}

	res.Elapsed = time.Since(start)
	log.Info("image written", "path", res.Path, "format", res.Format, "bytes", res.Bytes, "elapsed", res.Elapsed)
	return res, nil
}

// newWriter creates and configures the encoder for one image.
func newWriter(f Format, c Compression, width, height int, o renderOptions) (imageWriter, error) {
	switch f {
	case FormatPNG:
		pngOpts := []pngenc.Option{pngenc.WithCompression(pngLevel(c))}
		if o.chunkSize > 0 {
			pngOpts = append(pngOpts, pngenc.WithChunkSize(o.chunkSize))
		}
		enc, err := pngenc.NewEncoder(pngOpts...)
		if err != nil {
			return nil, err
		}
		if err := enc.SetHeader(pngenc.GrayHeader(width, height)); err != nil {
			_ = enc.Close()
			return nil, err
		}
		return enc, nil
	case FormatTIFF:
		return export.NewWriter(export.FormatTIFF, width, height)
	case FormatBMP:
		return export.NewWriter(export.FormatBMP, width, height)
	default:
		return nil, fmt.Errorf("unsupported format %v", f)
	}
}

func pngLevel(c Compression) pngenc.Level {
	switch c {
	case CompressionNone:
		return pngenc.NoCompression
	case CompressionSpeed:
		return pngenc.BestSpeed
	case CompressionBest:
		return pngenc.BestCompression
	default:
		return pngenc.DefaultCompression
	}
}

// writeFile encodes rows to path and returns the number of bytes written.
func writeFile(path string, f Format, c Compression, width int, rows [][]byte, o renderOptions) (int64, error) {
	log := Logger()

	enc, err := newWriter(f, c, width, len(rows), o)
	if err != nil {
		return 0, stepErr(StepEncoderInit, ErrEncoderInit, err)
	}
	defer func() { _ = enc.Close() }()
	log.Debug("encoder configured", "format", f, "compression", c, "width", width, "height", len(rows))

	out, err := createOutput(path)
	if err != nil {
		return 0, stepErr(StepOpen, ErrFileOpen, err)
	}
	// Removes the temporary file unless commit succeeded.
	defer out.discard()

	if err := encodeRows(enc, out, rows); err != nil {
		return 0, stepErr(StepEncode, ErrEncoding, err)
	}
	if err := out.finish(); err != nil {
		return 0, stepErr(StepEncode, ErrEncoding, err)
	}
	if err := out.commit(); err != nil {
		return 0, stepErr(StepOpen, ErrFileOpen, err)
	}
	if pe, ok := enc.(*pngenc.Encoder); ok {
		log.Debug("png stream finished", "chunks", pe.Chunks())
	}
	return out.n, nil
}

func encodeRows(enc imageWriter, w io.Writer, rows [][]byte) error {
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

func writeThumbnail(cfg Config, bm *bitmap.Bitmap, o renderOptions) error {
	thumb, err := export.Thumbnail(bm.Gray(), cfg.ThumbnailScale)
	if err != nil {
		return stepErr(StepThumbnail, ErrEncoding, err)
	}
	tw := thumb.Bounds().Dx()
	rows := make([][]byte, thumb.Bounds().Dy())
	for y := range rows {
		rows[y] = thumb.Pix[y*thumb.Stride : y*thumb.Stride+tw]
	}

	if _, err := writeFile(cfg.Thumbnail, FormatPNG, cfg.Compression, tw, rows, o); err != nil {
		return err
	}
	Logger().Debug("thumbnail written", "path", cfg.Thumbnail, "width", tw, "height", len(rows))
	return nil
}

// output is a temporary file that replaces its target on commit.
type output struct {
	f      *os.File
	target string
	n      int64
	done   bool
}

// createOutput checks that path can be replaced and opens a temporary file
// next to it.
func createOutput(path string) (*output, error) {
	if err := checkTarget(path); err != nil {
		return nil, err
	}
	dir, base := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &output{f: f, target: path}, nil
}

func (o *output) Write(p []byte) (int, error) {
	n, err := o.f.Write(p)
	o.n += int64(n)
	return n, err
}

// checkTarget fails if path exists and is not a regular file that this
// process may write.
func checkTarget(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("open %s: %w", path, errNotRegular)
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}

var errNotRegular = errors.New("not a regular file")

// finish closes the temporary file.
func (o *output) finish() error {
	if err := o.f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", o.f.Name(), err)
	}
	if err := o.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", o.f.Name(), err)
	}
	return nil
}

// commit renames the finished temporary file onto the target.
func (o *output) commit() error {
	if err := os.Rename(o.f.Name(), o.target); err != nil {
		return fmt.Errorf("rename to %s: %w", o.target, err)
	}
	o.done = true
	return nil
}

// discard closes and removes the temporary file if it was not committed.
func (o *output) discard() {
	if o.done {
		return
	}
	_ = o.f.Close()
	_ = os.Remove(o.f.Name())
}
