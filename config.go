package blankpng

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default image parameters.
const (
	DefaultWidth          = 8000
	DefaultHeight         = 4000
	DefaultPath           = "image.png"
	DefaultThumbnailScale = 10
)

// Format is the output file format.
type Format uint8

// Output formats.
const (
	FormatPNG Format = iota
	FormatTIFF
	FormatBMP
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatTIFF:
		return "tiff"
	case FormatBMP:
		return "bmp"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name such as "png" or "tif".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "png":
		return FormatPNG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, s)
	}
}

// Compression selects the PNG compression level.
type Compression uint8

// Compression levels.
const (
	CompressionDefault Compression = iota
	CompressionNone
	CompressionSpeed
	CompressionBest
)

// String returns the level name.
func (c Compression) String() string {
	switch c {
	case CompressionDefault:
		return "default"
	case CompressionNone:
		return "none"
	case CompressionSpeed:
		return "speed"
	case CompressionBest:
		return "best"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression level name.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "default", "":
		return CompressionDefault, nil
	case "none":
		return CompressionNone, nil
	case "speed", "fast":
		return CompressionSpeed, nil
	case "best":
		return CompressionBest, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidConfig, s)
	}
}

// Config describes the image Render produces.
type Config struct {
	// Width and Height are the image dimensions in pixels.
	Width  int
	Height int

	// Fill is the value of every sample. 0 is black.
	Fill uint8

	// Path is the output file.
	Path string

	// Format is the output file format. Compression applies to PNG only.
	Format      Format
	Compression Compression

	// Thumbnail, if set, is the path of an additional PNG preview shrunk
	// by ThumbnailScale in each direction.
	Thumbnail      string
	ThumbnailScale int
}

// DefaultConfig returns an 8000x4000 black image written to image.png.
func DefaultConfig() Config {
	return Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Path:           DefaultPath,
		Format:         FormatPNG,
		Compression:    CompressionDefault,
		ThumbnailScale: DefaultThumbnailScale,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Width > maxDimension || c.Height > maxDimension {
		return fmt.Errorf("%w: dimensions %dx%d exceed %d", ErrInvalidConfig, c.Width, c.Height, maxDimension)
	}
	if c.Path == "" {
		return fmt.Errorf("%w: empty output path", ErrInvalidConfig)
	}
	if c.Format > FormatBMP {
		return fmt.Errorf("%w: format %v", ErrInvalidConfig, c.Format)
	}
	if c.Compression > CompressionBest {
		return fmt.Errorf("%w: compression %v", ErrInvalidConfig, c.Compression)
	}
	if c.Thumbnail != "" {
		if c.ThumbnailScale < 1 {
			return fmt.Errorf("%w: thumbnail scale %d", ErrInvalidConfig, c.ThumbnailScale)
		}
		if filepath.Clean(c.Thumbnail) == filepath.Clean(c.Path) {
			return fmt.Errorf("%w: thumbnail path equals output path", ErrInvalidConfig)
		}
	}
	return nil
}

// maxDimension is the largest side any supported format can store.
const maxDimension = 1<<31 - 1
