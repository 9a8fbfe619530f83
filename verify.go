package blankpng

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/gogpu/blankpng/internal/export"
)

// Verify decodes the file at cfg.Path and checks that it is a
// cfg.Width x cfg.Height image whose every sample equals cfg.Fill.
// If cfg.Thumbnail is set, the thumbnail is checked for the fill value too.
func Verify(cfg Config) error {
	if err := verifyFile(cfg.Path, cfg.Format, cfg.Width, cfg.Height, cfg.Fill); err != nil {
		return err
	}
	if cfg.Thumbnail != "" && cfg.ThumbnailScale > 0 {
		tw := max(cfg.Width/cfg.ThumbnailScale, 1)
		th := max(cfg.Height/cfg.ThumbnailScale, 1)
		if err := verifyFile(cfg.Thumbnail, FormatPNG, tw, th, cfg.Fill); err != nil {
			return err
		}
	}
	Logger().Debug("output verified", "path", cfg.Path)
	return nil
}

func verifyFile(path string, f Format, width, height int, fill uint8) error {
	img, err := decodeFile(path, f)
	if err != nil {
		return stepErr(StepVerify, ErrMismatch, err)
	}

	if got := img.Bounds(); got.Dx() != width || got.Dy() != height {
		return stepErr(StepVerify, ErrMismatch,
			fmt.Errorf("%s: size %dx%d, want %dx%d", path, got.Dx(), got.Dy(), width, height))
	}
	if x, y, v, ok := findOther(img, fill); !ok {
		return stepErr(StepVerify, ErrMismatch,
			fmt.Errorf("%s: sample (%d, %d) = %d, want %d", path, x, y, v, fill))
	}
	return nil
}

func decodeFile(path string, f Format) (image.Image, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var ef export.Format
	switch f {
	case FormatPNG:
		ef = export.FormatPNG
	case FormatTIFF:
		ef = export.FormatTIFF
	case FormatBMP:
		ef = export.FormatBMP
	default:
		return nil, fmt.Errorf("unsupported format %v", f)
	}
	return export.Decode(bufio.NewReader(file), ef)
}

// findOther returns the first sample that differs from fill, with ok false,
// or ok true if every sample equals fill.
func findOther(img image.Image, fill uint8) (x, y int, v uint8, ok bool) {
	b := img.Bounds()
	if gray, isGray := img.(*image.Gray); isGray {
		for y, n := 0, b.Dy(); y < n; y++ {
			row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
			for x, v := range row {
				if v != fill {
					return x, y, v, false
				}
			}
		}
		return 0, 0, 0, true
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if v != fill {
				return x - b.Min.X, y - b.Min.Y, v, false
			}
		}
	}
	return 0, 0, 0, true
}
