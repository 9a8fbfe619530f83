package export

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail returns src shrunk by an integer divisor. Each side is at least
// one pixel.
func Thumbnail(src *image.Gray, scale int) (*image.Gray, error) {
	if scale < 1 {
		return nil, fmt.Errorf("export: thumbnail scale %d", scale)
	}
	sb := src.Bounds()
	w := max(sb.Dx()/scale, 1)
	h := max(sb.Dy()/scale, 1)

	dst := image.NewGray(image.Rect(0, 0, w, h))
	if scale == 1 {
		draw.Copy(dst, image.Point{}, src, sb, draw.Src, nil)
		return dst, nil
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst, nil
}
