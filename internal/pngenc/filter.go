package pngenc

import "fmt"

// Filter is a PNG row filter type (filter method 0).
type Filter int

// Row filters. FilterAdaptive is not a wire value: it picks, per row, the
// filter with the smallest sum of absolute signed residuals.
const (
	FilterNone Filter = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth

	numFilters

	FilterAdaptive Filter = -1
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterSub:
		return "sub"
	case FilterUp:
		return "up"
	case FilterAverage:
		return "average"
	case FilterPaeth:
		return "paeth"
	case FilterAdaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

func (f Filter) valid() bool {
	return f == FilterAdaptive || (f >= FilterNone && f < numFilters)
}

// filterRow writes the filtered form of cur into out[ft][1:] for the
// requested filter(s) and returns the filter type to emit. prev is the
// previous unfiltered row (all zero for the first row). bpp is the number of
// bytes per complete pixel. Each out[ft][0] already holds ft.
func filterRow(out *[numFilters][]byte, cur, prev []byte, bpp int, want Filter) Filter {
	if want != FilterAdaptive {
		applyFilter(out[want][1:], cur, prev, bpp, want)
		return want
	}

	best := FilterNone
	bestSum := -1
	for ft := FilterNone; ft < numFilters; ft++ {
		dst := out[ft][1:]
		applyFilter(dst, cur, prev, bpp, ft)
		sum := 0
		for _, v := range dst {
			sum += abs8(v)
			if bestSum >= 0 && sum >= bestSum {
				break
			}
		}
		if bestSum < 0 || sum < bestSum {
			best, bestSum = ft, sum
		}
	}
	return best
}

func applyFilter(dst, cur, prev []byte, bpp int, ft Filter) {
	switch ft {
	case FilterNone:
		copy(dst, cur)
	case FilterSub:
		for i := range cur {
			var left byte
			if i >= bpp {
				left = cur[i-bpp]
			}
			dst[i] = cur[i] - left
		}
	case FilterUp:
		for i := range cur {
			dst[i] = cur[i] - prev[i]
		}
	case FilterAverage:
		for i := range cur {
			var left int
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			dst[i] = cur[i] - uint8((left+int(prev[i]))/2)
		}
	case FilterPaeth:
		for i := range cur {
			var a, c byte
			if i >= bpp {
				a = cur[i-bpp]
				c = prev[i-bpp]
			}
			dst[i] = cur[i] - paeth(a, prev[i], c)
		}
	}
}

// paeth implements the Paeth predictor: a is left, b is above, c is upper
// left.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := absInt(p - int(a))
	pb := absInt(p - int(b))
	pc := absInt(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

// abs8 treats v as a signed residual and returns its magnitude.
func abs8(v byte) int {
	if v < 128 {
		return int(v)
	}
	return 256 - int(v)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
