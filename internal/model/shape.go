package model

// DefaultImageSize is used when the declared input shape gives no usable
// spatial dimensions.
const DefaultImageSize = 180

// DetectImageSize derives (H, W) from a declared input shape.
//
// A shape of rank >= 3 whose dims 1 and 2 are equal is read as NHWC. Failing
// that, a rank >= 4 shape whose dims 2 and 3 are equal is read as NCHW. Any
// other shape falls back to fallback x fallback. Dynamic dims (reported as -1)
// never match.
func DetectImageSize(dims []int64, fallback int) ImageSize {
	if len(dims) >= 3 {
		if dims[1] > 0 && dims[1] == dims[2] {
			return ImageSize{Height: int(dims[1]), Width: int(dims[2])}
		}
		if len(dims) >= 4 && dims[2] > 0 && dims[2] == dims[3] {
			return ImageSize{Height: int(dims[2]), Width: int(dims[3])}
		}
	}
	return ImageSize{Height: fallback, Width: fallback}
}
