package filters

import "github.com/soypat/pixlab"

// NewInvertedPerPixel creates a filter that inverts the color channels of shape.
// Alpha is left untouched and gray images invert their single channel.
func NewInvertedPerPixel(shape pixlab.Shape) *PointFilter {
	bpp := shape.BytesPerPixel()
	channels := min(bpp, 3)
	return &PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			for i := 0; i < len(src); i += bpp {
				for c := 0; c < channels; c++ {
					dst[i+c] = 255 - src[i+c]
				}
				if bpp == 4 {
					dst[i+3] = src[i+3]
				}
			}
		},
	}
}
