package filters

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/pixlab"
)

// DefaultValueBoost is the amount added to the HSV value channel by [BoostHSV].
const DefaultValueBoost = 100

// NewHSVBoostPerPixel creates a filter that converts each pixel of shape to HSV,
// adds boost to the value channel clamping at 255 and converts back.
// Hue and saturation are preserved.
func NewHSVBoostPerPixel(shape pixlab.Shape, boost int) *PointFilter {
	delta := boost
	bpp := shape.BytesPerPixel()
	return &PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			for i := 0; i < len(src); i += bpp {
				if shape == pixlab.ShapeGray8 {
					dst[i] = addClamp(src[i], delta)
					continue
				}
				h, s, v := rgbToHSV(src[i], src[i+1], src[i+2])
				dst[i], dst[i+1], dst[i+2] = hsvToRGB(h, s, addClamp(v, delta))
				if bpp == 4 {
					dst[i+3] = src[i+3]
				}
			}
		},
		Ctrls: []pixlab.Control{
			&pixlab.ControlOrdered[int]{
				Name:        "Value Boost",
				Description: "Amount added to the HSV value channel, clamped at 255",
				Value:       delta,
				Min:         0,
				Max:         255,
				Step:        1,
				OnChange: func(v int) error {
					delta = v
					return nil
				},
			},
		},
	}
}

func addClamp(v uint8, delta int) uint8 {
	return uint8(min(max(int(v)+delta, 0), 255))
}

// rgbToHSV returns hue in degrees [0,360), saturation in [0,1] and value as the largest channel.
// Achromatic colors have hue 0.
func rgbToHSV(r, g, b uint8) (h, s float64, v uint8) {
	h, s, _ = colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsv()
	return h, s, max(r, g, b)
}

// hsvToRGB is the inverse of rgbToHSV. The largest output channel always equals v.
func hsvToRGB(h, s float64, v uint8) (r, g, b uint8) {
	return colorful.Hsv(h, s, float64(v)/255).Clamped().RGB255()
}
