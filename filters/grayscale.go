package filters

import "github.com/soypat/pixlab"

// GrayscaleMode determines the algorithm for RGB to grayscale conversion.
type GrayscaleMode int

const (
	// GrayscaleLuminance uses standard luminance weights: 0.299*R + 0.587*G + 0.114*B
	GrayscaleLuminance GrayscaleMode = iota
	// GrayscaleAverage uses simple average: (R + G + B) / 3
	GrayscaleAverage
	// GrayscaleLightness uses min/max average: (max(R,G,B) + min(R,G,B)) / 2
	GrayscaleLightness
)

func (m GrayscaleMode) String() string {
	switch m {
	case GrayscaleLuminance:
		return "Luminance"
	case GrayscaleAverage:
		return "Average"
	case GrayscaleLightness:
		return "Lightness"
	default:
		return "Unknown"
	}
}

func (m GrayscaleMode) gray(r, g, b uint8) uint8 {
	switch m {
	case GrayscaleAverage:
		return uint8((uint32(r) + uint32(g) + uint32(b)) / 3)
	case GrayscaleLightness:
		return uint8((uint32(min(r, g, b)) + uint32(max(r, g, b))) / 2)
	default:
		return pixlab.Luma(r, g, b)
	}
}

// NewGrayscalePerPixel creates a grayscale filter reading in and writing out.
// Color output shapes receive the gray value on all three channels and keep
// the source alpha when both shapes carry one.
// Luminance mode matches [pixlab.Buffer.Convert] so thresholding sees the same gray image.
func NewGrayscalePerPixel(mode GrayscaleMode, in, out pixlab.Shape) *PointFilter {
	filterMode := mode
	inBpp, outBpp := in.BytesPerPixel(), out.BytesPerPixel()
	keepAlpha := in == pixlab.ShapeRGBA8888 && out == pixlab.ShapeRGBA8888
	return &PointFilter{
		In:  in,
		Out: out,
		Fn: func(dst, src []byte) {
			for i, j := 0, 0; i < len(src); i, j = i+inBpp, j+outBpp {
				var gray uint8
				if in == pixlab.ShapeGray8 {
					gray = src[i]
				} else {
					gray = filterMode.gray(src[i], src[i+1], src[i+2])
				}
				switch out {
				case pixlab.ShapeGray8:
					dst[j] = gray
				case pixlab.ShapeRGBA8888:
					dst[j+3] = 255
					if keepAlpha {
						dst[j+3] = src[i+3]
					}
					fallthrough
				default:
					dst[j], dst[j+1], dst[j+2] = gray, gray, gray
				}
			}
		},
		Ctrls: []pixlab.Control{
			&pixlab.ControlEnum[GrayscaleMode]{
				Name:        "Conversion Mode",
				Description: "Algorithm for RGB to grayscale conversion",
				Value:       filterMode,
				ValidValues: []GrayscaleMode{GrayscaleLuminance, GrayscaleAverage, GrayscaleLightness},
				OnChange: func(m GrayscaleMode) error {
					filterMode = m // Closure will assign and Fn above pick up.
					return nil
				},
			},
		},
	}
}
