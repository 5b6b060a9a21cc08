package filters

import (
	"cmp"
	"errors"
	"slices"

	"github.com/soypat/pixlab"
)

// NewToneCurve creates a filter mapping every color channel through a
// piecewise-linear curve defined by normalised control points. Inputs before
// the first point and after the last take the end point outputs. An empty
// point set is the identity curve.
func NewToneCurve(shape pixlab.Shape, points []pixlab.CurvePoint) (*PointFilter, error) {
	var lut [256]uint8
	if err := buildCurveLUT(&lut, points); err != nil {
		return nil, err
	}
	bpp := shape.BytesPerPixel()
	channels := min(bpp, 3)
	return &PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			for i := 0; i < len(src); i += bpp {
				for c := 0; c < channels; c++ {
					dst[i+c] = lut[src[i+c]]
				}
				if bpp == 4 {
					dst[i+3] = src[i+3]
				}
			}
		},
		Ctrls: []pixlab.Control{
			&pixlab.ControlCurve{
				Name:        "Tone Curve",
				Description: "Input to output intensity mapping",
				Points:      slices.Clone(points),
				OnChange: func(pts []pixlab.CurvePoint) error {
					return buildCurveLUT(&lut, pts)
				},
			},
		},
	}, nil
}

func buildCurveLUT(lut *[256]uint8, points []pixlab.CurvePoint) error {
	if len(points) == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return nil
	}
	pts := slices.Clone(points)
	slices.SortStableFunc(pts, func(a, b pixlab.CurvePoint) int { return cmp.Compare(a.X, b.X) })
	for i := 1; i < len(pts); i++ {
		if pts[i].X == pts[i-1].X {
			return errors.New("tone curve points must have distinct X")
		}
	}
	var next [256]uint8
	k := 0
	for i := range next {
		x := float32(i) / 255
		for k < len(pts)-1 && pts[k+1].X < x {
			k++
		}
		var y float32
		switch {
		case x <= pts[0].X:
			y = pts[0].Y
		case x >= pts[len(pts)-1].X:
			y = pts[len(pts)-1].Y
		default:
			p0, p1 := pts[k], pts[k+1]
			y = p0.Y + (x-p0.X)*(p1.Y-p0.Y)/(p1.X-p0.X)
		}
		next[i] = uint8(min(max(y*255+0.5, 0), 255))
	}
	*lut = next
	return nil
}
