package filters

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/soypat/pixlab"
)

// Shader transforms operate on normalised channels. Luminance weights are the
// fixed point ones of [pixlab.Luma] so CPU and GPU gray images agree to within rounding.
const (
	grayscaleTransform = `
fn transform(c: vec4<f32>) -> vec4<f32> {
    var gray: f32;
    if (u.param0 < 0.5) {
        gray = (77.0 * c.r + 150.0 * c.g + 29.0 * c.b) / 256.0;
    } else if (u.param0 < 1.5) {
        gray = (c.r + c.g + c.b) / 3.0;
    } else {
        gray = (max(max(c.r, c.g), c.b) + min(min(c.r, c.g), c.b)) / 2.0;
    }
    return vec4<f32>(gray, gray, gray, c.a);
}
`
	invertTransform = `
fn transform(c: vec4<f32>) -> vec4<f32> {
    return vec4<f32>(1.0 - c.rgb, c.a);
}
`
	// param0 holds the value boost in normalised units.
	hsvBoostTransform = `
fn transform(c: vec4<f32>) -> vec4<f32> {
    let v = max(max(c.r, c.g), c.b);
    if (v <= 0.0) {
        let b = min(u.param0, 1.0);
        return vec4<f32>(b, b, b, c.a);
    }
    let boosted = min(v + u.param0, 1.0);
    return vec4<f32>(c.rgb * (boosted / v), c.a);
}
`
)

// ColorFilterGPU is a GPU color transform with its parameter controls.
type ColorFilterGPU struct {
	PointFilterGPU
	ctrls []pixlab.Control
}

// Controls returns the filter's adjustable parameters.
func (f *ColorFilterGPU) Controls() []pixlab.Control {
	return f.ctrls
}

// setParam stores a user parameter read by the transform as u.param0 or u.param1.
func (f *ColorFilterGPU) setParam(index int, value float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch index {
	case 0:
		f.params.Param0 = value
	case 1:
		f.params.Param1 = value
	}
}

// param returns the value stored by setParam.
func (f *ColorFilterGPU) param(index int) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index == 1 {
		return f.params.Param1
	}
	return f.params.Param0
}

func newColorFilterGPU(device *wgpu.Device, queue *wgpu.Queue, transform string) (*ColorFilterGPU, error) {
	f := &ColorFilterGPU{}
	if err := f.Init(device, queue, transform); err != nil {
		return nil, err
	}
	return f, nil
}

// NewGrayscaleGPU creates a GPU-accelerated grayscale filter. The result keeps
// the RGBA8888 shape with the gray value on all color channels.
func NewGrayscaleGPU(device *wgpu.Device, queue *wgpu.Queue, mode GrayscaleMode) (*ColorFilterGPU, error) {
	f, err := newColorFilterGPU(device, queue, grayscaleTransform)
	if err != nil {
		return nil, err
	}
	f.setParam(0, float32(mode))
	f.ctrls = []pixlab.Control{
		&pixlab.ControlEnum[GrayscaleMode]{
			Name:        "Conversion Mode",
			Description: "Algorithm for RGB to grayscale conversion",
			Value:       mode,
			ValidValues: []GrayscaleMode{GrayscaleLuminance, GrayscaleAverage, GrayscaleLightness},
			OnChange: func(m GrayscaleMode) error {
				f.setParam(0, float32(m))
				return nil
			},
		},
	}
	return f, nil
}

// NewInvertGPU creates a GPU-accelerated color inversion filter.
func NewInvertGPU(device *wgpu.Device, queue *wgpu.Queue) (*ColorFilterGPU, error) {
	return newColorFilterGPU(device, queue, invertTransform)
}

// NewHSVBoostGPU creates a GPU-accelerated HSV value boost. Scaling all
// channels by v'/v keeps hue and saturation and sets the value to v'.
func NewHSVBoostGPU(device *wgpu.Device, queue *wgpu.Queue, boost int) (*ColorFilterGPU, error) {
	f, err := newColorFilterGPU(device, queue, hsvBoostTransform)
	if err != nil {
		return nil, err
	}
	f.setParam(0, float32(boost)/255)
	f.ctrls = []pixlab.Control{
		&pixlab.ControlOrdered[int]{
			Name:        "Value Boost",
			Description: "Amount added to the HSV value channel, clamped at 255",
			Value:       boost,
			Min:         0,
			Max:         255,
			Step:        1,
			OnChange: func(v int) error {
				f.setParam(0, float32(v)/255)
				return nil
			},
		},
	}
	return f, nil
}
