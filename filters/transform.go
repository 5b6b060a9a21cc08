package filters

import "github.com/soypat/pixlab"

// ToGray returns the luma of every pixel of img as a new gray image.
// Gray input is copied unchanged.
func ToGray(img *pixlab.Buffer) (*pixlab.Buffer, error) {
	if img.Empty() {
		return nil, pixlab.ErrEmptyImage
	}
	return apply(NewGrayscalePerPixel(GrayscaleLuminance, img.Shape(), pixlab.ShapeGray8), img)
}

// InvertRGB returns a new image with every color channel c replaced by 255-c.
func InvertRGB(img *pixlab.Buffer) (*pixlab.Buffer, error) {
	if img.Empty() {
		return nil, pixlab.ErrEmptyImage
	}
	return apply(NewInvertedPerPixel(img.Shape()), img)
}

// BoostHSV returns a new image with the HSV value of every pixel raised by
// [DefaultValueBoost], clamped at 255.
func BoostHSV(img *pixlab.Buffer) (*pixlab.Buffer, error) {
	if img.Empty() {
		return nil, pixlab.ErrEmptyImage
	}
	return apply(NewHSVBoostPerPixel(img.Shape(), DefaultValueBoost), img)
}

// AdaptiveThreshold binarizes img against the local mean minus c. See [NewAdaptiveMean].
func AdaptiveThreshold(img *pixlab.Buffer, kernelSize int, c float64) (*pixlab.Buffer, error) {
	return Threshold(NewAdaptiveMean(kernelSize, c), img)
}

// BernsenThreshold binarizes img with Bernsen's method. See [NewBernsen].
func BernsenThreshold(img *pixlab.Buffer, kernelSize, contrastThreshold int) (*pixlab.Buffer, error) {
	return Threshold(NewBernsen(kernelSize, contrastThreshold), img)
}

// MedianThreshold binarizes img against the local median. See [NewLocalMedian].
func MedianThreshold(img *pixlab.Buffer, kernelSize int) (*pixlab.Buffer, error) {
	return Threshold(NewLocalMedian(kernelSize), img)
}

// Threshold converts img to gray and runs f over it. The result has the
// dimensions of img, with a gray border where the window of f does not fit.
func Threshold(f *WindowFilter, img *pixlab.Buffer) (*pixlab.Buffer, error) {
	if img.Empty() {
		return nil, pixlab.ErrEmptyImage
	}
	if err := f.Window.Validate(); err != nil {
		return nil, err
	}
	return apply(f, img.Convert(pixlab.ShapeGray8))
}
