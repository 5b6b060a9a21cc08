package filters

import (
	"errors"
	"fmt"
	"image"

	"github.com/soypat/pixlab"
)

var errShapeMismatch = errors.New("pixel shape mismatch")

// PointFunc processes a contiguous row of pixels.
// dst and src contain rowWidth pixels worth of bytes in the filter's output and input shapes.
// The function should iterate through pixels: for i := 0; i < len(src); i += bytesPerPixel { ... }
type PointFunc func(dst, src []byte)

// PointFilter applies a per-pixel transformation using a callback function.
// It handles the iteration, buffering, and ROI logic common to all per-pixel filters.
// The callback is invoked once per row with contiguous pixel data.
// Point filters have no neighborhood dependency so they may run in-place.
type PointFilter struct {
	In    pixlab.Shape
	Out   pixlab.Shape
	Fn    PointFunc
	Ctrls []pixlab.Control // User-defined controls for this filter.
}

var _ pixlab.Filter = (*PointFilter)(nil)

// ShapeIO implements [pixlab.Filter].
func (f *PointFilter) ShapeIO() (output, input pixlab.Shape) {
	return f.Out, f.In
}

// Controls implements [pixlab.Filter].
func (f *PointFilter) Controls() []pixlab.Control {
	return f.Ctrls
}

// Process implements [pixlab.Filter].
func (f *PointFilter) Process(dst []byte, src pixlab.Image, roi *image.Rectangle) (pixlab.Dims, error) {
	if f.Fn == nil {
		return pixlab.Dims{}, errNilPixelFunc
	}

	outShape, inShape := f.ShapeIO()
	srcDims := src.Dims()
	if srcDims.Shape != inShape {
		return pixlab.Dims{}, fmt.Errorf("%w: got %s, want %s", errShapeMismatch, srcDims.Shape, inShape)
	}

	inBytesPerPixel := inShape.BytesPerPixel()
	outBytesPerPixel := outShape.BytesPerPixel()

	// Calculate output dimensions based on ROI or full image.
	var outWidth, outHeight int
	if roi != nil {
		outWidth, outHeight = roi.Dx(), roi.Dy()
	} else {
		outWidth, outHeight = srcDims.Width, srcDims.Height
	}
	outStride := outWidth * outBytesPerPixel

	dstDims := pixlab.Dims{
		Width:  outWidth,
		Height: outHeight,
		Stride: outStride,
		Shape:  outShape,
	}

	dst, _, err := pixlab.ValidateProcessArgs(dst, dstDims, src, roi)
	if err != nil {
		return pixlab.Dims{}, err
	}

	// Determine source region to process.
	startX, startY := 0, 0
	endX, endY := srcDims.Width, srcDims.Height
	if roi != nil {
		startX, startY = roi.Min.X, roi.Min.Y
		endX, endY = roi.Max.X, roi.Max.Y
	}

	rowBuf := make([]byte, srcDims.SizeRow()) // Used when src is not buffered.
	for y := startY; y < endY; y++ {
		srcRow, err := pixlab.ImageRow(rowBuf, src, y)
		if err != nil {
			return pixlab.Dims{}, err
		}

		dstY := y - startY
		dstRowStart := dstY * outStride
		srcStart := startX * inBytesPerPixel
		srcEnd := endX * inBytesPerPixel

		f.Fn(dst[dstRowStart:dstRowStart+outStride], srcRow[srcStart:srcEnd])
	}

	return dstDims, nil
}

var errNilPixelFunc = errorString("nil PixelFunc")

type errorString string

func (e errorString) Error() string { return string(e) }

// apply runs f over the whole of src and returns the result in a newly allocated buffer.
func apply(f pixlab.Filter, src *pixlab.Buffer) (*pixlab.Buffer, error) {
	if src.Empty() {
		return nil, pixlab.ErrEmptyImage
	}
	outShape, _ := f.ShapeIO()
	dst := pixlab.NewBuffer(src.Width(), src.Height(), outShape)
	_, err := f.Process(dst.Buffer(), src, nil)
	if err != nil {
		return nil, err
	}
	return dst, nil
}
