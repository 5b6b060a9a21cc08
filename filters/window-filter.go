package filters

import (
	"errors"
	"image"

	"github.com/soypat/pixlab"
	"golang.org/x/sync/errgroup"
)

// DecideFunc classifies the pixel at the center of a window. It returns true
// for white and false for black.
type DecideFunc func(center uint8, st *WindowStat) bool

// WindowFilter binarizes a gray image by evaluating a square window around
// every pixel. Pixels whose window does not fit inside the image are copied
// from the source unchanged, leaving a gray border Window.Half() pixels wide.
type WindowFilter struct {
	Window Window
	// Stats selects the statistics computed for Decide.
	Stats  Stat
	Decide DecideFunc
	// Concurrency is the number of goroutines used to process row bands.
	// Values below 2 process rows sequentially. Results do not depend on it.
	Concurrency int
	Ctrls       []pixlab.Control
}

var _ pixlab.Filter = (*WindowFilter)(nil)

// ShapeIO implements [pixlab.Filter]. Window filters read and write gray images.
func (f *WindowFilter) ShapeIO() (output, input pixlab.Shape) {
	return pixlab.ShapeGray8, pixlab.ShapeGray8
}

// Controls implements [pixlab.Filter].
func (f *WindowFilter) Controls() []pixlab.Control {
	return f.Ctrls
}

// Process implements [pixlab.Filter]. The window of a pixel inside roi may
// extend beyond roi as long as it is inside the source image.
func (f *WindowFilter) Process(dst []byte, src pixlab.Image, roi *image.Rectangle) (pixlab.Dims, error) {
	if f.Decide == nil {
		return pixlab.Dims{}, errNilDecideFunc
	} else if dst == nil {
		return pixlab.Dims{}, errors.New("window filter does not support in-place operation")
	}
	if err := f.Window.Validate(); err != nil {
		return pixlab.Dims{}, err
	}
	srcDims := src.Dims()
	if srcDims.Shape != pixlab.ShapeGray8 {
		return pixlab.Dims{}, errShapeMismatch
	}

	startX, startY := 0, 0
	endX, endY := srcDims.Width, srcDims.Height
	if roi != nil {
		startX, startY = roi.Min.X, roi.Min.Y
		endX, endY = roi.Max.X, roi.Max.Y
	}
	dstDims := pixlab.Dims{
		Width:  endX - startX,
		Height: endY - startY,
		Stride: endX - startX,
		Shape:  pixlab.ShapeGray8,
	}
	dst, _, err := pixlab.ValidateProcessArgs(dst, dstDims, src, roi)
	if err != nil {
		return pixlab.Dims{}, err
	}
	gray, err := pixlab.ReadAll(src)
	if err != nil {
		return pixlab.Dims{}, err
	}

	rows := func(y0, y1 int) {
		st := WindowStat{}
		if f.Stats&StatSorted != 0 {
			st.Values = make([]uint8, 0, f.Window.Area())
		}
		for y := y0; y < y1; y++ {
			srcRow := gray[y*srcDims.Stride:]
			dstRow := dst[(y-startY)*dstDims.Stride:]
			for x := startX; x < endX; x++ {
				center := srcRow[x]
				out := center
				if f.Window.Contains(x, y, srcDims.Width, srcDims.Height) {
					f.Window.Scan(&st, gray, srcDims.Stride, x, y, f.Stats)
					out = 0
					if f.Decide(center, &st) {
						out = 255
					}
				}
				dstRow[x-startX] = out
			}
		}
	}

	n := min(f.Concurrency, dstDims.Height)
	if n < 2 {
		rows(startY, endY)
		return dstDims, nil
	}
	band := (dstDims.Height + n - 1) / n
	var g errgroup.Group
	for y0 := startY; y0 < endY; y0 += band {
		y1 := min(y0+band, endY)
		g.Go(func() error {
			rows(y0, y1)
			return nil
		})
	}
	return dstDims, g.Wait()
}

var errNilDecideFunc = errorString("nil DecideFunc")

// kernelControl returns a control editing the window size of f.
func kernelControl(f *WindowFilter) *pixlab.ControlOrdered[int] {
	return &pixlab.ControlOrdered[int]{
		Name:        "Kernel Size",
		Description: "Side of the square neighborhood, must be odd",
		Value:       f.Window.Size,
		Min:         1,
		Max:         255,
		Step:        2,
		OnChange: func(size int) error {
			w := Window{Size: size}
			if err := w.Validate(); err != nil {
				return err
			}
			f.Window = w
			return nil
		},
	}
}
