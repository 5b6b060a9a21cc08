package pixlab

import (
	"errors"
	"image"
	"io"
)

// ErrEmptyImage is returned when an image has no pixels to process.
var ErrEmptyImage = errors.New("empty image")

// Image is raw pixel memory described by its Dims. Every row of an Image is
// Stride bytes apart and pixels are addressed by byte offsets, not coordinates.
type Image interface {
	// Dims returns the size, stride and pixel shape of the image.
	Dims() Dims
	// ReadAt reads raw pixel bytes at a byte offset into the image.
	// Filters check for [ImageBuffered] first and only fall back to ReadAt.
	io.ReaderAt
}

// ImageBuffered is an [Image] whose pixels live in a single slice.
type ImageBuffered interface {
	Image
	// Buffer returns the whole pixel memory, or nil if it is not resident.
	Buffer() []byte
}

// Filter is the low-level filter implementation shared by point and window filters.
type Filter interface {
	// ShapeIO returns expected output and input [Shape] of the filter.
	// output shape MUST match Process [Dims.Shape] output.
	ShapeIO() (output, input Shape)
	// Process processes an input image and writes the result to
	// destination buffer and returns the dimensions of the resulting image.
	//
	// If destination buffer is nil Filter may assert [ImageBuffered.Buffer] non-nilness
	// and use the buffer as the destination data. In-place does not support ROI.
	// Filters that read pixel neighborhoods reject in-place operation.
	// Use [ValidateProcessArgs] to acquire dst buffer and validate arguments.
	Process(dstOrNilForInPlace []byte, src Image, roi *image.Rectangle) (Dims, error)
	// Controls returns the actual controls of the filter.
	// Controls should remain valid even after calling [Control.ChangeValue]
	// and their [Control.ActualValue] return the updated value.
	Controls() []Control
}

// Shape is the in-memory pixel format of an image.
type Shape int

const (
	shapeUndefined Shape = iota // undefined
	ShapeGray8                  // gray8
	ShapeRGB888                 // rgb888
	ShapeRGBA8888               // rgba8888
)

func (sh Shape) String() string {
	switch sh {
	case ShapeGray8:
		return "gray8"
	case ShapeRGB888:
		return "rgb888"
	case ShapeRGBA8888:
		return "rgba8888"
	default:
		return "undefined"
	}
}

func (sh Shape) BitsPerPixel() (bits int) {
	switch sh {
	default:
		bits = -1
	case ShapeGray8:
		bits = 8
	case ShapeRGB888:
		bits = 24
	case ShapeRGBA8888:
		bits = 32
	}
	return bits
}

// BytesPerPixel returns the number of bytes a single pixel occupies, or -1 for undefined shapes.
func (sh Shape) BytesPerPixel() int {
	bits := sh.BitsPerPixel()
	if bits < 1 {
		return -1
	}
	return (bits + 7) / 8
}

// IsColor reports whether the shape stores separate red, green and blue channels.
func (sh Shape) IsColor() bool {
	return sh == ShapeRGB888 || sh == ShapeRGBA8888
}

type Dims struct {
	Width  int
	Height int
	Stride int
	Shape  Shape
}

func (d Dims) Validate() error {
	pixbits := d.Shape.BitsPerPixel()
	if d.Height <= 0 || d.Width <= 0 {
		return ErrEmptyImage
	} else if pixbits < 1 {
		return errors.New("bad pixel shape")
	} else if (d.Width*pixbits+7)/8 > d.Stride {
		return errors.New("stride smaller than pixel row size")
	}
	return nil
}

// Size returns the readable section size of raw image in bytes.
func (d Dims) Size() int64 {
	if d.Height == 0 || d.Width == 0 {
		return 0
	}
	return int64(d.Height-1)*int64(d.Stride) + int64(d.SizeRow())
}

func (d Dims) SizeRow() int {
	return (d.Width*d.Shape.BitsPerPixel() + 7) / 8
}

// ImageRow returns the bytes of a single row of img. When img is an
// [ImageBuffered] the returned slice aliases the image memory, otherwise dst is filled.
func ImageRow(dst []byte, img Image, row int) (resultSized []byte, err error) {
	d := img.Dims()
	err = d.Validate()
	if err != nil {
		return nil, err
	}
	rowLenBytes := d.SizeRow()
	if len(dst) < rowLenBytes {
		return nil, io.ErrShortBuffer
	} else if row < 0 || row >= d.Height {
		return nil, errors.New("row out of bounds")
	}
	off := int64(row) * int64(d.Stride)
	if buffered, ok := img.(ImageBuffered); ok {
		buf := buffered.Buffer()
		if buf != nil {
			return buf[off : off+int64(rowLenBytes)], nil
		}
	}
	resultSized = dst[:rowLenBytes]
	n, err := img.ReadAt(resultSized, off)
	if n != rowLenBytes {
		return nil, io.ErrShortWrite
	}
	return resultSized, nil
}

// ReadAll returns the whole pixel memory of img. Buffered images return their
// own memory which callers must not modify.
func ReadAll(img Image) ([]byte, error) {
	d := img.Dims()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if buffered, ok := img.(ImageBuffered); ok {
		if buf := buffered.Buffer(); buf != nil {
			if int64(len(buf)) < d.Size() {
				return nil, errors.New("buffer too small to represent complete image")
			}
			return buf, nil
		}
	}
	buf := make([]byte, d.Size())
	n, err := img.ReadAt(buf, 0)
	if int64(n) != d.Size() {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// ValidateProcessArgs is the argument check shared by [Filter.Process] implementations.
// It validates the source dims and the ROI, resolves a nil dst to the source
// memory for in-place operation (no ROI, matching shape, buffered source) and
// checks dst can hold dstShape.Stride bytes for every output row.
// A zero dstShape.Stride skips the size check. srcDims is src.Dims() as returned by src.
func ValidateProcessArgs(dst []byte, dstShape Dims, src Image, roi *image.Rectangle) (_ []byte, srcDims Dims, err error) {
	srcDims = src.Dims()
	if err = srcDims.Validate(); err != nil {
		return nil, srcDims, err
	}
	var requiredMinDstSize int64
	if roi != nil {
		if roi.Max.X < 0 || roi.Min.X < 0 || roi.Min.Y < 0 || roi.Max.Y < 0 {
			return nil, srcDims, errors.New("negative ROI")
		} else if roi.Max.X > srcDims.Width || roi.Max.Y > srcDims.Height {
			return nil, srcDims, errors.New("ROI exceeds image bounds")
		} else if roi.Empty() {
			return nil, srcDims, errors.New("empty ROI")
		}
		requiredMinDstSize = int64(dstShape.Stride) * int64(roi.Dy())
	} else {
		requiredMinDstSize = int64(dstShape.Stride) * int64(dstShape.Height)
	}
	if dst == nil {
		if roi != nil {
			return nil, srcDims, errors.New("in-place operation does not support ROI")
		}
		if dstShape.Shape != srcDims.Shape {
			return nil, srcDims, errors.New("src must match filter output shape for in-place op")
		}
		buffered, ok := src.(ImageBuffered)
		if !ok {
			return nil, srcDims, errors.New("src does not implement ImageBuffered for in-place op")
		}
		buf := buffered.Buffer()
		if buf == nil {
			return nil, srcDims, errors.New("src returned nil buffer on in-place op")
		} else if len(buf) < int(srcDims.Size()) {
			return nil, srcDims, errors.New("src ImageBuffered returned a buffer too small to represent complete image")
		}
		dst = buf
	}
	if int64(len(dst)) < requiredMinDstSize {
		return dst, srcDims, errors.New("destination buffer not large enough to store output")
	}
	return dst, srcDims, nil
}
