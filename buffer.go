package pixlab

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/draw"
)

// Buffer is a contiguous in-memory image. Rows are packed with no padding so
// the stride is always Width*BytesPerPixel. Buffer implements [ImageBuffered]
// and [image.Image].
type Buffer struct {
	dims Dims
	pix  []byte
}

var (
	_ ImageBuffered = (*Buffer)(nil)
	_ image.Image   = (*Buffer)(nil)
)

// NewBuffer allocates a zeroed buffer. It panics on an undefined shape or negative size.
func NewBuffer(width, height int, shape Shape) *Buffer {
	bpp := shape.BytesPerPixel()
	if bpp < 1 {
		panic("pixlab: undefined shape " + shape.String())
	} else if width < 0 || height < 0 {
		panic("pixlab: negative buffer size")
	}
	return &Buffer{
		dims: Dims{Width: width, Height: height, Stride: width * bpp, Shape: shape},
		pix:  make([]byte, width*height*bpp),
	}
}

// Dims implements [Image].
func (b *Buffer) Dims() Dims { return b.dims }

// Buffer implements [ImageBuffered].
func (b *Buffer) Buffer() []byte { return b.pix }

// ReadAt implements [io.ReaderAt] over the pixel memory.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	} else if off >= int64(len(b.pix)) {
		return 0, io.EOF
	}
	n := copy(p, b.pix[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *Buffer) Width() int   { return b.dims.Width }
func (b *Buffer) Height() int  { return b.dims.Height }
func (b *Buffer) Shape() Shape { return b.dims.Shape }

// Empty reports whether the buffer is nil or has no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.dims.Width <= 0 || b.dims.Height <= 0
}

func (b *Buffer) offset(x, y int) int {
	if x < 0 || y < 0 || x >= b.dims.Width || y >= b.dims.Height {
		panic(fmt.Sprintf("pixlab: pixel (%d,%d) out of bounds %dx%d", x, y, b.dims.Width, b.dims.Height))
	}
	return y*b.dims.Stride + x*b.dims.Shape.BytesPerPixel()
}

// RGB returns the color channels of the pixel at (x, y). Gray pixels return
// the intensity on all three channels.
func (b *Buffer) RGB(x, y int) (r, g, bl uint8) {
	i := b.offset(x, y)
	if b.dims.Shape == ShapeGray8 {
		v := b.pix[i]
		return v, v, v
	}
	return b.pix[i], b.pix[i+1], b.pix[i+2]
}

// Gray returns the intensity of the pixel at (x, y) using [Luma] for color shapes.
func (b *Buffer) Gray(x, y int) uint8 {
	i := b.offset(x, y)
	if b.dims.Shape == ShapeGray8 {
		return b.pix[i]
	}
	return Luma(b.pix[i], b.pix[i+1], b.pix[i+2])
}

// SetRGB sets the pixel at (x, y). Gray buffers store the luma of the color.
// Alpha of RGBA buffers is set opaque.
func (b *Buffer) SetRGB(x, y int, r, g, bl uint8) {
	i := b.offset(x, y)
	switch b.dims.Shape {
	case ShapeGray8:
		b.pix[i] = Luma(r, g, bl)
	case ShapeRGBA8888:
		b.pix[i+3] = 255
		fallthrough
	default:
		b.pix[i], b.pix[i+1], b.pix[i+2] = r, g, bl
	}
}

// SetGray sets the pixel at (x, y) to intensity v on every color channel.
func (b *Buffer) SetGray(x, y int, v uint8) {
	b.SetRGB(x, y, v, v, v)
}

// Bounds implements [image.Image].
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.dims.Width, b.dims.Height)
}

// ColorModel implements [image.Image].
func (b *Buffer) ColorModel() color.Model {
	switch b.dims.Shape {
	case ShapeGray8:
		return color.GrayModel
	case ShapeRGBA8888:
		return color.NRGBAModel
	default:
		return color.RGBAModel
	}
}

// At implements [image.Image]. Out of bounds reads return transparent black
// to honor the image.Image contract.
func (b *Buffer) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.RGBA{}
	}
	i := b.offset(x, y)
	switch b.dims.Shape {
	case ShapeGray8:
		return color.Gray{Y: b.pix[i]}
	case ShapeRGBA8888:
		return color.NRGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: b.pix[i+3]}
	default:
		return color.RGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: 255}
	}
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{dims: b.dims, pix: make([]byte, len(b.pix))}
	copy(c.pix, b.pix)
	return c
}

// Convert returns a new buffer holding the pixels of b in the given shape.
// Color to gray conversion uses [Luma]. b is never modified.
func (b *Buffer) Convert(shape Shape) *Buffer {
	if shape == b.dims.Shape {
		return b.Clone()
	}
	dst := NewBuffer(b.dims.Width, b.dims.Height, shape)
	srcBpp := b.dims.Shape.BytesPerPixel()
	dstBpp := shape.BytesPerPixel()
	src := b.pix
	for i, j := 0, 0; i < len(src); i, j = i+srcBpp, j+dstBpp {
		var r, g, bl, a uint8 = 0, 0, 0, 255
		if b.dims.Shape == ShapeGray8 {
			r, g, bl = src[i], src[i], src[i]
		} else {
			r, g, bl = src[i], src[i+1], src[i+2]
			if b.dims.Shape == ShapeRGBA8888 {
				a = src[i+3]
			}
		}
		switch shape {
		case ShapeGray8:
			dst.pix[j] = Luma(r, g, bl)
		case ShapeRGB888:
			dst.pix[j], dst.pix[j+1], dst.pix[j+2] = r, g, bl
		case ShapeRGBA8888:
			dst.pix[j], dst.pix[j+1], dst.pix[j+2], dst.pix[j+3] = r, g, bl, a
		}
	}
	return dst
}

// FromImage copies a decoded image into a new buffer. Grayscale images keep a
// single channel, anything else is normalised to non-premultiplied RGBA.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	switch src := img.(type) {
	case *Buffer:
		return src.Clone()
	case *image.Gray:
		dst := NewBuffer(w, h, ShapeGray8)
		for y := 0; y < h; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.pix[y*dst.dims.Stride:(y+1)*dst.dims.Stride], src.Pix[off:off+w])
		}
		return dst
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	dst := NewBuffer(w, h, ShapeRGBA8888)
	for y := 0; y < h; y++ {
		copy(dst.pix[y*dst.dims.Stride:(y+1)*dst.dims.Stride], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
	}
	return dst
}

// Luma returns the BT.601 luminance of a color in 8-bit fixed point:
// (77*R + 150*G + 29*B) >> 8. Weights sum to 256 so gray input maps to itself.
func Luma(r, g, b uint8) uint8 {
	return uint8((77*uint32(r) + 150*uint32(g) + 29*uint32(b)) >> 8)
}
