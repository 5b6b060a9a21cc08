package pixlab

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestLumaGrayFixedPoint(t *testing.T) {
	for v := 0; v < 256; v++ {
		if got := Luma(uint8(v), uint8(v), uint8(v)); int(got) != v {
			t.Fatalf("Luma(%d,%d,%d) = %d", v, v, v, got)
		}
	}
	if got := Luma(255, 0, 0); got != 76 {
		t.Errorf("red luma %d, want 76", got)
	}
	if got := Luma(0, 255, 0); got != 149 {
		t.Errorf("green luma %d, want 149", got)
	}
}

func TestBufferConvert(t *testing.T) {
	src := NewBuffer(3, 2, ShapeRGBA8888)
	src.SetRGB(0, 0, 255, 0, 0)
	src.SetRGB(1, 0, 10, 20, 30)
	src.SetGray(2, 1, 99)
	before := src.Clone()

	gray := src.Convert(ShapeGray8)
	if gray.Shape() != ShapeGray8 || gray.Width() != 3 || gray.Height() != 2 {
		t.Fatalf("bad converted dims %+v", gray.Dims())
	}
	if got := gray.Gray(0, 0); got != Luma(255, 0, 0) {
		t.Errorf("gray(0,0) = %d", got)
	}
	if got := gray.Gray(2, 1); got != 99 {
		t.Errorf("gray(2,1) = %d", got)
	}
	if !bytes.Equal(gray.Buffer(), gray.Convert(ShapeGray8).Buffer()) {
		t.Error("gray conversion not idempotent")
	}
	if !bytes.Equal(before.Buffer(), src.Buffer()) {
		t.Error("Convert mutated its input")
	}

	rgb := gray.Convert(ShapeRGB888)
	r, g, b := rgb.RGB(2, 1)
	if r != 99 || g != 99 || b != 99 {
		t.Errorf("gray to rgb gave (%d,%d,%d)", r, g, b)
	}
	rgba := rgb.Convert(ShapeRGBA8888)
	if a := rgba.Buffer()[3]; a != 255 {
		t.Errorf("rgb to rgba alpha %d", a)
	}
	back := src.Convert(ShapeRGB888).Convert(ShapeRGBA8888)
	if !bytes.Equal(back.Buffer(), src.Buffer()) {
		t.Error("rgba -> rgb -> rgba of opaque image changed pixels")
	}
}

func TestBufferCloneIndependent(t *testing.T) {
	src := NewBuffer(2, 2, ShapeGray8)
	c := src.Clone()
	c.SetGray(1, 1, 7)
	if src.Gray(1, 1) != 0 {
		t.Error("clone aliases source memory")
	}
}

func TestBufferOutOfBoundsPanics(t *testing.T) {
	b := NewBuffer(4, 4, ShapeRGB888)
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("no panic at %v", p)
				}
			}()
			b.Gray(p.X, p.Y)
		}()
	}
	if c := b.At(10, 10); c != (color.RGBA{}) {
		t.Errorf("At out of bounds = %v", c)
	}
}

func TestFromImage(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 3, 6, 5))
	gray.SetGray(3, 4, color.Gray{Y: 42})
	b := FromImage(gray)
	if b.Shape() != ShapeGray8 || b.Width() != 4 || b.Height() != 2 {
		t.Fatalf("gray import dims %+v", b.Dims())
	}
	if got := b.Gray(1, 1); got != 42 {
		t.Errorf("gray import pixel %d", got)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(1, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	c := FromImage(rgba)
	if c.Shape() != ShapeRGBA8888 {
		t.Fatalf("color import shape %s", c.Shape())
	}
	r, g, bl := c.RGB(1, 0)
	if r != 1 || g != 2 || bl != 3 {
		t.Errorf("color import pixel (%d,%d,%d)", r, g, bl)
	}
	if got := c.At(1, 0); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("At = %v", got)
	}
}

func TestDimsValidate(t *testing.T) {
	if err := (Dims{}).Validate(); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("zero dims: %v", err)
	}
	if err := (Dims{Width: 2, Height: 2, Stride: 5, Shape: ShapeRGB888}).Validate(); err == nil {
		t.Error("short stride accepted")
	}
	if err := NewBuffer(3, 3, ShapeRGB888).Dims().Validate(); err != nil {
		t.Error(err)
	}
	if !NewBuffer(0, 5, ShapeGray8).Empty() {
		t.Error("zero width buffer not empty")
	}
}

func TestImageRowAndReadAll(t *testing.T) {
	b := NewBuffer(3, 2, ShapeGray8)
	copy(b.Buffer(), []byte{1, 2, 3, 4, 5, 6})
	row, err := ImageRow(make([]byte, 3), b, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(row, []byte{4, 5, 6}) {
		t.Errorf("row = %v", row)
	}
	all, err := ReadAll(readerOnly{b})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(all, b.Buffer()) {
		t.Errorf("ReadAll = %v", all)
	}
}

// readerOnly hides the ImageBuffered implementation of a Buffer.
type readerOnly struct{ b *Buffer }

func (r readerOnly) Dims() Dims                              { return r.b.Dims() }
func (r readerOnly) ReadAt(p []byte, off int64) (int, error) { return r.b.ReadAt(p, off) }
