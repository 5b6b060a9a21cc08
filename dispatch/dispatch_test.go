package dispatch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/soypat/pixlab"
	"github.com/soypat/pixlab/filters"
)

func newSource(width, height int) *pixlab.Buffer {
	src := pixlab.NewBuffer(width, height, pixlab.ShapeRGB888)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src.SetRGB(x, y, uint8(x*7), uint8(y*11), uint8(x*y))
		}
	}
	return src
}

func TestParseFilterID(t *testing.T) {
	for _, id := range Filters() {
		got, err := ParseFilterID(id.String())
		if err != nil || got != id {
			t.Errorf("ParseFilterID(%q) = %v, %v", id.String(), got, err)
		}
	}
	if got, err := ParseFilterID("BERNSEN"); err != nil || got != FilterBernsen {
		t.Errorf("case insensitive parse = %v, %v", got, err)
	}
	if _, err := ParseFilterID("sobel"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("unknown filter err = %v", err)
	}
	if len(Filters()) != 6 {
		t.Errorf("got %d filters, want 6", len(Filters()))
	}
}

func TestApplyEveryFilter(t *testing.T) {
	src := newSource(40, 30)
	before := src.Clone()
	params := DefaultParams()
	tests := map[FilterID]func(*pixlab.Buffer) (*pixlab.Buffer, error){
		FilterGrayscale: filters.ToGray,
		FilterInvertRGB: filters.InvertRGB,
		FilterBoostHSV:  filters.BoostHSV,
		FilterAdaptiveMean: func(b *pixlab.Buffer) (*pixlab.Buffer, error) {
			return filters.AdaptiveThreshold(b, params.KernelSize, params.C)
		},
		FilterBernsen: func(b *pixlab.Buffer) (*pixlab.Buffer, error) {
			return filters.BernsenThreshold(b, params.KernelSize, params.Contrast)
		},
		FilterLocalMedian: func(b *pixlab.Buffer) (*pixlab.Buffer, error) {
			return filters.MedianThreshold(b, params.KernelSize)
		},
	}
	for id, direct := range tests {
		got, err := Apply(src, id, params)
		if err != nil {
			t.Fatalf("%v: %v", id, err)
		}
		if got.Width() != src.Width() || got.Height() != src.Height() {
			t.Errorf("%v: dims %dx%d", id, got.Width(), got.Height())
		}
		want, err := direct(src)
		if err != nil {
			t.Fatal(err)
		}
		if got.Shape() != want.Shape() || !bytes.Equal(got.Buffer(), want.Buffer()) {
			t.Errorf("%v: dispatcher result differs from direct call", id)
		}
	}
	if !bytes.Equal(before.Buffer(), src.Buffer()) {
		t.Error("source image modified")
	}
}

func TestApplyRepeatable(t *testing.T) {
	src := newSource(20, 20)
	first, err := Apply(src, FilterBernsen, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(src, FilterInvertRGB, DefaultParams()); err != nil {
		t.Fatal(err)
	}
	second, err := Apply(src, FilterBernsen, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Buffer(), second.Buffer()) {
		t.Error("same filter on same source gave different results")
	}
}

func TestApplyEmptyInput(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := New(logger)
	for _, src := range []*pixlab.Buffer{nil, pixlab.NewBuffer(0, 0, pixlab.ShapeGray8)} {
		out, err := d.Apply(src, Request{Filter: FilterGrayscale})
		if !errors.Is(err, ErrEmptyInput) || out != nil {
			t.Errorf("got %v, %v; want ErrEmptyInput", out, err)
		}
	}
	if len(hook.Entries) != 2 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Errorf("expected two warnings, got %d entries", len(hook.Entries))
	}
}

func TestApplyInvalidParams(t *testing.T) {
	src := newSource(20, 20)
	for _, k := range []int{0, -3, 4, 16, 257} {
		p := DefaultParams()
		p.KernelSize = k
		if _, err := Apply(src, FilterLocalMedian, p); !errors.Is(err, ErrInvalidKernel) {
			t.Errorf("kernel %d: got %v, want ErrInvalidKernel", k, err)
		}
	}
	p := DefaultParams()
	p.Contrast = -1
	if _, err := Apply(src, FilterBernsen, p); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("negative contrast: got %v", err)
	}
	// Color transforms ignore parameters.
	if _, err := Apply(src, FilterGrayscale, Params{}); err != nil {
		t.Errorf("grayscale with zero params: %v", err)
	}
	if _, err := Apply(src, FilterID(99), DefaultParams()); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("unknown id: got %v", err)
	}
}

func TestDispatcherConcurrencyAndLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	d := New(logger)
	d.Concurrency = 4
	src := newSource(50, 50)
	got, err := d.Apply(src, Request{Filter: FilterAdaptiveMean, Params: DefaultParams()})
	if err != nil {
		t.Fatal(err)
	}
	want, err := Apply(src, FilterAdaptiveMean, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Buffer(), want.Buffer()) {
		t.Error("concurrent dispatcher result differs from sequential")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Data["filter"] != "adaptive" || entry.Data["width"] != 50 {
		t.Errorf("unexpected log entry %+v", entry)
	}
}
