package filters

import (
	"fmt"
	"slices"
)

// ErrInvalidKernel is returned for kernel sizes that are not odd and positive.
var ErrInvalidKernel = errorString("kernel size must be odd and positive")

// Stat selects which statistics [Window.Scan] computes.
type Stat uint8

const (
	StatSum    Stat = 1 << iota // sum of intensities
	StatMinMax                  // smallest and largest intensity
	StatSorted                  // all intensities in ascending order
)

// Window is a square neighborhood of side Size centered on a pixel.
type Window struct {
	Size int
}

// Validate returns [ErrInvalidKernel] if the window size is even or not positive.
func (w Window) Validate() error {
	if w.Size < 1 || w.Size%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidKernel, w.Size)
	}
	return nil
}

// Half returns the distance from the center to the window edge, (Size-1)/2.
func (w Window) Half() int { return (w.Size - 1) / 2 }

// Area returns the number of pixels in the window.
func (w Window) Area() int { return w.Size * w.Size }

// Contains reports whether the window centered on (x, y) lies entirely inside a width x height image.
func (w Window) Contains(x, y, width, height int) bool {
	h := w.Half()
	return x >= h && y >= h && x < width-h && y < height-h
}

// WindowStat holds the statistics of one window evaluation. Fields not
// requested in the Stat mask hold stale values from previous scans.
type WindowStat struct {
	Sum  int
	Min  uint8
	Max  uint8
	Area int
	// Values holds the sorted intensities when StatSorted was requested.
	// Its backing array is reused across scans.
	Values []uint8
}

// Mean returns the window mean truncated toward zero.
func (st *WindowStat) Mean() int { return st.Sum / st.Area }

// Median returns the element at index Area/2 of the sorted intensities.
func (st *WindowStat) Median() uint8 { return st.Values[len(st.Values)/2] }

// Scan visits every pixel of the window centered on (x, y) of a gray image
// with the given row stride exactly once and stores the statistics in st.
// The window must fit inside the image, see [Window.Contains].
func (w Window) Scan(st *WindowStat, gray []byte, stride, x, y int, kinds Stat) {
	h := w.Half()
	sum := 0
	lo, hi := uint8(255), uint8(0)
	if kinds&StatSorted != 0 {
		st.Values = st.Values[:0]
	}
	for ky := y - h; ky <= y+h; ky++ {
		row := gray[ky*stride+x-h : ky*stride+x+h+1]
		for _, v := range row {
			sum += int(v)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if kinds&StatSorted != 0 {
			st.Values = append(st.Values, row...)
		}
	}
	st.Area = w.Area()
	if kinds&StatSum != 0 {
		st.Sum = sum
	}
	if kinds&StatMinMax != 0 {
		st.Min, st.Max = lo, hi
	}
	if kinds&StatSorted != 0 {
		slices.Sort(st.Values)
	}
}
