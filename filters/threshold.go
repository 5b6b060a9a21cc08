package filters

import "github.com/soypat/pixlab"

// Default calibration of the threshold filters.
const (
	DefaultKernelSize       = 15
	DefaultContrast         = 15
	DefaultAdaptiveOffset   = 0.6
	bernsenLowContrastLevel = 128
)

// NewAdaptiveMean creates a filter marking a pixel white when its intensity
// is strictly greater than the truncated window mean minus offset.
func NewAdaptiveMean(kernelSize int, offset float64) *WindowFilter {
	c := offset
	f := &WindowFilter{
		Window: Window{Size: kernelSize},
		Stats:  StatSum,
		Decide: func(center uint8, st *WindowStat) bool {
			return float64(center) > float64(st.Mean())-c
		},
	}
	f.Ctrls = []pixlab.Control{
		kernelControl(f),
		&pixlab.ControlOrdered[float64]{
			Name:        "Offset",
			Description: "Constant subtracted from the local mean",
			Value:       c,
			Min:         -255,
			Max:         255,
			Step:        0.1,
			OnChange: func(v float64) error {
				c = v
				return nil
			},
		},
	}
	return f
}

// NewBernsen creates a Bernsen threshold filter. Windows with a contrast
// (max-min) below contrast are thresholded at mid-gray 128, others at the
// truncated window mean. A pixel is white when strictly above the threshold.
func NewBernsen(kernelSize, contrast int) *WindowFilter {
	limit := contrast
	f := &WindowFilter{
		Window: Window{Size: kernelSize},
		Stats:  StatSum | StatMinMax,
		Decide: func(center uint8, st *WindowStat) bool {
			threshold := st.Mean()
			if int(st.Max)-int(st.Min) < limit {
				threshold = bernsenLowContrastLevel
			}
			return int(center) > threshold
		},
	}
	f.Ctrls = []pixlab.Control{
		kernelControl(f),
		&pixlab.ControlOrdered[int]{
			Name:        "Contrast Threshold",
			Description: "Minimum local contrast for mean thresholding",
			Value:       limit,
			Min:         0,
			Max:         256,
			Step:        1,
			OnChange: func(v int) error {
				limit = v
				return nil
			},
		},
	}
	return f
}

// NewLocalMedian creates a filter marking a pixel white when its intensity
// is strictly greater than the median of its window.
func NewLocalMedian(kernelSize int) *WindowFilter {
	f := &WindowFilter{
		Window: Window{Size: kernelSize},
		Stats:  StatSorted,
		Decide: func(center uint8, st *WindowStat) bool {
			return center > st.Median()
		},
	}
	f.Ctrls = []pixlab.Control{kernelControl(f)}
	return f
}
