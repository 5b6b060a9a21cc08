package filters

import (
	"errors"
	"slices"
	"testing"
)

func TestWindowGeometry(t *testing.T) {
	tests := []struct {
		size, half, area int
		valid            bool
	}{
		{size: 1, half: 0, area: 1, valid: true},
		{size: 3, half: 1, area: 9, valid: true},
		{size: 15, half: 7, area: 225, valid: true},
		{size: 4, valid: false},
		{size: 0, valid: false},
		{size: -3, valid: false},
	}
	for _, tt := range tests {
		w := Window{Size: tt.size}
		err := w.Validate()
		if tt.valid != (err == nil) {
			t.Errorf("size %d: Validate() = %v", tt.size, err)
		}
		if !tt.valid {
			if !errors.Is(err, ErrInvalidKernel) {
				t.Errorf("size %d: want ErrInvalidKernel, got %v", tt.size, err)
			}
			continue
		}
		if w.Half() != tt.half || w.Area() != tt.area {
			t.Errorf("size %d: half=%d area=%d", tt.size, w.Half(), w.Area())
		}
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Size: 15}
	const width, height = 17, 17
	var inside []int
	for x := 0; x < width; x++ {
		if w.Contains(x, 8, width, height) {
			inside = append(inside, x)
		}
	}
	if !slices.Equal(inside, []int{7, 8, 9}) {
		t.Errorf("interior columns %v, want [7 8 9]", inside)
	}
	if w.Contains(8, 8, 10, 10) {
		t.Error("window larger than image reported inside")
	}
}

func TestWindowScan(t *testing.T) {
	// 4x4 image, window of 3 centered on (1,1) and (2,2).
	gray := []byte{
		9, 1, 5, 0,
		3, 7, 2, 0,
		8, 4, 6, 0,
		0, 0, 0, 200,
	}
	w := Window{Size: 3}
	var st WindowStat
	w.Scan(&st, gray, 4, 1, 1, StatSum|StatMinMax|StatSorted)
	if st.Sum != 45 || st.Area != 9 || st.Mean() != 5 {
		t.Errorf("sum=%d area=%d mean=%d", st.Sum, st.Area, st.Mean())
	}
	if st.Min != 1 || st.Max != 9 {
		t.Errorf("min=%d max=%d", st.Min, st.Max)
	}
	if !slices.Equal(st.Values, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9}) || st.Median() != 5 {
		t.Errorf("sorted=%v median=%d", st.Values, st.Median())
	}

	w.Scan(&st, gray, 4, 2, 2, StatSum)
	if st.Sum != 7+2+0+4+6+0+0+0+200 {
		t.Errorf("second scan sum=%d", st.Sum)
	}
	// Mean truncates toward zero: 219/9 = 24.33.
	if st.Mean() != 24 {
		t.Errorf("mean=%d, want 24", st.Mean())
	}
}
