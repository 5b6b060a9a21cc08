// Package pixlab holds the pixel buffer and the filter abstractions shared by
// the color transforms and threshold filters of the filters package.
package pixlab

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/soypat/geometry/ms2"
)

// Control represents an editable parameter of a filter such as a kernel size
// or a threshold offset. When Value is modified via OnChange the filter picks
// the new value up on its next Process call.
type Control interface {
	// Display/human readable name and description.
	Describe() (name, description string)
	// ActualValue returns the current value of the control.
	ActualValue() any
	// ChangeValue attempts to update the ActualValue to newValue.
	ChangeValue(newValue any) error
}

type ControlOrdered[T cmp.Ordered] struct {
	Name        string
	Description string
	Value       T
	Min         T
	Max         T
	Step        T
	OnChange    func(T) error
}

func (co *ControlOrdered[T]) Describe() (name, description string) {
	return co.Name, co.Description
}
func (co *ControlOrdered[T]) ActualValue() any { return co.Value }
func (co *ControlOrdered[T]) ChangeValue(newValue any) error {
	v, ok := newValue.(T)
	if !ok {
		return fmt.Errorf("new value %T not of type %T", newValue, co.Value)
	}
	if v < co.Min || v > co.Max {
		return fmt.Errorf("%s: new value %v exceeds limits %v..%v", co.Name, v, co.Min, co.Max)
	}
	return applyChange(co.OnChange, v, &co.Value)
}

type integer interface {
	~int | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64
}

// enum best generated with stringer commands.
type enum interface {
	integer
	fmt.Stringer
}

// ControlEnum maps to dropdown kind of list.
type ControlEnum[T enum] struct {
	Name        string
	Description string
	Value       T
	ValidValues []T
	OnChange    func(T) error
}

func (ce *ControlEnum[T]) Describe() (name, description string) {
	return ce.Name, ce.Description
}
func (ce *ControlEnum[T]) ActualValue() any {
	return ce.Value
}
func (ce *ControlEnum[T]) ChangeValue(newValue any) error {
	v, ok := newValue.(T)
	if !ok {
		return fmt.Errorf("new value %T not of type %T", newValue, ce.Value)
	}
	if !slices.Contains(ce.ValidValues, v) {
		return fmt.Errorf("%s: value %v not valid", ce.Name, v)
	}
	return applyChange(ce.OnChange, v, &ce.Value)
}

// CurvePoint is a control point for curve-type controls.
// X represents input (0-1), Y represents output (0-1).
type CurvePoint = ms2.Vec

// ControlCurve is a spline curve control with editable control points.
// Points are in normalized 0-1 range for both X (input) and Y (output).
type ControlCurve struct {
	Name        string
	Description string
	Points      []CurvePoint // Control points, X/Y in 0-1 range.
	OnChange    func([]CurvePoint) error
}

func (cc *ControlCurve) Describe() (name, description string) {
	return cc.Name, cc.Description
}

func (cc *ControlCurve) ActualValue() any {
	return cc.Points
}

func (cc *ControlCurve) ChangeValue(newValue any) error {
	pts, ok := newValue.([]CurvePoint)
	if !ok {
		return fmt.Errorf("new value %T not of type []CurvePoint", newValue)
	}
	for i := range pts {
		if pts[i].X < 0 || pts[i].X > 1 || pts[i].Y < 0 || pts[i].Y > 1 {
			return fmt.Errorf("%s: point %d (%v,%v) outside 0..1", cc.Name, i, pts[i].X, pts[i].Y)
		}
	}
	return applyChange(cc.OnChange, pts, &cc.Points)
}

// applyChange stores v in dst if onChange accepts it. A nil onChange always accepts.
func applyChange[T any](onChange func(T) error, v T, dst *T) error {
	if onChange != nil {
		if err := onChange(v); err != nil {
			return err
		}
	}
	*dst = v
	return nil
}
