// Package dispatch routes a filter request to the color transform or
// threshold filter it names.
package dispatch

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/soypat/pixlab"
	"github.com/soypat/pixlab/filters"
)

var (
	ErrEmptyInput    = errors.New("source image is empty or not loaded")
	ErrInvalidParams = errors.New("invalid filter parameters")
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrInvalidKernel is returned for even or non-positive kernel sizes.
	ErrInvalidKernel = filters.ErrInvalidKernel
)

// FilterID selects one of the filters a [Dispatcher] can apply.
type FilterID int

const (
	filterUndefined FilterID = iota
	FilterGrayscale
	FilterInvertRGB
	FilterBoostHSV
	FilterAdaptiveMean
	FilterBernsen
	FilterLocalMedian
)

var filterNames = [...]string{
	filterUndefined:    "undefined",
	FilterGrayscale:    "gray",
	FilterInvertRGB:    "invert",
	FilterBoostHSV:     "hsv",
	FilterAdaptiveMean: "adaptive",
	FilterBernsen:      "bernsen",
	FilterLocalMedian:  "median",
}

func (id FilterID) String() string {
	if id < 0 || int(id) >= len(filterNames) {
		return fmt.Sprintf("FilterID(%d)", int(id))
	}
	return filterNames[id]
}

// Filters returns every filter identifier a Dispatcher accepts.
func Filters() []FilterID {
	return []FilterID{FilterGrayscale, FilterInvertRGB, FilterBoostHSV, FilterAdaptiveMean, FilterBernsen, FilterLocalMedian}
}

// ParseFilterID returns the filter whose String method returns name. Matching is case insensitive.
func ParseFilterID(name string) (FilterID, error) {
	for _, id := range Filters() {
		if strings.EqualFold(name, id.String()) {
			return id, nil
		}
	}
	return filterUndefined, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

// Params are the numeric parameters of the threshold filters. Color
// transforms ignore them.
type Params struct {
	KernelSize int     `validate:"min=1,max=255,odd"`
	Contrast   int     `validate:"min=0,max=256"`
	C          float64 `validate:"min=-255,max=255"`
}

// DefaultParams returns the calibration of the original application:
// a 15 pixel kernel, Bernsen contrast threshold of 15 and a mean offset of 0.6.
func DefaultParams() Params {
	return Params{
		KernelSize: filters.DefaultKernelSize,
		Contrast:   filters.DefaultContrast,
		C:          filters.DefaultAdaptiveOffset,
	}
}

// Request is a single filter invocation.
type Request struct {
	Filter FilterID
	Params Params
}

// strategy is an entry of the dispatch table. Window strategies consume Params.
type strategy struct {
	window bool
	color  func(src *pixlab.Buffer) (*pixlab.Buffer, error)
	newWin func(p Params) *filters.WindowFilter
}

var strategies = map[FilterID]strategy{
	FilterGrayscale: {color: filters.ToGray},
	FilterInvertRGB: {color: filters.InvertRGB},
	FilterBoostHSV:  {color: filters.BoostHSV},
	FilterAdaptiveMean: {window: true, newWin: func(p Params) *filters.WindowFilter {
		return filters.NewAdaptiveMean(p.KernelSize, p.C)
	}},
	FilterBernsen: {window: true, newWin: func(p Params) *filters.WindowFilter {
		return filters.NewBernsen(p.KernelSize, p.Contrast)
	}},
	FilterLocalMedian: {window: true, newWin: func(p Params) *filters.WindowFilter {
		return filters.NewLocalMedian(p.KernelSize)
	}},
}

// Dispatcher applies filters by identifier. The zero value is not usable, see [New].
type Dispatcher struct {
	// Concurrency is passed on to threshold filters, see [filters.WindowFilter].
	Concurrency int

	log      logrus.FieldLogger
	validate *validator.Validate
}

// New returns a Dispatcher logging to log. A nil log discards all output.
func New(log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 != 0
	})
	if err != nil {
		panic(err)
	}
	return &Dispatcher{log: log, validate: validate}
}

// Apply runs the requested filter over src and returns a new image.
// src is never modified.
func (d *Dispatcher) Apply(src *pixlab.Buffer, req Request) (*pixlab.Buffer, error) {
	if src.Empty() {
		d.log.WithField("filter", req.Filter).Warn("no image loaded")
		return nil, ErrEmptyInput
	}
	strat, ok := strategies[req.Filter]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFilter, req.Filter)
	}
	start := time.Now()
	var out *pixlab.Buffer
	var err error
	if strat.window {
		if err = d.validateParams(req.Params); err != nil {
			return nil, err
		}
		f := strat.newWin(req.Params)
		f.Concurrency = d.Concurrency
		out, err = filters.Threshold(f, src)
	} else {
		out, err = strat.color(src)
	}
	if err != nil {
		if errors.Is(err, pixlab.ErrEmptyImage) {
			err = ErrEmptyInput
		}
		return nil, fmt.Errorf("%v: %w", req.Filter, err)
	}
	d.log.WithFields(logrus.Fields{
		"filter":  req.Filter.String(),
		"width":   src.Width(),
		"height":  src.Height(),
		"shape":   src.Shape().String(),
		"elapsed": time.Since(start),
	}).Debug("filter applied")
	return out, nil
}

func (d *Dispatcher) validateParams(p Params) error {
	err := d.validate.Struct(p)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Field() == "KernelSize" {
			return fmt.Errorf("%w: got %d", ErrInvalidKernel, p.KernelSize)
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidParams, err)
}

var defaultDispatcher = New(nil)

// Apply runs filter id over src with params using a sequential Dispatcher that discards logs.
func Apply(src *pixlab.Buffer, id FilterID, params Params) (*pixlab.Buffer, error) {
	return defaultDispatcher.Apply(src, Request{Filter: id, Params: params})
}
