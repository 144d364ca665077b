package rgbw

import (
	"errors"
	"log/slog"

	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/curve"
	"github.com/nlowe/rgbw/log"
)

var (
	// ErrInvalidSteps is the error returned by Driver.FadeHSI and Driver.FadeKelvin when asked for a fade with zero
	// steps.
	ErrInvalidSteps = errors.New("steps must be >= 1")
	// ErrNothingToResume is the error returned by Driver.Resume when there is no fade saved by Driver.Pause.
	ErrNothingToResume = errors.New("no paused fade to resume")
)

// Driver converts color requests into channel values for a Sink and runs at most one fade at a time.
//
// A Driver is not safe for concurrent use. Either call it from a single goroutine or wrap it in a Loop.
type Driver struct {
	sink  Sink
	clock Clock

	// global intensity, already dim curve corrected
	intensity uint8
	output    colorspace.RGBW

	fade  fadeState
	saved *fadeState

	log *slog.Logger
}

// New constructs an idle Driver writing to sink and reading time from SystemClock.
func New(sink Sink) *Driver {
	return NewWithClock(sink, SystemClock())
}

// NewWithClock constructs an idle Driver writing to sink and reading time from clock.
func NewWithClock(sink Sink, clock Clock) *Driver {
	return &Driver{
		sink:      sink,
		clock:     clock,
		intensity: 255,

		log: log.ForComponent("driver"),
	}
}

// SetIntensity sets the global intensity applied to every later write. The value is dim curve corrected once here. It
// does not re-emit the current color.
func (d *Driver) SetIntensity(v uint8) {
	d.intensity = curve.Correct(v)
}

// Intensity returns the dim curve corrected global intensity.
func (d *Driver) Intensity() uint8 {
	return d.intensity
}

// Output returns the channel values most recently sent to the Sink, after global intensity scaling.
func (d *Driver) Output() colorspace.RGBW {
	return d.output
}

// WriteRGBW sends raw channel values to the Sink, scaled only by the global intensity.
func (d *Driver) WriteRGBW(c colorspace.RGBW) {
	d.output = c.Scale(d.intensity)
	d.sink.Emit(d.output)
}

// SetRGBW dim curve corrects each channel of c and writes it.
func (d *Driver) SetRGBW(c colorspace.RGBW) {
	d.WriteRGBW(colorspace.RGBW{
		R: curve.Correct(c.R),
		G: curve.Correct(c.G),
		B: curve.Correct(c.B),
		W: curve.Correct(c.W),
	})
}

// SetHSI converts c with colorspace.HSIToRGBW and writes it.
func (d *Driver) SetHSI(c colorspace.HSI) {
	d.WriteRGBW(colorspace.HSIToRGBW(c))
}

// SetKelvin converts c with colorspace.KelvinToRGBW and writes it.
func (d *Driver) SetKelvin(c colorspace.Kelvin) {
	d.WriteRGBW(colorspace.KelvinToRGBW(c))
}
