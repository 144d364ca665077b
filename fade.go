package rgbw

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nlowe/rgbw/colorspace"
)

// FadeMode is the color model a fade interpolates in. It implements fmt.Stringer.
type FadeMode uint8

const (
	// FadeIdle means no fade is running.
	FadeIdle FadeMode = iota
	// FadeHSI interpolates hue, saturation, and intensity.
	FadeHSI
	// FadeKelvin interpolates color temperature and intensity.
	FadeKelvin
)

func (m FadeMode) String() string {
	switch m {
	case FadeIdle:
		return "idle"
	case FadeHSI:
		return "hsi"
	case FadeKelvin:
		return "kelvin"
	default:
		return fmt.Sprintf("FadeMode(%d)", uint8(m))
	}
}

type fadeState struct {
	mode FadeMode

	// milliseconds between steps, and the clock reading the last step was due at
	period uint32
	last   uint32
	steps  uint

	hsi    colorspace.HSI
	kelvin colorspace.Kelvin

	dHue, dSat, dTemp, dIntensity float64

	// Intensity is accumulated here and only rounded when copied into hsi or kelvin, so many small deltas don't drift.
	intensity float64
}

// FadeStatus is a read-only view of a Driver's fade. It implements slog.LogValuer.
type FadeStatus struct {
	Mode FadeMode

	// The current color of the fade. Only the field matching Mode is meaningful.
	HSI    colorspace.HSI
	Kelvin colorspace.Kelvin

	// Steps left before the fade reaches its end color
	Remaining uint
	// Time between steps
	Period time.Duration
}

func (s FadeStatus) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("mode", s.Mode.String()),
		slog.Uint64("remaining", uint64(s.Remaining)),
		slog.Duration("period", s.Period),
	}

	switch s.Mode {
	case FadeHSI:
		attrs = append(attrs, slog.Any("color", s.HSI))
	case FadeKelvin:
		attrs = append(attrs, slog.Any("color", s.Kelvin))
	}

	return slog.GroupValue(attrs...)
}

// stepPeriod is duration/steps in milliseconds, saturating at the largest period the uint32 clock can measure.
func stepPeriod(duration time.Duration, steps uint) uint32 {
	ms := duration.Milliseconds()
	if ms <= 0 {
		return 0
	}

	return uint32(min(uint64(ms)/uint64(steps), math.MaxUint32))
}

// FadeHSI starts a fade from start to end in HSI space, replacing any running fade. The fade takes steps steps spread
// evenly over duration and only advances when Tick is called. start is written immediately.
//
// Hue is interpolated without wrapping: to fade the short way from 350 to 10 degrees, pass an end hue of 370.
func (d *Driver) FadeHSI(start, end colorspace.HSI, duration time.Duration, steps uint) error {
	if steps == 0 {
		return fmt.Errorf("fade hsi: %w", ErrInvalidSteps)
	}

	n := float64(steps)
	d.fade = fadeState{
		mode:   FadeHSI,
		period: stepPeriod(duration, steps),
		last:   d.clock.Millis(),
		steps:  steps,

		hsi: start,

		dHue:       (end.Hue - start.Hue) / n,
		dSat:       (end.Saturation - start.Saturation) / n,
		dIntensity: (float64(end.Intensity) - float64(start.Intensity)) / n,
		intensity:  float64(start.Intensity),
	}

	d.log.With(slog.Any("from", start), slog.Any("to", end), slog.Duration("duration", duration), slog.Uint64("steps", uint64(steps))).Debug("Starting HSI fade")
	d.SetHSI(start)
	return nil
}

// FadeKelvin starts a fade from start to end in color temperature, replacing any running fade. See FadeHSI.
func (d *Driver) FadeKelvin(start, end colorspace.Kelvin, duration time.Duration, steps uint) error {
	if steps == 0 {
		return fmt.Errorf("fade kelvin: %w", ErrInvalidSteps)
	}

	n := float64(steps)
	d.fade = fadeState{
		mode:   FadeKelvin,
		period: stepPeriod(duration, steps),
		last:   d.clock.Millis(),
		steps:  steps,

		kelvin: start,

		dTemp:      (end.Temperature - start.Temperature) / n,
		dIntensity: (float64(end.Intensity) - float64(start.Intensity)) / n,
		intensity:  float64(start.Intensity),
	}

	d.log.With(slog.Any("from", start), slog.Any("to", end), slog.Duration("duration", duration), slog.Uint64("steps", uint64(steps))).Debug("Starting Kelvin fade")
	d.SetKelvin(start)
	return nil
}

// Tick advances the running fade. At most one step is taken per call, when a full period has elapsed since the
// previous step was due. The current fade color is written on every call while fading, whether or not a step was
// taken. Once the last step has been written, the next call ends the fade without writing.
func (d *Driver) Tick() {
	f := &d.fade
	if f.mode == FadeIdle {
		return
	}

	if f.steps == 0 {
		d.log.With(slog.String("mode", f.mode.String())).Debug("Fade finished")
		f.mode = FadeIdle
		return
	}

	if d.clock.Millis()-f.last >= f.period {
		// Advance by exactly one period so late ticks don't push the schedule back.
		f.last += f.period
		f.intensity += f.dIntensity
		i := colorspace.Channel(f.intensity)

		switch f.mode {
		case FadeHSI:
			f.hsi = colorspace.HSI{Hue: f.hsi.Hue + f.dHue, Saturation: f.hsi.Saturation + f.dSat, Intensity: i}
		case FadeKelvin:
			f.kelvin = colorspace.Kelvin{Temperature: f.kelvin.Temperature + f.dTemp, Intensity: i}
		}

		f.steps--
	}

	switch f.mode {
	case FadeHSI:
		d.SetHSI(f.hsi)
	case FadeKelvin:
		d.SetKelvin(f.kelvin)
	}
}

// IsFading reports whether a fade is running.
func (d *Driver) IsFading() bool {
	return d.fade.mode != FadeIdle
}

// Fade returns the state of the live fade.
func (d *Driver) Fade() FadeStatus {
	return d.fade.status()
}

// Stop abandons the running fade, leaving the last written color on the Sink. A fade saved by Pause is kept.
func (d *Driver) Stop() {
	d.fade.mode = FadeIdle
}

// Pause saves the live fade, including its progress, and leaves the Driver idle so another fade can run in the
// meantime. Nothing is written. Pausing again replaces the saved fade.
func (d *Driver) Pause() {
	saved := d.fade
	d.saved = &saved
	d.fade.mode = FadeIdle

	d.log.With(slog.Any("fade", saved.status())).Debug("Paused fade")
}

// Resume restores the fade saved by Pause, replacing whatever is running. Nothing is written until the next Tick. It
// returns ErrNothingToResume if there is no saved fade.
func (d *Driver) Resume() error {
	if d.saved == nil {
		return ErrNothingToResume
	}

	d.fade = *d.saved
	d.saved = nil

	d.log.With(slog.Any("fade", d.Fade())).Debug("Resumed fade")
	return nil
}

// Paused reports whether a fade saved by Pause is waiting to be resumed.
func (d *Driver) Paused() bool {
	return d.saved != nil
}

func (f fadeState) status() FadeStatus {
	return FadeStatus{
		Mode:      f.mode,
		HSI:       f.hsi,
		Kelvin:    f.kelvin,
		Remaining: f.steps,
		Period:    time.Duration(f.period) * time.Millisecond,
	}
}
