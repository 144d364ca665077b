package hass

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/log"
)

const (
	// AlertDuration is how long the red alert pulse takes to fade out.
	AlertDuration = 2 * time.Second
	alertSteps    = 20
)

var alertPulse = [2]colorspace.HSI{
	{Hue: 0, Saturation: 1, Intensity: 255},
	{Hue: 0, Saturation: 1, Intensity: 0},
}

func (l *Light) stopEffect(d *rgbw.Driver, s *lightState) {
	if s.effect == EffectNone {
		return
	}

	d.Stop()
	s.effect, s.interrupted = EffectNone, ""
}

func (l *Light) startColorLoop(d *rgbw.Driver, s *lightState) error {
	sat := s.hs.Saturation
	if s.mode != ColorModeHueSat || sat == 0 {
		sat = 100
	}

	s.mode = ColorModeHueSat
	s.hs = HueSat{Hue: colorspace.NormalizeHue(s.hs.Hue), Saturation: sat}

	start := s.hs.HSI(255)
	end := start
	end.Hue += 360

	return d.FadeHSI(start, end, l.cfg.EffectDuration, l.cfg.EffectSteps)
}

// startEffect runs e. Starting an effect turns the light on, except for alert which flashes on top of whatever the
// light is doing and then puts it back.
func (l *Light) startEffect(d *rgbw.Driver, s *lightState, e Effect) error {
	var err error
	lo, hi := float64(l.cfg.MinKelvin), float64(l.cfg.MaxKelvin)

	switch e {
	case EffectNone:
		l.stopEffect(d, s)
		l.applyColor(d, s)
		return nil
	case EffectAlert:
		if s.effect == EffectAlert {
			return nil
		}

		d.Pause()
		if err = d.FadeHSI(alertPulse[0], alertPulse[1], AlertDuration, alertSteps); err != nil {
			return fmt.Errorf("alert: %w", err)
		}

		s.interrupted, s.effect = s.effect, EffectAlert
		return nil
	case EffectSunrise:
		d.SetIntensity(s.brightness)
		err = d.FadeKelvin(colorspace.Kelvin{Temperature: lo}, colorspace.Kelvin{Temperature: hi, Intensity: 255}, l.cfg.EffectDuration, l.cfg.EffectSteps)
		s.mode, s.kelvin = ColorModeTemperature, l.cfg.MaxKelvin
	case EffectSunset:
		d.SetIntensity(s.brightness)
		err = d.FadeKelvin(colorspace.Kelvin{Temperature: hi, Intensity: 255}, colorspace.Kelvin{Temperature: lo}, l.cfg.EffectDuration, l.cfg.EffectSteps)
		s.mode, s.kelvin = ColorModeTemperature, l.cfg.MinKelvin
	case EffectColorLoop:
		d.SetIntensity(s.brightness)
		err = l.startColorLoop(d, s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEffect, e)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", e, err)
	}

	s.on = true
	s.effect, s.interrupted = e, ""
	return nil
}

// afterTick runs on the driver loop after every tick and notices effects whose fade has finished.
func (l *Light) afterTick(d *rgbw.Driver) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &l.s
	if s.effect == EffectNone || d.IsFading() {
		return
	}

	finished := s.effect
	switch finished {
	case EffectAlert:
		s.effect, s.interrupted = s.interrupted, ""
		if err := d.Resume(); err != nil {
			l.log.With(log.Error(err)).Warn("Nothing to resume after alert")
		}

		if !d.IsFading() {
			s.effect = EffectNone
			l.applyColor(d, s)
		}
	case EffectColorLoop:
		if err := l.startColorLoop(d, s); err != nil {
			l.log.With(log.Error(err)).Error("Failed to restart color loop")
			s.effect = EffectNone
		}

		return
	case EffectSunset:
		s.on = false
		s.effect = EffectNone
		l.applyColor(d, s)
	default:
		s.effect = EffectNone
	}

	l.log.With(slog.String("effect", string(finished))).Debug("Effect finished")
	go l.publishAsync()
}

func (l *Light) publishAsync() {
	ctx, w := l.session()
	if w == nil {
		return
	}

	if err := l.Publish(ctx, w); err != nil {
		l.log.With(log.Error(err)).Error("Failed to publish light state")
	}
}
