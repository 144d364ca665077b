package hass

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/mqtt"
)

// ErrMalformedHueSat is the error returned by HueSat.UnmarshalText when the text is not two comma separated finite
// numbers.
var ErrMalformedHueSat = errors.New("hs must be two comma separated numbers")

// HueSat is the "h,s" payload of the Home Assistant hs topics. Hue is in degrees and Saturation in percent (0 to 100).
type HueSat struct {
	Hue        float64
	Saturation float64
}

func (h HueSat) MarshalText() ([]byte, error) {
	b := strconv.AppendFloat(nil, h.Hue, 'f', -1, 64)
	b = append(b, ',')
	return strconv.AppendFloat(b, h.Saturation, 'f', -1, 64), nil
}

func (h *HueSat) UnmarshalText(text []byte) error {
	hue, sat, ok := strings.Cut(string(text), ",")
	if !ok {
		return fmt.Errorf("%q: %w", text, ErrMalformedHueSat)
	}

	var v [2]float64
	for i, s := range [2]string{hue, sat} {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%q: %w", text, errors.Join(ErrMalformedHueSat, err))
		}

		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%q: %w", text, ErrMalformedHueSat)
		}

		v[i] = f
	}

	h.Hue, h.Saturation = v[0], v[1]
	return nil
}

// HSI converts h to a driver color at intensity. Saturation is clamped into [0, 100].
func (h HueSat) HSI(intensity uint8) colorspace.HSI {
	return colorspace.HSI{
		Hue:        h.Hue,
		Saturation: min(max(h.Saturation, 0), 100) / 100,
		Intensity:  intensity,
	}
}

var (
	// HueSatMarshaler and HueSatUnmarshaler convert the "h,s" payload of the hs state and command topics.
	HueSatMarshaler   = mqtt.TextValueMarshaler[HueSat]()
	HueSatUnmarshaler = mqtt.TextValueUnmarshaler[HueSat]()

	// RGBWMarshaler and RGBWUnmarshaler convert the "r,g,b,w" payload of the rgbw state and command topics.
	RGBWMarshaler   = mqtt.TextValueMarshaler[colorspace.RGBW]()
	RGBWUnmarshaler = mqtt.TextValueUnmarshaler[colorspace.RGBW]()
)

// Effect names a light effect. Home Assistant lists them in the effect picker and sends the chosen name on the effect
// command topic.
type Effect string

const (
	// EffectNone stops the running effect and restores the remembered color.
	EffectNone Effect = "none"
	// EffectSunrise fades from the warmest temperature at zero intensity to the coldest at full intensity.
	EffectSunrise Effect = "sunrise"
	// EffectSunset is the reverse of EffectSunrise, and turns the light off when it finishes.
	EffectSunset Effect = "sunset"
	// EffectColorLoop cycles the hue through the full circle until stopped.
	EffectColorLoop Effect = "colorloop"
	// EffectAlert flashes a red pulse, then resumes whatever the light was doing.
	EffectAlert Effect = "alert"
)

// Effects lists every Effect a Light advertises.
var Effects = []Effect{EffectNone, EffectSunrise, EffectSunset, EffectColorLoop, EffectAlert}

// EffectMarshaler and EffectUnmarshaler convert the effect name payload of the effect state and command topics.
var (
	EffectMarshaler mqtt.ValueMarshaler[Effect] = func(v Effect) ([]byte, error) {
		return mqtt.StringMarshaler(string(v))
	}
	EffectUnmarshaler mqtt.ValueUnmarshaler[Effect] = func(bytes []byte) (Effect, error) {
		v, err := mqtt.StringUnmarshaler(bytes)
		return Effect(v), err
	}
)
