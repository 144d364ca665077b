// Package colorspace contains the color models understood by rgbw (raw RGBW, HSI and Kelvin color temperature) and
// pure conversions between them. Every conversion that consumes an intensity applies the curve package's dim curve, so
// HSI and Kelvin intensities are perceptual while RGBW channel values are what gets written to the LEDs.
//
// All conversions are total: out-of-range hue, saturation and temperature values are normalized or clamped rather
// than rejected.
package colorspace

import (
	"fmt"
	"log/slog"
)

const (
	// MinKelvin is the lowest color temperature accepted by KelvinToRGBW. Lower values are clamped.
	MinKelvin = 500
	// MaxKelvin is the highest color temperature accepted by KelvinToRGBW. Higher values are clamped.
	MaxKelvin = 40000
)

// RGBW holds 8-bit Red, Green, Blue and White channel values. It implements fmt.Stringer and slog.LogValuer.
type RGBW struct {
	R, G, B, W uint8
}

func (c RGBW) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.W)
}

func (c RGBW) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("r", uint64(c.R)),
		slog.Uint64("g", uint64(c.G)),
		slog.Uint64("b", uint64(c.B)),
		slog.Uint64("w", uint64(c.W)),
		slog.String("hex", c.String()),
	)
}

// Scale multiplies every channel by intensity/255 using integer truncation. An intensity of 255 returns c unchanged.
func (c RGBW) Scale(intensity uint8) RGBW {
	if intensity == 255 {
		return c
	}

	scale := func(v uint8) uint8 {
		return uint8(uint16(v) * uint16(intensity) / 255)
	}

	return RGBW{R: scale(c.R), G: scale(c.G), B: scale(c.B), W: scale(c.W)}
}

// HSI describes a color by Hue (degrees, any value is normalized into [0, 360)), Saturation ([0, 1], clamped) and
// Intensity before dim curve correction. It implements fmt.Stringer and slog.LogValuer.
type HSI struct {
	Hue        float64
	Saturation float64
	Intensity  uint8
}

func (c HSI) String() string {
	return fmt.Sprintf("hsi(%.1f, %.3f, %d)", c.Hue, c.Saturation, c.Intensity)
}

func (c HSI) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("hue", c.Hue),
		slog.Float64("sat", c.Saturation),
		slog.Uint64("intensity", uint64(c.Intensity)),
	)
}

// Kelvin describes a white point biased color by correlated color Temperature in Kelvin (clamped to [MinKelvin,
// MaxKelvin]) and Intensity before dim curve correction. It implements fmt.Stringer and slog.LogValuer.
type Kelvin struct {
	Temperature float64
	Intensity   uint8
}

func (c Kelvin) String() string {
	return fmt.Sprintf("%.0fK@%d", c.Temperature, c.Intensity)
}

func (c Kelvin) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("kelvin", c.Temperature),
		slog.Uint64("intensity", uint64(c.Intensity)),
	)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Channel converts a real valued channel or intensity to its byte form: clamped into [0, 255] and rounded half-up.
func Channel(v float64) uint8 {
	return uint8(clamp(v, 0, 255) + 0.5)
}
