package colorspace

import (
	"math"

	"github.com/nlowe/rgbw/curve"
)

// blackbody approximates the red, green and blue components of a blackbody radiator at t hundreds of Kelvin. Values
// are not clamped and may leave [0, 255] near the ends of the range.
//
// See https://tannerhelland.com/2012/09/18/convert-temperature-rgb-algorithm-code.html
func blackbody(t float64) (r, g, b float64) {
	if t <= 66 {
		r = 255
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
	}

	if t < 66 {
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	switch {
	case t <= 19:
		b = 0
	case t <= 66:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	default:
		b = 255
	}

	return r, g, b
}

// KelvinToRGBW converts c to RGBW. The component shared by red, green and blue is moved onto the white channel, so
// near neutral temperatures render mostly on the white emitter.
func KelvinToRGBW(c Kelvin) RGBW {
	r, g, b := blackbody(clamp(c.Temperature, MinKelvin, MaxKelvin) / 100)

	scale := float64(curve.Correct(c.Intensity)) / 255
	r, g, b = r*scale, g*scale, b*scale
	m := math.Min(r, math.Min(g, b))

	return RGBW{
		R: Channel(r - m),
		G: Channel(g - m),
		B: Channel(b - m),
		W: Channel(m),
	}
}

// KelvinToHSI converts c to the HSI color that renders the same RGBW output. This allows fading between color
// temperatures through HSI space.
func KelvinToHSI(c Kelvin) HSI {
	return RGBWToHSI(KelvinToRGBW(c))
}
