package colorspace

import (
	"math"

	"github.com/nlowe/rgbw/curve"
)

// NormalizeHue wraps h into [0, 360). NaN and infinite hues have no angle and become 0.
func NormalizeHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}

	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	// Tiny negative inputs can round back up to exactly 360.
	if h >= 360 {
		return 0
	}

	return h
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// HSIToRGBW converts c to RGBW. Hue picks one of three 120 degree sectors, each driving two of the red, green and blue
// channels. White always carries the desaturated share (1-S)*I, so a saturation of 0 renders on the white channel only.
func HSIToRGBW(c HSI) RGBW {
	h := NormalizeHue(c.Hue)
	s := clamp(c.Saturation, 0, 1)
	i := float64(curve.Correct(c.Intensity))

	sector := int(h) / 120
	theta := h - float64(sector*120)
	ratio := math.Cos(degToRad(theta)) / math.Cos(degToRad(60-theta))

	major := s * i * (1 + ratio) / 3
	minor := s * i * (1 + (1 - ratio)) / 3

	var r, g, b float64
	switch sector {
	case 0:
		r, g = major, minor
	case 1:
		g, b = major, minor
	default:
		b, r = major, minor
	}

	return RGBW{
		R: Channel(r),
		G: Channel(g),
		B: Channel(b),
		W: Channel((1 - s) * i),
	}
}

// RGBWToHSI recovers an HSI color from c. The white channel is treated as contributing equally to red, green and blue.
// The recovered Intensity has the dim curve inverted so that RGBWToHSI(HSIToRGBW(x)) approximates x.
func RGBWToHSI(c RGBW) HSI {
	w := float64(c.W) / 3
	r := float64(c.R) + w
	g := float64(c.G) + w
	b := float64(c.B) + w

	in := (r + g + b) / 3

	var sat float64
	if in != 0 {
		sat = 1 - math.Min(r, math.Min(g, b))/in
	}

	var hue float64
	if c.R != c.G || c.G != c.B {
		cos := (r - g/2 - b/2) / math.Sqrt(r*r+g*g+b*b-r*g-r*b-g*b)
		hue = radToDeg(math.Acos(clamp(cos, -1, 1)))
		if g < b {
			hue = 360 - hue
		}
	}

	return HSI{
		Hue:        NormalizeHue(hue),
		Saturation: sat,
		Intensity:  curve.Inverse(3 * in),
	}
}
