package colorspace

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlowe/rgbw/curve"
)

func hueDistance(a, b float64) float64 {
	d := math.Abs(NormalizeHue(a) - NormalizeHue(b))
	return math.Min(d, 360-d)
}

func TestRGBWString(t *testing.T) {
	require.Equal(t, "#ff80000a", RGBW{R: 255, G: 128, B: 0, W: 10}.String())
}

func TestRGBWScale(t *testing.T) {
	c := RGBW{R: 255, G: 128, B: 1, W: 200}

	t.Run("Full", func(t *testing.T) {
		require.Equal(t, c, c.Scale(255))
	})

	t.Run("Zero", func(t *testing.T) {
		require.Equal(t, RGBW{}, c.Scale(0))
	})

	t.Run("Truncates", func(t *testing.T) {
		require.Equal(t, RGBW{R: 127, G: 63, B: 0, W: 99}, c.Scale(127))
	})
}

func TestNormalizeHue(t *testing.T) {
	for _, tt := range []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 359.5, want: 359.5},
		{in: 360, want: 0},
		{in: 480, want: 120},
		{in: -120, want: 240},
		{in: -720, want: 0},
		{in: -1e-15, want: 0},
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: 0},
		{in: math.Inf(-1), want: 0},
	} {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got := NormalizeHue(tt.in)
			require.InDelta(t, tt.want, got, 1e-9)
			require.GreaterOrEqual(t, got, 0.0)
			require.Less(t, got, 360.0)
		})
	}
}

func TestHSIToRGBW(t *testing.T) {
	t.Run("Primaries", func(t *testing.T) {
		assert.Equal(t, RGBW{R: 255}, HSIToRGBW(HSI{Hue: 0, Saturation: 1, Intensity: 255}))
		assert.Equal(t, RGBW{G: 255}, HSIToRGBW(HSI{Hue: 120, Saturation: 1, Intensity: 255}))
		assert.Equal(t, RGBW{B: 255}, HSIToRGBW(HSI{Hue: 240, Saturation: 1, Intensity: 255}))
	})

	t.Run("Pure Red", func(t *testing.T) {
		c := HSIToRGBW(HSI{Hue: 0, Saturation: 1, Intensity: 255})

		assert.Zero(t, c.W)
		assert.Zero(t, c.B)
		assert.Greater(t, c.R, c.G)
	})

	t.Run("Sector Midpoints", func(t *testing.T) {
		assert.Equal(t, RGBW{R: 170, G: 85}, HSIToRGBW(HSI{Hue: 30, Saturation: 1, Intensity: 255}))
		assert.Equal(t, RGBW{R: 85, B: 170}, HSIToRGBW(HSI{Hue: 270, Saturation: 1, Intensity: 255}))
	})

	t.Run("Gray Routes To White", func(t *testing.T) {
		for _, h := range []float64{-720, -30, 0, 45, 119.999, 120, 200, 359.9, 720} {
			for _, i := range []uint8{0, 27, 100, 200, 255} {
				c := HSIToRGBW(HSI{Hue: h, Saturation: 0, Intensity: i})

				require.Equal(t, RGBW{W: curve.Correct(i)}, c, "hue %v intensity %d", h, i)
			}
		}
	})

	t.Run("Normalizes Hue", func(t *testing.T) {
		for _, h := range []float64{0, 30, 150, 300} {
			want := HSIToRGBW(HSI{Hue: h, Saturation: 0.8, Intensity: 220})

			assert.Equal(t, want, HSIToRGBW(HSI{Hue: h + 360, Saturation: 0.8, Intensity: 220}))
			assert.Equal(t, want, HSIToRGBW(HSI{Hue: h - 720, Saturation: 0.8, Intensity: 220}))
		}
	})

	t.Run("Clamps Saturation", func(t *testing.T) {
		assert.Equal(t,
			HSIToRGBW(HSI{Hue: 30, Saturation: 1, Intensity: 255}),
			HSIToRGBW(HSI{Hue: 30, Saturation: 2.5, Intensity: 255}),
		)
		assert.Equal(t,
			HSIToRGBW(HSI{Hue: 30, Saturation: 0, Intensity: 255}),
			HSIToRGBW(HSI{Hue: 30, Saturation: -1, Intensity: 255}),
		)
	})

	t.Run("Applies Dim Curve", func(t *testing.T) {
		require.Equal(t, RGBW{}, HSIToRGBW(HSI{Hue: 60, Saturation: 1, Intensity: 20}))
	})
}

func TestRGBWToHSI(t *testing.T) {
	t.Run("Black", func(t *testing.T) {
		require.Equal(t, HSI{}, RGBWToHSI(RGBW{}))
	})

	t.Run("White Has No Hue", func(t *testing.T) {
		c := RGBWToHSI(RGBW{W: 255})

		assert.Zero(t, c.Hue)
		assert.Zero(t, c.Saturation)
		assert.EqualValues(t, 255, c.Intensity)
	})

	t.Run("Equal Primaries Have No Hue", func(t *testing.T) {
		c := RGBWToHSI(RGBW{R: 90, G: 90, B: 90})

		assert.Zero(t, c.Hue)
		assert.InDelta(t, 0, c.Saturation, 1e-9)
	})

	t.Run("Blue Side Reflects", func(t *testing.T) {
		c := RGBWToHSI(RGBW{R: 85, B: 170})

		assert.InDelta(t, 270, c.Hue, 1e-6)
		assert.InDelta(t, 1, c.Saturation, 1e-9)
	})
}

func TestHSIRoundTrip(t *testing.T) {
	for _, tt := range []HSI{
		{Hue: 0, Saturation: 1, Intensity: 255},
		{Hue: 10, Saturation: 0.9, Intensity: 180},
		{Hue: 30, Saturation: 1, Intensity: 255},
		{Hue: 60, Saturation: 1, Intensity: 200},
		{Hue: 150, Saturation: 0.25, Intensity: 220},
		{Hue: 200, Saturation: 0.5, Intensity: 255},
		{Hue: 270, Saturation: 1, Intensity: 255},
		{Hue: 300, Saturation: 0.75, Intensity: 255},
	} {
		t.Run(tt.String(), func(t *testing.T) {
			got := RGBWToHSI(HSIToRGBW(tt))

			assert.LessOrEqual(t, hueDistance(tt.Hue, got.Hue), 1.0, "hue %v", got.Hue)
			assert.InDelta(t, tt.Saturation, got.Saturation, 0.01)
			assert.InDelta(t, int(tt.Intensity), int(got.Intensity), 1)
		})
	}
}

func TestKelvinToRGBW(t *testing.T) {
	t.Run("Neutral Daylight", func(t *testing.T) {
		c := KelvinToRGBW(Kelvin{Temperature: 6600, Intensity: 255})

		assert.GreaterOrEqual(t, c.W, uint8(250))
		assert.LessOrEqual(t, c.R, uint8(5))
		assert.LessOrEqual(t, c.G, uint8(5))
		assert.LessOrEqual(t, c.B, uint8(5))
	})

	t.Run("Warm White", func(t *testing.T) {
		c := KelvinToRGBW(Kelvin{Temperature: 2700, Intensity: 255})

		assert.Zero(t, c.B)
		assert.Greater(t, c.R, c.G)
		assert.NotZero(t, c.W)
	})

	t.Run("Dark", func(t *testing.T) {
		require.Equal(t, RGBW{}, KelvinToRGBW(Kelvin{Temperature: 4000, Intensity: 0}))
	})

	t.Run("Clamps Temperature", func(t *testing.T) {
		assert.Equal(t,
			KelvinToRGBW(Kelvin{Temperature: MinKelvin, Intensity: 255}),
			KelvinToRGBW(Kelvin{Temperature: 100, Intensity: 255}),
		)
		assert.Equal(t,
			KelvinToRGBW(Kelvin{Temperature: MaxKelvin, Intensity: 255}),
			KelvinToRGBW(Kelvin{Temperature: 1e6, Intensity: 255}),
		)
	})

	t.Run("Low End Plateau", func(t *testing.T) {
		// Below about 505K green comes out slightly negative, so subtracting the shared component leaves one count
		// of blue. From 600K up to 1900K blue is off.
		assert.EqualValues(t, 1, KelvinToRGBW(Kelvin{Temperature: MinKelvin, Intensity: 255}).B)
		for k := 600.0; k <= 1900; k += 100 {
			c := KelvinToRGBW(Kelvin{Temperature: k, Intensity: 255})

			require.Zero(t, c.B, "blue at %vK", k)
			require.EqualValues(t, 255, c.R, "red at %vK", k)
		}
	})

	t.Run("Monotonic", func(t *testing.T) {
		// Starts at 1000K to skip the low end plateau above. The blackbody approximation also switches regimes at
		// 6600K, which shifts red by a few counts. Each side of the split is monotonic.
		for _, r := range [][2]float64{{1000, 6600}, {6700, MaxKelvin}} {
			prev := KelvinToRGBW(Kelvin{Temperature: r[0], Intensity: 255})
			for k := r[0] + 100; k <= r[1]; k += 100 {
				c := KelvinToRGBW(Kelvin{Temperature: k, Intensity: 255})

				require.GreaterOrEqual(t, c.B, prev.B, "blue at %vK", k)
				require.LessOrEqual(t, c.R, prev.R, "red at %vK", k)

				prev = c
			}
		}
	})
}

func TestKelvinToHSI(t *testing.T) {
	t.Run("Matches Composition", func(t *testing.T) {
		k := Kelvin{Temperature: 2700, Intensity: 255}
		require.Equal(t, RGBWToHSI(KelvinToRGBW(k)), KelvinToHSI(k))
	})

	t.Run("Warm Is Orange", func(t *testing.T) {
		c := KelvinToHSI(Kelvin{Temperature: 2700, Intensity: 255})

		assert.InDelta(t, 28, c.Hue, 1)
		assert.InDelta(t, 0.74, c.Saturation, 0.01)
		assert.EqualValues(t, 255, c.Intensity)
	})

	t.Run("Daylight Is Nearly White", func(t *testing.T) {
		c := KelvinToHSI(Kelvin{Temperature: 6500, Intensity: 255})

		assert.Less(t, c.Saturation, 0.05)
	})
}
