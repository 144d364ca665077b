package rgbw

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlowe/rgbw/colorspace"
)

func TestFadeHSI(t *testing.T) {
	t.Run("Reaches End Color", func(t *testing.T) {
		d, r, c := newTestDriver()

		start := colorspace.HSI{Hue: 0, Saturation: 1, Intensity: 0}
		end := colorspace.HSI{Hue: 120, Saturation: 1, Intensity: 100}
		require.NoError(t, d.FadeHSI(start, end, 10*time.Second, 10))

		require.True(t, d.IsFading())
		require.Len(t, r.emitted, 1, "start color is written immediately")
		require.Equal(t, colorspace.HSIToRGBW(start), r.last(t))
		require.Equal(t, time.Second, d.Fade().Period)

		for i := 0; i < 10; i++ {
			c.advance(1000)
			d.Tick()

			assert.True(t, d.IsFading(), "still fading after tick %d", i+1)
			assert.EqualValues(t, 9-i, d.Fade().Remaining)
		}

		s := d.Fade()
		require.Equal(t, FadeHSI, s.Mode)
		require.Equal(t, 120.0, s.HSI.Hue)
		require.Equal(t, 1.0, s.HSI.Saturation)
		require.EqualValues(t, 100, s.HSI.Intensity)
		require.Equal(t, colorspace.HSIToRGBW(end), r.last(t))

		emitted := len(r.emitted)
		c.advance(1000)
		d.Tick()

		require.False(t, d.IsFading())
		require.Len(t, r.emitted, emitted, "finishing must not emit")

		d.Tick()
		require.Len(t, r.emitted, emitted, "idle ticks must not emit")
	})

	t.Run("Emits Between Steps", func(t *testing.T) {
		d, r, c := newTestDriver()

		require.NoError(t, d.FadeHSI(
			colorspace.HSI{Hue: 0, Saturation: 1, Intensity: 255},
			colorspace.HSI{Hue: 90, Saturation: 1, Intensity: 255},
			3*time.Second, 3,
		))

		c.advance(500)
		d.Tick()
		d.Tick()

		require.Len(t, r.emitted, 3)
		require.EqualValues(t, 3, d.Fade().Remaining)
		require.Equal(t, 0.0, d.Fade().HSI.Hue)

		c.advance(500)
		d.Tick()

		require.EqualValues(t, 2, d.Fade().Remaining)
		require.Equal(t, 30.0, d.Fade().HSI.Hue)
	})

	t.Run("One Step Per Tick", func(t *testing.T) {
		d, _, c := newTestDriver()

		require.NoError(t, d.FadeHSI(
			colorspace.HSI{Hue: 0, Saturation: 0, Intensity: 0},
			colorspace.HSI{Hue: 0, Saturation: 0, Intensity: 40},
			4*time.Second, 4,
		))

		// A late tick catches up one step at a time without losing the schedule.
		c.advance(3500)
		d.Tick()
		require.EqualValues(t, 3, d.Fade().Remaining)
		d.Tick()
		require.EqualValues(t, 2, d.Fade().Remaining)
		d.Tick()
		require.EqualValues(t, 1, d.Fade().Remaining)
		d.Tick()
		require.EqualValues(t, 1, d.Fade().Remaining)

		c.advance(500)
		d.Tick()
		require.EqualValues(t, 0, d.Fade().Remaining)
		require.EqualValues(t, 40, d.Fade().HSI.Intensity)
	})

	t.Run("Intensity Does Not Drift", func(t *testing.T) {
		d, _, c := newTestDriver()

		require.NoError(t, d.FadeHSI(
			colorspace.HSI{Hue: 0, Saturation: 1, Intensity: 0},
			colorspace.HSI{Hue: 0, Saturation: 1, Intensity: 255},
			0, 700,
		))

		for d.Fade().Remaining > 0 {
			c.advance(1)
			d.Tick()
		}

		require.EqualValues(t, 255, d.Fade().HSI.Intensity)
	})

	t.Run("Decreasing Intensity", func(t *testing.T) {
		d, _, c := newTestDriver()

		require.NoError(t, d.FadeHSI(
			colorspace.HSI{Hue: 200, Saturation: 0.5, Intensity: 255},
			colorspace.HSI{Hue: 100, Saturation: 0, Intensity: 0},
			time.Second, 3,
		))

		for i := 0; i < 3; i++ {
			c.advance(333)
			d.Tick()
		}

		s := d.Fade()
		assert.InDelta(t, 100, s.HSI.Hue, 1e-9)
		assert.InDelta(t, 0, s.HSI.Saturation, 1e-9)
		assert.EqualValues(t, 0, s.HSI.Intensity)
	})

	t.Run("Zero Steps", func(t *testing.T) {
		d, r, _ := newTestDriver()

		err := d.FadeHSI(colorspace.HSI{}, colorspace.HSI{Intensity: 255}, time.Second, 0)
		require.ErrorIs(t, err, ErrInvalidSteps)
		require.False(t, d.IsFading())
		require.Empty(t, r.emitted)
	})

	t.Run("Clock Wraparound", func(t *testing.T) {
		r := &recorder{}
		c := &manualClock{now: ^uint32(0) - 499}
		d := NewWithClock(r, c)

		require.NoError(t, d.FadeHSI(
			colorspace.HSI{Hue: 0, Saturation: 1, Intensity: 255},
			colorspace.HSI{Hue: 100, Saturation: 1, Intensity: 255},
			2*time.Second, 2,
		))

		c.advance(1000)
		require.Less(t, c.now, uint32(1000), "clock should have wrapped")

		d.Tick()
		require.EqualValues(t, 1, d.Fade().Remaining)
		require.Equal(t, 50.0, d.Fade().HSI.Hue)
	})
}

func TestFadeKelvin(t *testing.T) {
	t.Run("Reaches End Color", func(t *testing.T) {
		d, r, c := newTestDriver()

		start := colorspace.Kelvin{Temperature: 2000, Intensity: 10}
		end := colorspace.Kelvin{Temperature: 6500, Intensity: 255}
		require.NoError(t, d.FadeKelvin(start, end, 5*time.Second, 9))

		require.Equal(t, colorspace.KelvinToRGBW(start), r.last(t))
		require.Equal(t, 555*time.Millisecond, d.Fade().Period)

		for i := 0; i < 9; i++ {
			c.advance(555)
			d.Tick()
		}

		s := d.Fade()
		require.Equal(t, FadeKelvin, s.Mode)
		require.InDelta(t, 6500, s.Kelvin.Temperature, 1e-6)
		require.EqualValues(t, 255, s.Kelvin.Intensity)

		d.Tick()
		require.False(t, d.IsFading())
	})

	t.Run("Replaces HSI Fade", func(t *testing.T) {
		d, _, _ := newTestDriver()

		require.NoError(t, d.FadeHSI(colorspace.HSI{}, colorspace.HSI{Hue: 90}, time.Second, 10))
		require.NoError(t, d.FadeKelvin(colorspace.Kelvin{Temperature: 3000}, colorspace.Kelvin{Temperature: 4000}, time.Second, 10))

		require.Equal(t, FadeKelvin, d.Fade().Mode)
	})

	t.Run("Zero Steps", func(t *testing.T) {
		d, _, _ := newTestDriver()

		require.ErrorIs(t, d.FadeKelvin(colorspace.Kelvin{}, colorspace.Kelvin{}, time.Second, 0), ErrInvalidSteps)
	})
}

func TestPauseResume(t *testing.T) {
	startFade := func(t *testing.T) (*Driver, *recorder, *manualClock) {
		d, r, c := newTestDriver()

		require.NoError(t, d.FadeHSI(
			colorspace.HSI{Hue: 0, Saturation: 1, Intensity: 50},
			colorspace.HSI{Hue: 240, Saturation: 0.5, Intensity: 250},
			4*time.Second, 4,
		))

		c.advance(1000)
		d.Tick()

		return d, r, c
	}

	t.Run("Idempotent", func(t *testing.T) {
		d, r, _ := startFade(t)
		before := d.fade
		emitted := len(r.emitted)

		d.Pause()
		require.False(t, d.IsFading())
		require.True(t, d.Paused())

		require.NoError(t, d.Resume())
		require.True(t, d.IsFading())
		require.False(t, d.Paused())
		require.Equal(t, before, d.fade)
		require.Len(t, r.emitted, emitted, "pause and resume must not emit")
	})

	t.Run("Idle Stays Idle", func(t *testing.T) {
		d, _, _ := newTestDriver()

		d.Pause()
		require.NoError(t, d.Resume())
		require.False(t, d.IsFading())
	})

	t.Run("Alternative Fade", func(t *testing.T) {
		d, _, c := startFade(t)
		paused := d.Fade()

		d.Pause()
		require.NoError(t, d.FadeKelvin(
			colorspace.Kelvin{Temperature: 2000, Intensity: 255},
			colorspace.Kelvin{Temperature: 2000, Intensity: 0},
			time.Second, 1,
		))

		c.advance(1000)
		d.Tick()
		d.Tick()
		require.False(t, d.IsFading())

		require.NoError(t, d.Resume())
		require.Equal(t, paused, d.Fade())

		// The saved schedule is kept, so the missed step is taken right away.
		d.Tick()
		require.EqualValues(t, 2, d.Fade().Remaining)
		require.Equal(t, 120.0, d.Fade().HSI.Hue)
	})

	t.Run("Nothing To Resume", func(t *testing.T) {
		d, _, _ := newTestDriver()

		require.ErrorIs(t, d.Resume(), ErrNothingToResume)
		require.False(t, d.IsFading())
	})

	t.Run("Resume Consumes Checkpoint", func(t *testing.T) {
		d, _, _ := startFade(t)

		d.Pause()
		require.NoError(t, d.Resume())
		require.ErrorIs(t, d.Resume(), ErrNothingToResume)
	})

	t.Run("Stop Keeps Checkpoint", func(t *testing.T) {
		d, _, _ := startFade(t)

		d.Pause()
		require.NoError(t, d.FadeHSI(colorspace.HSI{}, colorspace.HSI{Hue: 10}, time.Second, 1))
		d.Stop()

		require.False(t, d.IsFading())
		require.True(t, d.Paused())
		require.NoError(t, d.Resume())
		require.True(t, d.IsFading())
	})
}

func TestStepPeriod(t *testing.T) {
	for _, tt := range []struct {
		name     string
		duration time.Duration
		steps    uint
		want     uint32
	}{
		{name: "Even", duration: 10 * time.Second, steps: 10, want: 1000},
		{name: "Truncates", duration: time.Second, steps: 3, want: 333},
		{name: "Zero Duration", duration: 0, steps: 5, want: 0},
		{name: "Negative Duration", duration: -time.Second, steps: 5, want: 0},
		{name: "Shorter Than Steps", duration: 5 * time.Millisecond, steps: 10, want: 0},
		{name: "Saturates", duration: 100 * 24 * time.Hour, steps: 1, want: math.MaxUint32},
		{name: "Huge Steps", duration: time.Second, steps: math.MaxUint, want: 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, stepPeriod(tt.duration, tt.steps))
		})
	}
}

func TestFadeModeString(t *testing.T) {
	assert.Equal(t, "idle", FadeIdle.String())
	assert.Equal(t, "hsi", FadeHSI.String())
	assert.Equal(t, "kelvin", FadeKelvin.String())
	assert.Equal(t, "FadeMode(9)", FadeMode(9).String())
}
