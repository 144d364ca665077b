package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/nlowe/rgbw/colorspace"
)

type fakePin struct {
	name   string
	duties []gpio.Duty
	freq   physic.Frequency
	halted bool
	err    error
}

func (p *fakePin) Name() string {
	return p.name
}

func (p *fakePin) PWM(duty gpio.Duty, f physic.Frequency) error {
	if p.err != nil {
		return p.err
	}

	p.duties = append(p.duties, duty)
	p.freq = f
	return nil
}

func (p *fakePin) Halt() error {
	p.halted = true
	return nil
}

func newFakePins() ([4]Pin, [4]*fakePin) {
	var pins [4]Pin
	var fakes [4]*fakePin

	for i, name := range []string{"GPIO17", "GPIO27", "GPIO22", "GPIO23"} {
		fakes[i] = &fakePin{name: name}
		pins[i] = fakes[i]
	}

	return pins, fakes
}

func TestDuty(t *testing.T) {
	require.Zero(t, Duty(0))
	require.Equal(t, gpio.DutyMax, Duty(255))
	require.InDelta(t, float64(gpio.DutyMax)/2, float64(Duty(128)), float64(gpio.DutyMax)/255)

	for v := 1; v < 256; v++ {
		require.Greater(t, Duty(uint8(v)), Duty(uint8(v-1)))
	}
}

func TestPWM(t *testing.T) {
	t.Run("Writes Every Channel First", func(t *testing.T) {
		pins, fakes := newFakePins()
		p := NewPWM(pins, 2*physic.KiloHertz)

		p.Emit(colorspace.RGBW{R: 255, G: 0, B: 0, W: 0})

		require.Equal(t, []gpio.Duty{gpio.DutyMax}, fakes[0].duties)
		for _, f := range fakes[1:] {
			require.Equal(t, []gpio.Duty{0}, f.duties)
		}

		require.Equal(t, 2*physic.KiloHertz, fakes[0].freq)
	})

	t.Run("Skips Unchanged Channels", func(t *testing.T) {
		pins, fakes := newFakePins()
		p := NewPWM(pins, physic.KiloHertz)

		p.Emit(colorspace.RGBW{R: 10, G: 20, B: 30, W: 40})
		p.Emit(colorspace.RGBW{R: 10, G: 20, B: 30, W: 40})
		p.Emit(colorspace.RGBW{R: 10, G: 20, B: 31, W: 40})

		require.Len(t, fakes[0].duties, 1)
		require.Len(t, fakes[1].duties, 1)
		require.Equal(t, []gpio.Duty{Duty(30), Duty(31)}, fakes[2].duties)
		require.Len(t, fakes[3].duties, 1)
	})

	t.Run("Rewrites After Failure", func(t *testing.T) {
		pins, fakes := newFakePins()
		p := NewPWM(pins, physic.KiloHertz)

		fakes[1].err = errors.New("sysfs went away")
		p.Emit(colorspace.RGBW{R: 1, G: 2, B: 3, W: 4})

		fakes[1].err = nil
		p.Emit(colorspace.RGBW{R: 1, G: 2, B: 3, W: 4})

		require.Len(t, fakes[0].duties, 2)
		require.Equal(t, []gpio.Duty{Duty(2)}, fakes[1].duties)
	})

	t.Run("Close", func(t *testing.T) {
		pins, fakes := newFakePins()
		p := NewPWM(pins, physic.KiloHertz)

		p.Emit(colorspace.RGBW{R: 255, G: 255, B: 255, W: 255})
		require.NoError(t, p.Close())

		for _, f := range fakes {
			require.Equal(t, gpio.Duty(0), f.duties[len(f.duties)-1])
			require.True(t, f.halted)
		}
	})
}
