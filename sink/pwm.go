package sink

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/log"
)

// ErrUnknownPin is the error returned by OpenPWM when a pin name is not known to periph.io.
var ErrUnknownPin = errors.New("unknown gpio pin")

// Pin is the part of gpio.PinIO used by PWM.
type Pin interface {
	Name() string
	PWM(duty gpio.Duty, f physic.Frequency) error
	Halt() error
}

// Duty converts a channel value to a PWM duty cycle, where 255 is gpio.DutyMax.
func Duty(v uint8) gpio.Duty {
	return gpio.Duty(int64(v) * int64(gpio.DutyMax) / 255)
}

// PWM drives the red, green, blue and white channels as four hardware PWM outputs. Only channels that changed since
// the previous Emit are written.
type PWM struct {
	mu sync.Mutex

	pins [4]Pin
	freq physic.Frequency

	last    colorspace.RGBW
	written bool

	log *slog.Logger
}

var _ rgbw.Sink = &PWM{}

// NewPWM constructs a PWM sink for pins in R, G, B, W order running at freq.
func NewPWM(pins [4]Pin, freq physic.Frequency) *PWM {
	return &PWM{
		pins: pins,
		freq: freq,

		log: log.ForComponent("sink.pwm").With(slog.String("frequency", freq.String())),
	}
}

// OpenPWM initializes the periph.io host drivers and opens the named pins in R, G, B, W order.
func OpenPWM(names [4]string, freq physic.Frequency) (*PWM, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("pwm: init host: %w", err)
	}

	var pins [4]Pin
	for i, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("pwm: %s: %w", name, ErrUnknownPin)
		}

		pins[i] = p
	}

	return NewPWM(pins, freq), nil
}

func (p *PWM) Emit(c colorspace.RGBW) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := [4]uint8{c.R, c.G, c.B, c.W}
	prev := [4]uint8{p.last.R, p.last.G, p.last.B, p.last.W}

	var errs []error
	for i, pin := range p.pins {
		if p.written && next[i] == prev[i] {
			continue
		}

		if err := pin.PWM(Duty(next[i]), p.freq); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pin.Name(), err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		// Force a full rewrite next time since we don't know which duty the failed pins are at.
		p.written = false
		p.log.With(log.Error(err), slog.Any("color", c)).Error("Failed to set pwm duty")
		return
	}

	p.last, p.written = c, true
}

// Close turns every channel off and halts the pins.
func (p *PWM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, pin := range p.pins {
		if err := pin.PWM(0, p.freq); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", pin.Name(), err))
		}

		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("%s: halt: %w", pin.Name(), err))
		}
	}

	p.written = false
	return errors.Join(errs...)
}
