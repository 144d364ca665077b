package rgbw

import (
	"time"

	"github.com/nlowe/rgbw/colorspace"
)

// Sink receives the four channel values computed by a Driver. Emit is called synchronously from the Driver and should
// not block. Sinks have no error return: implementations are expected to log failures themselves.
type Sink interface {
	Emit(c colorspace.RGBW)
}

// The SinkFunc type is an adapter to allow the use of ordinary functions as a Sink.
type SinkFunc func(colorspace.RGBW)

func (f SinkFunc) Emit(c colorspace.RGBW) {
	f(c)
}

// Clock is a monotonic millisecond counter with an arbitrary epoch. The counter is allowed to wrap around; the Driver
// measures elapsed time with modular subtraction.
type Clock interface {
	Millis() uint32
}

// The ClockFunc type is an adapter to allow the use of ordinary functions as a Clock.
type ClockFunc func() uint32

func (f ClockFunc) Millis() uint32 {
	return f()
}

type systemClock struct {
	epoch time.Time
}

func (s systemClock) Millis() uint32 {
	return uint32(time.Since(s.epoch).Milliseconds())
}

// SystemClock returns a Clock counting milliseconds since it was created, using the monotonic reading from time.Now.
// The value wraps roughly every 49.7 days.
func SystemClock() Clock {
	return systemClock{epoch: time.Now()}
}
