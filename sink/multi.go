package sink

import (
	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
)

// Multi is a Sink that forwards every emission to each of its sinks in order.
type Multi []rgbw.Sink

func (m Multi) Emit(c colorspace.RGBW) {
	for _, s := range m {
		s.Emit(c)
	}
}
