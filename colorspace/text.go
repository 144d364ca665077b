package colorspace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRGBW is the error returned by RGBW.UnmarshalText when the text is not four comma separated bytes.
var ErrMalformedRGBW = errors.New("rgbw must be four comma separated values between 0 and 255")

// MarshalText encodes c as "r,g,b,w" in decimal, the channel payload format used over MQTT.
func (c RGBW) MarshalText() ([]byte, error) {
	b := strconv.AppendUint(nil, uint64(c.R), 10)
	for _, v := range []uint8{c.G, c.B, c.W} {
		b = append(b, ',')
		b = strconv.AppendUint(b, uint64(v), 10)
	}

	return b, nil
}

// UnmarshalText decodes "r,g,b,w". Whitespace around each value is ignored.
func (c *RGBW) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 4 {
		return fmt.Errorf("%q: %w", text, ErrMalformedRGBW)
	}

	var v [4]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return fmt.Errorf("%q: %w", text, errors.Join(ErrMalformedRGBW, err))
		}

		v[i] = uint8(n)
	}

	*c = RGBW{R: v[0], G: v[1], B: v[2], W: v[3]}
	return nil
}
