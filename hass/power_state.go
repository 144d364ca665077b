package hass

import (
	"fmt"

	"github.com/nlowe/rgbw/mqtt"
)

// PowerState is the on/off state of a light as sent to and received from Home Assistant.
type PowerState string

const (
	PowerStateOn  PowerState = "ON"
	PowerStateOff PowerState = "OFF"
)

var (
	PowerStateMarshaler mqtt.ValueMarshaler[PowerState] = func(v PowerState) ([]byte, error) {
		return mqtt.StringMarshaler(string(v))
	}

	// PowerStateUnmarshaler accepts only PowerStateOn and PowerStateOff.
	PowerStateUnmarshaler mqtt.ValueUnmarshaler[PowerState] = func(bytes []byte) (PowerState, error) {
		switch v := PowerState(bytes); v {
		case PowerStateOn, PowerStateOff:
			return v, nil
		default:
			return "", fmt.Errorf("unknown power state %q", v)
		}
	}
)

// PowerStateOf returns PowerStateOn if on is true and PowerStateOff otherwise.
func PowerStateOf(on bool) PowerState {
	if on {
		return PowerStateOn
	}

	return PowerStateOff
}
