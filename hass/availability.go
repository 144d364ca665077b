package hass

import (
	"github.com/nlowe/rgbw/mqtt"
)

// Availability tells Home Assistant whether a device or entity is online. Home Assistant publishes its own
// Availability on its status topic, see HomeAssistantAvailability.
type Availability string

var (
	AvailabilityMarshaler mqtt.ValueMarshaler[Availability] = func(v Availability) ([]byte, error) {
		return mqtt.StringMarshaler(string(v))
	}
	AvailabilityUnmarshaler mqtt.ValueUnmarshaler[Availability] = func(bytes []byte) (Availability, error) {
		v, err := mqtt.StringUnmarshaler(bytes)
		return Availability(v), err
	}
)

const (
	// Available is the Availability value for online devices.
	Available Availability = "online"
	// Unavailable is the Availability value for offline devices.
	Unavailable Availability = "offline"
)
