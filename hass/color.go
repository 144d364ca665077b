package hass

import "github.com/nlowe/rgbw/mqtt"

// ColorMode is the Home Assistant name for the color model a light is currently showing.
type ColorMode string

var (
	ColorModeMarshaler mqtt.ValueMarshaler[ColorMode] = func(v ColorMode) ([]byte, error) {
		return mqtt.StringMarshaler(string(v))
	}
	ColorModeUnmarshaler mqtt.ValueUnmarshaler[ColorMode] = func(bytes []byte) (ColorMode, error) {
		v, err := mqtt.StringUnmarshaler(bytes)
		return ColorMode(v), err
	}
)

// The color modes an rgbw light supports. Home Assistant knows others (xy, rgb, rgbww, white) that have no
// counterpart in the driver.
const (
	ColorModeTemperature ColorMode = "color_temp"
	ColorModeHueSat      ColorMode = "hs"
	ColorModeRGBW        ColorMode = "rgbw"
)
