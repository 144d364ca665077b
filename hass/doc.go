// Package hass exposes an rgbw.Driver to Home Assistant as an MQTT light.
//
// The light uses the default Home Assistant MQTT light schema with separate topics per attribute and announces itself
// with a device discovery payload. See https://www.home-assistant.io/integrations/light.mqtt/ and
// https://www.home-assistant.io/integrations/mqtt/#device-discovery-payload.
package hass
