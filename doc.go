// Package rgbw drives a set of RGB+White LED channels from raw RGBW, HSI, or Kelvin color requests and animates
// linear fades between colors.
//
// A Driver owns no I/O. Channel values are forwarded to a Sink (see the sink package for PWM, MQTT, and terminal
// implementations) and time is read from a Clock. Fades advance only when Driver.Tick is called; Loop provides a
// single goroutine that ticks a Driver on a fixed interval and serializes every other access to it.
package rgbw
