// Package sink contains rgbw.Sink implementations: PWM hardware channels through periph.io, an MQTT channel topic, a
// terminal preview drawn with tcell, and Multi for fanning one Driver out to several of them.
package sink
