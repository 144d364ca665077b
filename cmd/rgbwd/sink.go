package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"periph.io/x/conn/v3/physic"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/config"
	"github.com/nlowe/rgbw/mqtt"
	"github.com/nlowe/rgbw/sink"
)

// openSink builds the Sink selected by cfg.Sink.Kind. The MQTT sink publishes with session, which must stay alive until
// the channels have been zeroed on shutdown. The returned function releases the sink.
func openSink(session context.Context, cancel context.CancelFunc, cfg *config.Config, w mqtt.Writer) (rgbw.Sink, func() error, error) {
	switch cfg.Sink.Kind {
	case config.SinkPWM:
		p, err := sink.OpenPWM([4]string(cfg.Sink.Pins), physic.Frequency(cfg.Sink.FrequencyHz)*physic.Hertz)
		if err != nil {
			return nil, nil, err
		}

		return p, p.Close, nil
	case config.SinkMQTT:
		m := sink.NewMQTT(session, w, cfg.Light.TopicPrefix, cfg.Sink.Topic, mqtt.WriteOptions{Retain: true})
		return m, func() error { return nil }, nil
	case config.SinkPreview:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, nil, fmt.Errorf("preview: %w", err)
		}

		if err = screen.Init(); err != nil {
			return nil, nil, fmt.Errorf("preview: %w", err)
		}

		t := sink.NewTerminal(screen, cfg.Light.Name)
		t.SetStatus("q to quit")

		go func() {
			for {
				switch ev := screen.PollEvent().(type) {
				case nil:
					return
				case *tcell.EventResize:
					t.Redraw()
				case *tcell.EventKey:
					if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
						cancel()
					}
				}
			}
		}()

		return t, func() error {
			screen.Fini()
			return nil
		}, nil
	default:
		return nil, nil, fmt.Errorf("%w %q", config.ErrUnknownSink, cfg.Sink.Kind)
	}
}
