// Command rgbw-preview runs a fade against a terminal rendering of the light, no hardware or broker needed.
//
// Space pauses and resumes the fade, r restarts it and q quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
	rgbwlog "github.com/nlowe/rgbw/log"
	"github.com/nlowe/rgbw/sink"
)

type options struct {
	mode       string
	from, to   float64
	saturation float64
	intensity  uint
	duration   time.Duration
	steps      uint
	tick       time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "hsi", "fade mode: hsi or kelvin")
	flag.Float64Var(&opts.from, "from", 0, "start hue in degrees, or start temperature in kelvin")
	flag.Float64Var(&opts.to, "to", 360, "end hue in degrees, or end temperature in kelvin")
	flag.Float64Var(&opts.saturation, "saturation", 1, "saturation for hsi fades, 0 to 1")
	flag.UintVar(&opts.intensity, "intensity", 255, "intensity, 0 to 255")
	flag.DurationVar(&opts.duration, "duration", 10*time.Second, "how long the fade takes")
	flag.UintVar(&opts.steps, "steps", 500, "number of fade steps")
	flag.DurationVar(&opts.tick, "tick", 10*time.Millisecond, "how often the driver is ticked")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "rgbw-preview: %v\n", err)
		os.Exit(1)
	}
}

func (o options) start(d *rgbw.Driver) error {
	intensity := uint8(min(o.intensity, 255))

	switch o.mode {
	case "hsi":
		return d.FadeHSI(
			colorspace.HSI{Hue: o.from, Saturation: o.saturation, Intensity: intensity},
			colorspace.HSI{Hue: o.to, Saturation: o.saturation, Intensity: intensity},
			o.duration, o.steps,
		)
	case "kelvin":
		return d.FadeKelvin(
			colorspace.Kelvin{Temperature: o.from, Intensity: intensity},
			colorspace.Kelvin{Temperature: o.to, Intensity: intensity},
			o.duration, o.steps,
		)
	default:
		return fmt.Errorf("unknown mode %q", o.mode)
	}
}

func status(d *rgbw.Driver) string {
	f := d.Fade()

	switch {
	case d.Paused():
		return "paused  [space] resume  [r] restart  [q] quit"
	case f.Mode == rgbw.FadeIdle:
		return "done  [r] restart  [q] quit"
	case f.Mode == rgbw.FadeHSI:
		return fmt.Sprintf("%s  %4d steps left  [space] pause  [q] quit", f.HSI, f.Remaining)
	default:
		return fmt.Sprintf("%s  %4d steps left  [space] pause  [q] quit", f.Kelvin, f.Remaining)
	}
}

func run(opts options) error {
	// Anything logged would draw over the screen
	rgbwlog.To(slog.DiscardHandler)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	term := sink.NewTerminal(screen, fmt.Sprintf("rgbw-preview: %s fade over %s", opts.mode, opts.duration))
	d := rgbw.New(term)
	loop := rgbw.NewLoop(d, opts.tick)
	loop.AfterTick(func(d *rgbw.Driver) {
		term.SetStatus(status(d))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
	}()

	if err = loop.Do(ctx, opts.start); err != nil {
		cancel()
		<-loopDone
		return err
	}

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			term.Redraw()
		case *tcell.EventKey:
			var op func(*rgbw.Driver) error

			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
				cancel()
				if err := <-loopDone; !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			case ev.Rune() == ' ':
				op = func(d *rgbw.Driver) error {
					if d.Paused() {
						return d.Resume()
					}

					if d.IsFading() {
						d.Pause()
					}
					return nil
				}
			case ev.Rune() == 'r':
				op = opts.start
			}

			if op != nil {
				if err := loop.Do(ctx, op); err != nil {
					term.SetStatus(err.Error())
				}
			}
		}
	}
}
