// Command rgbwd drives an RGBW light and exposes it to Home Assistant over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nlowe/rgbw"
	"github.com/nlowe/rgbw/colorspace"
	"github.com/nlowe/rgbw/config"
	"github.com/nlowe/rgbw/hass"
	rgbwlog "github.com/nlowe/rgbw/log"
)

func main() {
	configPath := flag.String("config", "rgbwd.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "rgbwd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := rgbwlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// The preview sink owns the terminal
	var logOutput io.Writer = os.Stderr
	if cfg.Sink.Kind == config.SinkPreview {
		logOutput = io.Discard
	}

	h, err := rgbwlog.NewHandler(logOutput, cfg.Log.Format, level)
	if err != nil {
		return err
	}
	rgbwlog.To(h)

	log := rgbwlog.ForComponent("rgbwd")
	log.With(slog.String("config", configPath), slog.String("sink", string(cfg.Sink.Kind))).Info("Starting Up")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session, connected, endSession := sessionContext(ctx)
	defer endSession()

	w, sm, hassAvailability, disconnect, err := configureMQTT(session, cfg)
	if err != nil {
		return err
	}
	connected()

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		log.Info("Disconnecting from mqtt")
		if err := disconnect(shutdownCtx); err != nil {
			log.With(rgbwlog.Error(err)).Error("Failed to disconnect from mqtt")
		}
	}()

	out, closeSink, err := openSink(session, cancel, cfg, w)
	if err != nil {
		return err
	}

	d := rgbw.New(out)
	loop := rgbw.NewLoop(d, cfg.Driver.TickInterval.Duration())

	light, err := hass.NewLight(cfg.Hass(), loop)
	if err != nil {
		return errors.Join(err, closeSink())
	}

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- loop.Run(ctx)
	}()

	log.Info("Watching Command Topics")
	if err = light.Subscribe(ctx, w, sm); err != nil {
		cancel()
		<-loopDone
		return errors.Join(err, closeSink())
	}

	announce := func() error {
		log.Info("Sending discovery info and state")
		return errors.Join(
			light.Configure(ctx, w),
			light.SetAvailability(ctx, w, hass.Available),
			light.Publish(ctx, w),
		)
	}

	log.Info("Watching Home Assistant state")
	hassAvailability.Watch(func(availability hass.Availability) {
		log.With(slog.Any("availability", availability)).Info("Home Assistant state changed")
		if availability != hass.Available {
			return
		}

		go func() {
			if err := announce(); err != nil {
				log.With(rgbwlog.Error(err)).Error("Failed to announce light")
			}
		}()
	})

	if err = announce(); err != nil {
		log.With(rgbwlog.Error(err)).Warn("Failed to announce light, will retry when Home Assistant comes online")
	}

	if err = <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		log.With(rgbwlog.Error(err)).Error("Driver loop stopped")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := light.SetAvailability(shutdownCtx, w, hass.Unavailable); err != nil {
		log.With(rgbwlog.Error(err)).Warn("Failed to publish availability")
	}

	// The loop has stopped so the driver is ours again
	d.Stop()
	d.WriteRGBW(colorspace.RGBW{})

	log.Info("Goodbye!")
	return closeSink()
}
