package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/nlowe/rgbw/config"
	"github.com/nlowe/rgbw/hass"
	rgbwlog "github.com/nlowe/rgbw/log"
	"github.com/nlowe/rgbw/mqtt"
	adapter "github.com/nlowe/rgbw/mqtt/adapter/autopaho"
)

type disconnectFunc func(context.Context) error

func configureMQTT(ctx context.Context, cfg *config.Config) (mqtt.Writer, mqtt.Subscriber, *mqtt.RemoteValue[hass.Availability], disconnectFunc, error) {
	log := rgbwlog.ForComponent("mqtt")

	brokerURL, err := cfg.MQTT.BrokerURL()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	offline, _ := hass.AvailabilityMarshaler(hass.Unavailable)
	mqttConfig := autopaho.ClientConfig{
		ServerUrls: []*url.URL{brokerURL},
		KeepAlive:  cfg.MQTT.KeepAlive,

		ConnectUsername: cfg.MQTT.Username,
		ConnectPassword: []byte(cfg.MQTT.Password),

		// Keep the session for a minute so commands sent during a short reconnect are not lost.
		SessionExpiryInterval: 60,

		// The broker marks the light unavailable if we drop off without disconnecting.
		WillMessage: adapter.Will(
			hass.AvailabilityTopic(cfg.Light.TopicPrefix),
			offline,
			mqtt.WriteOptions{QoS: mqtt.QOSAtLeastOnce, Retain: true},
		),

		OnConnectionUp: func(*autopaho.ConnectionManager, *paho.Connack) {
			log.Info("mqtt connected")
		},
		OnConnectError: func(err error) {
			log.With(rgbwlog.Error(err)).Error("mqtt connection error")
		},

		ClientConfig: paho.ClientConfig{
			ClientID: cfg.MQTT.ClientID,
			OnClientError: func(err error) {
				log.With(rgbwlog.Error(err)).Error("mqtt client error")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				log := log.With(slog.Int("reason", int(d.ReasonCode)))

				if d.Properties != nil {
					log = log.With(slog.String("reason_string", d.Properties.ReasonString))
				}

				log.Warn("Disconnected from server")
			},
		},
	}

	log.With(slog.String("broker", brokerURL.Redacted()), slog.String("client_id", cfg.MQTT.ClientID)).Info("Connecting to mqtt")
	w, s, disconnect, err := adapter.DialMQTT(ctx, mqttConfig)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	hassAvailability := hass.HomeAssistantAvailability(cfg.Light.DiscoveryPrefix)
	if err = s.Subscribe(ctx, hassAvailability, hassAvailability.Subscription("")); err != nil {
		_ = disconnect(ctx)
		return nil, nil, nil, nil, fmt.Errorf("subscribe to home assistant status: %w", err)
	}

	return w, s, hassAvailability, disconnect, nil
}
