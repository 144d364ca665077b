// Package autopaho adapts an eclipse/paho.golang autopaho connection to mqtt.Writer and mqtt.Subscriber.
package autopaho

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	rgbwlog "github.com/nlowe/rgbw/log"
	"github.com/nlowe/rgbw/mqtt"
)

// retainHandlingIgnore is the MQTT 5 subscription option asking the broker not to send retained messages.
const retainHandlingIgnore = 2

type adapter struct {
	mu sync.Mutex

	conn *autopaho.ConnectionManager
	r    paho.Router

	subscriptions map[string]paho.SubscribeOptions

	log *slog.Logger
}

var _ mqtt.Writer = &adapter{}
var _ mqtt.Subscriber = &adapter{}

// Will builds the last will message the broker publishes on our behalf if the connection drops without a disconnect.
func Will(topic string, payload []byte, options mqtt.WriteOptions) *paho.WillMessage {
	return &paho.WillMessage{
		Topic:   topic,
		Payload: payload,
		QoS:     byte(options.QoS),
		Retain:  options.Retain,
	}
}

// DialMQTT connects to the broker described by config and waits until the connection is up. Subscriptions made through
// the returned Subscriber are sent again every time the connection comes back. The returned function disconnects.
func DialMQTT(ctx context.Context, config autopaho.ClientConfig) (mqtt.Writer, mqtt.Subscriber, func(ctx context.Context) error, error) {
	a := &adapter{
		r: paho.NewStandardRouter(),

		subscriptions: map[string]paho.SubscribeOptions{},

		log: rgbwlog.ForComponent("autopaho"),
	}

	originalOnConnUp := config.OnConnectionUp
	config.OnConnectionUp = func(manager *autopaho.ConnectionManager, connack *paho.Connack) {
		a.onReconnect(ctx)

		if originalOnConnUp != nil {
			originalOnConnUp(manager, connack)
		}
	}

	// Hold the lock until conn is assigned so the first OnConnectionUp can't observe a nil conn.
	a.mu.Lock()
	a.log.Info("Connecting to mqtt broker")
	conn, err := autopaho.NewConnection(ctx, config)
	if err != nil {
		a.mu.Unlock()
		return nil, nil, nil, fmt.Errorf("mqtt: connect: %w", err)
	}

	a.conn = conn
	a.mu.Unlock()

	conn.AddOnPublishReceived(func(rx autopaho.PublishReceived) (bool, error) {
		a.r.Route(rx.Packet.Packet())
		return true, nil
	})

	a.log.Debug("Waiting for connection to be ready")
	if err = conn.AwaitConnection(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("mqtt: wait for connection: %w", err)
	}

	a.log.Debug("Connected to mqtt broker")
	return a, a, conn.Disconnect, nil
}

func (a *adapter) onReconnect(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.subscriptions) == 0 {
		return
	}

	sub := &paho.Subscribe{
		Subscriptions: make([]paho.SubscribeOptions, 0, len(a.subscriptions)),
	}

	for _, s := range a.subscriptions {
		sub.Subscriptions = append(sub.Subscriptions, s)
	}

	a.log.With(slog.Int("count", len(sub.Subscriptions))).Debug("Connection is up, re-sending subscriptions")
	if _, err := a.conn.Subscribe(ctx, sub); err != nil {
		a.log.With(rgbwlog.Error(err)).Error("Failed to re-subscribe to mqtt topics")
	}
}

func (a *adapter) WriteTopic(ctx context.Context, topic string, options mqtt.WriteOptions, value []byte) error {
	a.log.With(slog.String("topic", topic), slog.Any("options", options), slog.String("payload", string(value))).Debug("Publishing payload")

	_, err := a.conn.Publish(ctx, &paho.Publish{
		QoS:     byte(options.QoS),
		Retain:  options.Retain,
		Topic:   topic,
		Payload: value,
	})

	if err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", topic, err)
	}

	return nil
}

func subscribeOptions(s mqtt.Subscription) paho.SubscribeOptions {
	opts := paho.SubscribeOptions{
		Topic:   s.Topic,
		QoS:     byte(s.Options.QoS),
		NoLocal: s.Options.NoLocal,
	}

	if s.Options.IgnoreRetained {
		opts.RetainHandling = retainHandlingIgnore
	}

	return opts
}

func (a *adapter) Subscribe(ctx context.Context, handler mqtt.Handler, subscriptions ...mqtt.Subscription) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(subscriptions) == 0 {
		return nil
	}

	sub := &paho.Subscribe{
		Subscriptions: make([]paho.SubscribeOptions, len(subscriptions)),
	}

	for i, s := range subscriptions {
		opts := subscribeOptions(s)

		a.subscriptions[s.Topic] = opts
		sub.Subscriptions[i] = opts

		a.r.RegisterHandler(s.Topic, func(publish *paho.Publish) {
			handler.ServeMQTT(a, publish.Topic, publish.Payload)
		})
	}

	a.log.With(slog.Any("subscriptions", subscriptions)).Debug("Subscribing to mqtt topic(s)")
	if _, err := a.conn.Subscribe(ctx, sub); err != nil {
		return fmt.Errorf("mqtt: subscribe: %w", err)
	}

	return nil
}

func (a *adapter) Unsubscribe(ctx context.Context, topics ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, t := range topics {
		delete(a.subscriptions, t)
		a.r.UnregisterHandler(t)
	}

	a.log.With(slog.Any("topics", topics)).Debug("Unsubscribing from mqtt topic(s)")
	_, err := a.conn.Unsubscribe(ctx, &paho.Unsubscribe{
		Topics: topics,
	})

	return err
}
