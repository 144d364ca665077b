// Package mqtttest provides in-memory implementations of mqtt.Writer and mqtt.Subscriber for tests.
package mqtttest

import (
	"context"
	"sync"

	"github.com/nlowe/rgbw/mqtt"
)

// Message is a payload published through a Broker.
type Message struct {
	Topic   string
	Options mqtt.WriteOptions
	Payload string
}

// Broker is an in-memory mqtt.Writer and mqtt.Subscriber. Published messages are recorded and delivered synchronously
// to any handler subscribed to the exact topic. Wildcards are not supported.
type Broker struct {
	mu sync.Mutex

	// Err is returned by every WriteTopic call when set. The message is still recorded.
	Err error

	published []Message
	handlers  map[string]mqtt.Handler
	subs      map[string]mqtt.Subscription
}

var _ mqtt.Writer = &Broker{}
var _ mqtt.Subscriber = &Broker{}

// NewBroker constructs an empty Broker.
func NewBroker() *Broker {
	return &Broker{
		handlers: map[string]mqtt.Handler{},
		subs:     map[string]mqtt.Subscription{},
	}
}

func (b *Broker) WriteTopic(_ context.Context, topic string, options mqtt.WriteOptions, value []byte) error {
	b.mu.Lock()
	b.published = append(b.published, Message{Topic: topic, Options: options, Payload: string(value)})
	h := b.handlers[topic]
	err := b.Err
	b.mu.Unlock()

	if h != nil {
		h.ServeMQTT(b, topic, value)
	}

	return err
}

func (b *Broker) Subscribe(_ context.Context, handler mqtt.Handler, subscriptions ...mqtt.Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range subscriptions {
		b.handlers[s.Topic] = handler
		b.subs[s.Topic] = s
	}

	return nil
}

func (b *Broker) Unsubscribe(_ context.Context, topics ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range topics {
		delete(b.handlers, t)
		delete(b.subs, t)
	}

	return nil
}

// Deliver sends payload to the handler subscribed to topic, as if another client had published it. It reports whether
// anything was subscribed.
func (b *Broker) Deliver(topic, payload string) bool {
	b.mu.Lock()
	h := b.handlers[topic]
	b.mu.Unlock()

	if h == nil {
		return false
	}

	h.ServeMQTT(b, topic, []byte(payload))
	return true
}

// Published returns a copy of every message written so far.
func (b *Broker) Published() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Message(nil), b.published...)
}

// Last returns the most recent message written to topic, and false if there was none.
func (b *Broker) Last(topic string) (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(b.published) - 1; i >= 0; i-- {
		if b.published[i].Topic == topic {
			return b.published[i], true
		}
	}

	return Message{}, false
}

// Subscription returns the subscription registered for topic, and false if there is none.
func (b *Broker) Subscription(topic string) (mqtt.Subscription, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.subs[topic]
	return s, ok
}

// Reset forgets every published message.
func (b *Broker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = nil
}
