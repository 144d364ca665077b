package mqtt

import (
	"context"
	"log/slog"
)

// Subscription names a topic filter and the options to subscribe with. It implements fmt.Stringer and slog.LogValuer.
type Subscription struct {
	Topic   string
	Options ReadOptions
}

func (s Subscription) String() string {
	return s.Topic
}

func (s Subscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("topic", s.Topic),
		slog.Any("options", s.Options),
	)
}

// Handler is the MQTT equivalent to http.Handler. It is called for every message received on a subscription.
//
// Handlers do not return errors and must not block. A handler that needs to reply should use the provided Writer before
// returning; neither the Writer nor the message slice may be used afterwards.
type Handler interface {
	ServeMQTT(w Writer, topic string, message []byte)
}

// The HandlerFunc type is an adapter to allow the use of ordinary functions as MQTT handlers.
type HandlerFunc func(Writer, string, []byte)

func (f HandlerFunc) ServeMQTT(w Writer, topic string, message []byte) {
	f(w, topic, message)
}

// Subscriber manages MQTT subscriptions.
type Subscriber interface {
	// Subscribe asks the broker for messages on subscriptions and routes them to handler. Subscriptions survive
	// reconnects.
	Subscribe(ctx context.Context, handler Handler, subscriptions ...Subscription) error

	// Unsubscribe removes the subscriptions for topics.
	Unsubscribe(ctx context.Context, topics ...string) error
}
